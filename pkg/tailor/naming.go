package tailor

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

func createCompanyOutputDir(baseOutDir, company string) (outDir string, err error) {
	companyDir := SanitizeFilename(company)
	if companyDir == "" {
		err = errors.Errorf("company name %q has no usable characters", company)
		return outDir, err
	}

	outDir = filepath.Join(baseOutDir, companyDir)
	err = os.MkdirAll(outDir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create output directory: %s", outDir)
		return outDir, err
	}
	return outDir, err
}

// SanitizeFilename turns a company name into a lowercase, hyphenated directory name.
func SanitizeFilename(name string) (sanitized string) {
	// Remove common company suffixes
	suffixes := []string{
		", LLC", ", Inc.", ", Inc",
		" LLC", " Inc.", " Inc",
		" Corporation", " Corp.", " Corp",
		" Limited", " Ltd.", " Ltd",
		" Co.", " Co",
	}

	sanitized = strings.TrimSpace(name)
	for _, suffix := range suffixes {
		if len(sanitized) > len(suffix) && strings.EqualFold(sanitized[len(sanitized)-len(suffix):], suffix) {
			sanitized = sanitized[:len(sanitized)-len(suffix)]
		}
	}

	sanitized = strings.ToLower(sanitized)

	sanitized = strings.Map(func(r rune) (result rune) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			result = r
			return result
		}
		result = '-'
		return result
	}, sanitized)

	for strings.Contains(sanitized, "--") {
		sanitized = strings.ReplaceAll(sanitized, "--", "-")
	}

	sanitized = strings.Trim(sanitized, "-")

	return sanitized
}
