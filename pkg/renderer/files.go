package renderer

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// CopyTemplates copies each template file present in srcDir into dstDir.
// Missing templates are returned in missing rather than failing the copy.
func CopyTemplates(srcDir, dstDir string) (copied, missing []string, err error) {
	err = os.MkdirAll(dstDir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create output directory: %s", dstDir)
		return copied, missing, err
	}

	for _, name := range TemplateFiles() {
		src := filepath.Join(srcDir, name)
		_, statErr := os.Stat(src)
		if os.IsNotExist(statErr) {
			missing = append(missing, src)
			continue
		}

		err = copyFile(src, filepath.Join(dstDir, name))
		if err != nil {
			return copied, missing, err
		}
		copied = append(copied, name)
	}

	return copied, missing, err
}

func copyFile(src, dst string) (err error) {
	var in *os.File
	in, err = os.Open(src)
	if err != nil {
		err = errors.Wrapf(err, "failed to open template: %s", src)
		return err
	}
	defer in.Close()

	var out *os.File
	out, err = os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to create file: %s", dst)
		return err
	}

	_, err = io.Copy(out, in)
	if err != nil {
		out.Close()
		err = errors.Wrapf(err, "failed to copy %s", src)
		return err
	}

	err = out.Close()
	if err != nil {
		err = errors.Wrapf(err, "failed to close file: %s", dst)
		return err
	}
	return err
}

// ReadSection returns the contents of a section file, or "" when it does not exist.
func ReadSection(path string) (content string, err error) {
	var data []byte
	data, err = os.ReadFile(path)
	if os.IsNotExist(err) {
		err = nil
		return content, err
	}
	if err != nil {
		err = errors.Wrapf(err, "failed to read section file: %s", path)
		return content, err
	}
	content = string(data)
	return content, err
}

// WriteSection writes LaTeX content to a file, creating parent directories.
func WriteSection(content, outputPath string) (err error) {
	outputDir := filepath.Dir(outputPath)
	err = os.MkdirAll(outputDir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create output directory: %s", outputDir)
		return err
	}

	err = os.WriteFile(outputPath, []byte(content), 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write section file: %s", outputPath)
		return err
	}

	return err
}
