package knowledge

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Load reads the knowledge bank from a JSON or YAML file, chosen by extension.
func Load(path string) (bank Bank, err error) {
	var fileData []byte
	fileData, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read knowledge bank: %s", path)
		return bank, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		fileData, err = yamlToJSON(fileData)
		if err != nil {
			err = errors.Wrapf(err, "failed to parse knowledge bank YAML: %s", path)
			return bank, err
		}
	}

	err = json.Unmarshal(fileData, &bank)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse knowledge bank JSON: %s", path)
		return bank, err
	}

	err = bank.Validate()
	if err != nil {
		err = errors.Wrap(err, "knowledge bank validation failed")
		return bank, err
	}

	return bank, err
}

// yamlToJSON re-encodes a YAML document as JSON so both formats share one decoder.
func yamlToJSON(data []byte) (out []byte, err error) {
	var doc interface{}
	err = yaml.Unmarshal(data, &doc)
	if err != nil {
		return out, err
	}

	out, err = json.Marshal(doc)
	if err != nil {
		err = errors.Wrap(err, "knowledge bank YAML has non-string keys")
		return out, err
	}
	return out, err
}

// Validate checks that the knowledge bank is well-formed.
func (b *Bank) Validate() (err error) {
	if b.Skills.Empty() && len(b.Experience) == 0 && len(b.Projects) == 0 {
		err = errors.New("knowledge bank has no skills, experience or projects")
		return err
	}

	for i, role := range b.Experience {
		if role.Company == "" {
			err = errors.Errorf("experience entry %d missing company", i)
			return err
		}
		if role.Title == "" {
			err = errors.Errorf("experience entry %d (%s) missing title", i, role.Company)
			return err
		}
	}

	for i, project := range b.Projects {
		if project.Name == "" {
			err = errors.Errorf("project at index %d missing name", i)
			return err
		}
	}

	for i, cert := range b.Skills.Certifications {
		if cert.Name == "" {
			err = errors.Errorf("certification at index %d missing name", i)
			return err
		}
	}

	return err
}
