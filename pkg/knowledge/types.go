// Package knowledge loads the candidate's structured career record.
package knowledge

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// Bank is the complete knowledge bank.
type Bank struct {
	Skills     Skills    `json:"skills"`
	Experience []Role    `json:"experience"`
	Projects   []Project `json:"projects"`
}

// Skills maps a category name (e.g. "Languages") to its skills, plus certifications.
// In the file both live under one "skills" object; the "certifications" key holds objects.
type Skills struct {
	Categories     map[string][]string
	Certifications []Certification
}

// Certification is a credential with an optional verification link.
type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer,omitempty"`
	Date   string `json:"date,omitempty"`
	Link   string `json:"link,omitempty"`
}

// Role is one position held.
type Role struct {
	Company  string   `json:"company"`
	Title    string   `json:"title"`
	Location string   `json:"location,omitempty"`
	Dates    string   `json:"dates,omitempty"`
	Bullets  []string `json:"bullets"`
}

// Project is a personal or open source project.
type Project struct {
	Name         string   `json:"name"`
	Technologies []string `json:"technologies,omitempty"`
	Dates        string   `json:"dates,omitempty"`
	Link         string   `json:"link,omitempty"`
	Bullets      []string `json:"bullets"`
}

const certificationsKey = "certifications"

// UnmarshalJSON splits the flat skills object into categories and certifications.
func (s *Skills) UnmarshalJSON(data []byte) (err error) {
	var raw map[string]json.RawMessage
	err = json.Unmarshal(data, &raw)
	if err != nil {
		err = errors.Wrap(err, "skills must be an object")
		return err
	}

	s.Categories = make(map[string][]string, len(raw))
	for key, value := range raw {
		if key == certificationsKey {
			err = json.Unmarshal(value, &s.Certifications)
			if err != nil {
				err = errors.Wrap(err, "certifications must be a list of objects")
				return err
			}
			continue
		}

		var list []string
		err = json.Unmarshal(value, &list)
		if err != nil {
			err = errors.Wrapf(err, "skill category %q must be a list of strings", key)
			return err
		}
		s.Categories[key] = list
	}

	return err
}

// MarshalJSON writes the skills back as one flat object.
func (s Skills) MarshalJSON() (data []byte, err error) {
	flat := make(map[string]interface{}, len(s.Categories)+1)
	for key, list := range s.Categories {
		flat[key] = list
	}
	if len(s.Certifications) > 0 {
		flat[certificationsKey] = s.Certifications
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	err = enc.Encode(flat)
	if err != nil {
		return data, err
	}
	data = bytes.TrimSpace(buf.Bytes())
	return data, err
}

// Empty reports whether there are no skills and no certifications.
func (s Skills) Empty() (empty bool) {
	empty = len(s.Categories) == 0 && len(s.Certifications) == 0
	return empty
}
