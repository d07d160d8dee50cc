// Package manifest reads the info.json sidecar shipped inside a mod package.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/modsync/internal/apperr"
	"github.com/starford/modsync/internal/models"
)

// FileName is the sidecar file name inside an extracted package.
const FileName = "info.json"

type document struct {
	Mods []modInfo  `json:"Mods"`
	MD5  flexString `json:"MD5"`
}

type modInfo struct {
	UUID    flexString `json:"UUID"`
	Folder  flexString `json:"Folder"`
	Name    flexString `json:"Name"`
	Version flexString `json:"Version"`
}

// flexString accepts a JSON string, number or null. Packagers write
// Version both as "36028797018963968" and as a bare number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", data)
		}
		*f = flexString(n.String())
	}
	return nil
}

// Parse decodes an info.json payload and validates the required fields.
// Any problem is reported as apperr.ErrInvalidMetadata.
func Parse(data []byte) (*models.PackageMetadata, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperr.ErrInvalidMetadata, FileName, err)
	}
	if len(doc.Mods) == 0 {
		return nil, fmt.Errorf("%w: %s has no Mods entry", apperr.ErrInvalidMetadata, FileName)
	}

	m := doc.Mods[0]
	meta := &models.PackageMetadata{
		UUID:    strings.TrimSpace(string(m.UUID)),
		Folder:  strings.TrimSpace(string(m.Folder)),
		Name:    strings.TrimSpace(string(m.Name)),
		MD5:     strings.TrimSpace(string(doc.MD5)),
		Version: strings.TrimSpace(string(m.Version)),
	}
	if err := Validate(meta); err != nil {
		return nil, err
	}
	return meta, nil
}

// Validate checks that uuid, folder and name are present. Version and
// MD5 are carried into the load-order entry as written.
func Validate(meta *models.PackageMetadata) error {
	err := validation.ValidateStruct(meta,
		validation.Field(&meta.UUID, validation.Required),
		validation.Field(&meta.Folder, validation.Required),
		validation.Field(&meta.Name, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", apperr.ErrInvalidMetadata, FileName, err)
	}
	return nil
}
