// Package models defines the domain types for modsync.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Origin records how a mod entered the registry.
type Origin string

const (
	// OriginStandard marks mods added by install.
	OriginStandard Origin = "standard"
	// OriginModsettings marks mods discovered in the load-order document by refresh.
	OriginModsettings Origin = "from_modsettings"
)

// Label is the human-readable origin used in tables.
func (o Origin) Label() string {
	switch o {
	case OriginStandard:
		return "Standard"
	case OriginModsettings:
		return "From modsettings"
	default:
		return ""
	}
}

// ModEntry is one registry row, keyed by UUID.
type ModEntry struct {
	Installed bool      `json:"is_installed"`
	Name      string    `json:"mod_name"`
	Origin    Origin    `json:"type,omitempty"`
	UUID      string    `json:"uuid"`
	Number    int       `json:"number"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// Clone returns a copy of e.
func (e *ModEntry) Clone() *ModEntry {
	c := *e
	return &c
}

// TimestampLayout is the registry's on-disk time format.
const TimestampLayout = "2006-01-02 15:04:05 -0700"

// Timestamp is a time.Time stored as TimestampLayout. Values written in
// RFC 3339 are accepted on read.
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to whole seconds, the resolution of the file format.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.Truncate(time.Second)}
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.Format(TimestampLayout))
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{TimestampLayout, time.RFC3339Nano} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognized format %q", raw)
}

// PackageMetadata is the sidecar description shipped inside a mod package.
type PackageMetadata struct {
	UUID    string
	Folder  string
	Name    string
	MD5     string
	Version string
}

// Package is an extracted distributable: its name, the directory holding its
// files and the optional sidecar metadata.
type Package struct {
	Name     string
	Dir      string
	Metadata *PackageMetadata
}
