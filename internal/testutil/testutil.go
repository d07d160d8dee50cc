// Package testutil provides shared fixtures for building throwaway
// workspaces: a data dir with a registry, and a game dir with a
// load-order document.
package testutil

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// GustavDevUUID mirrors the built-in entry present in every real document.
const GustavDevUUID = "28ac9ce2-2aba-8cda-b3b5-6e922f71b6b8"

// Entry describes one load-order node fixture.
type Entry struct {
	UUID    string
	Name    string
	Folder  string
	MD5     string
	Version string
}

// EntryXML renders e as a ModuleShortDesc node at the given indent.
// Attribute values are XML-escaped.
func EntryXML(e Entry, indent string) string {
	folder := e.Folder
	if folder == "" {
		folder = e.Name
	}
	var b strings.Builder
	attr := func(id, typ, value string) {
		fmt.Fprintf(&b, "%s  <attribute id=\"%s\" type=\"%s\" value=\"%s\"/>\n", indent, id, typ, escape(value))
	}
	fmt.Fprintf(&b, "%s<node id=\"ModuleShortDesc\">\n", indent)
	attr("Folder", "LSString", folder)
	attr("MD5", "LSString", e.MD5)
	attr("Name", "LSString", e.Name)
	attr("UUID", "guid", e.UUID)
	attr("Version64", "int64", e.Version)
	fmt.Fprintf(&b, "%s</node>\n", indent)
	return b.String()
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

const sentinelXML = `            <node id="ModuleShortDesc">
              <attribute id="Folder" type="LSString" value="GustavDev"/>
              <attribute id="MD5" type="LSString" value=""/>
              <attribute id="Name" type="LSString" value="GustavDev"/>
              <attribute id="PublishHandle" type="uint64" value="0"/>
              <attribute id="UUID" type="guid" value="28ac9ce2-2aba-8cda-b3b5-6e922f71b6b8"/>
              <attribute id="Version64" type="int64" value="36028797018963968"/>
            </node>
`

// ModsettingsXML renders a load-order document holding the GustavDev
// sentinel followed by entries, formatted the way Encode writes it.
func ModsettingsXML(entries ...Entry) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<save>
  <version major="4" minor="7" revision="1" build="300"/>
  <region id="ModuleSettings">
    <node id="root">
      <children>
        <node id="Mods">
          <children>
`)
	b.WriteString(sentinelXML)
	for _, e := range entries {
		b.WriteString(EntryXML(e, "            "))
	}
	b.WriteString(`          </children>
        </node>
      </children>
    </node>
  </region>
</save>
`)
	return b.String()
}

// Mod describes one registry row fixture.
type Mod struct {
	UUID      string
	Name      string
	Number    int
	Installed bool
	Origin    string
}

// RegistryJSON renders mods as a registry file, preserving the given order.
func RegistryJSON(mods ...Mod) string {
	if len(mods) == 0 {
		return "{}"
	}
	parts := make([]string, 0, len(mods))
	for _, m := range mods {
		row := map[string]any{
			"is_installed": m.Installed,
			"mod_name":     m.Name,
			"uuid":         m.UUID,
			"number":       m.Number,
			"created_at":   "2024-01-01 10:00:00 +0000",
			"updated_at":   "2024-01-01 10:00:00 +0000",
		}
		if m.Origin != "" {
			row["type"] = m.Origin
		}
		data, _ := json.Marshal(row)
		key, _ := json.Marshal(m.UUID)
		parts = append(parts, string(key)+": "+string(data))
	}
	return "{\n" + strings.Join(parts, ",\n") + "\n}"
}

// Dirs is a throwaway layout: DataDir holds the tool's files, AppDataDir
// the game's, ProfileDir the load-order document.
type Dirs struct {
	DataDir    string
	AppDataDir string
	ProfileDir string
	ConfigPath string
}

// ModsettingsPath returns the load-order document path.
func (d Dirs) ModsettingsPath() string {
	return filepath.Join(d.ProfileDir, "modsettings.lsx")
}

// RegistryPath returns the registry file path.
func (d Dirs) RegistryPath() string {
	return filepath.Join(d.DataDir, "mod-data.json")
}

// BackupPath returns the fragment path for uuid.
func (d Dirs) BackupPath(uuid string) string {
	return filepath.Join(d.DataDir, "inactive", uuid+".xml")
}

// NewDirs creates an initialized layout with an empty registry, a
// document holding only the sentinel and a conf.toml pointing at both.
func NewDirs(t *testing.T) Dirs {
	t.Helper()
	root := t.TempDir()
	d := Dirs{
		DataDir:    filepath.Join(root, "data"),
		AppDataDir: filepath.Join(root, "appdata"),
	}
	d.ProfileDir = filepath.Join(d.AppDataDir, "PlayerProfiles", "Public")
	d.ConfigPath = filepath.Join(d.DataDir, "conf.toml")

	for _, dir := range []string{
		d.DataDir,
		filepath.Join(d.DataDir, "mods"),
		filepath.Join(d.DataDir, "dump"),
		filepath.Join(d.DataDir, "inactive"),
		filepath.Join(d.AppDataDir, "Mods"),
		d.ProfileDir,
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	conf := fmt.Sprintf(`[paths]
appdata_dir = %q
data_dir = %q

[logging]
log_level = "error"

[journal]
enabled = false
`, d.AppDataDir, d.DataDir)
	WriteFile(t, d.ConfigPath, conf)
	WriteFile(t, d.RegistryPath(), "{}")
	WriteFile(t, d.ModsettingsPath(), ModsettingsXML())
	return d
}

// WriteFile writes content to path, creating parent dirs.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// ReadFile returns the content of path.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}
