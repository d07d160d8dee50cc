package render

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/starford/modsync/internal/engine"
	"github.com/starford/modsync/internal/journal"
	"github.com/starford/modsync/internal/models"
	"github.com/starford/modsync/internal/modservice"
)

func TestMods(t *testing.T) {
	out := Mods([]modservice.ModRow{
		{Number: 1, Active: true, Name: "Alpha", Type: "Standard", UpdatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{Number: 2, Active: false, Name: "Beta", Type: "From modsettings"},
	})
	for _, want := range []string{"#", "Active?", "Last installed", "Alpha", "Beta", "Yes", "No", "From modsettings", "2024-01-02 03:04:05 +0000"} {
		assert.Contains(t, out, want)
	}
	assert.Less(t, strings.Index(out, "Alpha"), strings.Index(out, "Beta"))
}

func TestModsEmpty(t *testing.T) {
	assert.Contains(t, Mods(nil), "No mods.")
}

func TestBackups(t *testing.T) {
	out := Backups([]modservice.BackupRow{
		{UUID: "u-1", Name: "Alpha", Number: 3, Known: true},
		{UUID: "u-2"},
	})
	assert.Contains(t, out, "Alpha")
	assert.Contains(t, out, "(not in registry)")
	assert.Contains(t, out, "u-2")
}

func TestHistory(t *testing.T) {
	out := History([]journal.Entry{
		{Op: "activate", Outcome: "failed", ModName: "Alpha", Error: "backup fragment not found", CreatedAt: time.Now()},
	})
	assert.Contains(t, out, "activate")
	assert.Contains(t, out, "backup fragment not found")
}

func TestInstallReport(t *testing.T) {
	lines := InstallReport(&modservice.InstallReport{
		Standard: []modservice.InstalledMod{{Name: "Alpha"}},
		PakOnly:  []string{"Beta", "Gamma"},
		Failed:   []modservice.Failure{{Package: "Broken", Err: errors.New("invalid metadata")}},
	})
	out := strings.Join(lines, "\n")
	assert.Contains(t, out, "You installed 1 standard mod.")
	assert.Contains(t, out, "-> Alpha")
	assert.Contains(t, out, "You installed 2 pak-only mods.")
	assert.Contains(t, out, "in-game mod manager")
	assert.Contains(t, out, "-> Broken: invalid metadata")
}

func TestInstallReportUpdate(t *testing.T) {
	lines := InstallReport(&modservice.InstallReport{
		Update:   true,
		Standard: []modservice.InstalledMod{{Name: "Alpha", Inactive: true}},
	})
	out := strings.Join(lines, "\n")
	assert.Contains(t, out, "You updated files for 1 standard mod.")
	assert.Contains(t, out, "-> Alpha (inactive)")
	assert.NotContains(t, out, "Nothing left to do")
}

func TestInstallReportEmpty(t *testing.T) {
	assert.Equal(t, []string{"Nothing to do."}, InstallReport(&modservice.InstallReport{}))
}

func TestResultRefresh(t *testing.T) {
	lines := Result(&engine.Result{
		Message: "imported 1, disabled 0, enabled 0",
		Refresh: &engine.RefreshReport{
			Imported: []*models.ModEntry{{Number: 4, Name: "Foreign"}},
		},
		Warnings: []string{"careful"},
	})
	out := strings.Join(lines, "\n")
	assert.Contains(t, out, "Imported from modsettings:")
	assert.Contains(t, out, "4. Foreign")
	assert.Contains(t, out, "warning: careful")
	assert.NotContains(t, out, "Marked inactive")
}
