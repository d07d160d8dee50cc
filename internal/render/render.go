// Package render formats service results for the terminal.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/starford/modsync/internal/engine"
	"github.com/starford/modsync/internal/journal"
	"github.com/starford/modsync/internal/models"
	"github.com/starford/modsync/internal/modservice"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	activeStyle = cellStyle.Foreground(lipgloss.Color("42"))
	dimStyle    = cellStyle.Foreground(lipgloss.Color("245"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	// Title styles section headings such as the install report.
	Title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	// Hint styles follow-up instructions.
	Hint = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("242"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func timestamp(t models.Timestamp) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(models.TimestampLayout)
}

// Mods renders the mod list. Inactive rows are dimmed.
func Mods(rows []modservice.ModRow) string {
	if len(rows) == 0 {
		return Hint.Render("No mods.")
	}
	t := newTable("#", "Active?", "Name", "Type", "Last installed")
	for _, r := range rows {
		t.Row(strconv.Itoa(r.Number), yesNo(r.Active), r.Name, r.Type, timestamp(models.Timestamp{Time: r.UpdatedAt}))
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerStyle
		case row >= 0 && row < len(rows) && !rows[row].Active:
			return dimStyle
		case col == 1:
			return activeStyle
		default:
			return cellStyle
		}
	})
	return t.String()
}

// Backups renders the backup fragment list.
func Backups(rows []modservice.BackupRow) string {
	if len(rows) == 0 {
		return Hint.Render("No backups.")
	}
	t := newTable("#", "Active?", "Name", "UUID")
	for _, r := range rows {
		number, active, name := "-", "-", "(not in registry)"
		if r.Known {
			number, active, name = strconv.Itoa(r.Number), yesNo(r.Active), r.Name
		}
		t.Row(number, active, name, r.UUID)
	}
	t.StyleFunc(func(row, _ int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		return cellStyle
	})
	return t.String()
}

// History renders journal entries.
func History(entries []journal.Entry) string {
	if len(entries) == 0 {
		return Hint.Render("No history.")
	}
	t := newTable("When", "Operation", "Outcome", "Mod", "Detail")
	for _, e := range entries {
		detail := e.Detail
		if e.Error != "" {
			detail = e.Error
		}
		t.Row(e.CreatedAt.Local().Format(models.TimestampLayout), e.Op, e.Outcome, e.ModName, detail)
	}
	t.StyleFunc(func(row, _ int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		return cellStyle
	})
	return t.String()
}

// InstallReport renders the summary printed after an install or update.
func InstallReport(r *modservice.InstallReport) []string {
	if r.Empty() {
		return []string{"Nothing to do."}
	}
	action := "installed"
	if r.Update {
		action = "updated files for"
	}

	lines := []string{Title.Render("===== INSTALL REPORT =====")}
	lines = append(lines, fmt.Sprintf("You %s %s.", action, countMods(len(r.Standard), "standard")))
	for _, m := range r.Standard {
		line := "-> " + m.Name
		if m.Inactive {
			line += " (inactive)"
		}
		lines = append(lines, line)
	}
	if !r.Update && len(r.Standard) > 0 {
		lines = append(lines, Hint.Render("Nothing left to do for these."))
	}

	lines = append(lines, "", fmt.Sprintf("You %s %s.", action, countMods(len(r.PakOnly), "pak-only")))
	for _, name := range r.PakOnly {
		lines = append(lines, "-> "+name)
	}
	if !r.Update && len(r.PakOnly) > 0 {
		lines = append(lines, Hint.Render("These mods need to be activated in the in-game mod manager."))
	}

	if len(r.Failed) > 0 {
		lines = append(lines, "", fmt.Sprintf("%s failed:", countMods(len(r.Failed), "")))
		for _, f := range r.Failed {
			lines = append(lines, fmt.Sprintf("-> %s: %v", f.Package, f.Err))
		}
	}
	return lines
}

func countMods(n int, kind string) string {
	noun := "mods"
	if n == 1 {
		noun = "mod"
	}
	if kind == "" {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %s %s", n, kind, noun)
}

// Result renders the outcome of a single operation.
func Result(res *engine.Result) []string {
	lines := []string{res.Message}
	if rep := res.Refresh; rep != nil {
		lines = append(lines, refreshLines("Imported from modsettings", rep.Imported)...)
		lines = append(lines, refreshLines("Marked inactive (removed externally)", rep.Disabled)...)
		lines = append(lines, refreshLines("Marked active (added externally)", rep.Enabled)...)
	}
	for _, w := range res.Warnings {
		lines = append(lines, "warning: "+w)
	}
	return lines
}

func refreshLines(title string, entries []*models.ModEntry) []string {
	if len(entries) == 0 {
		return nil
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = fmt.Sprintf("%d. %s", e.Number, e.Name)
	}
	return []string{title + ":", "  " + strings.Join(names, "\n  ")}
}
