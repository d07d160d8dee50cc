package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/starford/modsync/internal/apperr"
	"github.com/starford/modsync/internal/models"
)

// PlacementKind says where Reorder puts the selected mods.
type PlacementKind int

const (
	PlaceBeginning PlacementKind = iota
	PlaceEnd
	PlaceAfter
	PlaceCancel
)

// Placement is a PlacementKind plus, for PlaceAfter, the number of the
// mod the selection goes after.
type Placement struct {
	Kind   PlacementKind
	Target int
}

func (p Placement) String() string {
	switch p.Kind {
	case PlaceBeginning:
		return "b"
	case PlaceEnd:
		return "e"
	case PlaceAfter:
		return "a " + strconv.Itoa(p.Target)
	default:
		return "c"
	}
}

var (
	selectionRe = regexp.MustCompile(`^\d+\s*(,\s*\d+\s*)*$`)
	afterRe     = regexp.MustCompile(`^a\s*(\d+)$`)
)

// ParseSelection parses a comma-separated list of order numbers such as
// "1, 4,5". Duplicates are dropped, input order is kept.
func ParseSelection(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if !selectionRe.MatchString(s) {
		return nil, fmt.Errorf("selection %q must be comma-separated numbers: %w", s, apperr.ErrInvalidInput)
	}
	seen := make(map[int]bool)
	var out []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("selection %q: %w", s, apperr.ErrInvalidInput)
		}
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out, nil
}

// ParsePlacement parses "b", "e", "a N" or "c".
func ParsePlacement(s string) (Placement, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "b":
		return Placement{Kind: PlaceBeginning}, nil
	case "e":
		return Placement{Kind: PlaceEnd}, nil
	case "c":
		return Placement{Kind: PlaceCancel}, nil
	}
	if m := afterRe.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return Placement{Kind: PlaceAfter, Target: n}, nil
		}
	}
	return Placement{}, fmt.Errorf("placement %q must be b, e, a N or c: %w", s, apperr.ErrInvalidInput)
}

func (p *planner) reorder(op Reorder) error {
	wanted := make(map[int]bool, len(op.Selected))
	for _, n := range op.Selected {
		wanted[n] = true
	}

	var selected, remaining []*models.ModEntry
	matched := make(map[int]bool)
	for _, e := range p.reg.Sorted() {
		if wanted[e.Number] {
			selected = append(selected, e)
			matched[e.Number] = true
		} else {
			remaining = append(remaining, e)
		}
	}
	if len(selected) == 0 {
		p.outcome(Skipped, "no mods match the selection")
		return nil
	}
	for _, n := range op.Selected {
		if !matched[n] {
			p.warn("no mod with number %d", n)
		}
	}

	var sequence []*models.ModEntry
	switch op.Placement.Kind {
	case PlaceCancel:
		p.outcome(Cancelled, "reorder cancelled")
		return nil
	case PlaceBeginning:
		sequence = append(append(sequence, selected...), remaining...)
	case PlaceEnd:
		sequence = append(append(sequence, remaining...), selected...)
	case PlaceAfter:
		target := op.Placement.Target
		if matched[target] {
			return fmt.Errorf("engine: reorder: target %d is part of the selection: %w", target, apperr.ErrInvalidTarget)
		}
		at := -1
		for i, e := range remaining {
			if e.Number == target {
				at = i
				break
			}
		}
		if at < 0 {
			return fmt.Errorf("engine: reorder: no mod with number %d: %w", target, apperr.ErrModNotFound)
		}
		sequence = append(sequence, remaining[:at+1]...)
		sequence = append(sequence, selected...)
		sequence = append(sequence, remaining[at+1:]...)
	default:
		return fmt.Errorf("engine: reorder: unknown placement %d: %w", op.Placement.Kind, apperr.ErrInvalidInput)
	}

	for i, e := range sequence {
		if err := p.reg.SetNumber(e.UUID, i+1); err != nil {
			return err
		}
	}
	p.doc.Sort(p.reg.Number)
	p.registryChanged()
	p.documentChanged()

	names := make([]string, len(selected))
	for i, e := range selected {
		names[i] = e.Name
	}
	p.outcome(Applied, "moved %s (%s)", strings.Join(names, ", "), op.Placement)
	return nil
}
