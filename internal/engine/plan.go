package engine

import (
	"fmt"

	"github.com/starford/modsync/internal/apperr"
	"github.com/starford/modsync/internal/loadorder"
	"github.com/starford/modsync/internal/manifest"
	"github.com/starford/modsync/internal/models"
	"github.com/starford/modsync/internal/registry"
	"github.com/starford/modsync/internal/workspace"
)

// Plan computes the change op makes to the stores in s. It never writes
// and never modifies s; on error the change is nil.
func Plan(s *workspace.Snapshot, op Op) (*workspace.Change, *Result, error) {
	p := &planner{
		snap: s,
		reg:  s.Registry.Clone(),
		doc:  s.Document.Clone(),
		ch:   s.Change(),
		res:  &Result{Op: op.Name()},
	}
	var err error
	switch op := op.(type) {
	case Install:
		err = p.install(op)
	case Activate:
		err = p.activate(op)
	case Deactivate:
		err = p.deactivate(op)
	case Refresh:
		err = p.refresh()
	case Reorder:
		err = p.reorder(op)
	default:
		err = fmt.Errorf("engine: unsupported operation %T", op)
	}
	if err != nil {
		return nil, nil, err
	}
	return p.ch, p.res, nil
}

type planner struct {
	snap *workspace.Snapshot
	reg  *registry.Registry
	doc  *loadorder.Document
	ch   *workspace.Change
	res  *Result
}

func (p *planner) warn(format string, args ...any) {
	p.res.Warnings = append(p.res.Warnings, fmt.Sprintf(format, args...))
}

func (p *planner) outcome(o Outcome, format string, args ...any) {
	p.res.Outcome = o
	p.res.Message = fmt.Sprintf(format, args...)
}

func (p *planner) target(e *models.ModEntry) {
	p.res.UUID = e.UUID
	p.res.Name = e.Name
}

func (p *planner) registryChanged() { p.ch.Registry = p.reg }
func (p *planner) documentChanged() { p.ch.Document = p.doc }

func (p *planner) install(op Install) error {
	if op.Metadata == nil {
		p.outcome(Skipped, "no metadata, pak-only package")
		return nil
	}
	meta := *op.Metadata
	if err := manifest.Validate(&meta); err != nil {
		return fmt.Errorf("engine: install: %w", err)
	}
	if models.IsSentinel(meta.UUID) {
		return fmt.Errorf("engine: install %s: built-in entry: %w", meta.UUID, apperr.ErrInvalidMetadata)
	}
	p.res.UUID, p.res.Name = meta.UUID, meta.Name

	existing, registered := p.reg.Get(meta.UUID)
	if op.Update && registered {
		if !existing.Installed {
			p.res.Inactive = true
			p.outcome(Skipped, "mod %q is inactive, files updated only", meta.Name)
			return nil
		}
		if err := p.reg.TouchUpdated(meta.UUID); err != nil {
			return err
		}
		p.registryChanged()
		p.outcome(Applied, "updated mod %q", meta.Name)
		return nil
	}
	if registered && existing.Installed {
		p.outcome(AlreadyInState, "mod %q is marked as installed", meta.Name)
		return nil
	}

	if registered {
		if err := p.reg.SetInstalled(meta.UUID, true); err != nil {
			return err
		}
	} else if _, err := p.reg.AddStandardEntry(meta.UUID, meta.Name); err != nil {
		return fmt.Errorf("engine: install: %w", err)
	}
	p.registryChanged()

	if p.doc.Has(meta.UUID) {
		p.warn("mod entry %s already exists in %s", meta.UUID, loadorder.FileName)
	} else {
		p.doc.InsertSorted(loadorder.NewNode(meta), p.reg.Number)
		p.documentChanged()
	}
	p.outcome(Applied, "installed mod %q", meta.Name)
	return nil
}

func (p *planner) resolve(number int) (*models.ModEntry, error) {
	e, ok := p.reg.ByNumber(number)
	if !ok {
		return nil, fmt.Errorf("engine: no mod with number %d: %w", number, apperr.ErrModNotFound)
	}
	p.target(e)
	return e, nil
}

func (p *planner) activate(op Activate) error {
	e, err := p.resolve(op.Number)
	if err != nil {
		return err
	}
	if e.Installed {
		p.outcome(AlreadyInState, "mod %q is already active", e.Name)
		return nil
	}

	data, ok, err := p.snap.Backups.Read(e.UUID)
	if err != nil {
		return fmt.Errorf("engine: read backup %s: %w", e.UUID, err)
	}
	if !ok {
		return fmt.Errorf("engine: activate %q: %w", e.Name, apperr.ErrMissingBackup)
	}
	node, err := loadorder.ParseFragment(data)
	if err != nil {
		return fmt.Errorf("engine: activate %q: %w", e.Name, err)
	}
	if node.UUID() != e.UUID {
		return fmt.Errorf("engine: activate %q: fragment is for %s: %w", e.Name, node.UUID(), apperr.ErrMalformedBackup)
	}

	if p.doc.Has(e.UUID) {
		p.warn("mod entry %s already exists in %s", e.UUID, loadorder.FileName)
	} else {
		p.doc.InsertSorted(node, p.reg.Number)
		p.documentChanged()
	}
	if err := p.reg.SetInstalled(e.UUID, true); err != nil {
		return err
	}
	p.registryChanged()
	p.outcome(Applied, "activated mod %q", e.Name)
	return nil
}

func (p *planner) deactivate(op Deactivate) error {
	e, err := p.resolve(op.Number)
	if err != nil {
		return err
	}
	if !e.Installed {
		p.outcome(AlreadyInState, "mod %q is already inactive", e.Name)
		return nil
	}

	node, ok := p.doc.FindByUUID(e.UUID)
	if !ok {
		return fmt.Errorf("engine: deactivate %q: %w", e.Name, apperr.ErrEntryNotFound)
	}
	frag, err := node.Fragment()
	if err != nil {
		return err
	}
	if err := p.doc.Remove(e.UUID); err != nil {
		return err
	}
	if err := p.reg.SetInstalled(e.UUID, false); err != nil {
		return err
	}
	p.ch.Backups = append(p.ch.Backups, workspace.Fragment{UUID: e.UUID, Data: frag})
	p.registryChanged()
	p.documentChanged()
	p.outcome(Applied, "deactivated mod %q", e.Name)
	return nil
}

func (p *planner) refresh() error {
	report := &RefreshReport{}
	p.res.Refresh = report

	for _, n := range p.doc.Nodes() {
		uuid := n.UUID()
		if uuid == "" {
			p.warn("entry %q in %s has no UUID, skipped", n.Entry().Name, loadorder.FileName)
			continue
		}
		if models.IsSentinel(uuid) || p.reg.Has(uuid) {
			continue
		}
		name := n.Entry().Name
		e, err := p.reg.AddDiscoveredEntry(uuid, name, p.reg.MaxNumber()+1)
		if err != nil {
			return fmt.Errorf("engine: refresh: %w", err)
		}
		report.Imported = append(report.Imported, e)
	}

	present := p.doc.UUIDs()
	for _, e := range p.reg.Entries() {
		if _, ok := present[e.UUID]; e.Installed && !ok {
			if err := p.reg.SetInstalled(e.UUID, false); err != nil {
				return err
			}
			e.Installed = false
			report.Disabled = append(report.Disabled, e)
		}
	}
	for _, e := range p.reg.Entries() {
		if _, ok := present[e.UUID]; !e.Installed && ok {
			if err := p.reg.SetInstalled(e.UUID, true); err != nil {
				return err
			}
			e.Installed = true
			report.Enabled = append(report.Enabled, e)
		}
	}

	if report.Changes() == 0 {
		p.outcome(AlreadyInState, "registry matches %s", loadorder.FileName)
		return nil
	}
	p.registryChanged()
	p.outcome(Applied, "imported %d, disabled %d, enabled %d", len(report.Imported), len(report.Disabled), len(report.Enabled))
	return nil
}
