// Package registry implements the JSON mod registry: one entry per mod UUID,
// kept in file order so number ties resolve by insertion order.
package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/starford/modsync/internal/apperr"
	"github.com/starford/modsync/internal/models"
)

// FileName is the registry's name inside the data dir.
const FileName = "mod-data.json"

// Registry is an in-memory snapshot of the registry file. It is not safe
// for concurrent use; each operation loads its own snapshot.
type Registry struct {
	entries *orderedmap.OrderedMap[string, *models.ModEntry]
	now     func() time.Time
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		entries: orderedmap.New[string, *models.ModEntry](),
		now:     time.Now,
	}
}

// Parse decodes a registry file.
func Parse(data []byte) (*Registry, error) {
	r := New()
	if len(bytes.TrimSpace(data)) == 0 {
		return r, nil
	}
	if err := json.Unmarshal(data, r.entries); err != nil {
		return nil, fmt.Errorf("registry: decode: %w", err)
	}
	for pair := r.entries.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value == nil {
			return nil, fmt.Errorf("registry: decode: entry %q is null", pair.Key)
		}
		if pair.Value.UUID == "" {
			pair.Value.UUID = pair.Key
		}
	}
	return r, nil
}

// Encode renders the whole registry as indented JSON.
func (r *Registry) Encode() ([]byte, error) {
	compact, err := json.Marshal(r.entries)
	if err != nil {
		return nil, fmt.Errorf("registry: encode: %w", err)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, fmt.Errorf("registry: encode: %w", err)
	}
	return out.Bytes(), nil
}

// SetClock replaces the time source used for created_at/updated_at.
func (r *Registry) SetClock(now func() time.Time) {
	r.now = now
}

// Clone returns a deep copy sharing only the clock.
func (r *Registry) Clone() *Registry {
	c := &Registry{
		entries: orderedmap.New[string, *models.ModEntry](r.entries.Len()),
		now:     r.now,
	}
	for pair := r.entries.Oldest(); pair != nil; pair = pair.Next() {
		c.entries.Set(pair.Key, pair.Value.Clone())
	}
	return c
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	return r.entries.Len()
}

// Has reports whether uuid is registered.
func (r *Registry) Has(uuid string) bool {
	_, ok := r.entries.Get(uuid)
	return ok
}

// Get returns a copy of the entry for uuid.
func (r *Registry) Get(uuid string) (*models.ModEntry, bool) {
	e, ok := r.entries.Get(uuid)
	if !ok {
		return nil, false
	}
	return e.Clone(), true
}

// Number returns the order number of uuid.
func (r *Registry) Number(uuid string) (int, bool) {
	e, ok := r.entries.Get(uuid)
	if !ok {
		return 0, false
	}
	return e.Number, true
}

// Entries returns copies of every entry in file order.
func (r *Registry) Entries() []*models.ModEntry {
	out := make([]*models.ModEntry, 0, r.entries.Len())
	for pair := r.entries.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value.Clone())
	}
	return out
}

// Sorted returns copies of every entry ordered by number, ties in file order.
func (r *Registry) Sorted() []*models.ModEntry {
	out := r.Entries()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// ByNumber returns the first entry, in file order, carrying number.
func (r *Registry) ByNumber(number int) (*models.ModEntry, bool) {
	for pair := r.entries.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Number == number {
			return pair.Value.Clone(), true
		}
	}
	return nil, false
}

// MaxNumber returns the highest order number, or 0 when empty.
func (r *Registry) MaxNumber() int {
	max := 0
	for pair := r.entries.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Number > max {
			max = pair.Value.Number
		}
	}
	return max
}

// SetInstalled flips the install state of uuid.
func (r *Registry) SetInstalled(uuid string, installed bool) error {
	e, ok := r.entries.Get(uuid)
	if !ok {
		return fmt.Errorf("registry: set installed %s: %w", uuid, apperr.ErrUnknownUUID)
	}
	e.Installed = installed
	return nil
}

// TouchUpdated sets updated_at to now.
func (r *Registry) TouchUpdated(uuid string) error {
	e, ok := r.entries.Get(uuid)
	if !ok {
		return fmt.Errorf("registry: touch %s: %w", uuid, apperr.ErrUnknownUUID)
	}
	e.UpdatedAt = models.NewTimestamp(r.now())
	return nil
}

// SetNumber assigns a new order number to uuid.
func (r *Registry) SetNumber(uuid string, number int) error {
	e, ok := r.entries.Get(uuid)
	if !ok {
		return fmt.Errorf("registry: set number %s: %w", uuid, apperr.ErrUnknownUUID)
	}
	e.Number = number
	return nil
}

// AddStandardEntry registers an installed mod added by install, numbered
// one past the current maximum.
func (r *Registry) AddStandardEntry(uuid, name string) (*models.ModEntry, error) {
	return r.add(uuid, name, r.MaxNumber()+1, models.OriginStandard)
}

// AddDiscoveredEntry registers an installed mod found in the load-order
// document with a caller-chosen number.
func (r *Registry) AddDiscoveredEntry(uuid, name string, number int) (*models.ModEntry, error) {
	return r.add(uuid, name, number, models.OriginModsettings)
}

func (r *Registry) add(uuid, name string, number int, origin models.Origin) (*models.ModEntry, error) {
	if uuid == "" {
		return nil, fmt.Errorf("registry: add: empty uuid: %w", apperr.ErrInvalidInput)
	}
	if models.IsSentinel(uuid) {
		return nil, fmt.Errorf("registry: add %s: built-in entries are not registered: %w", uuid, apperr.ErrInvalidInput)
	}
	if number < 1 {
		return nil, fmt.Errorf("registry: add %s: number %d must be positive: %w", uuid, number, apperr.ErrInvalidInput)
	}
	now := models.NewTimestamp(r.now())
	e := &models.ModEntry{
		Installed: true,
		Name:      name,
		Origin:    origin,
		UUID:      uuid,
		Number:    number,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.entries.Set(uuid, e)
	return e.Clone(), nil
}
