// Package loadorder reads and rewrites the game's load-order document
// (modsettings.lsx) and the single-entry fragments cut from it.
package loadorder

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/beevik/etree"

	"github.com/starford/modsync/internal/apperr"
	"github.com/starford/modsync/internal/models"
)

const (
	// FileName is the document's name inside the profile directory.
	FileName = "modsettings.lsx"
	// BackupSuffix names the one-time pristine copy of the document.
	BackupSuffix = ".bak"

	modsChildrenPath = "./save/region/node[@id='root']/children/node[@id='Mods']/children"
	entryNodeID      = "ModuleShortDesc"
	indentSpaces     = 2
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Document is an in-memory snapshot of the load-order document. Everything
// outside the Mods list is carried through untouched.
type Document struct {
	doc  *etree.Document
	mods *etree.Element
}

// Parse decodes a load-order document.
func Parse(data []byte) (*Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(bytes.TrimPrefix(data, utf8BOM)); err != nil {
		return nil, fmt.Errorf("loadorder: %w: %v", apperr.ErrMalformedDocument, err)
	}
	return wrap(doc)
}

func wrap(doc *etree.Document) (*Document, error) {
	mods := doc.FindElement(modsChildrenPath)
	if mods == nil {
		return nil, fmt.Errorf("loadorder: %w: no Mods children list", apperr.ErrMalformedDocument)
	}
	return &Document{doc: doc, mods: mods}, nil
}

// Clone returns an independent deep copy.
func (d *Document) Clone() *Document {
	c, err := wrap(d.doc.Copy())
	if err != nil {
		// The copy has the same shape as d, which was validated on parse.
		panic(err)
	}
	return c
}

// Encode serializes the whole document with normalized indentation.
func (d *Document) Encode() ([]byte, error) {
	out := d.doc.Copy()
	out.Indent(indentSpaces)
	data, err := out.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("loadorder: encode: %w", err)
	}
	return data, nil
}

// Nodes returns the entries in document order, foreign entries included.
func (d *Document) Nodes() []Node {
	var out []Node
	for _, el := range d.mods.ChildElements() {
		if el.Tag != "node" {
			continue
		}
		out = append(out, Node{el: el})
	}
	return out
}

// Entries returns the attribute view of every entry in document order.
func (d *Document) Entries() []Entry {
	nodes := d.Nodes()
	out := make([]Entry, len(nodes))
	for i, n := range nodes {
		out[i] = n.Entry()
	}
	return out
}

// FindByUUID returns the first entry carrying uuid.
func (d *Document) FindByUUID(uuid string) (Node, bool) {
	if uuid == "" {
		return Node{}, false
	}
	for _, n := range d.Nodes() {
		if n.UUID() == uuid {
			return n, true
		}
	}
	return Node{}, false
}

// Has reports whether an entry carries uuid.
func (d *Document) Has(uuid string) bool {
	_, ok := d.FindByUUID(uuid)
	return ok
}

// UUIDs returns the set of UUIDs present in the document.
func (d *Document) UUIDs() map[string]struct{} {
	out := make(map[string]struct{})
	for _, n := range d.Nodes() {
		if u := n.UUID(); u != "" {
			out[u] = struct{}{}
		}
	}
	return out
}

// InsertSorted appends n and re-sorts the whole list with numberOf so every
// existing entry lands at its registry position, not just the new one.
func (d *Document) InsertSorted(n Node, numberOf NumberFunc) {
	d.mods.AddChild(n.el)
	d.Sort(numberOf)
}

// Remove deletes the entry carrying uuid.
func (d *Document) Remove(uuid string) error {
	n, ok := d.FindByUUID(uuid)
	if !ok {
		return fmt.Errorf("loadorder: remove %s: %w", uuid, apperr.ErrEntryNotFound)
	}
	d.mods.RemoveChild(n.el)
	return nil
}

// replaceChildren rewrites the Mods list with nodes, in the given order.
func (d *Document) replaceChildren(nodes []Node) {
	for _, el := range d.mods.ChildElements() {
		d.mods.RemoveChild(el)
	}
	for _, n := range nodes {
		d.mods.AddChild(n.el)
	}
}

// Sort reorders the Mods list with the load-order comparator.
func (d *Document) Sort(numberOf NumberFunc) {
	nodes := d.Nodes()
	sort.SliceStable(nodes, func(i, j int) bool {
		return Less(nodes[i].UUID(), nodes[j].UUID(), numberOf)
	})
	d.replaceChildren(nodes)
}

// NumberFunc resolves a UUID to its registry order number.
type NumberFunc func(uuid string) (int, bool)

// Less is the load-order comparator. Built-in entries come first; every
// other entry sorts by its registry number, with unregistered entries
// treated as 0 so they stay ahead of every numbered mod.
func Less(a, b string, numberOf NumberFunc) bool {
	ca, na := sortKey(a, numberOf)
	cb, nb := sortKey(b, numberOf)
	if ca != cb {
		return ca < cb
	}
	return na < nb
}

func sortKey(uuid string, numberOf NumberFunc) (class, number int) {
	if models.IsSentinel(uuid) {
		return 0, 0
	}
	if n, ok := numberOf(uuid); ok {
		return 1, n
	}
	return 1, 0
}
