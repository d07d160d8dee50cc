package loadorder

import (
	"bytes"
	"fmt"

	"github.com/beevik/etree"

	"github.com/starford/modsync/internal/apperr"
	"github.com/starford/modsync/internal/models"
)

// Entry is the attribute view of one load-order node.
type Entry struct {
	UUID          string
	Folder        string
	MD5           string
	Name          string
	Version64     string
	PublishHandle string
}

// Node is one entry element of the document or of a fragment.
type Node struct {
	el *etree.Element
}

// NewNode builds an entry node from package metadata.
func NewNode(meta models.PackageMetadata) Node {
	el := etree.NewElement("node")
	el.CreateAttr("id", entryNodeID)
	addAttribute(el, "Folder", "LSString", meta.Folder)
	addAttribute(el, "MD5", "LSString", meta.MD5)
	addAttribute(el, "Name", "LSString", meta.Name)
	addAttribute(el, "UUID", "guid", meta.UUID)
	addAttribute(el, "Version64", "int64", meta.Version)
	return Node{el: el}
}

func addAttribute(el *etree.Element, id, typ, value string) {
	a := el.CreateElement("attribute")
	a.CreateAttr("id", id)
	a.CreateAttr("type", typ)
	a.CreateAttr("value", value)
}

// Attr returns the value of the attribute child with the given id.
func (n Node) Attr(id string) (string, bool) {
	if n.el == nil {
		return "", false
	}
	a := n.el.FindElement("./attribute[@id='" + id + "']")
	if a == nil {
		return "", false
	}
	v := a.SelectAttr("value")
	if v == nil {
		return "", false
	}
	return v.Value, true
}

// Attributes returns every attribute child as id -> value.
func (n Node) Attributes() map[string]string {
	out := make(map[string]string)
	if n.el == nil {
		return out
	}
	for _, a := range n.el.SelectElements("attribute") {
		out[a.SelectAttrValue("id", "")] = a.SelectAttrValue("value", "")
	}
	return out
}

// UUID returns the entry's UUID attribute, or "".
func (n Node) UUID() string {
	v, _ := n.Attr("UUID")
	return v
}

// Entry returns the attribute view of n.
func (n Node) Entry() Entry {
	get := func(id string) string {
		v, _ := n.Attr(id)
		return v
	}
	return Entry{
		UUID:          get("UUID"),
		Folder:        get("Folder"),
		MD5:           get("MD5"),
		Name:          get("Name"),
		Version64:     get("Version64"),
		PublishHandle: get("PublishHandle"),
	}
}

// Fragment serializes n on its own, as stored in the backup directory.
func (n Node) Fragment() ([]byte, error) {
	frag := etree.NewDocument()
	frag.SetRoot(n.el.Copy())
	frag.Indent(indentSpaces)
	data, err := frag.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("loadorder: encode fragment: %w", err)
	}
	return data, nil
}

// ParseFragment decodes a backup fragment. The fragment must hold an entry
// node carrying a UUID attribute.
func ParseFragment(data []byte) (Node, error) {
	frag := etree.NewDocument()
	if err := frag.ReadFromBytes(bytes.TrimPrefix(data, utf8BOM)); err != nil {
		return Node{}, fmt.Errorf("loadorder: %w: %v", apperr.ErrMalformedBackup, err)
	}
	root := frag.Root()
	if root == nil {
		return Node{}, fmt.Errorf("loadorder: %w: empty fragment", apperr.ErrMalformedBackup)
	}
	el := root
	if !isEntryElement(root) {
		el = root.FindElement(".//node[@id='" + entryNodeID + "']")
	}
	if el == nil {
		return Node{}, fmt.Errorf("loadorder: %w: no %s node", apperr.ErrMalformedBackup, entryNodeID)
	}
	n := Node{el: el.Copy()}
	if n.UUID() == "" {
		return Node{}, fmt.Errorf("loadorder: %w: entry has no UUID attribute", apperr.ErrMalformedBackup)
	}
	return n, nil
}

func isEntryElement(el *etree.Element) bool {
	return el.Tag == "node" && el.SelectAttrValue("id", "") == entryNodeID
}
