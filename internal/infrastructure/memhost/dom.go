package memhost

import (
	"slices"

	"github.com/bnema/pagetitle/internal/application/port"
)

// Document is an in-memory chrome document.
type Document struct {
	root *Element
}

var _ port.Document = (*Document)(nil)

func newDocument(rootTag string) *Document {
	d := &Document{}
	d.root = &Element{doc: d, tag: rootTag, attrs: map[string]string{}}
	return d
}

// Root implements port.Document.
func (d *Document) Root() port.Element {
	return d.root
}

// RootElement is Root with the concrete type.
func (d *Document) RootElement() *Element {
	return d.root
}

// ElementByID implements port.Document. Only elements attached to the tree
// are found.
func (d *Document) ElementByID(id string) port.Element {
	if el := d.Find(id); el != nil {
		return el
	}
	return nil
}

// Find is ElementByID with the concrete type.
func (d *Document) Find(id string) *Element {
	if id == "" {
		return nil
	}
	var found *Element
	d.root.walk(func(el *Element) bool {
		if el.id == id {
			found = el
			return false
		}
		return true
	})
	return found
}

// CreateElement implements port.Document.
func (d *Document) CreateElement(tag string) port.Element {
	return d.NewElement(tag, "")
}

// NewElement creates a detached element with an id.
func (d *Document) NewElement(tag, id string) *Element {
	return &Element{doc: d, tag: tag, id: id, attrs: map[string]string{}}
}

// Element is a node of a Document.
type Element struct {
	doc      *Document
	tag      string
	id       string
	value    string
	attrs    map[string]string
	parent   *Element
	children []*Element
}

var _ port.Element = (*Element)(nil)

// ID implements port.Element.
func (e *Element) ID() string { return e.id }

// Tag implements port.Element.
func (e *Element) Tag() string { return e.tag }

// Parent implements port.Element.
func (e *Element) Parent() port.Element {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

// Children implements port.Element.
func (e *Element) Children() []port.Element {
	out := make([]port.Element, len(e.children))
	for i, c := range e.children {
		out[i] = c
	}
	return out
}

// Attribute implements port.Element. The "id" attribute mirrors ID.
func (e *Element) Attribute(name string) (string, bool) {
	if name == "id" {
		return e.id, e.id != ""
	}
	v, ok := e.attrs[name]
	return v, ok
}

// SetAttribute implements port.Element.
func (e *Element) SetAttribute(name, value string) {
	if name == "id" {
		e.id = value
		return
	}
	e.attrs[name] = value
}

// RemoveAttribute implements port.Element.
func (e *Element) RemoveAttribute(name string) {
	if name == "id" {
		e.id = ""
		return
	}
	delete(e.attrs, name)
}

// Value implements port.Element.
func (e *Element) Value() string { return e.value }

// SetValue implements port.Element.
func (e *Element) SetValue(value string) { e.value = value }

// AppendChild implements port.Element.
func (e *Element) AppendChild(child port.Element) {
	c := child.(*Element)
	c.detach()
	c.parent = e
	e.children = append(e.children, c)
}

// InsertAfter implements port.Element.
func (e *Element) InsertAfter(child, ref port.Element) {
	c := child.(*Element)
	r, _ := ref.(*Element)
	c.detach()

	idx := slices.Index(e.children, r)
	if r == nil || idx < 0 {
		c.parent = e
		e.children = append(e.children, c)
		return
	}
	c.parent = e
	e.children = slices.Insert(e.children, idx+1, c)
}

// Remove implements port.Element.
func (e *Element) Remove() {
	e.detach()
}

// Attached reports whether e is reachable from its document root.
func (e *Element) Attached() bool {
	for n := e; n != nil; n = n.parent {
		if n == e.doc.root {
			return true
		}
	}
	return false
}

// Attrs returns a copy of the element's attributes.
func (e *Element) Attrs() map[string]string {
	out := make(map[string]string, len(e.attrs))
	for k, v := range e.attrs {
		out[k] = v
	}
	return out
}

func (e *Element) detach() {
	if e.parent == nil {
		return
	}
	p := e.parent
	if idx := slices.Index(p.children, e); idx >= 0 {
		p.children = slices.Delete(p.children, idx, idx+1)
	}
	e.parent = nil
}

// walk visits e and its descendants depth first until fn returns false.
func (e *Element) walk(fn func(*Element) bool) bool {
	if !fn(e) {
		return false
	}
	for _, c := range e.children {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}
