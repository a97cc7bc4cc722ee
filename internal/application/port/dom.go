package port

// Document is a host chrome document.
type Document interface {
	// Root is the document element.
	Root() Element
	// ElementByID returns nil when no element has the id.
	ElementByID(id string) Element
	// CreateElement creates a detached element.
	CreateElement(tag string) Element
}

// Element is a node of a chrome document.
type Element interface {
	ID() string
	Tag() string
	// Parent returns nil for the root and for detached elements.
	Parent() Element
	Children() []Element

	Attribute(name string) (string, bool)
	SetAttribute(name, value string)
	RemoveAttribute(name string)

	// Value is the displayed text of labels and textboxes.
	Value() string
	SetValue(value string)

	AppendChild(child Element)
	// InsertAfter inserts child right after ref, which must be a child of
	// this element; child is appended when ref is the last child.
	InsertAfter(child, ref Element)
	// Remove detaches the element from its parent.
	Remove()
}
