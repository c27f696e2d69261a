// Package xmlres implements the compiled XML document model and the two
// passes that operate on it before it reaches the flattener:
// XmlReferenceLinker and NamespaceRemover.
package xmlres

import "github.com/ABC-KANG/abc-res-link/internal/restable"

// NamespaceDecl is one `xmlns:prefix="uri"` declaration attached to the
// element it was declared on.
type NamespaceDecl struct {
	Prefix string
	URI    string
}

// Attribute is one attribute on an Element. AttrRef, when non-nil, is a
// reference to the attr resource this attribute's name denotes (e.g.
// `android:layout_width` refers to `android:attr/layout_width`); it is
// resolved by the Linker to pick up the attr's id and the platform level
// it was introduced at; its type mask is not filled in. Value is the attribute's own
// content, which may itself be a reference.
type Attribute struct {
	Namespace string // URI, "" if unqualified
	Name      string
	AttrRef   *restable.Reference
	Value     restable.Value
	RawValue  string
}

func (a Attribute) clone() Attribute {
	cp := a
	if a.AttrRef != nil {
		r := *a.AttrRef
		cp.AttrRef = &r
	}
	if a.Value != nil {
		cp.Value = a.Value.Clone()
	}
	return cp
}

// NodeKind distinguishes an element node from a text node.
type NodeKind int

const (
	KindElement NodeKind = iota
	KindText
)

// Node is one child of an Element: either another Element or raw text.
type Node struct {
	Kind    NodeKind
	Element *Element
	Text    string
}

func (n Node) clone() Node {
	if n.Kind == KindElement {
		return Node{Kind: KindElement, Element: n.Element.Clone()}
	}
	return n
}

// Element is one compiled XML element: a namespace-qualified name, its
// namespace declarations, attributes, and children.
type Element struct {
	Namespace      string
	Name           string
	NamespaceDecls []NamespaceDecl
	Attributes     []Attribute
	Children       []Node

	Source restable.Source
}

// Clone returns a deep copy of e and everything beneath it.
func (e *Element) Clone() *Element {
	cp := &Element{
		Namespace: e.Namespace,
		Name:      e.Name,
		Source:    e.Source,
	}
	cp.NamespaceDecls = append([]NamespaceDecl(nil), e.NamespaceDecls...)
	cp.Attributes = make([]Attribute, len(e.Attributes))
	for i, a := range e.Attributes {
		cp.Attributes[i] = a.clone()
	}
	cp.Children = make([]Node, len(e.Children))
	for i, c := range e.Children {
		cp.Children[i] = c.clone()
	}
	return cp
}

// Find returns the first attribute matching namespace+name, or nil.
func (e *Element) Find(namespace, name string) *Attribute {
	for i := range e.Attributes {
		if e.Attributes[i].Namespace == namespace && e.Attributes[i].Name == name {
			return &e.Attributes[i]
		}
	}
	return nil
}

// Document is a whole compiled XML resource: one root element.
type Document struct {
	Root *Element
}

// Clone returns a deep copy of the document, used by the file-level
// AutoVersioner to synthesize a config variant sharing no state with the
// original.
func (d *Document) Clone() *Document {
	return &Document{Root: d.Root.Clone()}
}

// Walk invokes fn for every element in the document, pre-order.
func (d *Document) Walk(fn func(*Element)) {
	if d.Root == nil {
		return
	}
	var visit func(*Element)
	visit = func(e *Element) {
		fn(e)
		for _, c := range e.Children {
			if c.Kind == KindElement {
				visit(c.Element)
			}
		}
	}
	visit(d.Root)
}
