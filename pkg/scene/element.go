// Package scene provides the SVG scene-graph abstraction the input engine
// routes events against: group and path elements with classes, attributes,
// affine transforms, and rasterized snapshots for debugging.
package scene

import (
	"fmt"
	"slices"
	"sync/atomic"
)

var nextElementID atomic.Int64

// Element is a node in the scene graph. Group elements carry children;
// path elements carry path geometry.
type Element struct {
	id       int64
	tag      string
	classes  []string
	attrs    map[string]string
	parent   *Element
	children []*Element
	xform    Transform
	path     *Path
}

func newElement(tag string) *Element {
	return &Element{
		id:    nextElementID.Add(1),
		tag:   tag,
		attrs: make(map[string]string),
		xform: Identity(),
	}
}

// NewSVG creates a root svg element.
func NewSVG() *Element {
	return newElement("svg")
}

// NewGroup creates a group (g) element.
func NewGroup() *Element {
	return newElement("g")
}

// NewPath creates a path element with empty geometry.
func NewPath() *Element {
	e := newElement("path")
	e.path = &Path{}
	return e
}

// ID returns the process-unique identity of the element.
func (e *Element) ID() int64 {
	return e.id
}

// Tag returns the element's tag name.
func (e *Element) Tag() string {
	return e.tag
}

// Parent returns the element's parent, or nil at the root.
func (e *Element) Parent() *Element {
	return e.parent
}

// Children returns the element's children in document order.
func (e *Element) Children() []*Element {
	return e.children
}

// AppendChild adds child as the last child of e, detaching it from any
// previous parent.
func (e *Element) AppendChild(child *Element) {
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	child.parent = e
	e.children = append(e.children, child)
}

// RemoveChild detaches child from e. Unknown children are ignored.
func (e *Element) RemoveChild(child *Element) {
	for i, c := range e.children {
		if c == child {
			e.children = append(e.children[:i], e.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// Remove detaches e from its parent, if any.
func (e *Element) Remove() {
	if e.parent != nil {
		e.parent.RemoveChild(e)
	}
}

// Ancestors returns the parent chain from e's parent up to the root.
func (e *Element) Ancestors() []*Element {
	var chain []*Element
	for p := e.parent; p != nil; p = p.parent {
		chain = append(chain, p)
	}
	return chain
}

// SetAttribute sets a string attribute on the element.
func (e *Element) SetAttribute(name, value string) {
	e.attrs[name] = value
}

// Attribute returns the named attribute, or "" when unset.
func (e *Element) Attribute(name string) string {
	return e.attrs[name]
}

// RemoveAttribute clears the named attribute.
func (e *Element) RemoveAttribute(name string) {
	delete(e.attrs, name)
}

// AddClass appends a class name if not already present.
func (e *Element) AddClass(name string) {
	if name == "" || e.HasClass(name) {
		return
	}
	e.classes = append(e.classes, name)
}

// RemoveClass removes a class name if present.
func (e *Element) RemoveClass(name string) {
	if i := slices.Index(e.classes, name); i >= 0 {
		e.classes = append(e.classes[:i], e.classes[i+1:]...)
	}
}

// HasClass reports whether the element carries the class name.
func (e *Element) HasClass(name string) bool {
	return slices.Contains(e.classes, name)
}

// Classes returns the element's class list.
func (e *Element) Classes() []string {
	return e.classes
}

// SetTransform replaces the element's local transform.
func (e *Element) SetTransform(t Transform) {
	e.xform = t
}

// Transform returns the element's local transform.
func (e *Element) Transform() Transform {
	return e.xform
}

// Path returns the element's path geometry, or nil for non-path elements.
func (e *Element) Path() *Path {
	return e.path
}

// SetPath replaces the element's path geometry and is only valid on path
// elements.
func (e *Element) SetPath(p *Path) {
	e.path = p
}

// String returns a short description for logs.
func (e *Element) String() string {
	return fmt.Sprintf("<%s #%d>", e.tag, e.id)
}

// Walk visits e and all descendants in document order. Returning false from
// visit stops the walk.
func (e *Element) Walk(visit func(*Element) bool) bool {
	if !visit(e) {
		return false
	}
	for _, c := range e.children {
		if !c.Walk(visit) {
			return false
		}
	}
	return true
}

// FindByClass returns all descendant elements (including e) bearing the
// class name, in document order.
func (e *Element) FindByClass(name string) []*Element {
	var found []*Element
	e.Walk(func(el *Element) bool {
		if el.HasClass(name) {
			found = append(found, el)
		}
		return true
	})
	return found
}
