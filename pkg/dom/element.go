package dom

import (
	"runtime/debug"
	"sort"
	"strings"
)

// GetAttribute returns the attribute value and whether it is present.
func (n *Node) GetAttribute(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasAttribute reports whether the attribute is present.
func (n *Node) HasAttribute(name string) bool {
	_, ok := n.GetAttribute(name)
	return ok
}

// Attributes returns a copy of the element's attributes in insertion order.
func (n *Node) Attributes() []Attribute {
	out := make([]Attribute, len(n.attrs))
	copy(out, n.attrs)
	return out
}

// SetAttribute sets an attribute. Observed attributes of an upgraded custom
// element trigger its AttributeChanged callback, even when the value did
// not change, matching platform behavior.
func (n *Node) SetAttribute(name, value string) {
	n.doc.task(func() { n.setAttribute(name, value) })
}

// RemoveAttribute removes an attribute. Observed attributes report the
// removal as a change to the empty string.
func (n *Node) RemoveAttribute(name string) {
	n.doc.task(func() { n.removeAttribute(name) })
}

// ToggleAttribute adds or removes a boolean attribute.
func (n *Node) ToggleAttribute(name string, on bool) {
	if on {
		n.SetAttribute(name, "")
	} else {
		n.RemoveAttribute(name)
	}
}

func (n *Node) setAttribute(name, value string) {
	name = strings.ToLower(name)
	old, had := "", false
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			old, had = n.attrs[i].Value, true
			n.attrs[i].Value = value
			break
		}
	}
	if !had {
		n.attrs = append(n.attrs, Attribute{Name: name, Value: value})
	}
	if !had || old != value {
		n.doc.record(Mutation{Op: MutationSetAttr, Target: n.id, Key: name, Value: value})
	}
	n.attributeChanged(name, old, value)
}

func (n *Node) removeAttribute(name string) {
	name = strings.ToLower(name)
	for i, a := range n.attrs {
		if a.Name == name {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			n.doc.record(Mutation{Op: MutationRemoveAttr, Target: n.id, Key: name})
			n.attributeChanged(name, a.Value, "")
			return
		}
	}
}

func (n *Node) attributeChanged(name, old, value string) {
	if n.def == nil || !observes(n.def, name) {
		return
	}
	n.doc.guard("attributeChangedCallback", n, func() {
		n.def.AttributeChanged(n, name, old, value)
	})
}

func observes(def CustomElementDefinition, name string) bool {
	for _, a := range def.ObservedAttributes() {
		if a == name {
			return true
		}
	}
	return false
}

// PropertyAccessor backs an element property with custom get/set logic.
type PropertyAccessor struct {
	Get func() any
	Set func(any) // nil makes the property read-only
}

// DefineProperty installs an accessor. If a plain value was set for the
// property before (e.g. before upgrade), it is removed and returned so the
// caller can apply it through the accessor.
func (n *Node) DefineProperty(name string, acc PropertyAccessor) (prev any, had bool) {
	if n.accessors == nil {
		n.accessors = make(map[string]PropertyAccessor)
	}
	n.accessors[name] = acc
	if v, ok := n.props[name]; ok {
		delete(n.props, name)
		return v, true
	}
	return nil, false
}

// DeleteProperty removes an accessor or plain property.
func (n *Node) DeleteProperty(name string) {
	delete(n.accessors, name)
	delete(n.props, name)
}

// SetProperty writes a property. Accessor-backed properties route to the
// accessor's setter; read-only accessors ignore the write.
func (n *Node) SetProperty(name string, value any) {
	n.doc.task(func() {
		if acc, ok := n.accessors[name]; ok {
			if acc.Set != nil {
				n.doc.guard("property setter", n, func() { acc.Set(value) })
			}
			return
		}
		if n.props == nil {
			n.props = make(map[string]any)
		}
		n.props[name] = value
	})
}

// Property reads a property.
func (n *Node) Property(name string) any {
	if acc, ok := n.accessors[name]; ok {
		if acc.Get == nil {
			return nil
		}
		return acc.Get()
	}
	return n.props[name]
}

// PropertyNames returns the names of all properties, sorted.
func (n *Node) PropertyNames() []string {
	names := make([]string, 0, len(n.accessors)+len(n.props))
	for k := range n.accessors {
		names = append(names, k)
	}
	for k := range n.props {
		if _, dup := n.accessors[k]; !dup {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}

// guard runs fn and converts a panic into a logged error so one element's
// failure does not abort the surrounding host operation.
func (d *Document) guard(where string, n *Node, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("dom: callback panicked",
				"callback", where,
				"tag", n.tag,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}
