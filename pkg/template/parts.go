package template

import (
	"github.com/vango-dev/elements/pkg/dom"
	"github.com/vango-dev/elements/pkg/reactive"
)

// slot holds the raw value of one interpolation point and, for reactive
// values, the effect that re-applies it.
type slot struct {
	view     *View
	apply    func(any)
	reactive bool

	bound  bool
	id     any
	effect *reactive.Effect
}

// set binds a new raw value. Unchanged values are ignored.
func (s *slot) set(raw any) {
	id := identity(raw)
	if s.bound && id == s.id {
		return
	}
	s.bound, s.id = true, id

	if s.effect != nil {
		s.effect.Dispose()
		s.effect = nil
	}

	if !s.reactive || !isReactive(raw) {
		s.apply(raw)
		return
	}
	reactive.WithOwner(s.view.owner, func() {
		s.effect = reactive.Watch(func() {
			value := read(raw)
			reactive.Untracked(func() { s.apply(value) })
		})
	})
}

// attrBinding writes an attribute or property composed of literal text and
// slot values.
type attrBinding struct {
	view     *View
	el       *dom.Node
	attr     skelAttr
	resolved map[int]any
}

func (b *attrBinding) whole() (any, bool) {
	if len(b.attr.pieces) == 1 && b.attr.pieces[0].slot >= 0 {
		return b.resolved[b.attr.pieces[0].slot], true
	}
	return nil, false
}

func (b *attrBinding) compose() string {
	var out []byte
	for _, p := range b.attr.pieces {
		if p.slot < 0 {
			out = append(out, p.text...)
			continue
		}
		out = append(out, stringify(b.resolved[p.slot])...)
	}
	return string(out)
}

func (b *attrBinding) commit() {
	if b.attr.kind == attrProperty {
		if v, ok := b.whole(); ok {
			b.el.SetProperty(b.attr.name, v)
			return
		}
		b.el.SetProperty(b.attr.name, b.compose())
		return
	}

	if v, ok := b.whole(); ok {
		switch x := v.(type) {
		case nil:
			b.el.RemoveAttribute(b.attr.name)
			return
		case bool:
			if !x {
				b.el.RemoveAttribute(b.attr.name)
				return
			}
			b.el.SetAttribute(b.attr.name, "")
			return
		}
	}
	value := b.compose()
	if current, ok := b.el.GetAttribute(b.attr.name); ok && current == value {
		return
	}
	b.el.SetAttribute(b.attr.name, value)
}

// eventBinding keeps one listener per event slot.
type eventBinding struct {
	el     *dom.Node
	typ    string
	remove func()
}

func (e *eventBinding) apply(v any) {
	if e.remove != nil {
		e.remove()
		e.remove = nil
	}
	if fn := handler(v); fn != nil {
		e.remove = e.el.AddEventListener(e.typ, fn)
	}
}

// contentPart is a content slot. It renders as a single text node, or as a
// nested view or keyed list followed by an anchor comment.
type contentPart struct {
	view   *View
	mode   SlotKind
	text   *dom.Node
	anchor *dom.Node
	sub    *View
	items  []*listItem
}

func newContentPart(v *View, parent *dom.Node) *contentPart {
	c := &contentPart{view: v, mode: SlotText}
	c.text = parent.AppendChild(v.doc.CreateTextNode(""))
	return c
}

// tail is the last node of the part; it is always in the tree.
func (c *contentPart) tail() *dom.Node {
	if c.mode == SlotText {
		return c.text
	}
	return c.anchor
}

func (c *contentPart) nodes() []*dom.Node {
	switch c.mode {
	case SlotNested:
		var out []*dom.Node
		if c.sub != nil {
			out = c.sub.Nodes()
		}
		return append(out, c.anchor)
	case SlotList:
		var out []*dom.Node
		for _, it := range c.items {
			out = append(out, it.view.Nodes()...)
		}
		return append(out, c.anchor)
	default:
		return []*dom.Node{c.text}
	}
}

func (c *contentPart) first() *dom.Node {
	if nodes := c.nodes(); len(nodes) > 0 {
		return nodes[0]
	}
	return c.tail()
}

func (c *contentPart) apply(v any) {
	switch x := v.(type) {
	case *Template:
		if x == nil {
			c.setText("")
			return
		}
		c.setNested(x)
	case []*Template:
		c.setList(x)
	default:
		c.setText(stringify(v))
	}
}

// switchMode replaces the part's nodes with an anchor or text node for the
// new mode, disposing what the old mode owned.
func (c *contentPart) switchMode(mode SlotKind) {
	if c.mode == mode {
		return
	}
	parent, ref := c.tail().Parent(), c.first()

	var tail *dom.Node
	if mode == SlotText {
		tail = c.view.doc.CreateTextNode("")
	} else {
		tail = c.view.doc.CreateComment("")
	}
	parent.InsertBefore(tail, ref)

	c.teardown()
	c.mode = mode
	if mode == SlotText {
		c.text, c.anchor = tail, nil
	} else {
		c.anchor, c.text = tail, nil
	}
}

func (c *contentPart) teardown() {
	switch c.mode {
	case SlotNested:
		if c.sub != nil {
			c.sub.Dispose()
			c.sub = nil
		}
		c.anchor.Remove()
	case SlotList:
		for _, it := range c.items {
			it.view.Dispose()
		}
		c.items = nil
		c.anchor.Remove()
	default:
		c.text.Remove()
	}
}

func (c *contentPart) setText(s string) {
	c.switchMode(SlotText)
	c.text.SetData(s)
}

func (c *contentPart) setNested(t *Template) {
	c.switchMode(SlotNested)
	if c.sub != nil && c.sub.t.sameShape(t) {
		if err := c.sub.Update(t); err != nil {
			c.view.opts.report(err)
		}
		return
	}

	old := c.sub
	sub, err := bindBefore(c.anchor.Parent(), c.anchor, t, c.view.opts, c.view.owner)
	if err != nil {
		c.view.opts.report(err)
		return
	}
	c.sub = sub
	if old != nil {
		old.Dispose()
	}
}
