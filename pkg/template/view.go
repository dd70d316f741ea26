package template

import (
	"log/slog"
	"strings"

	"github.com/vango-dev/elements/internal/errors"
	"github.com/vango-dev/elements/pkg/dom"
	"github.com/vango-dev/elements/pkg/reactive"
)

// Options configures Bind.
type Options struct {
	// OnError receives binding errors such as unresolved custom element
	// tags. Defaults to logging them.
	OnError func(error)

	// Logger is used when OnError is nil. Defaults to slog.Default().
	Logger *slog.Logger

	// Owner becomes the parent of the view's owner. Defaults to the
	// current owner.
	Owner *reactive.Owner
}

func (o Options) report(err error) {
	if o.OnError != nil {
		o.OnError(err)
		return
	}
	o.logger().Warn("template: binding error", "error", err)
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// View is a template bound into a dom tree. Every reactive slot is patched
// in place by its own effect; the view owns those effects.
type View struct {
	t      *Template
	doc    *dom.Document
	scope  *dom.Node
	owner  *reactive.Owner
	opts   Options
	roots  []rootEntry
	slots  []*slot
	attrs  []*attrBinding
	errors []error

	building bool
	disposed bool
}

// rootEntry is a top-level node or a top-level content slot.
type rootEntry struct {
	node    *dom.Node
	content *contentPart
}

// Bind renders t and appends it to parent.
func Bind(parent *dom.Node, t *Template, opts Options) (*View, error) {
	return bindBefore(parent, nil, t, opts, opts.Owner)
}

func bindBefore(parent, ref *dom.Node, t *Template, opts Options, owner *reactive.Owner) (*View, error) {
	if t == nil {
		t = HTML("")
	}
	if t.err != nil {
		return nil, t.err
	}
	if owner == nil {
		owner = reactive.CurrentOwner()
	}

	doc := parent.OwnerDocument()
	if doc == nil {
		doc = parent.Root().OwnerDocument()
	}
	v := &View{
		t:     t,
		doc:   doc,
		scope: parent,
		owner: reactive.NewOwner(owner),
		opts:  opts,
		slots: make([]*slot, len(t.values)),
	}

	frag := doc.CreateDocumentFragment()
	v.building = true
	reactive.WithOwner(v.owner, func() {
		reactive.Untracked(func() {
			for _, n := range t.skel.roots {
				node, content := v.build(frag, n, true)
				v.roots = append(v.roots, rootEntry{node: node, content: content})
			}
		})
	})
	v.building = false
	for _, a := range v.attrs {
		a.commit()
	}

	parent.InsertBefore(frag, ref)
	return v, nil
}

// build creates the dom node for n under parent and binds its slots.
func (v *View) build(parent *dom.Node, n *skelNode, root bool) (*dom.Node, *contentPart) {
	switch n.kind {
	case skelText:
		return parent.AppendChild(v.doc.CreateTextNode(n.text)), nil

	case skelComment:
		return parent.AppendChild(v.doc.CreateComment(n.text)), nil

	case skelSlot:
		c := newContentPart(v, parent)
		v.bindSlot(n.slot, c.apply, true)
		return nil, c
	}

	el := v.doc.CreateElementIn(v.scope, n.tag)
	if strings.Contains(n.tag, "-") && !el.Defined() {
		err := errors.New(errors.ErrUnresolvedTag.Code).WithDetailf("<%s> is not defined in scope", n.tag)
		v.errors = append(v.errors, err)
		v.opts.report(err)
	}

	for _, a := range n.attrs {
		if root && a.name == "key" && a.kind != attrEvent && a.kind != attrProperty {
			continue
		}
		v.bindAttr(el, a)
	}

	for _, c := range n.children {
		v.build(el, c, false)
	}
	return parent.AppendChild(el), nil
}

func (v *View) bindAttr(el *dom.Node, a skelAttr) {
	switch a.kind {
	case attrStatic:
		el.SetAttribute(a.name, a.literal())

	case attrEvent:
		ev := &eventBinding{el: el, typ: a.name}
		v.bindSlot(a.pieces[0].slot, ev.apply, false)

	case attrDynamic, attrProperty:
		b := &attrBinding{view: v, el: el, attr: a, resolved: make(map[int]any)}
		if a.kind == attrDynamic {
			v.attrs = append(v.attrs, b)
		}
		for _, p := range a.pieces {
			if p.slot < 0 {
				continue
			}
			slotIndex := p.slot
			v.bindSlot(slotIndex, func(value any) {
				b.resolved[slotIndex] = value
				if a.kind == attrProperty || !v.building {
					b.commit()
				}
			}, true)
		}
		if a.kind == attrProperty && len(a.pieces) == 1 && a.pieces[0].slot < 0 {
			b.commit()
		}
	}
}

func (v *View) bindSlot(i int, apply func(any), reactiveValue bool) {
	s := &slot{view: v, apply: apply, reactive: reactiveValue}
	v.slots[i] = s
	s.set(v.t.value(i))
}

// Update applies the values of t. When t shares this view's skeleton only
// slots whose value changed are re-applied; otherwise the view is rebuilt
// in place.
func (v *View) Update(t *Template) error {
	if v.disposed {
		return nil
	}
	if t == nil {
		t = HTML("")
	}
	if t.err != nil {
		return t.err
	}

	if !v.t.sameShape(t) {
		return v.rebuild(t)
	}

	v.t = t
	reactive.WithOwner(v.owner, func() {
		reactive.Untracked(func() {
			for i, s := range v.slots {
				if s != nil {
					s.set(t.value(i))
				}
			}
		})
	})
	return nil
}

func (v *View) rebuild(t *Template) error {
	parent, ref := v.position()
	if parent == nil {
		parent = v.scope
	}
	next, err := bindBefore(parent, ref, t, v.opts, v.owner.Parent())
	if err != nil {
		return err
	}
	v.Dispose()
	*v = *next
	return nil
}

// position returns the parent of the view's nodes and the node after them.
func (v *View) position() (parent, ref *dom.Node) {
	nodes := v.Nodes()
	if len(nodes) == 0 {
		return nil, nil
	}
	last := nodes[len(nodes)-1]
	return last.Parent(), last.NextSibling()
}

// Nodes returns the view's current top-level nodes in order.
func (v *View) Nodes() []*dom.Node {
	var out []*dom.Node
	for _, r := range v.roots {
		if r.content != nil {
			out = append(out, r.content.nodes()...)
			continue
		}
		out = append(out, r.node)
	}
	return out
}

func (v *View) first() *dom.Node {
	for _, r := range v.roots {
		if r.content != nil {
			return r.content.first()
		}
		return r.node
	}
	return nil
}

// Template returns the template the view currently reflects.
func (v *View) Template() *Template { return v.t }

// Owner returns the owner of the view's effects.
func (v *View) Owner() *reactive.Owner { return v.owner }

// Errors returns the binding errors reported while building the view.
func (v *View) Errors() []error { return v.errors }

// Dispose stops every effect of the view and removes its nodes.
func (v *View) Dispose() {
	if v.disposed {
		return
	}
	v.disposed = true
	v.owner.Dispose()
	for _, n := range v.Nodes() {
		n.Remove()
	}
}
