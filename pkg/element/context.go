package element

import (
	"log/slog"

	"github.com/vango-dev/elements/pkg/css"
	"github.com/vango-dev/elements/pkg/dom"
	"github.com/vango-dev/elements/pkg/reactive"
	"github.com/vango-dev/elements/pkg/ssr"
)

// Context is what a setup function receives. It stays usable from event
// handlers while the element is connected.
type Context struct {
	inst   *instance
	sheets int
	done   bool
}

// Host returns the custom element.
func (c *Context) Host() *dom.Node { return c.inst.host }

// Root returns the node the template is bound into: the shadow root, or
// the host when the definition has none.
func (c *Context) Root() *dom.Node { return c.inst.root() }

// Owner returns the owner of the effects created for this connect.
func (c *Context) Owner() *reactive.Owner { return c.inst.owner }

// Logger returns the definition's logger tagged with the element's tag.
func (c *Context) Logger() *slog.Logger {
	return c.inst.def.logger.With("tag", c.inst.host.Tag())
}

// IsServer reports whether the element lives in a server-context document.
func (c *Context) IsServer() bool {
	return c.inst.host.OwnerDocument().Context().IsServer()
}

// Internals returns the element's form internals, or nil when the
// definition is not form-associated.
func (c *Context) Internals() *dom.ElementInternals {
	inst := c.inst
	if !inst.def.formAssociated {
		return nil
	}
	if inst.internals == nil {
		in, err := inst.host.AttachInternals()
		if err != nil {
			c.Logger().Warn("element: attach internals failed", "error", err)
			return nil
		}
		inst.internals = in
	}
	return inst.internals
}

// Attr returns the signal of attribute name. Changes to observed
// attributes update the signal and writes to the signal update the
// attribute. In server context an absent attribute reads as a placeholder
// that ssr.InsertTemplates fills per page occurrence.
func (c *Context) Attr(name string) *AttrSignal {
	inst := c.inst
	if a, ok := inst.attrs[name]; ok && !c.done {
		return a
	}
	value, ok := inst.host.GetAttribute(name)
	if !ok && c.IsServer() {
		value = ssr.AttrPlaceholder(name)
	}
	a := &AttrSignal{name: name, host: inst.host, sig: reactive.NewSignal(value)}
	if !c.done {
		inst.attrs[name] = a
	}
	return a
}

// AdoptStyleSheet scopes s to the element's shadow root (or the document
// for light DOM elements). Reactive sheets are re-applied when their values
// change. The n-th call of a setup reuses the n-th sheet of the element, so
// reconnecting does not pile up sheets.
func (c *Context) AdoptStyleSheet(s *css.StyleSheet) {
	if s == nil || c.done {
		return
	}
	if err := s.Err(); err != nil {
		c.Logger().Warn("element: stylesheet rejected", "error", err)
		return
	}
	inst := c.inst
	doc := inst.host.OwnerDocument()

	var sheet *dom.CSSStyleSheet
	if c.sheets < len(inst.sheets) {
		sheet = inst.sheets[c.sheets]
	} else {
		sheet = doc.NewStyleSheet()
		inst.sheets = append(inst.sheets, sheet)
	}
	c.sheets++

	target := inst.host.AttachedShadowRoot()
	if target == nil {
		target = doc.Node()
	}
	reactive.WithOwner(inst.owner, func() {
		reactive.Watch(func() {
			text := s.Text()
			reactive.Untracked(func() { sheet.ReplaceSync(text) })
		})
	})
	target.AdoptStyleSheet(sheet)
}

// ClientOnly runs fn now when the element is connected in a client-context
// document, defers it to the next connect when the element is not
// connected, and drops it in server context. It reports whether fn ran.
func (c *Context) ClientOnly(fn func()) bool {
	inst := c.inst
	doc := inst.host.OwnerDocument()
	if doc.Context().IsServer() {
		return doc.Context().ClientOnly(fn)
	}
	if !inst.host.IsConnected() {
		inst.pending = append(inst.pending, fn)
		return false
	}
	return inst.guard("client-only callback", fn)
}

// OnFormReset registers fn to run when the element's form is reset. It
// applies to the current connect only.
func (c *Context) OnFormReset(fn func()) {
	if c.done {
		return
	}
	c.inst.resetters = append(c.inst.resetters, fn)
}

// AttrSignal is the signal of one attribute.
type AttrSignal struct {
	name string
	host *dom.Node
	sig  *reactive.Signal[string]
}

// Name returns the attribute name.
func (a *AttrSignal) Name() string { return a.name }

// Get returns the value, tracked. An absent attribute reads as "".
func (a *AttrSignal) Get() string { return a.sig.Get() }

// Peek returns the value without tracking.
func (a *AttrSignal) Peek() string { return a.sig.Peek() }

// Read implements reactive.Reader.
func (a *AttrSignal) Read() any { return a.sig.Get() }

// Set writes the signal and the attribute.
func (a *AttrSignal) Set(value string) {
	a.host.OwnerDocument().Task(func() {
		a.sig.Set(value)
		a.host.SetAttribute(a.name, value)
	})
}

// Remove removes the attribute and resets the signal to "".
func (a *AttrSignal) Remove() {
	a.host.OwnerDocument().Task(func() {
		a.sig.Set("")
		a.host.RemoveAttribute(a.name)
	})
}

// Has reports whether the host currently carries the attribute.
func (a *AttrSignal) Has() bool { return a.host.HasAttribute(a.name) }

var _ reactive.Reader = (*AttrSignal)(nil)
