// Package element maps setup functions onto the custom element lifecycle of
// a dom.Document.
//
// A Definition is created with Define and registered under a tag name in a
// Registry. When the host upgrades an element with that tag, the adapter
// allocates per-element state; the setup function runs on connect, inside a
// fresh reactive.Owner, and the template it returns is bound into the
// element's shadow root (or its light DOM when shadow roots are disabled).
// Disconnecting disposes the owner, so every effect created by setup stops.
// A later connect runs setup again from scratch.
//
//	counter := element.Define(func(c *element.Context) *template.Template {
//		count := element.UseProp(c, "count", 0)
//		label := c.Attr("label")
//		return template.HTML(`<button onclick="{{}}">{{}}: {{}}</button>`,
//			func() { count.Update(func(n int) int { return n + 1 }) }, label, count)
//	}, element.ObservedAttributes("label"))
//	_ = counter.Define("x-counter")
//
// Property values written through the host survive a reconnect. Signals
// created inside setup do not.
package element
