// Package template binds HTML templates with interpolation slots to a dom
// tree.
//
// A template is created with HTML, where each {{}} in the format string is
// a slot taking the value at the same position:
//
//	template.HTML(`
//		<h1 class="title {{}}">{{}}</h1>
//		<button onclick="{{}}">increment</button>
//		<nested-element prop:count="{{}}"></nested-element>
//		<ul>{{}}</ul>
//	`, theme, heading, increment, count, items)
//
// The format string is parsed once with the golang.org/x/net/html tokenizer
// and cached. Slots are classified at parse time by position: content,
// attribute value (whole or partial), on* event attribute or prop:*
// property. Content slots are refined by the Go type of their value:
// *Template nests a template, []*Template renders a list, anything else
// renders text.
//
// Values implementing reactive.Reader (Signal, Memo) and func() T getters
// are reactive: each gets its own effect that patches only its text node,
// attribute, property or list when it changes. Lists reconcile by key (the
// key attribute of an item's root element, or Keyed), moving kept nodes
// instead of re-creating them.
package template
