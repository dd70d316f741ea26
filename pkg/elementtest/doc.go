// Package elementtest provides helpers for testing custom element
// definitions against an in-memory client document.
//
// # Quick Start
//
//	func TestCounter(t *testing.T) {
//	    f := elementtest.New("x-counter", Counter()).
//	        WithAttr("label", "clicks").
//	        Mount(t)
//
//	    f.Click("button", 0)
//	    f.ExpectText("output", "1")
//	    f.ExpectContains("<output>1</output>")
//	}
//
// # Fluent Builder
//
// The builder registers the definition in a private registry, so tests
// never collide on tag names in the global one:
//
//	f := elementtest.New("x-field", Field()).
//	    WithProp("count", 3).     // assigned before the element connects
//	    InForm("count").          // wrapped in a <form>, name="count"
//	    Mount(t)
//
//	if got := f.FormValue(); got != "3" { ... }
//
// # Assertions
//
// Assertions render the shadow root (or the host, for light DOM elements)
// with declarative shadow roots for nested elements and report failures
// through t.Errorf with a truncated copy of the markup.
package elementtest
