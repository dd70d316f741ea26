package demo

import (
	"github.com/vango-dev/elements/pkg/dom"
	"github.com/vango-dev/elements/pkg/reactive"
	"github.com/vango-dev/elements/pkg/template"
)

// BuildPage fills the body of a live session document with my-element and
// the two page-level controls: one toggles its heading attribute, the
// other bumps its count property from outside. The document must resolve
// Tag, typically through the global registry after Register(nil).
func BuildPage(doc *dom.Document) error {
	heading := reactive.NewSignal("title A")
	toggle := func() {
		if heading.Peek() == "title A" {
			heading.Set("title B")
		} else {
			heading.Set("title A")
		}
	}

	var host *dom.Node
	bump := func() {
		if host == nil {
			return
		}
		n, _ := host.Property("count").(int)
		host.SetProperty("count", n+1)
	}

	_, err := template.Bind(doc.Body(), template.HTML(`
		<my-element heading="{{}}"></my-element>
		<button onclick="{{}}">toggle heading</button>
		<button id="outer-count" onclick="{{}}">outer count</button>
	`, heading, toggle, bump), template.Options{Logger: doc.Logger()})
	if err != nil {
		return err
	}
	host = doc.Body().QuerySelector(Tag)
	return nil
}
