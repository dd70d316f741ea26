package template

import (
	"github.com/vango-dev/elements/pkg/dom"
	"github.com/vango-dev/elements/pkg/render"
	"github.com/vango-dev/elements/pkg/ssr"
)

// Render renders t to static HTML. Custom elements in t are connected, so
// the ones doc's registry defines render their shadow roots declaratively.
// A nil doc is a fresh server-context document without a registry: custom
// elements then stay undefined. Use RenderDefined to supply one.
func Render(doc *dom.Document, t *Template) (string, error) {
	if doc == nil {
		doc = dom.NewDocument(dom.WithContext(ssr.Server))
	}

	container := doc.Body().AppendChild(doc.CreateElement("div"))
	defer container.Remove()

	view, err := Bind(container, t, Options{})
	if err != nil {
		return "", err
	}
	defer view.Dispose()

	return render.InnerHTML(container), nil
}

// RenderDefined renders t in a fresh server-context document whose custom
// elements resolve through reg.
func RenderDefined(reg dom.CustomElementRegistry, t *Template) (string, error) {
	return Render(dom.NewDocument(dom.WithContext(ssr.Server), dom.WithRegistry(reg)), t)
}
