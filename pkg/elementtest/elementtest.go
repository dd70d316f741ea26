package elementtest

import (
	"strings"
	"testing"

	"github.com/vango-dev/elements/pkg/dom"
	"github.com/vango-dev/elements/pkg/element"
	"github.com/vango-dev/elements/pkg/reactive"
	"github.com/vango-dev/elements/pkg/render"
	"github.com/vango-dev/elements/pkg/ssr"
)

// Builder describes how an element under test is mounted.
type Builder struct {
	tag   string
	def   *element.Definition
	attrs [][2]string
	props [][2]any
	form  string
	ctx   ssr.Context
}

// New starts a builder for def defined under tag.
func New(tag string, def *element.Definition) *Builder {
	return &Builder{tag: tag, def: def, ctx: ssr.Client}
}

// WithAttr sets an attribute before the element connects.
func (b *Builder) WithAttr(name, value string) *Builder {
	b.attrs = append(b.attrs, [2]string{name, value})
	return b
}

// WithProp assigns a property before the element connects.
func (b *Builder) WithProp(name string, value any) *Builder {
	b.props = append(b.props, [2]any{name, value})
	return b
}

// InForm mounts the element inside a <form> under the given field name.
func (b *Builder) InForm(name string) *Builder {
	b.form = name
	return b
}

// Server mounts into a server-context document.
func (b *Builder) Server() *Builder {
	b.ctx = ssr.Server
	return b
}

// Mount defines the element in a private registry and connects one
// instance to a fresh document.
func (b *Builder) Mount(t testing.TB) *Fixture {
	t.Helper()
	reg := element.NewRegistry(false)
	b.def.Register(reg)
	if err := b.def.Define(b.tag); err != nil {
		t.Fatalf("define %s: %v", b.tag, err)
	}
	t.Cleanup(reactive.ReleaseContext)

	doc := dom.NewDocument(dom.WithContext(b.ctx), dom.WithRegistry(reg))
	host := doc.CreateElement(b.tag)
	for _, a := range b.attrs {
		host.SetAttribute(a[0], a[1])
	}
	for _, p := range b.props {
		host.SetProperty(p[0].(string), p[1])
	}

	parent := doc.Body()
	if b.form != "" {
		host.SetAttribute("name", b.form)
		parent = parent.AppendChild(doc.CreateElement("form"))
	}
	parent.AppendChild(host)

	return &Fixture{t: t, Doc: doc, Registry: reg, Host: host}
}

// Fixture is a mounted element.
type Fixture struct {
	t testing.TB

	Doc      *dom.Document
	Registry *element.Registry
	Host     *dom.Node
}

// Root returns the element's shadow root, or the host for light DOM
// elements.
func (f *Fixture) Root() *dom.Node {
	if r := f.Host.AttachedShadowRoot(); r != nil {
		return r
	}
	return f.Host
}

// HTML renders the root's children.
func (f *Fixture) HTML() string {
	return render.InnerHTML(f.Root())
}

// QueryAll returns the elements with tag below the root.
func (f *Fixture) QueryAll(tag string) []*dom.Node {
	return f.Root().QuerySelectorAll(tag)
}

// Query returns the index-th element with tag below the root, failing the
// test when there is none.
func (f *Fixture) Query(tag string, index int) *dom.Node {
	f.t.Helper()
	all := f.QueryAll(tag)
	if index >= len(all) {
		f.t.Fatalf("expected at least %d <%s> elements, got %d", index+1, tag, len(all))
	}
	return all[index]
}

// Click dispatches a click on the index-th element with tag.
func (f *Fixture) Click(tag string, index int) {
	f.t.Helper()
	f.Query(tag, index).Click()
}

// Disconnect removes the host from the document.
func (f *Fixture) Disconnect() {
	f.Host.Remove()
}

// Reconnect appends the host to the body again.
func (f *Fixture) Reconnect() {
	f.Doc.Body().AppendChild(f.Host)
}

// FormValue returns the element's submitted value when mounted InForm.
func (f *Fixture) FormValue() string {
	form := f.Host.Parent()
	if form == nil || form.Tag() != "form" {
		return ""
	}
	name, _ := f.Host.GetAttribute("name")
	return dom.FormData(form).Get(name)
}

// ExpectContains asserts that the rendered root contains expected.
func (f *Fixture) ExpectContains(expected string) {
	f.t.Helper()
	html := f.HTML()
	if !strings.Contains(html, expected) {
		f.t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that the rendered root does not contain
// unexpected.
func (f *Fixture) ExpectNotContains(unexpected string) {
	f.t.Helper()
	html := f.HTML()
	if strings.Contains(html, unexpected) {
		f.t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectText asserts the text content of the first element with tag.
func (f *Fixture) ExpectText(tag, want string) {
	f.t.Helper()
	if got := f.Query(tag, 0).TextContent(); got != want {
		f.t.Errorf("expected <%s> text %q, got %q", tag, want, got)
	}
}

// ExpectAttribute asserts an attribute of the host.
func (f *Fixture) ExpectAttribute(name, want string) {
	f.t.Helper()
	got, ok := f.Host.GetAttribute(name)
	if !ok {
		f.t.Errorf("expected attribute %s=%q, attribute missing", name, want)
		return
	}
	if got != want {
		f.t.Errorf("expected attribute %s=%q, got %q", name, want, got)
	}
}

// ExpectProperty asserts a host property.
func (f *Fixture) ExpectProperty(name string, want any) {
	f.t.Helper()
	if got := f.Host.Property(name); got != want {
		f.t.Errorf("expected property %s=%v, got %v", name, want, got)
	}
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
