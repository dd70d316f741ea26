package elementtest_test

import (
	"strconv"
	"testing"

	"github.com/vango-dev/elements/pkg/element"
	"github.com/vango-dev/elements/pkg/elementtest"
	"github.com/vango-dev/elements/pkg/template"
)

func counter() *element.Definition {
	return element.Define(func(c *element.Context) *template.Template {
		count := element.UseProp(c, "count", 0)
		internals := c.Internals()
		sync := func() { internals.SetFormValue(strconv.Itoa(count.Peek())) }
		c.ClientOnly(sync)
		inc := func() {
			count.Set(count.Peek() + 1)
			c.ClientOnly(sync)
		}
		return template.HTML(`<h1>{{}}</h1><button onclick="{{}}">+</button><output>{{}}</output>`,
			c.Attr("label"), inc, count)
	}, element.ObservedAttributes("label"), element.FormAssociated())
}

func TestMountAndClick(t *testing.T) {
	f := elementtest.New("x-counter", counter()).
		WithAttr("label", "clicks").
		Mount(t)

	f.ExpectText("h1", "clicks")
	f.ExpectText("output", "0")

	f.Click("button", 0)
	f.ExpectText("output", "1")
	f.ExpectContains("<output>1</output>")
	f.ExpectNotContains("<output>0</output>")
	f.ExpectProperty("count", 1)
	f.ExpectAttribute("label", "clicks")
}

func TestPropBeforeConnectAndForm(t *testing.T) {
	f := elementtest.New("x-counter", counter()).
		WithProp("count", 3).
		InForm("count").
		Mount(t)

	f.ExpectText("output", "3")
	if got := f.FormValue(); got != "3" {
		t.Errorf("expected form value 3, got %q", got)
	}
}

func TestServerDocumentSkipsClientOnly(t *testing.T) {
	f := elementtest.New("x-counter", counter()).Server().InForm("count").Mount(t)

	if got := f.FormValue(); got != "" {
		t.Errorf("expected no form value in server context, got %q", got)
	}
}

func TestReconnectKeepsProperty(t *testing.T) {
	f := elementtest.New("x-counter", counter()).Mount(t)

	f.Click("button", 0)
	f.Disconnect()
	f.Reconnect()

	f.ExpectText("output", "1")
	if n := len(f.QueryAll("button")); n != 1 {
		t.Errorf("expected one button after reconnect, got %d", n)
	}
}
