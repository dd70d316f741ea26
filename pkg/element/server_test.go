package element

import (
	"context"
	"strings"
	"testing"

	"github.com/vango-dev/elements/pkg/ssr"
	"github.com/vango-dev/elements/pkg/template"
)

func serverContext(t *testing.T) {
	t.Helper()
	prev := ssr.SetDefault(ssr.Server)
	t.Cleanup(func() { ssr.SetDefault(prev) })
}

func TestServerDefineEmitsHTML(t *testing.T) {
	serverContext(t)

	type defined struct{ tag, html string }
	var got []defined
	unsubscribe := ssr.OnServerDefine(func(tag, html string) {
		got = append(got, defined{tag, html})
	})
	defer unsubscribe()

	formCalls := 0
	def := Define(func(c *Context) *template.Template {
		count := UseProp(c, "count", 0)
		c.ClientOnly(func() { formCalls++ })
		return template.HTML(`<h1>{{}}</h1><output>count: {{}}</output>`, c.Attr("heading"), count)
	}, ObservedAttributes("heading"), FormAssociated())
	def.Register(NewRegistry(false))

	if err := def.Define("my-element"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].tag != "my-element" {
		t.Fatalf("expected one define hook call for my-element, got %+v", got)
	}
	want := `<template shadowrootmode="open"><h1>{{attr:heading}}</h1><output>count: 0</output></template>`
	if got[0].html != want {
		t.Errorf("expected %q, got %q", want, got[0].html)
	}
	if formCalls != 0 {
		t.Errorf("expected client-only callback skipped, got %d calls", formCalls)
	}

	page := `<body><my-element heading="title A"></my-element></body>`
	merged, err := ssr.InsertTemplates("my-element", got[0].html, page)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(merged, `<h1>title A</h1>`) {
		t.Errorf("expected heading filled from the page, got %q", merged)
	}
}

func TestClientDefineDoesNotRender(t *testing.T) {
	prev := ssr.SetDefault(ssr.Client)
	defer ssr.SetDefault(prev)

	calls := 0
	unsubscribe := ssr.OnServerDefine(func(string, string) { calls++ })
	defer unsubscribe()

	runs := 0
	def := Define(func(*Context) *template.Template {
		runs++
		return nil
	}).Register(NewRegistry(false))
	if err := def.Define("x-client-only"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 0 || runs != 0 {
		t.Errorf("expected no server render in client context, got %d hooks and %d setups", calls, runs)
	}
}

func TestRenderServerNestedScoped(t *testing.T) {
	scoped := NewRegistry(true)
	_ = scoped.Define("nested-element", Define(func(c *Context) *template.Template {
		return template.HTML(`<strong>{{}}</strong>`, c.Attr("text"))
	}, ObservedAttributes("text")))

	outer := Define(func(c *Context) *template.Template {
		return template.HTML(`<nested-element text="test"></nested-element>`)
	}, ScopedRegistry(scoped))

	html, err := outer.RenderServer(context.Background(), "x-unregistered")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `<template shadowrootmode="open"><nested-element text="test">` +
		`<template shadowrootmode="open"><strong>test</strong></template></nested-element></template>`
	if html != want {
		t.Errorf("expected %q, got %q", want, html)
	}
}

func TestRenderServerSetupPanic(t *testing.T) {
	def := Define(func(*Context) *template.Template { panic("broken") })
	if _, err := def.RenderServer(context.Background(), "x-broken"); err == nil {
		t.Error("expected setup panic to surface as an error")
	}
}
