package render

import (
	"strings"
	"testing"

	"github.com/vango-dev/elements/pkg/dom"
)

func TestRenderText(t *testing.T) {
	doc := dom.NewDocument()
	renderer := NewRenderer(RendererConfig{})

	html, err := renderer.RenderToString(doc.CreateTextNode("<script>alert('xss')</script>"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Errorf("HTML should be escaped, got %q", html)
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Errorf("should contain escaped script tag, got %q", html)
	}
}

func TestRenderElement(t *testing.T) {
	doc := dom.NewDocument()
	div := doc.CreateElement("div")
	div.SetAttribute("class", "container")
	h1 := div.AppendChild(doc.CreateElement("h1"))
	h1.AppendChild(doc.CreateTextNode("Title"))
	p := div.AppendChild(doc.CreateElement("p"))
	p.AppendChild(doc.CreateTextNode("Content"))

	html, err := NewRenderer(RendererConfig{}).RenderToString(div)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `<div class="container"><h1>Title</h1><p>Content</p></div>`
	if html != want {
		t.Errorf("expected %q, got %q", want, html)
	}
}

func TestRenderAttributesKeepOrder(t *testing.T) {
	doc := dom.NewDocument()
	input := doc.CreateElement("input")
	input.SetAttribute("type", "checkbox")
	input.SetAttribute("disabled", "")
	input.SetAttribute("data-x", `a"b`)

	html := OuterHTML(input)
	want := `<input type="checkbox" disabled data-x="a&quot;b">`
	if html != want {
		t.Errorf("expected %q, got %q", want, html)
	}
}

func TestRenderEmptyNonBooleanAttribute(t *testing.T) {
	doc := dom.NewDocument()
	el := doc.CreateElement("my-element")
	el.SetAttribute("text", "")

	if html := OuterHTML(el); html != `<my-element text=""></my-element>` {
		t.Errorf("unexpected output %q", html)
	}
}

func TestRenderComment(t *testing.T) {
	doc := dom.NewDocument()
	if html := OuterHTML(doc.CreateComment("list")); html != "<!--list-->" {
		t.Errorf("expected comment, got %q", html)
	}
}

func TestRenderFragment(t *testing.T) {
	doc := dom.NewDocument()
	frag := doc.CreateDocumentFragment()
	frag.AppendChild(doc.CreateElement("br"))
	frag.AppendChild(doc.CreateTextNode("x"))

	if html := OuterHTML(frag); html != "<br>x" {
		t.Errorf("expected fragment children, got %q", html)
	}
}

func TestRenderRawTextElement(t *testing.T) {
	doc := dom.NewDocument()
	style := doc.CreateElement("style")
	style.AppendChild(doc.CreateTextNode("a > b { color: red }"))

	if html := OuterHTML(style); html != "<style>a > b { color: red }</style>" {
		t.Errorf("style content should not be escaped, got %q", html)
	}
}

func TestRenderDeclarativeShadow(t *testing.T) {
	doc := dom.NewDocument()
	host := doc.CreateElement("my-element")
	root, err := host.AttachShadow(dom.ShadowRootInit{Mode: dom.ShadowClosed})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sheet := doc.NewStyleSheet()
	sheet.ReplaceSync(":host{display:block}")
	root.AdoptStyleSheet(sheet)
	root.AppendChild(doc.CreateElement("slot"))
	host.AppendChild(doc.CreateTextNode("light"))

	want := `<my-element><template shadowrootmode="closed"><style>:host{display:block}</style><slot></slot></template>light</my-element>`
	if html := OuterHTML(host); html != want {
		t.Errorf("expected %q, got %q", want, html)
	}

	plain, _ := NewRenderer(RendererConfig{}).RenderToString(host)
	if plain != "<my-element>light</my-element>" {
		t.Errorf("shadow root should be omitted without DeclarativeShadow, got %q", plain)
	}

	if inner := InnerHTML(host); !strings.HasPrefix(inner, `<template shadowrootmode="closed">`) {
		t.Errorf("inner HTML should start with the shadow template, got %q", inner)
	}
}

func TestRenderNodeIDs(t *testing.T) {
	doc := dom.NewDocument()
	div := doc.CreateElement("div")
	text := div.AppendChild(doc.CreateTextNode("hi"))
	root, _ := div.AttachShadow(dom.ShadowRootInit{})

	html, err := NewRenderer(RendererConfig{NodeIDs: true}).RenderToString(div)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := extractAttrValue(t, html, "data-nid"); got != itoa(div.ID()) {
		t.Errorf("expected data-nid %d, got %s", div.ID(), got)
	}
	if got := extractAttrValue(t, html, "data-shadow-nid"); got != itoa(root.ID()) {
		t.Errorf("expected data-shadow-nid %d, got %s", root.ID(), got)
	}
	if !strings.Contains(html, "<!--t:"+itoa(text.ID())+"-->hi") {
		t.Errorf("text node should carry a marker, got %q", html)
	}
}

func TestRenderPretty(t *testing.T) {
	doc := dom.NewDocument()
	ul := doc.CreateElement("ul")
	li := ul.AppendChild(doc.CreateElement("li"))
	li.AppendChild(doc.CreateTextNode("one"))

	html, err := NewRenderer(RendererConfig{Pretty: true}).RenderToString(ul)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(html, "<ul>\n  <li>") {
		t.Errorf("expected indented child, got %q", html)
	}
}
