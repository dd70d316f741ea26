package render

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vango-dev/elements/pkg/dom"
)

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty enables indented output. Only for humans: whitespace text
	// nodes change what a browser parses.
	Pretty bool

	// Indent is the string used for each indentation level in pretty mode.
	// Defaults to two spaces.
	Indent string

	// DeclarativeShadow writes shadow roots as <template shadowrootmode>
	// with their adopted stylesheets inlined as <style> elements.
	DeclarativeShadow bool

	// NodeIDs addresses every node for a live client: elements get a
	// data-nid attribute and text nodes are preceded by a <!--t:ID-->
	// marker comment.
	NodeIDs bool
}

// Renderer serializes dom trees to HTML.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{config: config}
}

// RenderToString renders a node and its subtree to a string.
func (r *Renderer) RenderToString(node *dom.Node) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams a node and its subtree to w. Document, fragment
// and shadow root nodes render their children only.
func (r *Renderer) RenderToWriter(w io.Writer, node *dom.Node) error {
	return r.renderNode(w, node, 0)
}

// RenderChildren renders the children of node, i.e. its inner HTML. For an
// element with a shadow root and DeclarativeShadow set, the shadow template
// comes first.
func (r *Renderer) RenderChildren(w io.Writer, node *dom.Node) error {
	if node.Type == dom.ElementNode {
		if err := r.renderShadow(w, node, 0); err != nil {
			return err
		}
	}
	return r.renderChildren(w, node, 0)
}

// OuterHTML renders node with declarative shadow roots.
func OuterHTML(node *dom.Node) string {
	s, _ := NewRenderer(RendererConfig{DeclarativeShadow: true}).RenderToString(node)
	return s
}

// InnerHTML renders the children of node with declarative shadow roots.
func InnerHTML(node *dom.Node) string {
	var buf bytes.Buffer
	_ = NewRenderer(RendererConfig{DeclarativeShadow: true}).RenderChildren(&buf, node)
	return buf.String()
}

func (r *Renderer) renderNode(w io.Writer, node *dom.Node, depth int) error {
	if node == nil {
		return nil
	}

	switch node.Type {
	case dom.ElementNode:
		return r.renderElement(w, node, depth)
	case dom.TextNode:
		return r.renderText(w, node)
	case dom.CommentNode:
		_, err := fmt.Fprintf(w, "<!--%s-->", strings.ReplaceAll(node.Data(), "-->", "--&gt;"))
		return err
	case dom.DocumentNode, dom.FragmentNode, dom.ShadowRootNode:
		return r.renderChildren(w, node, depth)
	default:
		return fmt.Errorf("render: unknown node type: %s", node.Type)
	}
}

func (r *Renderer) renderElement(w io.Writer, node *dom.Node, depth int) error {
	tag := node.Tag()

	if r.config.Pretty && depth > 0 {
		r.writeIndent(w, depth)
	}

	if _, err := fmt.Fprintf(w, "<%s", tag); err != nil {
		return err
	}
	if err := r.renderAttributes(w, node); err != nil {
		return err
	}
	if _, err := w.Write([]byte{'>'}); err != nil {
		return err
	}

	if isVoidElement(tag) {
		if r.config.Pretty {
			w.Write([]byte{'\n'})
		}
		return nil
	}

	if isRawTextElement(tag) {
		if _, err := io.WriteString(w, escapeRawText(tag, node.TextContent())); err != nil {
			return err
		}
	} else {
		hasBlockChildren := (node.ChildCount() > 0 || node.ShadowRoot() != nil) && !isInlineElement(tag)
		if r.config.Pretty && hasBlockChildren {
			w.Write([]byte{'\n'})
		}

		if err := r.renderShadow(w, node, depth+1); err != nil {
			return err
		}
		if err := r.renderChildren(w, node, depth+1); err != nil {
			return err
		}

		if r.config.Pretty && hasBlockChildren {
			r.writeIndent(w, depth)
		}
	}

	if _, err := fmt.Fprintf(w, "</%s>", tag); err != nil {
		return err
	}
	if r.config.Pretty {
		w.Write([]byte{'\n'})
	}
	return nil
}

// renderShadow writes an element's shadow root as a declarative template.
// Closed roots are rendered too: the serializer is the host, not script.
func (r *Renderer) renderShadow(w io.Writer, host *dom.Node, depth int) error {
	if !r.config.DeclarativeShadow {
		return nil
	}
	root := shadowOf(host)
	if root == nil {
		return nil
	}

	if r.config.Pretty {
		r.writeIndent(w, depth)
	}
	if _, err := fmt.Fprintf(w, `<template shadowrootmode="%s">`, root.Mode()); err != nil {
		return err
	}
	for _, sheet := range root.AdoptedStyleSheets() {
		open := "<style>"
		if r.config.NodeIDs {
			open = fmt.Sprintf(`<style data-sheet="%d">`, sheet.ID())
		}
		if _, err := fmt.Fprintf(w, "%s%s</style>", open, escapeRawText("style", sheet.Text())); err != nil {
			return err
		}
	}
	if err := r.renderChildren(w, root, depth+1); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "</template>"); err != nil {
		return err
	}
	if r.config.Pretty {
		w.Write([]byte{'\n'})
	}
	return nil
}

func (r *Renderer) renderChildren(w io.Writer, node *dom.Node, depth int) error {
	for _, child := range node.ChildNodes() {
		if err := r.renderNode(w, child, depth); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderText(w io.Writer, node *dom.Node) error {
	if r.config.NodeIDs {
		if _, err := fmt.Fprintf(w, "<!--t:%d-->", node.ID()); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, escapeHTML(node.Data()))
	return err
}

// renderAttributes writes attributes in insertion order.
func (r *Renderer) renderAttributes(w io.Writer, node *dom.Node) error {
	for _, a := range node.Attributes() {
		if a.Value == "" && isBooleanAttr(a.Name) {
			if _, err := fmt.Fprintf(w, " %s", a.Name); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, ` %s="%s"`, a.Name, escapeAttr(a.Value)); err != nil {
			return err
		}
	}

	if r.config.NodeIDs {
		if _, err := fmt.Fprintf(w, ` data-nid="%d"`, node.ID()); err != nil {
			return err
		}
		if root := shadowOf(node); root != nil {
			if _, err := fmt.Fprintf(w, ` data-shadow-nid="%s"`, strconv.FormatUint(root.ID(), 10)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Renderer) writeIndent(w io.Writer, depth int) {
	for i := 0; i < depth; i++ {
		io.WriteString(w, r.config.Indent)
	}
}

func shadowOf(host *dom.Node) *dom.Node {
	if host.Type != dom.ElementNode {
		return nil
	}
	return host.AttachedShadowRoot()
}
