package render

import (
	"fmt"
	"io"

	"github.com/vango-dev/elements/pkg/dom"
)

// DefaultLiveScript is where the live client script is loaded from when
// PageData.LiveScript is empty.
const DefaultLiveScript = "/live/client.js"

// PageData describes a full HTML page around a document.
type PageData struct {
	// Document supplies the page content: its head children are appended
	// to the generated head and its body children form the body.
	Document *dom.Document

	Title string

	// Lang is the html lang attribute. Default: "en".
	Lang string

	// Meta adds <meta name content> tags, in order.
	Meta []MetaTag

	// StyleSheets are linked stylesheet URLs; Styles are inlined.
	StyleSheets []string
	Styles      []string

	// Scripts are loaded at the end of the body.
	Scripts []ScriptTag

	// SessionID identifies the live session the page belongs to. When set,
	// the live client is loaded from LiveScript.
	SessionID  string
	LiveScript string
}

// MetaTag is a name/content meta element.
type MetaTag struct {
	Name    string
	Content string
}

// ScriptTag is an external script.
type ScriptTag struct {
	Src    string
	Module bool
	Defer  bool
	Async  bool
}

// pageWriter remembers the first write error so page assembly reads as a
// straight sequence of writes.
type pageWriter struct {
	w   io.Writer
	err error
}

func (p *pageWriter) printf(format string, args ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, format, args...)
	}
}

// RenderPage renders a complete HTML document to the given writer.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}
	p := &pageWriter{w: w}

	p.printf("<!DOCTYPE html>\n<html lang=\"%s\">\n<head>\n", escapeAttr(lang))
	p.printf("  <meta charset=\"utf-8\">\n")
	p.printf("  <meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	if page.Title != "" {
		p.printf("  <title>%s</title>\n", escapeHTML(page.Title))
	}
	for _, m := range page.Meta {
		p.printf("  <meta name=\"%s\" content=\"%s\">\n", escapeAttr(m.Name), escapeAttr(m.Content))
	}
	for _, href := range page.StyleSheets {
		p.printf("  <link rel=\"stylesheet\" href=\"%s\">\n", escapeAttr(href))
	}
	for _, css := range page.Styles {
		p.printf("  <style>%s</style>\n", escapeRawText("style", css))
	}
	if p.err == nil && page.Document != nil {
		p.err = r.renderChildren(w, page.Document.Head(), 1)
	}
	p.printf("</head>\n<body>\n")

	if p.err == nil && page.Document != nil {
		p.err = r.renderChildren(w, page.Document.Body(), 1)
	}
	for _, s := range page.Scripts {
		p.printf("  <script src=\"%s\"%s></script>\n", escapeAttr(s.Src), scriptFlags(s))
	}
	if page.SessionID != "" {
		src := page.LiveScript
		if src == "" {
			src = DefaultLiveScript
		}
		p.printf("  <script src=\"%s\" data-session=\"%s\" defer></script>\n",
			escapeAttr(src), escapeAttr(page.SessionID))
	}
	p.printf("</body>\n</html>\n")
	return p.err
}

func scriptFlags(s ScriptTag) string {
	var flags string
	if s.Module {
		flags += ` type="module"`
	}
	if s.Defer {
		flags += " defer"
	}
	if s.Async {
		flags += " async"
	}
	return flags
}
