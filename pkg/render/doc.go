// Package render serializes dom trees to HTML.
//
// It is used for server rendering of custom elements, for the initial page
// of a live session and for the inserted-subtree snapshots a live session
// streams to its client. Output covers:
//
//   - text and attribute escaping
//   - void and raw-text elements (input, br, style, script)
//   - boolean attributes written as bare names
//   - declarative shadow roots (<template shadowrootmode>) with adopted
//     stylesheets inlined as <style>
//   - node addressing for live clients (data-nid, <!--t:ID--> markers)
//   - full pages with DOCTYPE, head and body
//
// # Basic Usage
//
//	renderer := render.NewRenderer(render.RendererConfig{DeclarativeShadow: true})
//	html, err := renderer.RenderToString(el)
//
// # Full Page Rendering
//
//	page := render.PageData{
//	    Document: doc,
//	    Title:    "My Page",
//	}
//	err := renderer.RenderPage(w, page)
package render
