package dom

import "fmt"

// ShadowRootMode is the encapsulation mode of a shadow root.
type ShadowRootMode string

const (
	ShadowOpen   ShadowRootMode = "open"
	ShadowClosed ShadowRootMode = "closed"
)

// ShadowRootInit configures AttachShadow.
type ShadowRootInit struct {
	Mode ShadowRootMode

	// Registry is an optional scoped registry consulted before the global
	// one for elements created inside the shadow root.
	Registry CustomElementRegistry
}

// AttachShadow attaches a shadow root to an element. Closed roots are not
// reachable through ShadowRoot; the caller keeps the returned node.
func (n *Node) AttachShadow(init ShadowRootInit) (*Node, error) {
	if n.Type != ElementNode {
		return nil, fmt.Errorf("dom: cannot attach shadow root to %s node", n.Type)
	}
	if n.shadow != nil {
		return nil, fmt.Errorf("dom: <%s> already hosts a shadow root", n.tag)
	}
	if init.Mode == "" {
		init.Mode = ShadowOpen
	}
	root := n.doc.newNode(ShadowRootNode)
	root.host = n
	root.mode = init.Mode
	root.registry = init.Registry
	n.shadow = root
	n.doc.record(Mutation{Op: MutationAttachShadow, Target: n.id, Parent: root.id, Value: string(init.Mode)})
	return root, nil
}

// ShadowRoot returns an open shadow root, or nil.
func (n *Node) ShadowRoot() *Node {
	if n.shadow == nil || n.shadow.mode == ShadowClosed {
		return nil
	}
	return n.shadow
}

// AttachedShadowRoot returns the element's shadow root regardless of its
// mode. It is meant for the host side (serializers, sessions), not for
// component code.
func (n *Node) AttachedShadowRoot() *Node { return n.shadow }

// Host returns a shadow root's host element.
func (n *Node) Host() *Node { return n.host }

// Mode returns a shadow root's mode.
func (n *Node) Mode() ShadowRootMode { return n.mode }

// ScopedRegistry returns a shadow root's scoped registry, or nil.
func (n *Node) ScopedRegistry() CustomElementRegistry { return n.registry }

// CSSStyleSheet is a constructable stylesheet that can be adopted by
// shadow roots. Its text is opaque to the host.
type CSSStyleSheet struct {
	id   uint64
	doc  *Document
	text string
}

// NewStyleSheet creates an empty constructable stylesheet.
func (d *Document) NewStyleSheet() *CSSStyleSheet {
	d.nextID++
	return &CSSStyleSheet{id: d.nextID, doc: d}
}

// ID returns the sheet's identifier.
func (s *CSSStyleSheet) ID() uint64 { return s.id }

// Text returns the sheet's CSS text.
func (s *CSSStyleSheet) Text() string { return s.text }

// ReplaceSync replaces the sheet's CSS text.
func (s *CSSStyleSheet) ReplaceSync(text string) {
	if s.text == text {
		return
	}
	s.text = text
	s.doc.record(Mutation{Op: MutationSetSheet, Target: s.id, Value: text})
}

// AdoptStyleSheet appends a sheet to a shadow root's adopted stylesheets.
func (n *Node) AdoptStyleSheet(s *CSSStyleSheet) {
	for _, existing := range n.sheets {
		if existing == s {
			return
		}
	}
	n.sheets = append(n.sheets, s)
	n.doc.record(Mutation{Op: MutationAdoptSheet, Target: n.id, Parent: s.id, Value: s.text})
}

// AdoptedStyleSheets returns the adopted stylesheets of a shadow root or
// document node.
func (n *Node) AdoptedStyleSheets() []*CSSStyleSheet {
	return append([]*CSSStyleSheet(nil), n.sheets...)
}
