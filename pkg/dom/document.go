package dom

import (
	"log/slog"
	"strings"

	"github.com/vango-dev/elements/pkg/reactive"
	"github.com/vango-dev/elements/pkg/ssr"
)

// CustomElementDefinition is what the host calls into for an upgraded
// custom element. It is the platform side of a defined tag.
type CustomElementDefinition interface {
	ObservedAttributes() []string
	FormAssociated() bool

	Constructed(el *Node)
	Connected(el *Node)
	Disconnected(el *Node)

	// AttributeChanged reports a change of an observed attribute. Removal
	// is reported as newValue "".
	AttributeChanged(el *Node, name, oldValue, newValue string)
}

// FormResetter is implemented by definitions that react to form reset.
type FormResetter interface {
	FormReset(el *Node)
}

// CustomElementRegistry resolves tag names to definitions. Documents hold
// the global one; shadow roots may hold a scoped one.
type CustomElementRegistry interface {
	Lookup(tag string) (CustomElementDefinition, bool)
}

// Document is the root of a host tree.
type Document struct {
	node     *Node
	html     *Node
	head     *Node
	body     *Node
	nextID   uint64
	registry CustomElementRegistry
	context  ssr.Context
	logger   *slog.Logger

	recording bool
	mutations []Mutation
	serialize func(*Node) string
}

// Option configures a Document.
type Option func(*Document)

// WithRegistry sets the document's global custom element registry.
func WithRegistry(r CustomElementRegistry) Option {
	return func(d *Document) { d.registry = r }
}

// WithContext sets the document's render context. Defaults to ssr.Default().
func WithContext(c ssr.Context) Option {
	return func(d *Document) { d.context = c }
}

// WithLogger sets the logger used for callback failures.
func WithLogger(l *slog.Logger) Option {
	return func(d *Document) { d.logger = l }
}

// NewDocument creates a document with an html/head/body skeleton.
func NewDocument(opts ...Option) *Document {
	d := &Document{context: ssr.Default()}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}

	d.node = d.newNode(DocumentNode)
	d.html = d.CreateElement("html")
	d.head = d.CreateElement("head")
	d.body = d.CreateElement("body")
	d.html.children = []*Node{d.head, d.body}
	d.head.parent, d.body.parent = d.html, d.html
	d.node.children = []*Node{d.html}
	d.html.parent = d.node
	return d
}

// Node returns the document node.
func (d *Document) Node() *Node { return d.node }

// Head returns the head element.
func (d *Document) Head() *Node { return d.head }

// Body returns the body element.
func (d *Document) Body() *Node { return d.body }

// Context returns the document's render context.
func (d *Document) Context() ssr.Context { return d.context }

// Logger returns the document's logger.
func (d *Document) Logger() *slog.Logger { return d.logger }

// Registry returns the document's global registry, possibly nil.
func (d *Document) Registry() CustomElementRegistry { return d.registry }

// SetRegistry replaces the global registry. Call Upgrade to upgrade
// elements created before.
func (d *Document) SetRegistry(r CustomElementRegistry) { d.registry = r }

// Task runs fn as one reactive task; effects queued by fn run before Task
// returns.
func (d *Document) Task(fn func()) {
	d.task(fn)
}

func (d *Document) task(fn func()) {
	if err := reactive.Batch(fn); err != nil {
		d.logger.Error("dom: task flush failed", "error", err)
	}
}

func (d *Document) newNode(t NodeType) *Node {
	d.nextID++
	return &Node{Type: t, id: d.nextID, doc: d}
}

// CreateElement creates an element, upgrading it through the global
// registry when its tag is defined there.
func (d *Document) CreateElement(tag string) *Node {
	return d.CreateElementIn(nil, tag)
}

// CreateElementIn creates an element that will live in scope's tree. The
// nearest enclosing shadow root's scoped registry is consulted before the
// global one.
func (d *Document) CreateElementIn(scope *Node, tag string) *Node {
	el := d.newNode(ElementNode)
	el.tag = strings.ToLower(tag)
	if def, ok := d.Lookup(scope, el.tag); ok {
		d.upgrade(el, def)
	}
	return el
}

// CreateTextNode creates a text node.
func (d *Document) CreateTextNode(s string) *Node {
	n := d.newNode(TextNode)
	n.data = s
	return n
}

// CreateComment creates a comment node.
func (d *Document) CreateComment(s string) *Node {
	n := d.newNode(CommentNode)
	n.data = s
	return n
}

// CreateDocumentFragment creates an empty fragment.
func (d *Document) CreateDocumentFragment() *Node {
	return d.newNode(FragmentNode)
}

// NodeByID finds a node of the document's composed tree by ID. Detached
// nodes are not found.
func (d *Document) NodeByID(id uint64) *Node {
	var found *Node
	d.node.walkComposed(func(n *Node) {
		if found == nil && n.id == id {
			found = n
		}
	})
	return found
}

// Lookup resolves tag for an element placed under scope: the nearest shadow
// root's registry first, then the document's.
func (d *Document) Lookup(scope *Node, tag string) (CustomElementDefinition, bool) {
	if root := nearestShadowRoot(scope); root != nil && root.registry != nil {
		if def, ok := root.registry.Lookup(tag); ok {
			return def, true
		}
	}
	if d.registry != nil {
		return d.registry.Lookup(tag)
	}
	return nil, false
}

func nearestShadowRoot(n *Node) *Node {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.Type == ShadowRootNode {
			return cur
		}
	}
	return nil
}

// Defined reports whether the element was upgraded to a custom element.
func (n *Node) Defined() bool { return n.def != nil }

// Definition returns the element's custom element definition, or nil.
func (n *Node) Definition() CustomElementDefinition { return n.def }

// InstanceData returns the value the element's definition stored with
// SetInstanceData.
func (n *Node) InstanceData() any { return n.instance }

// SetInstanceData stores per-element state for the element's definition.
func (n *Node) SetInstanceData(v any) { n.instance = v }

// Upgrade upgrades every not-yet-defined element under root whose tag now
// resolves, e.g. after a definition was added to a registry.
func (d *Document) Upgrade(root *Node) {
	d.task(func() {
		root.walkComposed(func(n *Node) {
			if n.Type != ElementNode || n.def != nil || !strings.Contains(n.tag, "-") {
				return
			}
			if def, ok := d.Lookup(n, n.tag); ok {
				d.upgrade(n, def)
			}
		})
	})
}

func (d *Document) upgrade(el *Node, def CustomElementDefinition) {
	el.def = def
	d.guard("constructor", el, func() { def.Constructed(el) })
	for _, a := range el.Attributes() {
		if observes(def, a.Name) {
			el.attributeChanged(a.Name, "", a.Value)
		}
	}
	if el.IsConnected() {
		connectTree(el)
	}
}

// connectTree fires Connected for every custom element in the composed
// subtree that is not connected yet, in tree order.
func connectTree(root *Node) {
	for _, n := range customElements(root) {
		if n.connected || !n.IsConnected() {
			continue
		}
		n.connected = true
		n.doc.guard("connectedCallback", n, func() { n.def.Connected(n) })
	}
}

// disconnectTree fires Disconnected for every connected custom element in
// the composed subtree. The subtree is collected first: a callback may
// clear its own shadow root.
func disconnectTree(root *Node) {
	for _, n := range customElements(root) {
		if !n.connected {
			continue
		}
		n.connected = false
		n.doc.guard("disconnectedCallback", n, func() { n.def.Disconnected(n) })
	}
}

func customElements(root *Node) []*Node {
	var out []*Node
	root.walkComposed(func(n *Node) {
		if n.def != nil {
			out = append(out, n)
		}
	})
	return out
}
