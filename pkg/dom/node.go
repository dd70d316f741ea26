package dom

import "strings"

// NodeType is the node type discriminator.
type NodeType uint8

const (
	DocumentNode NodeType = iota
	ElementNode
	TextNode
	CommentNode
	FragmentNode
	ShadowRootNode
)

// String returns the string representation of the NodeType.
func (t NodeType) String() string {
	switch t {
	case DocumentNode:
		return "Document"
	case ElementNode:
		return "Element"
	case TextNode:
		return "Text"
	case CommentNode:
		return "Comment"
	case FragmentNode:
		return "Fragment"
	case ShadowRootNode:
		return "ShadowRoot"
	default:
		return "Unknown"
	}
}

// Attribute is a single element attribute. Attributes keep insertion order.
type Attribute struct {
	Name  string
	Value string
}

// Node is a node of the host tree. One type covers every NodeType; fields
// that do not apply to a node's type stay zero.
type Node struct {
	Type NodeType

	id       uint64
	doc      *Document
	parent   *Node
	children []*Node

	// Element
	tag       string
	attrs     []Attribute
	props     map[string]any
	accessors map[string]PropertyAccessor
	listeners map[string][]*listenerEntry
	shadow    *Node
	internals *ElementInternals

	// Custom element state
	def       CustomElementDefinition
	connected bool
	instance  any

	// Text and comment
	data string

	// Shadow root
	host     *Node
	mode     ShadowRootMode
	registry CustomElementRegistry
	sheets   []*CSSStyleSheet
}

// ID returns the node's document-unique identifier.
func (n *Node) ID() uint64 { return n.id }

// OwnerDocument returns the document that created the node.
func (n *Node) OwnerDocument() *Document { return n.doc }

// Tag returns the lowercase tag name of an element.
func (n *Node) Tag() string { return n.tag }

// Parent returns the parent node. A shadow root has no parent; see Host.
func (n *Node) Parent() *Node { return n.parent }

// ChildNodes returns a copy of the node's children.
func (n *Node) ChildNodes() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return len(n.children) }

// FirstChild returns the first child or nil.
func (n *Node) FirstChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

// LastChild returns the last child or nil.
func (n *Node) LastChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[len(n.children)-1]
}

// NextSibling returns the following sibling or nil.
func (n *Node) NextSibling() *Node {
	if n.parent == nil {
		return nil
	}
	i := n.parent.indexOf(n)
	if i < 0 || i+1 >= len(n.parent.children) {
		return nil
	}
	return n.parent.children[i+1]
}

// PreviousSibling returns the preceding sibling or nil.
func (n *Node) PreviousSibling() *Node {
	if n.parent == nil {
		return nil
	}
	i := n.parent.indexOf(n)
	if i <= 0 {
		return nil
	}
	return n.parent.children[i-1]
}

// Index returns the node's position within its parent, or -1.
func (n *Node) Index() int {
	if n.parent == nil {
		return -1
	}
	return n.parent.indexOf(n)
}

func (n *Node) indexOf(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// Data returns the text of a text or comment node.
func (n *Node) Data() string { return n.data }

// SetData replaces the text of a text or comment node.
func (n *Node) SetData(s string) {
	if n.data == s {
		return
	}
	n.data = s
	var parent uint64
	if n.parent != nil {
		parent = n.parent.id
	}
	n.doc.record(Mutation{Op: MutationSetText, Target: n.id, Parent: parent, Index: n.Index(), Value: s})
}

// TextContent returns the concatenated text of the node's light-tree
// descendants.
func (n *Node) TextContent() string {
	switch n.Type {
	case TextNode:
		return n.data
	case CommentNode:
		return ""
	}
	var b strings.Builder
	n.Walk(func(c *Node) bool {
		if c.Type == TextNode {
			b.WriteString(c.data)
		}
		return true
	})
	return b.String()
}

// SetTextContent replaces all children with a single text node.
func (n *Node) SetTextContent(s string) {
	if n.Type == TextNode || n.Type == CommentNode {
		n.SetData(s)
		return
	}
	n.doc.task(func() {
		for len(n.children) > 0 {
			n.removeChild(n.children[len(n.children)-1])
		}
		if s != "" {
			n.insertBefore(n.doc.CreateTextNode(s), nil)
		}
	})
}

// AppendChild appends child and returns it.
func (n *Node) AppendChild(child *Node) *Node {
	return n.InsertBefore(child, nil)
}

// InsertBefore inserts child before ref (at the end when ref is nil) and
// returns child. Inserting a fragment moves its children. Re-inserting a
// node under its current parent is a move: it keeps its identity and state
// and fires no lifecycle callbacks.
func (n *Node) InsertBefore(child, ref *Node) *Node {
	n.doc.task(func() { n.insertBefore(child, ref) })
	return child
}

// RemoveChild removes child from n.
func (n *Node) RemoveChild(child *Node) {
	n.doc.task(func() { n.removeChild(child) })
}

// Remove detaches the node from its parent.
func (n *Node) Remove() {
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
}

func (n *Node) insertBefore(child, ref *Node) {
	if child == nil || child == ref {
		return
	}
	if child.Type == FragmentNode {
		for _, c := range child.ChildNodes() {
			n.insertBefore(c, ref)
		}
		return
	}
	if ref != nil && ref.parent != n {
		ref = nil
	}

	if child.parent == n {
		// Move within the same parent.
		from := n.indexOf(child)
		n.children = append(n.children[:from], n.children[from+1:]...)
		n.children = insertAt(n.children, child, n.refIndex(ref))
		if n.indexOf(child) != from {
			n.doc.record(Mutation{Op: MutationMoveNode, Target: child.id, Parent: n.id, Index: n.indexOf(child), Before: siblingID(child)})
		}
		return
	}

	if child.parent != nil {
		child.parent.removeChild(child)
	}

	child.parent = n
	n.children = insertAt(n.children, child, n.refIndex(ref))
	n.doc.record(Mutation{Op: MutationInsertNode, Target: child.id, Parent: n.id, Index: n.indexOf(child), Before: siblingID(child), Node: child})

	if n.IsConnected() {
		connectTree(child)
	}
}

func siblingID(n *Node) uint64 {
	if next := n.NextSibling(); next != nil {
		return next.id
	}
	return 0
}

func (n *Node) refIndex(ref *Node) int {
	if ref == nil {
		return len(n.children)
	}
	return n.indexOf(ref)
}

func insertAt(nodes []*Node, node *Node, i int) []*Node {
	if i < 0 || i >= len(nodes) {
		return append(nodes, node)
	}
	nodes = append(nodes, nil)
	copy(nodes[i+1:], nodes[i:])
	nodes[i] = node
	return nodes
}

func (n *Node) removeChild(child *Node) {
	i := n.indexOf(child)
	if i < 0 {
		return
	}
	wasConnected := child.IsConnected()
	n.children = append(n.children[:i], n.children[i+1:]...)
	child.parent = nil
	n.doc.record(Mutation{Op: MutationRemoveNode, Target: child.id, Parent: n.id, Index: i})

	if wasConnected {
		disconnectTree(child)
	}
}

// Root returns the root of the node's tree, crossing shadow boundaries.
func (n *Node) Root() *Node {
	cur := n
	for {
		switch {
		case cur.parent != nil:
			cur = cur.parent
		case cur.Type == ShadowRootNode && cur.host != nil:
			cur = cur.host
		default:
			return cur
		}
	}
}

// IsConnected reports whether the node is in a document, possibly through
// shadow roots.
func (n *Node) IsConnected() bool {
	return n.Root().Type == DocumentNode
}

// Walk visits n and its light-tree descendants in tree order. Returning
// false from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.ChildNodes() {
		c.Walk(fn)
	}
}

// walkComposed is Walk that also descends into shadow roots, host first.
func (n *Node) walkComposed(fn func(*Node)) {
	fn(n)
	if n.shadow != nil {
		n.shadow.walkComposed(fn)
	}
	for _, c := range n.ChildNodes() {
		c.walkComposed(fn)
	}
}

// QuerySelectorAll returns the light-tree descendant elements with the
// given tag name, in tree order.
func (n *Node) QuerySelectorAll(tag string) []*Node {
	tag = strings.ToLower(tag)
	var out []*Node
	for _, c := range n.children {
		c.Walk(func(x *Node) bool {
			if x.Type == ElementNode && x.tag == tag {
				out = append(out, x)
			}
			return true
		})
	}
	return out
}

// QuerySelector returns the first descendant element with the given tag.
func (n *Node) QuerySelector(tag string) *Node {
	if all := n.QuerySelectorAll(tag); len(all) > 0 {
		return all[0]
	}
	return nil
}

// GetElementByID returns the descendant element whose id attribute is id.
func (n *Node) GetElementByID(id string) *Node {
	var found *Node
	n.Walk(func(x *Node) bool {
		if found != nil {
			return false
		}
		if v, ok := x.GetAttribute("id"); ok && v == id && x.Type == ElementNode {
			found = x
			return false
		}
		return true
	})
	return found
}
