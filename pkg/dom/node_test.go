package dom

import "testing"

func TestNewDocumentSkeleton(t *testing.T) {
	doc := NewDocument()

	if doc.Body().Parent() == nil || doc.Body().Parent().Tag() != "html" {
		t.Fatalf("expected body under html")
	}
	if !doc.Body().IsConnected() {
		t.Error("expected body to be connected")
	}
	if doc.Node().FirstChild() != doc.Head().Parent() {
		t.Error("expected html as document child")
	}
}

func TestInsertBeforeAndRemove(t *testing.T) {
	doc := NewDocument()
	ul := doc.CreateElement("ul")
	a := ul.AppendChild(doc.CreateElement("li"))
	c := ul.AppendChild(doc.CreateElement("li"))
	b := ul.InsertBefore(doc.CreateElement("li"), c)

	got := ul.ChildNodes()
	if len(got) != 3 || got[0] != a || got[1] != b || got[2] != c {
		t.Fatalf("unexpected order")
	}
	if b.NextSibling() != c || b.PreviousSibling() != a {
		t.Error("unexpected siblings")
	}
	if b.Index() != 1 {
		t.Errorf("expected index 1, got %d", b.Index())
	}

	b.Remove()
	if ul.ChildCount() != 2 || b.Parent() != nil {
		t.Errorf("expected b removed, got %d children", ul.ChildCount())
	}
}

func TestInsertFragmentMovesChildren(t *testing.T) {
	doc := NewDocument()
	frag := doc.CreateDocumentFragment()
	frag.AppendChild(doc.CreateTextNode("a"))
	frag.AppendChild(doc.CreateTextNode("b"))

	div := doc.CreateElement("div")
	div.AppendChild(frag)

	if frag.ChildCount() != 0 {
		t.Errorf("expected fragment emptied, got %d", frag.ChildCount())
	}
	if div.TextContent() != "ab" {
		t.Errorf("expected ab, got %q", div.TextContent())
	}
}

func TestReparentRemovesFromOldParent(t *testing.T) {
	doc := NewDocument()
	a := doc.CreateElement("div")
	b := doc.CreateElement("div")
	child := a.AppendChild(doc.CreateElement("span"))

	b.AppendChild(child)
	if a.ChildCount() != 0 || child.Parent() != b {
		t.Error("expected child moved to b")
	}
}

func TestSetTextContent(t *testing.T) {
	doc := NewDocument()
	p := doc.CreateElement("p")
	p.AppendChild(doc.CreateElement("b"))
	p.SetTextContent("hello")

	if p.ChildCount() != 1 || p.FirstChild().Type != TextNode {
		t.Fatalf("expected single text child")
	}
	if p.TextContent() != "hello" {
		t.Errorf("expected hello, got %q", p.TextContent())
	}
}

func TestQuerySelector(t *testing.T) {
	doc := NewDocument()
	body := doc.Body()
	div := body.AppendChild(doc.CreateElement("div"))
	btn := div.AppendChild(doc.CreateElement("button"))
	btn.SetAttribute("id", "outer-count")
	body.AppendChild(doc.CreateElement("button"))

	if got := doc.Node().QuerySelector("BUTTON"); got != btn {
		t.Error("expected first button in tree order")
	}
	if n := len(body.QuerySelectorAll("button")); n != 2 {
		t.Errorf("expected 2 buttons, got %d", n)
	}
	if doc.Node().GetElementByID("outer-count") != btn {
		t.Error("expected lookup by id")
	}
}

func TestRootCrossesShadow(t *testing.T) {
	doc := NewDocument()
	host := doc.Body().AppendChild(doc.CreateElement("x-host"))
	root, err := host.AttachShadow(ShadowRootInit{Mode: ShadowOpen})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inner := root.AppendChild(doc.CreateElement("span"))

	if inner.Root() != doc.Node() {
		t.Error("expected document as composed root")
	}
	if !inner.IsConnected() {
		t.Error("expected shadow content to be connected")
	}
}

func TestNodeByID(t *testing.T) {
	doc := NewDocument()
	host := doc.Body().AppendChild(doc.CreateElement("x-host"))
	root, _ := host.AttachShadow(ShadowRootInit{})
	inner := root.AppendChild(doc.CreateTextNode("deep"))
	detached := doc.CreateElement("div")

	if got := doc.NodeByID(inner.ID()); got != inner {
		t.Errorf("expected shadow text node, got %v", got)
	}
	if got := doc.NodeByID(root.ID()); got != root {
		t.Errorf("expected shadow root, got %v", got)
	}
	if got := doc.NodeByID(detached.ID()); got != nil {
		t.Errorf("expected detached node not found, got %v", got)
	}
}
