package template

import (
	"fmt"
	"testing"

	"github.com/vango-dev/elements/pkg/dom"
	"github.com/vango-dev/elements/pkg/reactive"
	"github.com/vango-dev/elements/pkg/render"
)

type item struct {
	id   int
	name string
}

func itemTemplates(items []item, label *reactive.Signal[string]) []*Template {
	out := make([]*Template, len(items))
	for i, it := range items {
		out[i] = HTML(`<li key="{{}}">{{}} {{}}</li>`, it.id, it.name, label)
	}
	return out
}

func TestKeyedListReconciliation(t *testing.T) {
	label := reactive.NewSignal("x")
	list := reactive.NewSignal([]item{{1, "one"}, {2, "two"}})
	items := reactive.NewMemo(func() []*Template { return itemTemplates(list.Get(), label) })

	doc := dom.NewDocument()
	ul := doc.Body().AppendChild(doc.CreateElement("ul"))
	view, err := Bind(ul, HTML(`{{}}`, items), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer view.Dispose()

	lis := ul.QuerySelectorAll("li")
	if len(lis) != 2 {
		t.Fatalf("expected 2 items, got %q", render.InnerHTML(ul))
	}
	one, two := lis[0], lis[1]
	ownerEffects := view.Owner().EffectCount()

	reactive.Batch(func() { list.Set([]item{{2, "two"}, {3, "three"}}) })

	lis = ul.QuerySelectorAll("li")
	if len(lis) != 2 {
		t.Fatalf("expected 2 items, got %q", render.InnerHTML(ul))
	}
	if lis[0] != two {
		t.Error("expected the node of key 2 to be kept")
	}
	if one.Parent() != nil {
		t.Error("expected the node of key 1 to be removed")
	}
	if lis[1].TextContent() != "three x" {
		t.Errorf("expected new item, got %q", lis[1].TextContent())
	}

	// The label effect of item 1 must be gone: only live items update.
	reactive.Batch(func() { label.Set("y") })
	if one.TextContent() != "one x" {
		t.Errorf("disposed item should not update, got %q", one.TextContent())
	}
	if lis[0].TextContent() != "two y" || lis[1].TextContent() != "three y" {
		t.Errorf("expected live items updated, got %q", render.InnerHTML(ul))
	}
	if got := view.Owner().EffectCount(); got != ownerEffects {
		t.Errorf("expected %d view effects, got %d", ownerEffects, got)
	}
}

func TestKeyedListReorderMovesNodes(t *testing.T) {
	list := reactive.NewSignal([]item{{1, "a"}, {2, "b"}, {3, "c"}})
	items := reactive.NewMemo(func() []*Template { return itemTemplates(list.Get(), reactive.NewSignal("")) })

	doc := dom.NewDocument()
	ul := doc.Body().AppendChild(doc.CreateElement("ul"))
	view, _ := Bind(ul, HTML(`{{}}`, items), Options{})
	defer view.Dispose()
	before := ul.QuerySelectorAll("li")

	doc.RecordMutations(true)
	reactive.Batch(func() { list.Set([]item{{3, "c"}, {1, "a"}, {2, "b"}}) })

	after := ul.QuerySelectorAll("li")
	if after[0] != before[2] || after[1] != before[0] || after[2] != before[1] {
		t.Fatalf("expected nodes reordered, got %q", render.InnerHTML(ul))
	}
	for _, m := range doc.TakeMutations() {
		if m.Op == dom.MutationInsertNode || m.Op == dom.MutationRemoveNode {
			t.Errorf("reorder should only move nodes, got %s", m.Op)
		}
	}
}

func TestListAppendAndUpdateNames(t *testing.T) {
	list := reactive.NewSignal([]item{{1, "item 1"}})
	items := reactive.NewMemo(func() []*Template { return itemTemplates(list.Get(), reactive.NewSignal("")) })

	doc := dom.NewDocument()
	ul := doc.Body().AppendChild(doc.CreateElement("ul"))
	view, _ := Bind(ul, HTML(`<li>head</li>{{}}<li>tail</li>`, items), Options{})
	defer view.Dispose()
	first := ul.QuerySelectorAll("li")[1]

	reactive.Batch(func() {
		list.Set([]item{{1, "updated: item 1"}, {4, "new item 1"}})
	})

	lis := ul.QuerySelectorAll("li")
	var texts []string
	for _, li := range lis {
		texts = append(texts, li.TextContent())
	}
	want := "[head updated: item 1  new item 1  tail]"
	if fmt.Sprint(texts) != want {
		t.Errorf("expected %s, got %v", want, texts)
	}
	if lis[1] != first {
		t.Error("expected kept node for key 1")
	}
}

func TestUnkeyedListIsPositional(t *testing.T) {
	_, host, view := bind(t, HTML(`{{}}`, []*Template{HTML(`<i>{{}}</i>`, "a"), HTML(`<i>{{}}</i>`, "b")}))
	first := host.FirstChild()

	view.Update(HTML(`{{}}`, []*Template{HTML(`<i>{{}}</i>`, "c")}))

	if host.FirstChild() != first || first.TextContent() != "c" {
		t.Errorf("expected first node reused positionally, got %q", render.InnerHTML(host))
	}
	if n := len(host.QuerySelectorAll("i")); n != 1 {
		t.Errorf("expected 1 item, got %d", n)
	}
}

func TestListItemEventHandlers(t *testing.T) {
	removed := 0
	list := reactive.NewSignal([]int{1, 2, 3})
	items := reactive.NewMemo(func() []*Template {
		var out []*Template
		for _, id := range list.Get() {
			id := id
			out = append(out, HTML(`<li key="{{}}" onclick="{{}}">{{}}</li>`, id, func() {
				removed = id
				list.Update(func(ids []int) []int {
					next := []int{}
					for _, x := range ids {
						if x != id {
							next = append(next, x)
						}
					}
					return next
				})
			}, id))
		}
		return out
	})

	_, host, _ := bind(t, HTML(`<ul>{{}}</ul>`, items))
	host.QuerySelectorAll("li")[1].Click()

	if removed != 2 {
		t.Errorf("expected item 2 removed, got %d", removed)
	}
	if got := render.InnerHTML(host.FirstChild()); got != "<li>1</li><li>3</li><!---->" {
		t.Errorf("unexpected list %q", got)
	}
}

func TestPositionalListRebindsHandlers(t *testing.T) {
	hit := 0
	row := func(id int) *Template {
		return HTML(`<li onclick="{{}}">{{}}</li>`, func() { hit = id }, id)
	}

	doc := dom.NewDocument()
	ul := doc.Body().AppendChild(doc.CreateElement("ul"))
	view, err := Bind(ul, HTML(`{{}}`, []*Template{row(1), row(2)}), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer view.Dispose()

	if err := view.Update(HTML(`{{}}`, []*Template{row(2)})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lis := ul.QuerySelectorAll("li")
	if len(lis) != 1 || lis[0].TextContent() != "2" {
		t.Fatalf("expected a single item 2, got %q", render.InnerHTML(ul))
	}
	lis[0].Click()
	if hit != 2 {
		t.Errorf("expected the handler of item 2, got %d", hit)
	}
}
