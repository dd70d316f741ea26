// Package demo holds the my-element and nested-element showcase components
// and the page that hosts them.
package demo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vango-dev/elements/pkg/css"
	"github.com/vango-dev/elements/pkg/dom"
	"github.com/vango-dev/elements/pkg/element"
	"github.com/vango-dev/elements/pkg/reactive"
	"github.com/vango-dev/elements/pkg/template"
)

const (
	// Tag is the tag my-element is defined under.
	Tag = "my-element"

	// NestedTag is the tag nested-element is defined under, in my-element's
	// scoped registry only.
	NestedTag = "nested-element"
)

// MockPage is the page the server-rendered definition is merged into.
const MockPage = `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Document</title>
</head>
<body>
	<my-element heading="title A"></my-element>
	<button>toggle heading</button>
</body>
</html>
`

// Item is one entry of my-element's list.
type Item struct {
	ID   int
	Name string
}

var initialItems = []Item{
	{ID: 1, Name: "item 1"},
	{ID: 2, Name: "item 2"},
	{ID: 3, Name: "item 3"},
}

// Nested returns the nested-element definition: a text attribute and a
// count property.
func Nested() *element.Definition {
	return element.Define(func(c *element.Context) *template.Template {
		count := element.UseProp(c, "count", 0)
		text := c.Attr("text")
		return template.HTML(`<strong>{{}}</strong> <span>count: {{}}</span>`, text, count)
	}, element.ObservedAttributes("text"), element.ShadowRoot(dom.ShadowOpen))
}

// MyElement returns the my-element definition. nested-element resolves
// through scoped, which must already hold it.
func MyElement(scoped *element.Registry) *element.Definition {
	return element.Define(setup,
		element.FormAssociated(),
		element.ObservedAttributes("heading"),
		element.ScopedRegistry(scoped),
	)
}

func setup(c *element.Context) *template.Template {
	count := element.UseProp(c, "count", 0)
	heading := c.Attr("heading")
	list := reactive.NewSignal(append([]Item(nil), initialItems...))
	internals := c.Internals()

	reactive.Watch(func() {
		c.Logger().Debug("count changed", "count", count.Get())
	})

	redValue := reactive.NewMemo(func() int {
		return min(count.Get()*10, 255)
	})

	syncFormValue := func() {
		internals.SetFormValue(strconv.Itoa(count.Peek()))
	}
	c.ClientOnly(syncFormValue)

	increment := func() {
		count.Set(count.Peek() + 1)
		c.ClientOnly(syncFormValue)
	}

	c.AdoptStyleSheet(css.New(`
		:host {
			display: grid;
			gap: 0.5rem;
			padding: 1rem;
			margin: 1rem 0;
			background-color: rgb({{}}, 0, 0);
			color: white;
			font-size: 2rem;
			font-family: sans-serif;
		}
		h1 {
			margin: 0;
		}
		button {
			font: inherit;
			padding: 0.5rem;
		}
		button, li {
			cursor: pointer;
		}
	`, redValue))

	next := 1
	addItem := func() {
		cur := list.Peek()
		items := make([]Item, 0, len(cur)+1)
		for _, it := range cur {
			items = append(items, Item{ID: it.ID, Name: "updated: " + strings.TrimPrefix(it.Name, "updated: ")})
		}
		items = append(items, Item{ID: next + 3, Name: fmt.Sprintf("new item %d", next)})
		next++
		list.Set(items)
	}
	removeItem := func(id int) {
		cur := list.Peek()
		items := make([]Item, 0, len(cur))
		for _, it := range cur {
			if it.ID != id {
				items = append(items, it)
			}
		}
		list.Set(items)
	}

	rows := reactive.NewMemo(func() []*template.Template {
		items := list.Get()
		out := make([]*template.Template, len(items))
		for i, it := range items {
			id := it.ID
			out[i] = template.Keyed(id, template.HTML(`<li onclick="{{}}">{{}}</li>`,
				func() { removeItem(id) }, it.Name))
		}
		return out
	})

	// Rendered once from the initial list; not reactive.
	var after []*template.Template
	for _, it := range list.Peek() {
		after = append(after, template.Keyed(it.ID, template.HTML(`<li>{{}} after</li>`, it.Name)))
	}

	custom := element.Getter(c, "customGetter", func() string { return "TESTING CUSTOM GETTER" })

	return template.HTML(`
		<div><h1>{{}}</h1></div>
		<button onclick="{{}}">increment</button>
		<output>count: {{}}</output>
		<div>
			<slot></slot>
		</div>
		<span>this is a scoped element:</span>
		<nested-element text="test" prop:count="{{}}"></nested-element>
		<h2>nested templates and loops:</h2>
		<ul>
			{{}}
			{{}}
			{{}}
		</ul>
		<button onclick="{{}}">Add List Item</button>
		<h2>Test</h2>
		<div><span>test custom getter: </span>{{}}</div>
	`,
		heading,
		increment,
		count,
		count,
		template.HTML(`<li onclick="{{}}">item</li>`, addItem),
		rows,
		after,
		addItem,
		custom,
	)
}

// Register defines nested-element in a fresh scoped registry and
// my-element in reg under Tag. A nil reg means the global registry.
func Register(reg *element.Registry) (*element.Definition, error) {
	scoped := element.NewRegistry(true)
	if err := Nested().Register(scoped).Define(NestedTag); err != nil {
		return nil, err
	}
	def := MyElement(scoped)
	if reg != nil {
		def.Register(reg)
	}
	if err := def.Define(Tag); err != nil {
		return nil, err
	}
	return def, nil
}
