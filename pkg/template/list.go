package template

import (
	"fmt"
	"reflect"

	"github.com/vango-dev/elements/pkg/dom"
)

// listItem is a bound list entry.
type listItem struct {
	key     any
	view    *View
	pending *Template // template of an item still to be bound
}

// positionKey keys unkeyed items by their index.
type positionKey int

// duplicateKey disambiguates a repeated key; the repeat gets its own view.
type duplicateKey struct {
	key   any
	index int
}

func mapKey(k any) any {
	if k == nil || reflect.TypeOf(k).Comparable() {
		return k
	}
	return fmt.Sprint(k)
}

// setList reconciles the part's items with list by key. Kept items are
// updated positionally and moved into place; their nodes are never
// re-created. Items whose key disappeared are disposed with their effects.
func (c *contentPart) setList(list []*Template) {
	c.switchMode(SlotList)
	parent := c.anchor.Parent()

	old := make(map[any]*listItem, len(c.items))
	for _, it := range c.items {
		old[it.key] = it
	}

	next := make([]*listItem, 0, len(list))
	seen := make(map[any]bool, len(list))
	for i, t := range list {
		if t == nil {
			continue
		}
		var key any = positionKey(i)
		if k, ok := t.Key(); ok {
			key = mapKey(k)
		}
		if seen[key] {
			c.view.opts.logger().Debug("template: duplicate list key", "key", key)
			key = duplicateKey{key: key, index: i}
		}
		seen[key] = true

		if it, ok := old[key]; ok && it.view.t.sameShape(t) {
			delete(old, key)
			if err := it.view.Update(t); err != nil {
				c.view.opts.report(err)
			}
			next = append(next, it)
			continue
		}
		next = append(next, &listItem{key: key, pending: t})
	}

	for _, it := range c.items {
		if old[it.key] == it {
			it.view.Dispose()
		}
	}

	ref := c.anchor
	kept := make([]*listItem, 0, len(next))
	for i := len(next) - 1; i >= 0; i-- {
		it := next[i]
		if it.view == nil {
			view, err := bindBefore(parent, ref, it.pending, c.view.opts, c.view.owner)
			it.pending = nil
			if err != nil {
				c.view.opts.report(err)
				continue
			}
			it.view = view
		} else if nodes := it.view.Nodes(); !placed(nodes, ref) {
			for _, n := range nodes {
				parent.InsertBefore(n, ref)
			}
		}
		if first := it.view.first(); first != nil {
			ref = first
		}
		kept = append(kept, it)
	}

	// kept was filled back to front.
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	c.items = kept
}

// placed reports whether nodes sit contiguously right before ref.
func placed(nodes []*dom.Node, ref *dom.Node) bool {
	if len(nodes) == 0 {
		return true
	}
	for i := len(nodes) - 1; i >= 0; i-- {
		if nodes[i].NextSibling() != ref {
			return false
		}
		ref = nodes[i]
	}
	return true
}
