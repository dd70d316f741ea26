package template

import (
	"reflect"
	"strings"

	"github.com/vango-dev/elements/internal/errors"
	"github.com/vango-dev/elements/pkg/reactive"
)

// SlotKind is the kind of an interpolation point.
type SlotKind uint8

const (
	// SlotText is content rendered as a text node.
	SlotText SlotKind = iota
	// SlotAttribute is all or part of an attribute value.
	SlotAttribute
	// SlotEvent is an on* attribute holding an event handler.
	SlotEvent
	// SlotProperty is a prop:* attribute that sets an element property.
	SlotProperty
	// SlotList is content holding a list of templates.
	SlotList
	// SlotNested is content holding a single template.
	SlotNested
)

// String returns the string representation of the SlotKind.
func (k SlotKind) String() string {
	switch k {
	case SlotText:
		return "Text"
	case SlotAttribute:
		return "Attribute"
	case SlotEvent:
		return "Event"
	case SlotProperty:
		return "Property"
	case SlotList:
		return "List"
	case SlotNested:
		return "Nested"
	default:
		return "Unknown"
	}
}

// Slot describes one interpolation point.
type Slot struct {
	Index int
	Kind  SlotKind

	// Name is the attribute name, event type or property name for
	// attribute-position slots.
	Name string
}

// Template is an immutable template description: a parsed skeleton plus
// the values for its slots.
type Template struct {
	skel   *skeleton
	values []any
	key    any
	keyed  bool
	err    error
}

// HTML creates a template. Each {{}} in format marks a slot that takes the
// value at the same position. Values may be plain values, reactive readers
// (Signal, Memo), func() T getters, *Template, []*Template, or event
// handlers (func(), func(*dom.Event)) for on* attributes.
//
// The format is parsed once per process and cached. A mismatch between
// markers and values is reported by Err and by Bind.
//
// Example:
//
//	template.HTML(`<button onclick="{{}}">count: {{}}</button>`, increment, count)
func HTML(format string, values ...any) *Template {
	t := &Template{skel: parse(format), values: values}
	switch {
	case t.skel.err != nil:
		t.err = t.skel.err
	case len(t.skel.slots) != len(values):
		t.err = errors.New(errors.ErrTemplateArity.Code).
			WithDetailf("format has %d markers, got %d values", len(t.skel.slots), len(values))
	}
	return t
}

// Keyed returns a copy of t with an explicit list key.
func Keyed(key any, t *Template) *Template {
	c := *t
	c.key = key
	c.keyed = true
	return &c
}

// Err returns the template's construction error, if any.
func (t *Template) Err() error { return t.err }

// Format returns the format string.
func (t *Template) Format() string { return t.skel.format }

// Values returns the slot values.
func (t *Template) Values() []any { return t.values }

// Key returns the template's list key: the Keyed key, else the value of the
// key attribute of its first root element.
func (t *Template) Key() (any, bool) {
	if t.keyed {
		return t.key, true
	}
	for _, root := range t.skel.roots {
		if root.kind != skelElement {
			continue
		}
		for _, a := range root.attrs {
			if a.name != "key" || a.kind == attrEvent || a.kind == attrProperty {
				continue
			}
			if len(a.pieces) == 1 && a.pieces[0].slot >= 0 {
				var v any
				reactive.Untracked(func() { v = read(t.value(a.pieces[0].slot)) })
				return v, true
			}
			var b strings.Builder
			reactive.Untracked(func() { b.WriteString(t.compose(a.pieces)) })
			return b.String(), true
		}
		break
	}
	return nil, false
}

// Slots returns the slot descriptions. Content slots are refined from the
// Go type of their value.
func (t *Template) Slots() []Slot {
	out := make([]Slot, len(t.skel.slots))
	copy(out, t.skel.slots)
	for i := range out {
		if out[i].Kind == SlotText {
			out[i].Kind = contentKind(t.value(i))
		}
	}
	return out
}

// sameShape reports whether t and other share a skeleton.
func (t *Template) sameShape(other *Template) bool {
	return other != nil && t.skel == other.skel
}

func (t *Template) value(i int) any {
	if i < len(t.values) {
		return t.values[i]
	}
	return nil
}

// compose concatenates attribute pieces with resolved slot values.
func (t *Template) compose(pieces []piece) string {
	var b strings.Builder
	for _, p := range pieces {
		if p.slot < 0 {
			b.WriteString(p.text)
			continue
		}
		b.WriteString(stringify(read(t.value(p.slot))))
	}
	return b.String()
}

var (
	templateType = reflect.TypeOf((*Template)(nil))
	listType     = reflect.TypeOf([]*Template(nil))
)

// contentKind classifies a content value by its Go type. Reactive values
// are classified by the result type of their Get method or getter func.
func contentKind(v any) SlotKind {
	if v == nil {
		return SlotText
	}
	typ := reflect.TypeOf(v)
	if isReactive(v) {
		typ = resultType(v)
	}
	switch typ {
	case templateType:
		return SlotNested
	case listType:
		return SlotList
	default:
		return SlotText
	}
}
