package template

import (
	"strconv"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/vango-dev/elements/internal/errors"
)

// Markers are rewritten to private-use delimited indexes before tokenizing
// so they survive the tokenizer in text and attribute values alike.
const (
	marker      = "{{}}"
	markerOpen  = '\uE000'
	markerClose = '\uE001'
)

type skelKind uint8

const (
	skelElement skelKind = iota
	skelText
	skelComment
	skelSlot // content slot
)

// skelNode is a node of a parsed template skeleton.
type skelNode struct {
	kind     skelKind
	tag      string
	text     string
	slot     int
	attrs    []skelAttr
	children []*skelNode
}

// piece is a literal string or a slot reference within an attribute value.
type piece struct {
	text string
	slot int // -1 for literal
}

type attrKind uint8

const (
	attrStatic attrKind = iota
	attrDynamic
	attrEvent
	attrProperty
)

// skelAttr is an attribute of a skeleton element.
type skelAttr struct {
	kind   attrKind
	name   string // attribute name, event type or property name
	pieces []piece
}

func (a skelAttr) literal() string {
	var b strings.Builder
	for _, p := range a.pieces {
		b.WriteString(p.text)
	}
	return b.String()
}

// skeleton is the parsed, immutable form of a format string.
type skeleton struct {
	format string
	roots  []*skelNode
	slots  []Slot // parse-time classification, content slots as SlotText
	err    error
}

var cache sync.Map // format -> *skeleton

// parse returns the cached skeleton of format, parsing it on first use.
func parse(format string) *skeleton {
	if s, ok := cache.Load(format); ok {
		return s.(*skeleton)
	}
	s := parseSkeleton(format)
	actual, _ := cache.LoadOrStore(format, s)
	return actual.(*skeleton)
}

func parseSkeleton(format string) *skeleton {
	s := &skeleton{format: format}

	var src strings.Builder
	n := 0
	for rest := format; ; {
		i := strings.Index(rest, marker)
		if i < 0 {
			src.WriteString(rest)
			break
		}
		src.WriteString(rest[:i])
		src.WriteRune(markerOpen)
		src.WriteString(strconv.Itoa(n))
		src.WriteRune(markerClose)
		rest = rest[i+len(marker):]
		n++
	}
	s.slots = make([]Slot, n)
	for i := range s.slots {
		s.slots[i] = Slot{Index: i, Kind: SlotText}
	}

	root := &skelNode{kind: skelElement}
	stack := []*skelNode{root}
	top := func() *skelNode { return stack[len(stack)-1] }

	z := html.NewTokenizer(strings.NewReader(src.String()))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		tok := z.Token()

		switch tt {
		case html.TextToken:
			s.appendText(top(), tok.Data)

		case html.CommentToken:
			if strings.ContainsRune(tok.Data, markerOpen) {
				s.fail("marker inside comment <!--%s-->", tok.Data)
			}
			top().children = append(top().children, &skelNode{kind: skelComment, text: tok.Data})

		case html.StartTagToken, html.SelfClosingTagToken:
			el := &skelNode{kind: skelElement, tag: tok.Data}
			if strings.ContainsRune(tok.Data, markerOpen) {
				s.fail("marker in tag name <%s>", tok.Data)
			}
			for _, a := range tok.Attr {
				s.appendAttr(el, a)
			}
			top().children = append(top().children, el)
			if tt == html.StartTagToken && !voidElements[el.tag] {
				stack = append(stack, el)
			}

		case html.EndTagToken:
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].tag == tok.Data {
					stack = stack[:i]
					break
				}
			}
		}
	}

	s.roots = root.children
	return s
}

func (s *skeleton) fail(format string, args ...any) {
	if s.err == nil {
		s.err = errors.New(errors.ErrTemplateArity.Code).WithDetailf(format, args...)
	}
}

// appendText splits text at markers into static text and content slots.
func (s *skeleton) appendText(parent *skelNode, text string) {
	for _, p := range splitPieces(text) {
		if p.slot < 0 {
			parent.children = append(parent.children, &skelNode{kind: skelText, text: p.text})
			continue
		}
		parent.children = append(parent.children, &skelNode{kind: skelSlot, slot: p.slot})
	}
}

func (s *skeleton) appendAttr(el *skelNode, a html.Attribute) {
	name := a.Key
	if a.Namespace != "" {
		name = a.Namespace + ":" + a.Key
	}
	if strings.ContainsRune(name, markerOpen) {
		s.fail("marker in attribute name of <%s>", el.tag)
		return
	}

	attr := skelAttr{kind: attrStatic, name: name, pieces: splitPieces(a.Val)}
	dynamic := false
	for _, p := range attr.pieces {
		if p.slot >= 0 {
			dynamic = true
		}
	}

	switch {
	case strings.HasPrefix(name, "prop:"):
		attr.kind = attrProperty
		attr.name = strings.TrimPrefix(name, "prop:")
	case dynamic && strings.HasPrefix(name, "on") && len(name) > 2:
		attr.kind = attrEvent
		attr.name = name[2:]
	case dynamic:
		attr.kind = attrDynamic
	}

	kind := SlotAttribute
	switch attr.kind {
	case attrEvent:
		kind = SlotEvent
		if len(attr.pieces) != 1 {
			s.fail("event attribute %s must be a single marker", name)
		}
	case attrProperty:
		kind = SlotProperty
	}
	for _, p := range attr.pieces {
		if p.slot >= 0 {
			s.slots[p.slot] = Slot{Index: p.slot, Kind: kind, Name: attr.name}
		}
	}
	el.attrs = append(el.attrs, attr)
}

// splitPieces splits s at rewritten markers. Empty literals are dropped.
func splitPieces(s string) []piece {
	var out []piece
	for {
		i := strings.IndexRune(s, markerOpen)
		if i < 0 {
			break
		}
		j := strings.IndexRune(s[i:], markerClose)
		if j < 0 {
			break
		}
		if i > 0 {
			out = append(out, piece{text: s[:i], slot: -1})
		}
		n, err := strconv.Atoi(s[i+len(string(markerOpen)) : i+j])
		if err != nil {
			out = append(out, piece{text: s[i : i+j+len(string(markerClose))], slot: -1})
		} else {
			out = append(out, piece{slot: n})
		}
		s = s[i+j+len(string(markerClose)):]
	}
	if s != "" || len(out) == 0 {
		out = append(out, piece{text: s, slot: -1})
	}
	return out
}

// voidElements cannot have children; the tokenizer reports them as start
// tags without an end tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}
