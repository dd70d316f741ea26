// Package css describes stylesheets whose text depends on reactive values.
//
// A StyleSheet is created from a format string where each {{}} takes the
// value at the same position, like template.HTML. Reactive values
// (reactive.Reader, func() T getters) are read when the text is computed,
// so an element that adopts the sheet re-applies it when they change:
//
//	sheet := css.New(`:host { background-color: rgb({{}}, 0, 0); }`, red)
package css

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/vango-dev/elements/internal/errors"
	"github.com/vango-dev/elements/pkg/reactive"
)

const marker = "{{}}"

// StyleSheet is a stylesheet description.
type StyleSheet struct {
	parts  []string
	values []any
	text   *reactive.Memo[string]
	err    error
}

// New creates a stylesheet description. A mismatch between markers and
// values is reported by Err; the missing values render empty.
func New(format string, values ...any) *StyleSheet {
	s := &StyleSheet{parts: strings.Split(format, marker), values: values}
	if n := len(s.parts) - 1; n != len(values) {
		s.err = errors.New(errors.ErrTemplateArity.Code).
			WithDetailf("stylesheet has %d markers, got %d values", n, len(values))
	}
	s.text = reactive.NewMemo(s.compute)
	return s
}

// Err returns the construction error, if any.
func (s *StyleSheet) Err() error { return s.err }

// Text returns the current CSS text. Reading it from an effect tracks the
// sheet's reactive values.
func (s *StyleSheet) Text() string {
	return s.text.Get()
}

// Read implements reactive.Reader.
func (s *StyleSheet) Read() any {
	return s.Text()
}

// Reactive reports whether any value of the sheet is reactive.
func (s *StyleSheet) Reactive() bool {
	for _, v := range s.values {
		if isReactive(v) {
			return true
		}
	}
	return false
}

func (s *StyleSheet) compute() string {
	var b strings.Builder
	for i, part := range s.parts {
		b.WriteString(part)
		if i < len(s.parts)-1 && i < len(s.values) {
			b.WriteString(format(read(s.values[i])))
		}
	}
	return b.String()
}

func isReactive(v any) bool {
	if _, ok := v.(reactive.Reader); ok {
		return true
	}
	if v == nil {
		return false
	}
	t := reflect.TypeOf(v)
	return t.Kind() == reflect.Func && t.NumIn() == 0 && t.NumOut() == 1
}

func read(v any) any {
	if r, ok := v.(reactive.Reader); ok {
		return r.Read()
	}
	if isReactive(v) {
		return reflect.ValueOf(v).Call(nil)[0].Interface()
	}
	return v
}

func format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case *StyleSheet:
		return x.Text()
	default:
		return fmt.Sprint(x)
	}
}
