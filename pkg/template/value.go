package template

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/vango-dev/elements/pkg/dom"
	"github.com/vango-dev/elements/pkg/reactive"
)

// isReactive reports whether v is read through tracking: a reactive.Reader
// or a func() T getter.
func isReactive(v any) bool {
	if _, ok := v.(reactive.Reader); ok {
		return true
	}
	return isGetter(v)
}

func isGetter(v any) bool {
	if v == nil {
		return false
	}
	t := reflect.TypeOf(v)
	return t.Kind() == reflect.Func && t.NumIn() == 0 && t.NumOut() == 1
}

// read returns the current value of v, tracking reactive reads.
func read(v any) any {
	if r, ok := v.(reactive.Reader); ok {
		return r.Read()
	}
	if isGetter(v) {
		return reflect.ValueOf(v).Call(nil)[0].Interface()
	}
	return v
}

// resultType returns the static result type of a reactive value, or nil.
func resultType(v any) reflect.Type {
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Func {
		return t.Out(0)
	}
	if m, ok := t.MethodByName("Get"); ok && m.Type.NumIn() == 1 && m.Type.NumOut() == 1 {
		return m.Type.Out(0)
	}
	return nil
}

// stringify converts a resolved value to text.
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// handler converts an event slot value to a listener. A nil handler means
// no listener.
func handler(v any) dom.EventListener {
	switch h := v.(type) {
	case nil:
		return nil
	case dom.EventListener:
		return h
	case func(*dom.Event):
		return h
	case func():
		return func(*dom.Event) { h() }
	default:
		return nil
	}
}

// identity returns a comparable identity for v. Functions never compare
// equal: two closures of one literal share a code pointer but not their
// captured state, so every function value rebinds its slot.
func identity(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func, reflect.Slice, reflect.Map:
		// Captured state or contents may differ; never equal.
		return &v
	}
	if !rv.Type().Comparable() {
		return &v
	}
	return v
}
