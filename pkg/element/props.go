package element

import (
	"reflect"

	"github.com/vango-dev/elements/pkg/dom"
	"github.com/vango-dev/elements/pkg/reactive"
)

// UseProp declares a host property backed by a signal. The host property
// and the signal are one value: setting the property sets the signal and
// reading it reads the signal. The initial value is, in order of
// precedence, a value assigned to the property before the element was
// upgraded, the value the property had at the last disconnect, then
// initial. Calling UseProp twice with the same name in one setup returns
// the same signal when T matches.
func UseProp[T any](c *Context, name string, initial T) *reactive.Signal[T] {
	inst := c.inst
	if !c.done {
		if b, ok := inst.props[name]; ok {
			if sig, ok := b.signal.(*reactive.Signal[T]); ok {
				return sig
			}
			c.Logger().Warn("element: property redeclared with another type", "property", name)
		}
	}

	value := initial
	if v, ok := inst.property(name); ok {
		if t, ok := convert[T](v); ok {
			value = t
		}
	}
	sig := reactive.NewSignal(value)
	if c.done {
		return sig
	}

	set := func(v any) {
		t, ok := convert[T](v)
		if !ok {
			c.Logger().Warn("element: property value has wrong type",
				"property", name,
				"type", reflect.TypeOf(v))
			return
		}
		sig.Set(t)
	}
	inst.props[name] = propBinding{
		signal: sig,
		get:    func() any { return sig.Peek() },
		set:    set,
	}

	prev, had := inst.host.DefineProperty(name, dom.PropertyAccessor{
		Get: func() any {
			if b, ok := inst.props[name]; ok {
				return b.signal.(reactive.Reader).Read()
			}
			v, _ := inst.property(name)
			return v
		},
		Set: func(v any) {
			if b, ok := inst.props[name]; ok {
				b.set(v)
				return
			}
			inst.storeProperty(name, v)
		},
	})
	if had {
		set(prev)
	}
	return sig
}

// Getter exposes fn as a read-only host property and returns it as a memo
// for use in the template. An empty name only creates the memo.
func Getter[T any](c *Context, name string, fn func() T) *reactive.Memo[T] {
	memo := reactive.NewMemo(fn)
	if name == "" || c.done {
		return memo
	}
	inst := c.inst
	inst.host.DefineProperty(name, dom.PropertyAccessor{
		Get: func() any { return memo.Get() },
	})
	inst.getters = append(inst.getters, name)
	return memo
}

// convert turns a property value into T. Assignable values pass through;
// numeric kinds convert between each other. nil yields the zero value.
func convert[T any](v any) (T, bool) {
	var zero T
	if v == nil {
		return zero, true
	}
	if t, ok := v.(T); ok {
		return t, true
	}
	rv := reflect.ValueOf(v)
	target := reflect.TypeFor[T]()
	if !rv.CanConvert(target) {
		return zero, false
	}
	if isNumeric(rv.Kind()) != isNumeric(target.Kind()) {
		return zero, false
	}
	return rv.Convert(target).Interface().(T), true
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
