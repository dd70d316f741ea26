package dom

import (
	"errors"
	"net/url"
)

// ValidityState mirrors the platform's validity flags.
type ValidityState struct {
	ValueMissing    bool
	TypeMismatch    bool
	PatternMismatch bool
	TooLong         bool
	TooShort        bool
	RangeUnderflow  bool
	RangeOverflow   bool
	StepMismatch    bool
	BadInput        bool
	CustomError     bool
}

// Valid reports whether no flag is set.
func (v ValidityState) Valid() bool {
	return v == ValidityState{}
}

// ElementInternals is the form-association handle of a form-associated
// custom element.
type ElementInternals struct {
	host     *Node
	value    any
	state    any
	validity ValidityState
	message  string
}

// ErrNotFormAssociated is returned by AttachInternals for elements whose
// definition is not form-associated.
var ErrNotFormAssociated = errors.New("dom: element is not form-associated")

// AttachInternals returns the element's internals handle. It may only be
// called on form-associated custom elements; repeated calls return the
// same handle.
func (n *Node) AttachInternals() (*ElementInternals, error) {
	if n.def == nil || !n.def.FormAssociated() {
		return nil, ErrNotFormAssociated
	}
	if n.internals == nil {
		n.internals = &ElementInternals{host: n}
	}
	return n.internals, nil
}

// Host returns the element the internals belong to.
func (i *ElementInternals) Host() *Node { return i.host }

// SetFormValue sets the value submitted with the owning form. value is a
// string, url.Values or nil; state is the optional restore state.
func (i *ElementInternals) SetFormValue(value any, state ...any) {
	i.value = value
	if len(state) > 0 {
		i.state = state[0]
	} else {
		i.state = value
	}
}

// FormValue returns the current form value.
func (i *ElementInternals) FormValue() any { return i.value }

// State returns the restore state passed to SetFormValue.
func (i *ElementInternals) State() any { return i.state }

// Form returns the nearest ancestor form element in the host's tree.
func (i *ElementInternals) Form() *Node {
	for cur := i.host.parent; cur != nil; cur = cur.parent {
		if cur.Type == ElementNode && cur.tag == "form" {
			return cur
		}
	}
	return nil
}

// SetValidity sets the validity flags and message.
func (i *ElementInternals) SetValidity(flags ValidityState, message string) {
	i.validity = flags
	i.message = message
}

// Validity returns the validity flags.
func (i *ElementInternals) Validity() ValidityState { return i.validity }

// ValidationMessage returns the message passed to SetValidity.
func (i *ElementInternals) ValidationMessage() string { return i.message }

// CheckValidity reports validity and fires "invalid" on the host when the
// element is invalid.
func (i *ElementInternals) CheckValidity() bool {
	if i.validity.Valid() {
		return true
	}
	i.host.DispatchEvent(&Event{Type: "invalid"})
	return false
}

// FormData collects the values a form would submit: named input and
// textarea elements plus named form-associated custom elements.
func FormData(form *Node) url.Values {
	values := url.Values{}
	form.Walk(func(n *Node) bool {
		if n.Type != ElementNode || n == form {
			return true
		}
		name, ok := n.GetAttribute("name")
		if !ok || name == "" {
			return true
		}
		if _, disabled := n.GetAttribute("disabled"); disabled {
			return true
		}
		switch {
		case n.internals != nil:
			switch v := n.internals.value.(type) {
			case string:
				values.Add(name, v)
			case url.Values:
				for k, vs := range v {
					for _, s := range vs {
						values.Add(k, s)
					}
				}
			}
		case n.tag == "input" || n.tag == "select":
			v, _ := n.GetAttribute("value")
			values.Add(name, v)
		case n.tag == "textarea":
			values.Add(name, n.TextContent())
		}
		return true
	})
	return values
}

// ResetForm resets every form-associated custom element in form by calling
// its definition's FormReset, if it implements FormResetter.
func ResetForm(form *Node) {
	form.doc.task(func() {
		form.Walk(func(n *Node) bool {
			if n.internals == nil {
				return true
			}
			if r, ok := n.def.(FormResetter); ok {
				form.doc.guard("formResetCallback", n, func() { r.FormReset(n) })
			}
			return true
		})
	})
}
