package dom

// Event is a dispatched DOM event.
type Event struct {
	Type          string
	Target        *Node
	CurrentTarget *Node
	Detail        any

	// Bubbles makes the event propagate to ancestors.
	Bubbles bool

	// Composed lets a bubbling event cross shadow boundaries to the host.
	Composed bool

	defaultPrevented bool
	stopped          bool
}

// NewEvent creates a bubbling, composed event of the given type.
func NewEvent(typ string) *Event {
	return &Event{Type: typ, Bubbles: true, Composed: true}
}

// PreventDefault marks the event's default action as cancelled.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// StopPropagation stops the event from reaching further nodes.
func (e *Event) StopPropagation() { e.stopped = true }

// EventListener handles an event.
type EventListener func(*Event)

type listenerEntry struct {
	fn      EventListener
	removed bool
}

// AddEventListener registers fn for events of type typ and returns a
// function that removes it.
func (n *Node) AddEventListener(typ string, fn EventListener) (remove func()) {
	if n.listeners == nil {
		n.listeners = make(map[string][]*listenerEntry)
	}
	entry := &listenerEntry{fn: fn}
	n.listeners[typ] = append(n.listeners[typ], entry)

	return func() {
		entry.removed = true
		list := n.listeners[typ]
		for i, e := range list {
			if e == entry {
				n.listeners[typ] = append(list[:i], list[i+1:]...)
				return
			}
		}
	}
}

// ListenerCount returns the number of listeners for typ.
func (n *Node) ListenerCount(typ string) int {
	return len(n.listeners[typ])
}

// DispatchEvent delivers ev to n and, if it bubbles, to its ancestors. It
// runs as one reactive task. It returns false if a listener called
// PreventDefault.
func (n *Node) DispatchEvent(ev *Event) bool {
	ev.Target = n
	n.doc.task(func() {
		for cur := n; cur != nil && !ev.stopped; cur = cur.eventParent(ev) {
			cur.invoke(ev)
			if !ev.Bubbles {
				break
			}
		}
	})
	return !ev.defaultPrevented
}

// Click dispatches a bubbling, composed "click" event.
func (n *Node) Click() {
	n.DispatchEvent(NewEvent("click"))
}

func (n *Node) eventParent(ev *Event) *Node {
	if n.parent != nil {
		return n.parent
	}
	if n.Type == ShadowRootNode && ev.Composed {
		return n.host
	}
	return nil
}

func (n *Node) invoke(ev *Event) {
	ev.CurrentTarget = n
	entries := append([]*listenerEntry(nil), n.listeners[ev.Type]...)
	for _, e := range entries {
		if e.removed {
			continue
		}
		n.doc.guard("event listener "+ev.Type, n, func() { e.fn(ev) })
	}
}
