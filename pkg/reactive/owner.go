package reactive

import "sync"

// Owner represents a scope that owns effects, cleanups and child owners.
// Disposing an Owner disposes everything it owns, children first, in
// reverse creation order.
//
// Owners form a hierarchy: an element instance owns its template view,
// which owns one child owner per keyed list item or nested template.
type Owner struct {
	id     uint64
	parent *Owner

	mu       sync.Mutex
	children []*Owner
	effects  []*Effect
	cleanups []func()
	disposed bool
}

// NewOwner creates a new Owner registered as a child of parent.
// If parent is nil, creates a root Owner.
func NewOwner(parent *Owner) *Owner {
	o := &Owner{
		id:     nextID(),
		parent: parent,
	}
	if parent != nil {
		parent.addChild(o)
	}
	return o
}

// ID returns the unique identifier for this Owner.
func (o *Owner) ID() uint64 {
	return o.id
}

// Parent returns the parent Owner, or nil for a root.
func (o *Owner) Parent() *Owner {
	return o.parent
}

// IsDisposed reports whether this Owner has been disposed.
func (o *Owner) IsDisposed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.disposed
}

// Run runs fn with o as the current owner.
func (o *Owner) Run(fn func()) {
	WithOwner(o, fn)
}

// EffectCount returns the number of live effects owned directly by o.
func (o *Owner) EffectCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, e := range o.effects {
		if !e.disposed {
			n++
		}
	}
	return n
}

func (o *Owner) addChild(child *Owner) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.children = append(o.children, child)
}

func (o *Owner) removeChild(child *Owner) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

// registerEffect adds an effect; a disposed owner disposes it right away.
func (o *Owner) registerEffect(e *Effect) {
	o.mu.Lock()
	if o.disposed {
		o.mu.Unlock()
		e.disposed = true
		return
	}
	if len(o.effects) == cap(o.effects) {
		// Drop effects disposed individually before growing.
		live := o.effects[:0]
		for _, x := range o.effects {
			if !x.disposed {
				live = append(live, x)
			}
		}
		clear(o.effects[len(live):])
		o.effects = live
	}
	o.effects = append(o.effects, e)
	o.mu.Unlock()
}

// OnCleanup registers fn to run when o is disposed. On an already disposed
// owner fn runs immediately.
func (o *Owner) OnCleanup(fn func()) {
	o.mu.Lock()
	if o.disposed {
		o.mu.Unlock()
		fn()
		return
	}
	o.cleanups = append(o.cleanups, fn)
	o.mu.Unlock()
}

// Dispose disposes this Owner and all its children, effects and cleanups.
func (o *Owner) Dispose() {
	o.mu.Lock()
	if o.disposed {
		o.mu.Unlock()
		return
	}
	o.disposed = true
	children := o.children
	effects := o.effects
	cleanups := o.cleanups
	o.children, o.effects, o.cleanups = nil, nil, nil
	o.mu.Unlock()

	if o.parent != nil {
		o.parent.removeChild(o)
	}

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}
	for i := len(effects) - 1; i >= 0; i-- {
		effects[i].Dispose()
	}
	for i := len(cleanups) - 1; i >= 0; i-- {
		runCleanup(cleanups[i])
	}
}

func runCleanup(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			report(recovered("owner cleanup", r))
		}
	}()
	fn()
}

// OnCleanup registers fn with the current owner. Without an owner it does
// nothing.
func OnCleanup(fn func()) {
	if owner := getCurrentOwner(); owner != nil {
		owner.OnCleanup(fn)
	}
}

// CurrentOwner returns the current goroutine's owner, or nil.
func CurrentOwner() *Owner {
	return getCurrentOwner()
}
