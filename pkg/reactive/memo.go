package reactive

import "sync"

type memoState uint8

const (
	memoDirty memoState = iota // must recompute
	memoCheck                  // a dependency may have changed
	memoClean                  // cached value is current
)

// Memo is a cached computation that tracks its dependencies.
//
// Memos are lazy: the compute function runs on the first Get and afterwards
// only when a recorded dependency's version advanced. Dependencies are
// re-recorded on every run, so branches may read different signals.
//
// A memo is itself a source: effects and other memos reading it are
// notified when it may have changed, and its version only advances when a
// recompute produces a value that differs from the cached one.
type Memo[T any] struct {
	base signalBase

	compute func() T
	value   T
	mu      sync.Mutex

	state    memoState
	computed bool

	// failed is set when the last recompute panicked; the memo stays dirty
	// and keeps propagating invalidations until a run succeeds.
	failed bool

	sources []dependency

	equal func(T, T) bool

	// computing prevents infinite recursion through circular dependencies.
	computing bool

	// notifying prevents re-entrant propagation through cycles.
	notifying bool
}

// NewMemo creates a memo. The computation runs lazily on first read.
func NewMemo[T any](compute func() T) *Memo[T] {
	m := &Memo[T]{
		base:    signalBase{id: nextID()},
		compute: compute,
	}
	m.base.refresh = m.refresh
	return m
}

// Get returns the memo's value, recomputing if necessary, and subscribes
// the current listener.
func (m *Memo[T]) Get() T {
	m.refresh()
	track(&m.base)

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value
}

// Read implements Reader.
func (m *Memo[T]) Read() any {
	return m.Get()
}

// Peek returns the memo's value without subscribing. It still recomputes
// when stale.
func (m *Memo[T]) Peek() T {
	m.refresh()

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value
}

// MarkDirty invalidates the memo and propagates to subscribers.
// Implements the Listener interface.
func (m *Memo[T]) MarkDirty() {
	if m.notifying {
		return
	}
	switch {
	case m.state == memoClean:
		m.state = memoCheck
	case !m.failed:
		// Already stale; subscribers were told when it became stale.
		return
	}

	m.notifying = true
	defer func() { m.notifying = false }()
	m.base.notifySubscribers()
}

// ID returns the unique identifier for this memo.
func (m *Memo[T]) ID() uint64 {
	return m.base.id
}

// Version returns the number of times the memo's value changed.
func (m *Memo[T]) Version() uint64 {
	m.refresh()
	return m.base.version
}

// WithEquals configures the memo with a custom equality function.
func (m *Memo[T]) WithEquals(fn func(T, T) bool) *Memo[T] {
	m.equal = fn
	return m
}

// addSource implements tracker.
func (m *Memo[T]) addSource(source *signalBase) {
	m.sources = addDependency(m.sources, source)
}

// refresh brings the cached value up to date.
func (m *Memo[T]) refresh() {
	if m.state == memoClean || m.computing {
		return
	}
	if m.state == memoCheck {
		if !changed(m.sources) {
			m.state = memoClean
			return
		}
		m.state = memoDirty
	}
	m.recompute()
}

// recompute runs the computation inside a fresh tracking frame.
func (m *Memo[T]) recompute() {
	m.computing = true
	defer func() { m.computing = false }()

	unsubscribeAll(m.sources, m)
	m.sources = m.sources[:0]

	value, err := evaluate(m, "memo", m.compute)
	if err != nil {
		m.state = memoDirty
		m.failed = true
		report(err)
		return
	}
	m.failed = false

	m.mu.Lock()
	if !m.computed || !m.equals(m.value, value) {
		m.value = value
		m.base.version++
	}
	m.computed = true
	m.mu.Unlock()

	m.state = memoClean
}

func (m *Memo[T]) equals(a, b T) bool {
	if m.equal != nil {
		return m.equal(a, b)
	}
	return defaultEquals(a, b)
}

// evaluate runs fn with l as the current listener. The previous listener is
// restored on every exit path and a panic is returned as an E107 error.
func evaluate[T any](l tracker, where string, fn func() T) (value T, err error) {
	old := setCurrentListener(l)
	defer func() {
		setCurrentListener(old)
		if r := recover(); r != nil {
			err = recovered(where, r)
		}
	}()
	return fn(), nil
}

var _ tracker = (*Memo[int])(nil)
