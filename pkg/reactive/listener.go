package reactive

// Listener is anything that can be notified when a dependency changes.
// Memos and effects implement it.
type Listener interface {
	// MarkDirty notifies the listener that one of its dependencies changed.
	// For memos this invalidates the cache; for effects it queues a re-run.
	MarkDirty()

	// ID returns a unique identifier for this listener.
	ID() uint64
}

// Cleanup is a function returned by effects to clean up resources.
// It is called before the effect re-runs and when the effect is disposed.
type Cleanup func()

// Reader is the untyped read side of a reactive value. Signal and Memo
// implement it; template bindings use it to read values of unknown type.
type Reader interface {
	// Read returns the current value, tracking it like Get.
	Read() any
}

// tracker is a listener that records the sources it reads.
type tracker interface {
	Listener
	addSource(source *signalBase)
}

// dependency is a source together with the version observed when it was read.
type dependency struct {
	source  *signalBase
	version uint64
}

// addDependency appends source to deps unless it is already present.
func addDependency(deps []dependency, source *signalBase) []dependency {
	for _, d := range deps {
		if d.source == source {
			return deps
		}
	}
	return append(deps, dependency{source: source, version: source.version})
}

// changed reports whether any dependency advanced past its recorded version.
// Memo sources are brought up to date first so that a memo which recomputed
// to an equal value does not count as a change.
func changed(deps []dependency) bool {
	for _, d := range deps {
		if d.source.refresh != nil {
			d.source.refresh()
		}
		if d.source.version != d.version {
			return true
		}
	}
	return false
}

// unsubscribeAll removes l from every source in deps.
func unsubscribeAll(deps []dependency, l Listener) {
	for _, d := range deps {
		d.source.unsubscribe(l)
	}
}
