package reactive

// Effect is a reactive side effect. It runs once when created and again
// whenever a signal or memo it read during its last run changes.
//
// Re-runs are queued on the scheduler of the goroutine that created the
// effect and executed by the next flush, at most once per flush round.
type Effect struct {
	id uint64

	fn      func() Cleanup
	cleanup Cleanup

	// sources are the dependencies recorded during the last run.
	sources []dependency

	owner *Owner
	home  *TrackingContext

	pending  bool
	disposed bool
	runs     int
}

// CreateEffect creates and runs a new effect within the current owner.
// If fn returns a Cleanup it is called before the next run and on disposal.
//
// Example:
//
//	CreateEffect(func() Cleanup {
//	    fmt.Println("Count is:", count.Get())
//	    return nil
//	})
func CreateEffect(fn func() Cleanup) *Effect {
	ctx := getTrackingContext()
	e := &Effect{
		id:    nextID(),
		fn:    fn,
		owner: ctx.currentOwner,
		home:  ctx,
	}
	if e.owner != nil {
		e.owner.registerEffect(e)
	}

	e.run()
	return e
}

// Watch is CreateEffect for effects without cleanup.
func Watch(fn func()) *Effect {
	return CreateEffect(func() Cleanup {
		fn()
		return nil
	})
}

// MarkDirty queues the effect for the next flush.
// Implements the Listener interface.
func (e *Effect) MarkDirty() {
	if e.disposed || e.pending {
		return
	}
	e.pending = true
	e.home.enqueue(e)
}

// ID returns the unique identifier for this effect.
func (e *Effect) ID() uint64 {
	return e.id
}

// Runs returns how many times the effect body has executed.
func (e *Effect) Runs() int {
	return e.runs
}

// Disposed reports whether the effect was disposed.
func (e *Effect) Disposed() bool {
	return e.disposed
}

// addSource implements tracker.
func (e *Effect) addSource(source *signalBase) {
	e.sources = addDependency(e.sources, source)
}

// runScheduled is called by the flush. It skips the body when none of the
// recorded dependencies actually changed, e.g. a memo that recomputed to an
// equal value.
func (e *Effect) runScheduled() {
	if e.disposed || !e.pending {
		return
	}
	e.pending = false
	if !changed(e.sources) {
		return
	}
	e.run()
}

// run executes the effect body inside a fresh tracking frame. A panic is
// recovered and reported; the dependencies read before the panic stay
// subscribed so the next write retries the effect.
func (e *Effect) run() {
	if e.disposed {
		return
	}
	e.pending = false

	if e.cleanup != nil {
		e.runCleanup()
	}

	unsubscribeAll(e.sources, e)
	e.sources = e.sources[:0]

	e.runs++
	cleanup, err := evaluate(e, "effect", func() Cleanup {
		var cleanup Cleanup
		WithOwner(e.owner, func() { cleanup = e.fn() })
		return cleanup
	})
	if err != nil {
		report(err)
		return
	}
	e.cleanup = cleanup
	effectRan()
}

func (e *Effect) runCleanup() {
	cleanup := e.cleanup
	e.cleanup = nil
	defer func() {
		if r := recover(); r != nil {
			report(recovered("effect cleanup", r))
		}
	}()
	cleanup()
}

// Dispose stops the effect, runs its cleanup and unsubscribes it from all
// sources.
func (e *Effect) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	e.pending = false

	if e.cleanup != nil {
		e.runCleanup()
	}
	unsubscribeAll(e.sources, e)
	e.sources = nil
}

var _ tracker = (*Effect)(nil)
