package reactive

import (
	"runtime"
	"sync"
)

// TrackingContext holds the reactive state for a goroutine.
type TrackingContext struct {
	// currentOwner owns newly created effects and child owners.
	currentOwner *Owner

	// currentListener is what's currently tracking dependencies.
	// nil means reads don't create subscriptions.
	currentListener tracker

	// batchDepth tracks nested Batch() calls.
	batchDepth int

	// queue holds effects marked dirty since the last flush.
	queue []*Effect

	// flushing is true while Flush drains the queue.
	flushing bool
}

// trackingContexts stores per-goroutine tracking contexts.
var trackingContexts sync.Map

// getGoroutineID returns the current goroutine's identifier, parsed from the
// "goroutine <id> " header of the runtime stack.
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for i := 10; i < n; i++ {
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// getTrackingContext returns the tracking context for the current goroutine,
// creating it on first use.
func getTrackingContext() *TrackingContext {
	gid := getGoroutineID()

	if ctx, ok := trackingContexts.Load(gid); ok {
		return ctx.(*TrackingContext)
	}

	ctx := &TrackingContext{}
	trackingContexts.Store(gid, ctx)
	return ctx
}

// ReleaseContext drops the current goroutine's tracking context. Long-lived
// goroutines that drove a reactive graph (session loops) call it on exit.
func ReleaseContext() {
	trackingContexts.Delete(getGoroutineID())
}

// getCurrentListener returns the listener being tracked, or nil.
func getCurrentListener() tracker {
	return getTrackingContext().currentListener
}

// setCurrentListener sets the current listener and returns the previous one.
func setCurrentListener(l tracker) tracker {
	ctx := getTrackingContext()
	old := ctx.currentListener
	ctx.currentListener = l
	return old
}

// getCurrentOwner returns the current owner for the goroutine.
func getCurrentOwner() *Owner {
	return getTrackingContext().currentOwner
}

// setCurrentOwner sets the current owner and returns the previous one.
func setCurrentOwner(o *Owner) *Owner {
	ctx := getTrackingContext()
	old := ctx.currentOwner
	ctx.currentOwner = o
	return old
}

// IsTracking reports whether a memo or effect is currently evaluating on
// this goroutine.
func IsTracking() bool {
	return getCurrentListener() != nil
}

// WithOwner runs fn with owner as the current owner. Effects and owners
// created inside belong to it.
func WithOwner(owner *Owner, fn func()) {
	old := setCurrentOwner(owner)
	defer setCurrentOwner(old)
	fn()
}

// Untracked runs fn without tracking signal reads as dependencies.
func Untracked(fn func()) {
	old := setCurrentListener(nil)
	defer setCurrentListener(old)
	fn()
}

// track subscribes the current listener, if any, to source.
func track(source *signalBase) {
	if l := getCurrentListener(); l != nil {
		source.subscribe(l)
		l.addSource(source)
	}
}
