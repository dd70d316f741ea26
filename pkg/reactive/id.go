package reactive

import "sync/atomic"

// globalIDCounter is the source of unique IDs for all reactive primitives.
var globalIDCounter uint64

// nextID returns the next unique ID. IDs are monotonically increasing, so
// sorting effects by ID yields their creation order.
func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}
