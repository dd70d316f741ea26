// Package reactive provides the fine-grained reactive core: signals, memos,
// effects and the scheduler that flushes them.
//
// Dependencies are tracked at runtime. Reading a signal while a memo or an
// effect is evaluating subscribes that computation to the signal; reading it
// anywhere else is an untracked read and subscribes nothing.
//
// # Core Types
//
// Signal[T] is a mutable cell:
//
//	count := reactive.NewSignal(0)
//	count.Get()   // tracked read
//	count.Peek()  // untracked read
//	count.Set(5)  // write; no-op when equal
//
// Memo[T] is a lazily recomputed derived value. It records the version of
// every dependency it read and recomputes only when one of them advanced:
//
//	red := reactive.NewMemo(func() int { return min(count.Get()*10, 255) })
//
// Effect runs a side effect immediately and again after its dependencies
// change:
//
//	reactive.CreateEffect(func() reactive.Cleanup {
//	    log.Println("count:", count.Get())
//	    return nil
//	})
//
// # Scheduling
//
// Writes never run effects synchronously. Dirty effects are queued on the
// writing goroutine's scheduler and run, in creation order, when the
// outermost Batch returns or when Flush is called. Effects that write signals
// during a flush are picked up by the same flush; after MaxFlushRounds rounds
// the flush gives up with an E103 error.
//
// # Goroutines
//
// Tracking state (current listener, owner, batch depth, effect queue) is
// confined to the goroutine that uses it. A reactive graph should be driven
// from a single goroutine, such as a live session's event loop.
package reactive
