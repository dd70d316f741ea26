package reactive

import (
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/vango-dev/elements/internal/errors"
)

// DefaultMaxFlushRounds bounds how many times a single flush re-drains the
// queue before giving up with E103.
const DefaultMaxFlushRounds = 100

var maxFlushRounds atomic.Int64

func init() {
	maxFlushRounds.Store(DefaultMaxFlushRounds)
}

// SetMaxFlushRounds changes the flush round cap. Values below 1 restore the
// default.
func SetMaxFlushRounds(n int) {
	if n < 1 {
		n = DefaultMaxFlushRounds
	}
	maxFlushRounds.Store(int64(n))
}

// MaxFlushRounds returns the current flush round cap.
func MaxFlushRounds() int {
	return int(maxFlushRounds.Load())
}

// Observer receives scheduler events. Implementations must be cheap; they
// run on the flushing goroutine.
type Observer interface {
	FlushCompleted(rounds int, elapsed time.Duration)
	EffectRan()
	Recovered(err error)
}

var (
	observer atomic.Pointer[Observer]
	logger   atomic.Pointer[slog.Logger]
)

// SetObserver installs the scheduler observer. nil removes it.
func SetObserver(o Observer) {
	if o == nil {
		observer.Store(nil)
		return
	}
	observer.Store(&o)
}

// SetLogger sets the logger used to report recovered panics and flush
// failures. nil restores slog.Default().
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

func getLogger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

func getObserver() Observer {
	if o := observer.Load(); o != nil {
		return *o
	}
	return nil
}

func effectRan() {
	if o := getObserver(); o != nil {
		o.EffectRan()
	}
}

// report logs a recovered error and forwards it to the observer.
func report(err error) {
	getLogger().Error("reactive: recovered", "error", err)
	if o := getObserver(); o != nil {
		o.Recovered(err)
	}
}

func recovered(where string, r any) error {
	return errors.FromPanic(where, r)
}

// enqueue adds a dirty effect to this context's queue.
func (c *TrackingContext) enqueue(e *Effect) {
	c.queue = append(c.queue, e)
}

// flush drains the queue. Each round runs the queued effects in creation
// order; effects dirtied during a round are run by the next round.
func (c *TrackingContext) flush() error {
	if c.flushing {
		return nil
	}
	c.flushing = true
	defer func() { c.flushing = false }()

	start := time.Now()
	limit := int(maxFlushRounds.Load())
	rounds := 0

	for len(c.queue) > 0 {
		if rounds == limit {
			dropped := c.queue
			c.queue = nil
			for _, e := range dropped {
				e.pending = false
			}
			err := errors.New("E103").WithDetailf("%d effects still dirty after %d flush rounds", len(dropped), limit)
			getLogger().Error("reactive: flush aborted", "error", err, "rounds", rounds)
			if o := getObserver(); o != nil {
				o.Recovered(err)
			}
			return err
		}
		rounds++

		batch := c.queue
		c.queue = nil
		sort.SliceStable(batch, func(i, j int) bool { return batch[i].id < batch[j].id })
		for _, e := range batch {
			e.runScheduled()
		}
	}

	if rounds > 0 {
		if o := getObserver(); o != nil {
			o.FlushCompleted(rounds, time.Since(start))
		}
	}
	return nil
}

// Flush runs every queued effect of the current goroutine. Inside a running
// flush it returns nil immediately; the outer flush picks up the new work.
func Flush() error {
	return getTrackingContext().flush()
}

// Pending returns the number of effects waiting for the next flush.
func Pending() int {
	return len(getTrackingContext().queue)
}

// Batch runs fn as one synchronous task. Writes inside fn only queue their
// effects; the queue is flushed when the outermost Batch returns, so every
// effect observes the final values once.
//
// Example:
//
//	reactive.Batch(func() {
//	    firstName.Set("Ada")
//	    lastName.Set("Lovelace")
//	})
func Batch(fn func()) error {
	ctx := getTrackingContext()
	ctx.batchDepth++
	func() {
		defer func() { ctx.batchDepth-- }()
		fn()
	}()
	if ctx.batchDepth > 0 {
		return nil
	}
	return ctx.flush()
}

// InBatch reports whether the current goroutine is inside Batch.
func InBatch() bool {
	return getTrackingContext().batchDepth > 0
}
