package reactive

import (
	"testing"
	"time"

	"github.com/vango-dev/elements/internal/errors"
)

func TestEffectRunsImmediately(t *testing.T) {
	runs := 0
	Watch(func() { runs++ })
	if runs != 1 {
		t.Errorf("expected effect to run once on creation, got %d", runs)
	}
}

func TestEffectIsQueuedNotSynchronous(t *testing.T) {
	count := NewSignal(0)
	seen := -1
	Watch(func() { seen = count.Get() })

	count.Set(1)
	if seen != 0 {
		t.Errorf("effect ran inside the setter")
	}
	if err := Flush(); err != nil {
		t.Fatal(err)
	}
	if seen != 1 {
		t.Errorf("expected 1 after flush, got %d", seen)
	}
}

func TestBatchCoalescesWrites(t *testing.T) {
	count := NewSignal(0)
	var observed []int
	Watch(func() { observed = append(observed, count.Get()) })

	err := Batch(func() {
		count.Set(1)
		count.Set(2)
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(observed) != 2 || observed[1] != 2 {
		t.Errorf("expected [0 2], got %v", observed)
	}
}

func TestBatchConsistentComposite(t *testing.T) {
	first := NewSignal("John")
	last := NewSignal("Doe")
	var seen []string
	Watch(func() { seen = append(seen, first.Get()+" "+last.Get()) })

	_ = Batch(func() {
		first.Set("Ada")
		last.Set("Lovelace")
	})
	if len(seen) != 2 || seen[1] != "Ada Lovelace" {
		t.Errorf("effect observed partial update: %v", seen)
	}
}

func TestNestedBatchFlushesOnce(t *testing.T) {
	count := NewSignal(0)
	runs := 0
	Watch(func() {
		runs++
		_ = count.Get()
	})

	_ = Batch(func() {
		count.Set(1)
		_ = Batch(func() { count.Set(2) })
		if runs != 1 {
			t.Errorf("inner batch flushed early")
		}
		count.Set(3)
	})
	if runs != 2 {
		t.Errorf("expected 2 runs, got %d", runs)
	}
}

func TestEffectOrderIsRegistrationOrder(t *testing.T) {
	a := NewSignal(0)
	b := NewSignal(0)
	var order []string

	Watch(func() { _ = b.Get(); order = append(order, "first") })
	Watch(func() { _ = a.Get(); order = append(order, "second") })
	Watch(func() { _ = a.Get(); _ = b.Get(); order = append(order, "third") })
	order = nil

	_ = Batch(func() {
		a.Set(1)
		b.Set(1)
	})
	want := []string{"first", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %s, want %s", i, order[i], want[i])
		}
	}
}

func TestEffectCleanup(t *testing.T) {
	count := NewSignal(0)
	cleanups := 0
	e := CreateEffect(func() Cleanup {
		_ = count.Get()
		return func() { cleanups++ }
	})

	count.Set(1)
	_ = Flush()
	if cleanups != 1 {
		t.Errorf("expected cleanup before re-run, got %d", cleanups)
	}
	e.Dispose()
	if cleanups != 2 {
		t.Errorf("expected cleanup on dispose, got %d", cleanups)
	}

	count.Set(2)
	_ = Flush()
	if e.Runs() != 2 {
		t.Errorf("disposed effect ran again, runs=%d", e.Runs())
	}
}

func TestEffectWritesPickedUpInSameFlush(t *testing.T) {
	source := NewSignal(1)
	mirror := NewSignal(0)
	Watch(func() { mirror.Set(source.Get() * 10) })

	var seen int
	Watch(func() { seen = mirror.Get() })

	source.Set(2)
	if err := Flush(); err != nil {
		t.Fatal(err)
	}
	if seen != 20 {
		t.Errorf("expected 20, got %d", seen)
	}
}

func TestRecursionLimit(t *testing.T) {
	SetMaxFlushRounds(10)
	defer SetMaxFlushRounds(0)

	count := NewSignal(0)
	Watch(func() {
		count.Set(count.Get() + 1)
	})

	err := Flush()
	if !errors.Is(err, errors.ErrRecursionLimit) {
		t.Fatalf("expected E103, got %v", err)
	}
	if Pending() != 0 {
		t.Errorf("queue should be dropped after the limit, %d pending", Pending())
	}
}

func TestEffectPanicIsContained(t *testing.T) {
	fail := NewSignal(false)
	other := NewSignal(0)
	healthyRuns := 0

	Watch(func() {
		if fail.Get() {
			panic("effect failure")
		}
	})
	Watch(func() {
		healthyRuns++
		_ = other.Get()
	})

	_ = Batch(func() {
		fail.Set(true)
		other.Set(1)
	})
	if healthyRuns != 2 {
		t.Errorf("panic in one effect stopped another, runs=%d", healthyRuns)
	}
	if IsTracking() {
		t.Error("tracking stack leaked after panic")
	}

	fail.Set(false)
	if err := Flush(); err != nil {
		t.Fatal(err)
	}
}

type countingObserver struct {
	flushes, runs, recovered int
}

func (o *countingObserver) FlushCompleted(int, time.Duration) { o.flushes++ }
func (o *countingObserver) EffectRan()                        { o.runs++ }
func (o *countingObserver) Recovered(error)                   { o.recovered++ }

func TestObserver(t *testing.T) {
	obs := &countingObserver{}
	SetObserver(obs)
	defer SetObserver(nil)

	count := NewSignal(0)
	Watch(func() {
		if count.Get() == 2 {
			panic("two")
		}
	})
	count.Set(1)
	_ = Flush()
	count.Set(2)
	_ = Flush()

	if obs.runs != 2 {
		t.Errorf("expected 2 successful runs, got %d", obs.runs)
	}
	if obs.flushes != 2 {
		t.Errorf("expected 2 flushes, got %d", obs.flushes)
	}
	if obs.recovered != 1 {
		t.Errorf("expected 1 recovered panic, got %d", obs.recovered)
	}
}
