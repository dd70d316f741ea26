package reactive

import "testing"

func TestMemoLazy(t *testing.T) {
	calls := 0
	count := NewSignal(2)
	doubled := NewMemo(func() int {
		calls++
		return count.Get() * 2
	})

	if calls != 0 {
		t.Fatalf("memo computed eagerly")
	}
	if doubled.Get() != 4 {
		t.Errorf("expected 4, got %d", doubled.Get())
	}
	_ = doubled.Get()
	if calls != 1 {
		t.Errorf("expected 1 compute, got %d", calls)
	}

	count.Set(5)
	if calls != 1 {
		t.Errorf("write should not recompute eagerly, got %d", calls)
	}
	if doubled.Get() != 10 {
		t.Errorf("expected 10, got %d", doubled.Get())
	}
	if calls != 2 {
		t.Errorf("expected 2 computes, got %d", calls)
	}
}

func TestMemoNoopWriteDoesNotRecompute(t *testing.T) {
	calls := 0
	count := NewSignal(1)
	m := NewMemo(func() int {
		calls++
		return count.Get() + 1
	})
	_ = m.Get()

	count.Set(1)
	_ = m.Get()
	if calls != 1 {
		t.Errorf("equal write recomputed memo, calls=%d", calls)
	}
}

func TestMemoDynamicDependencies(t *testing.T) {
	useA := NewSignal(true)
	a := NewSignal("a")
	b := NewSignal("b")
	calls := 0
	m := NewMemo(func() string {
		calls++
		if useA.Get() {
			return a.Get()
		}
		return b.Get()
	})

	if m.Get() != "a" {
		t.Fatalf("expected a")
	}
	b.Set("b2")
	_ = m.Get()
	if calls != 1 {
		t.Errorf("unread branch should not trigger recompute, calls=%d", calls)
	}

	useA.Set(false)
	if m.Get() != "b2" {
		t.Errorf("expected b2, got %q", m.Get())
	}
	a.Set("a2")
	_ = m.Get()
	if calls != 2 {
		t.Errorf("dropped dependency should not trigger recompute, calls=%d", calls)
	}
}

func TestMemoClampSkipsDownstreamEffect(t *testing.T) {
	count := NewSignal(30)
	red := NewMemo(func() int {
		v := count.Get() * 10
		if v > 255 {
			return 255
		}
		return v
	})

	runs := 0
	Watch(func() {
		runs++
		_ = red.Get()
	})

	count.Set(31)
	if err := Flush(); err != nil {
		t.Fatal(err)
	}
	if runs != 1 {
		t.Errorf("memo value unchanged, effect should not re-run, got %d runs", runs)
	}
}

func TestMemoSharedRecomputedOncePerFlush(t *testing.T) {
	count := NewSignal(1)
	calls := 0
	shared := NewMemo(func() int {
		calls++
		return count.Get() * 3
	})
	for i := 0; i < 3; i++ {
		Watch(func() { _ = shared.Get() })
	}
	if calls != 1 {
		t.Fatalf("expected 1 compute after setup, got %d", calls)
	}

	count.Set(2)
	if err := Flush(); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("expected one recompute per flush, got %d computes", calls)
	}
}

func TestMemoChain(t *testing.T) {
	base := NewSignal(1)
	plusOne := NewMemo(func() int { return base.Get() + 1 })
	timesTwo := NewMemo(func() int { return plusOne.Get() * 2 })

	if timesTwo.Get() != 4 {
		t.Fatalf("expected 4, got %d", timesTwo.Get())
	}
	base.Set(4)
	if timesTwo.Get() != 10 {
		t.Errorf("expected 10, got %d", timesTwo.Get())
	}
}

func TestMemoPanicRetries(t *testing.T) {
	fail := NewSignal(true)
	calls := 0
	m := NewMemo(func() int {
		calls++
		if fail.Get() {
			panic("boom")
		}
		return 7
	})

	if m.Get() != 0 {
		t.Errorf("failed memo should return zero value")
	}
	fail.Set(false)
	if m.Get() != 7 {
		t.Errorf("expected recovery to 7, got %d", m.Get())
	}
	if IsTracking() {
		t.Error("tracking stack not restored after panic")
	}
}
