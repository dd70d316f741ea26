package reactive

import "testing"

func TestSignalBasic(t *testing.T) {
	count := NewSignal(0)

	if count.Get() != 0 {
		t.Errorf("expected initial value 0, got %d", count.Get())
	}

	count.Set(5)
	if count.Get() != 5 {
		t.Errorf("expected value 5, got %d", count.Get())
	}

	count.Update(func(n int) int { return n * 2 })
	if count.Get() != 10 {
		t.Errorf("expected value 10, got %d", count.Get())
	}
	if count.Version() != 2 {
		t.Errorf("expected version 2, got %d", count.Version())
	}
}

func TestSignalUntrackedReadDoesNotSubscribe(t *testing.T) {
	count := NewSignal(0)

	_ = count.Get()
	if n := count.base.subscriberCount(); n != 0 {
		t.Fatalf("read outside tracking registered %d subscribers", n)
	}

	runs := 0
	Watch(func() {
		runs++
		_ = count.Peek()
	})
	count.Set(1)
	if err := Flush(); err != nil {
		t.Fatal(err)
	}
	if runs != 1 {
		t.Errorf("Peek should not subscribe, effect ran %d times", runs)
	}
	if n := count.base.subscriberCount(); n != 0 {
		t.Errorf("expected no subscribers, got %d", n)
	}
}

func TestSignalSetSameValueIsNoop(t *testing.T) {
	count := NewSignal(3)
	runs := 0
	Watch(func() {
		runs++
		_ = count.Get()
	})

	count.Set(count.Peek())
	if Pending() != 0 {
		t.Errorf("same-value write queued %d effects", Pending())
	}
	if err := Flush(); err != nil {
		t.Fatal(err)
	}
	if runs != 1 {
		t.Errorf("expected 1 run, got %d", runs)
	}
	if count.Version() != 0 {
		t.Errorf("version should not advance, got %d", count.Version())
	}
}

func TestSignalStructuralEquality(t *testing.T) {
	items := NewSignal([]string{"a", "b"})
	runs := 0
	Watch(func() {
		runs++
		_ = items.Get()
	})

	items.Set([]string{"a", "b"})
	_ = Flush()
	if runs != 1 {
		t.Errorf("deep-equal slice should not propagate, got %d runs", runs)
	}

	items.Set([]string{"a"})
	_ = Flush()
	if runs != 2 {
		t.Errorf("expected 2 runs, got %d", runs)
	}
}

func TestSignalWithEquals(t *testing.T) {
	always := NewSignal(1).WithEquals(func(a, b int) bool { return false })
	runs := 0
	Watch(func() {
		runs++
		_ = always.Get()
	})

	always.Set(1)
	_ = Flush()
	if runs != 2 {
		t.Errorf("custom equality should force propagation, got %d runs", runs)
	}
}

func TestSignalRead(t *testing.T) {
	var r Reader = NewSignal("hello")
	if r.Read().(string) != "hello" {
		t.Errorf("unexpected Read() value %v", r.Read())
	}
}
