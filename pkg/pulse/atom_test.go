package pulse

import "testing"

func TestAtomGetSet(t *testing.T) {
	rt := NewRuntime()
	a := NewAtom(rt, 42)

	if got := a.Get(); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}

	a.Set(100)
	if got := a.Get(); got != 100 {
		t.Errorf("expected 100, got %d", got)
	}
}

func TestAtomVersionStamp(t *testing.T) {
	rt := NewRuntime()
	a := NewAtom(rt, "a")

	if a.Version() != 0 {
		t.Errorf("expected version 0, got %d", a.Version())
	}

	a.Set("b")
	if a.Version() != 1 {
		t.Errorf("expected version 1 after write, got %d", a.Version())
	}

	// Equal write: no version bump.
	a.Set("b")
	if a.Version() != 1 {
		t.Errorf("expected version 1 after equal write, got %d", a.Version())
	}

	a.Set("c")
	if a.Version() != 2 {
		t.Errorf("expected version 2, got %d", a.Version())
	}
}

func TestAtomEqualWriteDoesNotNotify(t *testing.T) {
	rt := NewRuntime()
	a := NewAtom(rt, 5)

	runs := 0
	r := Autorun(rt, func() {
		_ = a.Get()
		runs++
	})
	defer r.Dispose()

	a.Set(5)
	if runs != 1 {
		t.Errorf("expected no re-run on equal write, got %d runs", runs)
	}

	a.Set(6)
	if runs != 2 {
		t.Errorf("expected re-run on effective write, got %d runs", runs)
	}
}

func TestAtomUncomparableValuesDoNotPanic(t *testing.T) {
	rt := NewRuntime()
	a := NewAtom(rt, []int{1, 2})

	// Slices cannot be compared with ==; the default comparer must fall
	// back to deep equality instead of panicking.
	a.Set([]int{1, 2})
	if a.Version() != 0 {
		t.Errorf("expected deep-equal write to be suppressed, version %d", a.Version())
	}

	a.Set([]int{1, 2, 3})
	if a.Version() != 1 {
		t.Errorf("expected version 1, got %d", a.Version())
	}
}

func TestAtomWithEquals(t *testing.T) {
	rt := NewRuntime()

	// Treat values as equal when they have the same parity.
	a := NewAtom(rt, 0).WithEquals(func(x, y int) bool {
		return x%2 == y%2
	})

	a.Set(2)
	if got := a.Peek(); got != 0 {
		t.Errorf("expected same-parity write suppressed, got %d", got)
	}

	a.Set(3)
	if got := a.Peek(); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
}

func TestAtomPeekDoesNotTrack(t *testing.T) {
	rt := NewRuntime()
	a := NewAtom(rt, 0)

	runs := 0
	r := Autorun(rt, func() {
		_ = a.Peek()
		runs++
	})
	defer r.Dispose()

	a.Set(1)
	if runs != 1 {
		t.Errorf("expected Peek not to create a dependency, got %d runs", runs)
	}
}

func TestAtomUpdate(t *testing.T) {
	rt := NewRuntime()
	a := NewAtom(rt, 10)

	a.Update(func(v int) int { return v * 2 })
	if got := a.Get(); got != 20 {
		t.Errorf("expected 20, got %d", got)
	}
}

func TestAtomGetOutsideTrackingHasNoGraphEffect(t *testing.T) {
	rt := NewRuntime()
	a := NewAtom(rt, 1)

	// Plain reads with no derivation running must not leave edges behind.
	_ = a.Get()
	if len(a.base.subs) != 0 {
		t.Errorf("expected no subscribers, got %d", len(a.base.subs))
	}
}

func TestNewAtomNilRuntimePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for nil runtime")
		}
	}()

	NewAtom[int](nil, 0)
}
