package pulse

import "testing"

func TestComputedLazyAndCached(t *testing.T) {
	rt := NewRuntime()
	a := NewAtom(rt, 2)

	computations := 0
	double := NewComputed(rt, func() int {
		computations++
		return a.Get() * 2
	})

	if computations != 0 {
		t.Errorf("expected no computation before first read, got %d", computations)
	}

	if got := double.Get(); got != 4 {
		t.Errorf("expected 4, got %d", got)
	}
	if computations != 1 {
		t.Errorf("expected 1 computation, got %d", computations)
	}

	// Cached: repeated reads don't recompute.
	_ = double.Get()
	_ = double.Get()
	if computations != 1 {
		t.Errorf("expected cached reads, got %d computations", computations)
	}

	a.Set(5)
	if !double.IsStale() {
		t.Error("expected computed to be stale after dependency write")
	}
	if got := double.Get(); got != 10 {
		t.Errorf("expected 10, got %d", got)
	}
	if computations != 2 {
		t.Errorf("expected 2 computations, got %d", computations)
	}
}

func TestComputedChain(t *testing.T) {
	rt := NewRuntime()

	price := NewAtom(rt, 100.0)
	taxRate := NewAtom(rt, 0.08)
	discount := NewAtom(rt, 0.1)

	taxed := NewComputed(rt, func() float64 {
		return price.Get() * (1 + taxRate.Get())
	})
	final := NewComputed(rt, func() float64 {
		return taxed.Get() * (1 - discount.Get())
	})

	if got := final.Get(); got != 97.2 {
		t.Errorf("expected 97.2, got %f", got)
	}

	price.Set(200.0)
	if got := final.Get(); got != 194.4 {
		t.Errorf("expected 194.4, got %f", got)
	}

	taxRate.Set(0.1)
	got := final.Get()
	if got < 197.99 || got > 198.01 {
		t.Errorf("expected ~198, got %f", got)
	}
}

func TestComputedObservableToDependents(t *testing.T) {
	rt := NewRuntime()
	a := NewAtom(rt, 1)
	double := NewComputed(rt, func() int { return a.Get() * 2 })

	var seen []int
	r := Autorun(rt, func() {
		seen = append(seen, double.Get())
	})
	defer r.Dispose()

	a.Set(3)

	if len(seen) != 2 || seen[0] != 2 || seen[1] != 6 {
		t.Errorf("expected [2 6], got %v", seen)
	}
}

func TestComputedEqualValueSuppressesDependents(t *testing.T) {
	rt := NewRuntime()
	a := NewAtom(rt, 1)
	positive := NewComputed(rt, func() bool { return a.Get() > 0 })

	runs := 0
	r := Autorun(rt, func() {
		_ = positive.Get()
		runs++
	})
	defer r.Dispose()

	if runs != 1 {
		t.Fatalf("expected 1 initial run, got %d", runs)
	}

	// The input changes but the derived value does not: the reaction must
	// not re-run.
	a.Set(2)
	if runs != 1 {
		t.Errorf("expected run suppressed for unchanged computed value, got %d", runs)
	}

	a.Set(-1)
	if runs != 2 {
		t.Errorf("expected re-run on changed computed value, got %d", runs)
	}

	if got := rt.Stats().RunsSuppressed; got != 1 {
		t.Errorf("expected 1 suppressed run, got %d", got)
	}
}

func TestComputedVersionBumpsOnlyOnChange(t *testing.T) {
	rt := NewRuntime()
	a := NewAtom(rt, 1)
	sign := NewComputed(rt, func() int {
		if a.Get() >= 0 {
			return 1
		}
		return -1
	})

	_ = sign.Get()
	v := sign.Version()

	a.Set(5)
	_ = sign.Get()
	if sign.Version() != v {
		t.Errorf("expected unchanged version, got %d", sign.Version())
	}

	a.Set(-5)
	_ = sign.Get()
	if sign.Version() != v+1 {
		t.Errorf("expected version bump, got %d (was %d)", sign.Version(), v)
	}
}

func TestComputedWithEquals(t *testing.T) {
	rt := NewRuntime()
	a := NewAtom(rt, 0)

	list := NewComputed(rt, func() []int {
		return []int{a.Get() % 2}
	}).WithEquals(func(x, y []int) bool {
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if x[i] != y[i] {
				return false
			}
		}
		return true
	})

	_ = list.Get()
	v := list.Version()

	a.Set(2) // same parity, comparer says unchanged
	_ = list.Get()
	if list.Version() != v {
		t.Errorf("expected version unchanged, got %d", list.Version())
	}
}

func TestComputedSelfReferenceDoesNotRecurse(t *testing.T) {
	rt := NewRuntime()

	var c *Computed[int]
	c = NewComputed(rt, func() int {
		// Reads its own (cached) value; must not recurse forever.
		return c.Peek() + 1
	})

	if got := c.Get(); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
}

func TestComputedDispose(t *testing.T) {
	rt := NewRuntime()
	a := NewAtom(rt, 1)

	computations := 0
	double := NewComputed(rt, func() int {
		computations++
		return a.Get() * 2
	})
	_ = double.Get()

	double.Dispose()

	if len(a.base.subs) != 0 {
		t.Errorf("expected disposed computed detached from inputs, %d subs left", len(a.base.subs))
	}

	a.Set(10)
	if got := double.Get(); got != 2 {
		t.Errorf("expected last cached value 2 after dispose, got %d", got)
	}
	if computations != 1 {
		t.Errorf("expected no recomputation after dispose, got %d", computations)
	}
}

func TestComputedPanicPropagatesToReader(t *testing.T) {
	rt := NewRuntime()
	a := NewAtom(rt, 0)

	c := NewComputed(rt, func() int {
		if a.Get() > 0 {
			panic("bad input")
		}
		return a.Get()
	})
	_ = c.Get()

	a.Set(1)

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected panic to reach the reader")
			}
		}()
		_ = c.Get()
	}()

	// Dependencies collected before the failure are still live: a recovery
	// in the input makes the computed readable again.
	a.Set(-1)
	if got := c.Get(); got != -1 {
		t.Errorf("expected -1 after input recovered, got %d", got)
	}
}
