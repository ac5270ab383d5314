package pulse

// Autorun runs body immediately as a tracked run and re-runs it whenever
// any cell it read during its previous run effectively changes. Dependency
// edges are rebuilt on every run, so conditional reads self-heal.
//
// With WithDelay or WithScheduler the reaction is deferred: even the first
// run goes through the scheduler, and invalidations arriving before a
// pending run fires coalesce into one run.
//
// Dispose the returned reaction to detach it from every cell; disposal also
// turns any in-flight deferred run into a no-op.
func Autorun(rt *Runtime, body func(), opts ...Option) *Reaction {
	if rt == nil {
		panic(ErrNilRuntime)
	}
	if body == nil {
		panic(errNil("Autorun body"))
	}

	cfg := applyOptions(opts)

	r := newReaction(rt, cfg, func(bool) {
		body()
	})
	r.start()

	return r
}

// Watch tracks only the expression and feeds its result to effect when the
// value changes. The expression runs tracked; the effect runs untracked and
// inside a batch, so cells it writes propagate as one atomic unit and cells
// it reads do not become dependencies.
//
// The first run always evaluates the expression to establish dependencies
// and a baseline value; the effect fires on that run only with
// FireImmediately. On subsequent runs the effect fires only when the new
// value differs from the previous one per the configured comparer
// (Identity by default, Structural via Structurally).
func Watch[T any](rt *Runtime, expression func() T, effect func(T), opts ...Option) *Reaction {
	if rt == nil {
		panic(ErrNilRuntime)
	}
	if expression == nil {
		panic(errNil("Watch expression"))
	}
	if effect == nil {
		panic(errNil("Watch effect"))
	}

	cfg := applyOptions(opts)
	equals := cfg.equals

	var prev T
	r := newReaction(rt, cfg, func(first bool) {
		value := expression()

		if first {
			prev = value
			if cfg.fireImmediately {
				fireEffect(rt, effect, value)
			}
			return
		}

		if equalsWith(equals, prev, value) {
			return
		}
		prev = value
		fireEffect(rt, effect, value)
	})
	r.start()

	return r
}

// fireEffect invokes a Watch effect untracked and batched. The effect runs
// inside the reaction's tracked run, so tracking must be suspended
// explicitly; the batch makes the effect's own writes atomic.
func fireEffect[T any](rt *Runtime, effect func(T), value T) {
	rt.Untracked(func() {
		rt.Batch(func() {
			effect(value)
		})
	})
}

// equalsWith applies a Comparer, defaulting to Identity semantics.
func equalsWith[T any](cmp Comparer, a, b T) bool {
	if cmp != nil {
		return cmp(a, b)
	}
	return defaultEquals(a, b)
}
