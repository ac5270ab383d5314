package pulse

import "time"

// Computed is a cached derivation that is itself observable. Its compute
// function runs lazily, on the first read and on reads after an
// invalidation, as a tracked run: cells it reads become its dependencies,
// and dependents reading the computed depend on the computed, not on its
// inputs.
//
// Invalidation propagates eagerly (dependents learn immediately that the
// value may have changed) but recomputation stays lazy. A recomputation
// that produces an equal value does not bump the version stamp, so
// dependents that saw the old value are not re-run.
type Computed[T any] struct {
	base cellBase
	rt   *Runtime

	// compute produces the derived value.
	compute func() T

	// value is the cached result of the last successful compute.
	value T

	// initialized is false until the first successful compute.
	initialized bool

	// stale marks the cached value out of date.
	stale bool

	// computing guards against self-referential reads recursing.
	computing bool

	// disposed computeds never recompute or track again.
	disposed bool

	// equal decides whether a recomputed value counts as changed.
	equal func(T, T) bool

	// sources are the cells read during the most recent compute.
	sources []srcCell
}

// NewComputed creates a computed on the given runtime. The compute function
// does not run until the first read.
func NewComputed[T any](rt *Runtime, compute func() T) *Computed[T] {
	if rt == nil {
		panic(ErrNilRuntime)
	}
	if compute == nil {
		panic(errNil("computed function"))
	}

	return &Computed[T]{
		base:    cellBase{id: nextID()},
		rt:      rt,
		compute: compute,
		stale:   true,
	}
}

// Named sets a diagnostic name, reported in runtime events.
// Returns the computed for chaining at construction.
func (c *Computed[T]) Named(name string) *Computed[T] {
	c.base.name = name
	return c
}

// WithEquals configures a custom equality function for change detection.
// Returns the computed for chaining at construction.
func (c *Computed[T]) WithEquals(fn func(T, T) bool) *Computed[T] {
	c.equal = fn
	return c
}

// Get returns the computed value, recomputing first if it is stale.
// Called during a tracked run it registers the computed itself as a
// dependency of the running derivation.
func (c *Computed[T]) Get() T {
	c.rt.recordRead(c)

	if (c.stale || !c.initialized) && !c.disposed {
		c.recompute()
	}

	return c.value
}

// Peek returns the value without registering a dependency. It still
// recomputes if stale.
func (c *Computed[T]) Peek() T {
	if (c.stale || !c.initialized) && !c.disposed {
		c.recompute()
	}

	return c.value
}

// Version returns the cell's version stamp: the number of recomputations
// that produced a changed value.
func (c *Computed[T]) Version() uint64 {
	return c.base.version
}

// ID returns the computed's unique identifier.
func (c *Computed[T]) ID() uint64 {
	return c.base.id
}

// IsStale reports whether the next read will recompute.
func (c *Computed[T]) IsStale() bool {
	return c.stale || !c.initialized
}

// Dispose detaches the computed from all its dependencies and makes it
// terminal: further reads return the last cached value without tracking or
// recomputation. Disposal is idempotent.
func (c *Computed[T]) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true

	for _, s := range c.sources {
		s.cell().unsubscribe(c)
	}
	c.sources = nil
	c.stale = false
}

// invalidate implements observer: mark the cached value stale and forward
// the invalidation to this computed's own dependents. Already-stale
// computeds forward nothing; their dependents were notified when the value
// first went stale.
func (c *Computed[T]) invalidate() {
	if c.disposed || c.stale {
		return
	}

	c.stale = true
	c.base.notify()
}

func (c *Computed[T]) observerID() uint64 { return c.base.id }

// cell implements srcCell.
func (c *Computed[T]) cell() *cellBase { return &c.base }

// refresh implements srcCell: settle the stale flag so the version stamp
// reflects the current value. Used by reactions deciding whether any
// dependency effectively changed before re-running.
func (c *Computed[T]) refresh() {
	if (c.stale || !c.initialized) && !c.disposed {
		c.recompute()
	}
}

// recompute runs the compute function as a tracked run and commits the new
// dependency set. If the computation panics, dependencies collected up to
// the failure are still committed, the value stays stale, and the panic
// surfaces to the reader.
func (c *Computed[T]) recompute() {
	if c.computing {
		// Self-referential read; return the cached value rather than
		// recursing.
		return
	}
	c.computing = true
	defer func() { c.computing = false }()

	var start time.Time
	if c.rt.hasHooks() {
		start = time.Now()
	}

	var next T
	c.rt.runTracked(c, &c.sources, func() {
		next = c.compute()
	})

	changed := !c.initialized || !typedEquals(c.equal, c.value, next)
	c.value = next
	c.initialized = true
	c.stale = false

	if changed {
		c.base.version++
	}

	c.rt.counters.computedRuns.Add(1)
	if c.rt.hasHooks() {
		c.rt.emit(Event{
			Kind:     EventComputedRun,
			ID:       c.base.id,
			Name:     c.base.name,
			Duration: time.Since(start),
		})
	}
}
