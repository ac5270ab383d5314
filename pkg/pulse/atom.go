package pulse

// Atom is a mutable observable cell. Reading it during a tracked run
// registers the running derivation as a dependent; writing it invalidates
// every dependent, immediately or at the close of the surrounding batch.
type Atom[T any] struct {
	base cellBase
	rt   *Runtime

	// value is the current cell value.
	value T

	// equal decides whether a write is an effective change.
	// nil means the default comparer.
	equal func(T, T) bool
}

// NewAtom creates an atom holding initial on the given runtime.
func NewAtom[T any](rt *Runtime, initial T) *Atom[T] {
	if rt == nil {
		panic(ErrNilRuntime)
	}

	return &Atom[T]{
		base:  cellBase{id: nextID()},
		rt:    rt,
		value: initial,
	}
}

// Named sets a diagnostic name, reported in runtime events.
// Returns the atom for chaining at construction.
func (a *Atom[T]) Named(name string) *Atom[T] {
	a.base.name = name
	return a
}

// WithEquals configures a custom equality function for write suppression.
// Returns the atom for chaining at construction.
func (a *Atom[T]) WithEquals(fn func(T, T) bool) *Atom[T] {
	a.equal = fn
	return a
}

// Get returns the current value. Called during a tracked run it registers
// the running derivation as a dependent (idempotent per run); otherwise it
// has no graph effect.
func (a *Atom[T]) Get() T {
	a.rt.recordRead(a)
	return a.value
}

// Peek returns the current value without registering a dependency.
func (a *Atom[T]) Peek() T {
	return a.value
}

// Set replaces the value. A write that compares equal to the current value
// is a no-op: no version bump, no invalidation. An effective write bumps
// the version stamp and notifies dependents; outside a batch the resulting
// propagation runs synchronously before Set returns.
func (a *Atom[T]) Set(v T) {
	if typedEquals(a.equal, a.value, v) {
		return
	}

	a.value = v
	a.base.version++

	a.rt.counters.atomWrites.Add(1)
	a.rt.emit(Event{Kind: EventAtomWrite, ID: a.base.id, Name: a.base.name})

	a.base.notify()
}

// Update applies fn to the current value and writes the result. Reading via
// Update does not register a dependency.
func (a *Atom[T]) Update(fn func(T) T) {
	if fn == nil {
		panic(errNil("Update fn"))
	}
	a.Set(fn(a.value))
}

// Version returns the cell's version stamp: the number of effective writes
// it has seen.
func (a *Atom[T]) Version() uint64 {
	return a.base.version
}

// ID returns the atom's unique identifier.
func (a *Atom[T]) ID() uint64 {
	return a.base.id
}

// cell implements srcCell.
func (a *Atom[T]) cell() *cellBase { return &a.base }

// refresh implements srcCell. Atoms are never lazily stale.
func (a *Atom[T]) refresh() {}
