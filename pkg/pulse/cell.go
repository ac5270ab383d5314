package pulse

// observer is anything that can be notified when a cell it depends on
// changes. Reactions and computeds implement it.
type observer interface {
	// invalidate notifies the observer that one of its dependencies has
	// changed. For computeds this marks the cached value stale and forwards
	// the invalidation; for reactions it enqueues the reaction with the
	// runtime's batch coordinator.
	invalidate()

	// observerID returns a unique identifier, used for deduplication in
	// subscriber sets and flush queues.
	observerID() uint64
}

// srcCell is the dependency-side view of an observable cell recorded during
// a tracked run. Atoms and computeds implement it.
type srcCell interface {
	// cell returns the shared bookkeeping for this observable.
	cell() *cellBase

	// refresh settles any lazily-deferred recomputation so that the cell's
	// version stamp reflects its current value. A no-op for atoms.
	refresh()
}

// cellBase holds the graph bookkeeping shared by every observable cell:
// identity, a version stamp bumped on every effective change, and the set
// of observers currently depending on the cell.
type cellBase struct {
	id   uint64
	name string

	// version is incremented each time the cell's value effectively
	// changes. Derivations record the version of each dependency after a
	// run and use it to skip re-runs whose inputs are value-identical.
	version uint64

	// subs are the observers subscribed to this cell.
	subs []observer
}

// subscribe adds an observer to the cell's dependent set.
// Deduplicates by observer ID so re-reads within one run are idempotent.
func (c *cellBase) subscribe(o observer) {
	if o == nil {
		return
	}

	oid := o.observerID()
	for _, existing := range c.subs {
		if existing.observerID() == oid {
			return
		}
	}

	c.subs = append(c.subs, o)
}

// unsubscribe removes an observer from the cell's dependent set.
func (c *cellBase) unsubscribe(o observer) {
	if o == nil {
		return
	}

	oid := o.observerID()
	for i, existing := range c.subs {
		if existing.observerID() == oid {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			return
		}
	}
}

// notify invalidates every current dependent. The subscriber list is copied
// first because invalidation may re-enter and mutate it (a reaction's
// re-run can attach or detach edges on this very cell).
func (c *cellBase) notify() {
	if len(c.subs) == 0 {
		return
	}

	subs := make([]observer, len(c.subs))
	copy(subs, c.subs)

	for _, o := range subs {
		o.invalidate()
	}
}
