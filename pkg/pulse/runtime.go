package pulse

import (
	"fmt"
	"sync/atomic"
)

// Runtime owns one reactive dependency graph: the slot identifying the
// derivation currently accumulating reads, the batch coordinator, the
// pending-reaction queue, event hooks, and counters.
//
// A Runtime is an explicit handle, not process-global state: every atom,
// computed, and reaction belongs to the runtime it was constructed with,
// and independent runtimes never interact. Exactly one goroutine drives a
// runtime at a time.
type Runtime struct {
	// frame is the innermost tracked run currently accumulating reads.
	// nil means reads have no graph effect.
	frame *trackFrame

	// batchDepth tracks nested StartBatch/EndBatch pairs. While > 0,
	// invalidated reactions queue instead of propagating.
	batchDepth int

	// pending holds reactions invalidated while batching or flushing, in
	// first-invalidated order. A reaction appears at most once until its
	// entry is taken by the flush pass (see enqueue).
	pending []*Reaction

	// flushing is true while a propagation pass drains the pending queue.
	// Writes that land mid-pass append to the same pass instead of
	// recursing.
	flushing bool

	// flushBudget caps how many times one reaction may run within a single
	// propagation pass. Runs past the cap are throttled, which bounds
	// reaction cycles (a run whose writes re-invalidate the reaction).
	flushBudget int

	// hooks receive runtime events (see OnEvent).
	hooks []eventHook

	// observing mirrors len(hooks) > 0, readable from any goroutine.
	observing atomic.Bool

	counters runtimeCounters
}

// trackFrame collects the cells read during one tracked run. Frames form a
// stack via prev so nested runs attribute reads to the innermost
// derivation.
type trackFrame struct {
	prev  *trackFrame
	reads []srcCell
}

// defaultFlushBudget is the per-pass run cap applied when no
// WithFlushBudget option is given.
const defaultFlushBudget = 100

// RuntimeOption configures a Runtime at construction.
type RuntimeOption func(*Runtime)

// WithFlushBudget sets how many times a single reaction may run within one
// propagation pass before further re-invalidations in that pass are
// throttled. Values below 1 are ignored.
func WithFlushBudget(n int) RuntimeOption {
	return func(rt *Runtime) {
		if n >= 1 {
			rt.flushBudget = n
		}
	}
}

// NewRuntime creates an empty reactive graph.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	rt := &Runtime{
		flushBudget: defaultFlushBudget,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(rt)
		}
	}
	return rt
}

// recordRead registers a cell as a dependency of the innermost tracked run.
// Idempotent per run; a no-op outside tracked execution.
func (rt *Runtime) recordRead(s srcCell) {
	f := rt.frame
	if f == nil {
		return
	}

	cid := s.cell().id
	for _, existing := range f.reads {
		if existing.cell().id == cid {
			return
		}
	}

	f.reads = append(f.reads, s)
}

// runTracked executes body while attributing cell reads to obs, then
// replaces *deps with the accumulated set, diffing against the previous set
// to detach edges for cells no longer read and attach new ones.
//
// The commit happens even when body panics, so a derivation that fails
// deterministically still reacts to changes in whatever it read before
// failing.
func (rt *Runtime) runTracked(obs observer, deps *[]srcCell, body func()) {
	old := *deps
	f := &trackFrame{prev: rt.frame}
	rt.frame = f

	defer func() {
		rt.frame = f.prev
		commitDeps(obs, old, f.reads)
		*deps = f.reads
	}()

	body()
}

// commitDeps reconciles an observer's dependency edges after a run:
// cells absent from the new set are detached, new cells attached.
// Subscription is idempotent, so surviving edges are untouched.
func commitDeps(obs observer, old, next []srcCell) {
	for _, o := range old {
		kept := false
		for _, n := range next {
			if n.cell().id == o.cell().id {
				kept = true
				break
			}
		}
		if !kept {
			o.cell().unsubscribe(obs)
		}
	}

	for _, n := range next {
		n.cell().subscribe(obs)
	}
}

// Untracked runs fn with dependency tracking suspended: cell reads inside
// fn have no graph effect, even when called from within a tracked run.
func (rt *Runtime) Untracked(fn func()) {
	prev := rt.frame
	rt.frame = nil
	defer func() { rt.frame = prev }()

	fn()
}

// StartBatch opens a batch scope. Writes performed until the matching
// EndBatch queue their propagation instead of firing immediately.
// Batches nest; only the outermost EndBatch flushes.
func (rt *Runtime) StartBatch() {
	rt.batchDepth++
}

// EndBatch closes the innermost batch scope. When the outermost scope
// closes, every reaction invalidated during the batch is notified once per
// coalesced invalidation, in first-invalidated order, observing the
// post-batch state. A reaction re-invalidated by a later run's writes runs
// again in the same pass, within the flush budget.
//
// EndBatch with no open batch panics with ErrUnbalancedBatch.
func (rt *Runtime) EndBatch() {
	if rt.batchDepth == 0 {
		panic(ErrUnbalancedBatch)
	}

	rt.batchDepth--
	if rt.batchDepth == 0 {
		rt.counters.batches.Add(1)
		rt.emit(Event{Kind: EventBatchEnd})
		rt.flush()
	}
}

// Batch runs fn inside a StartBatch/EndBatch pair. The batch is closed even
// if fn panics, so the depth counter stays balanced.
func (rt *Runtime) Batch(fn func()) {
	rt.StartBatch()
	defer rt.EndBatch()

	fn()
}

// enqueue hands a reaction to the pending queue and, outside any batch or
// in-progress pass, drains the queue immediately. A reaction already queued
// is not appended again: invalidations arriving before its queued entry is
// taken coalesce into that entry.
func (rt *Runtime) enqueue(r *Reaction) {
	if r.queued {
		return
	}
	r.queued = true
	rt.pending = append(rt.pending, r)

	if rt.batchDepth == 0 && !rt.flushing {
		rt.flush()
	}
}

// flush drains the pending queue, asking each queued reaction to schedule
// its re-run. Reactions invalidated while the pass is running join the same
// pass; that includes a reaction that already ran and was re-invalidated by
// a later run's writes, so the pass ends with every reaction having
// observed the settled state.
//
// Each reaction may run at most flushBudget times per pass. A reaction
// whose runs keep re-invalidating it past the cap is throttled for the rest
// of the pass, so a reaction cycle cannot hang the flush.
//
// If an unhandled failure escapes a synchronous re-run it propagates to the
// caller that triggered the flush. The unprocessed tail of the queue stays
// pending, so the reactions behind the failing one pick up the mutation on
// the next pass instead of losing it.
func (rt *Runtime) flush() {
	if rt.flushing || len(rt.pending) == 0 {
		return
	}

	rt.flushing = true

	i := 0
	defer func() {
		rt.pending = append(rt.pending[:0], rt.pending[i:]...)
		rt.flushing = false
	}()

	runs := make(map[uint64]int, len(rt.pending))
	for i < len(rt.pending) {
		r := rt.pending[i]
		i++
		r.queued = false

		if runs[r.id] >= rt.flushBudget {
			rt.counters.runsThrottled.Add(1)
			rt.emit(Event{Kind: EventThrottle, ID: r.id, Name: r.name})
			continue
		}
		runs[r.id]++

		r.schedule()
	}

	rt.counters.flushes.Add(1)
	rt.emit(Event{Kind: EventFlush})
}

// runtimeCounters accumulates propagation statistics. Atomic so Stats can
// be sampled from a collector goroutine while the graph is being driven.
type runtimeCounters struct {
	atomWrites      atomic.Uint64
	computedRuns    atomic.Uint64
	reactionRuns    atomic.Uint64
	runsSuppressed  atomic.Uint64
	runsCoalesced   atomic.Uint64
	runsThrottled   atomic.Uint64
	batches         atomic.Uint64
	flushes         atomic.Uint64
	errorsContained atomic.Uint64
}

// Stats is a point-in-time snapshot of a runtime's propagation counters.
type Stats struct {
	// AtomWrites counts effective atom writes (equal writes excluded).
	AtomWrites uint64

	// ComputedRuns counts computed recomputations.
	ComputedRuns uint64

	// ReactionRuns counts completed reaction runs, including runs whose
	// failure was contained.
	ReactionRuns uint64

	// RunsSuppressed counts scheduled runs skipped because no dependency
	// value actually changed.
	RunsSuppressed uint64

	// RunsCoalesced counts invalidations absorbed by an already-pending
	// deferred run.
	RunsCoalesced uint64

	// RunsThrottled counts re-runs dropped because a reaction hit the
	// per-pass flush budget.
	RunsThrottled uint64

	// Batches counts completed outermost batch scopes.
	Batches uint64

	// Flushes counts propagation passes.
	Flushes uint64

	// ErrorsContained counts failures handed to error handlers.
	ErrorsContained uint64
}

// Stats returns a snapshot of the runtime's counters.
func (rt *Runtime) Stats() Stats {
	return Stats{
		AtomWrites:      rt.counters.atomWrites.Load(),
		ComputedRuns:    rt.counters.computedRuns.Load(),
		ReactionRuns:    rt.counters.reactionRuns.Load(),
		RunsSuppressed:  rt.counters.runsSuppressed.Load(),
		RunsCoalesced:   rt.counters.runsCoalesced.Load(),
		RunsThrottled:   rt.counters.runsThrottled.Load(),
		Batches:         rt.counters.batches.Load(),
		Flushes:         rt.counters.flushes.Load(),
		ErrorsContained: rt.counters.errorsContained.Load(),
	}
}

// errNil builds the panic value for a nil-function configuration error.
func errNil(what string) error {
	return fmt.Errorf("%w: %s", ErrNilFunc, what)
}
