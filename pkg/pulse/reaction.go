package pulse

import (
	"fmt"
	"sync/atomic"
	"time"
)

// reactionState is the lifecycle of a reaction. Transitions:
//
//	active    -> scheduled   deferred callback handed to the scheduler
//	scheduled -> active      deferred callback fired
//	any       -> disposed    terminal; never leaves
//
// The state is checked at every suspension and resumption point, so a
// disposed reaction with an in-flight scheduled callback degrades to a
// no-op instead of erroring.
type reactionState int32

const (
	stateActive reactionState = iota + 1
	stateScheduled
	stateDisposed
)

// Reaction is a side-effecting derivation. It re-runs its tracked routine
// whenever a dependency effectively changes: synchronously by default, or
// through a Scheduler when one is configured. Create reactions with Autorun
// or Watch.
type Reaction struct {
	id   uint64
	name string
	rt   *Runtime

	// run is the tracked run routine. first is true only for the very
	// first execution.
	run func(first bool)

	// onError contains tracked-body failures; nil means propagate.
	onError func(error)

	// scheduler defers re-runs; nil means synchronous mode.
	scheduler Scheduler

	// state is atomic because deferred callbacks may fire from scheduler
	// goroutines while the owner disposes the reaction.
	state atomic.Int32

	// first is true until the first run has executed.
	first bool

	// queued is true while the reaction sits in the runtime's pending
	// queue. Invalidations arriving while queued coalesce into the queued
	// entry; an invalidation after the entry is taken re-queues the
	// reaction. Only the goroutine driving the runtime touches it.
	queued bool

	// sources are the cells read during the most recent run, and versions
	// the version stamp observed for each. A scheduled run whose sources
	// all carry unchanged versions is skipped.
	sources  []srcCell
	versions []uint64
}

func newReaction(rt *Runtime, cfg config, run func(first bool)) *Reaction {
	r := &Reaction{
		id:        nextID(),
		name:      cfg.name,
		rt:        rt,
		run:       run,
		onError:   cfg.onError,
		scheduler: cfg.resolveScheduler(),
		first:     true,
	}
	r.state.Store(int32(stateActive))
	return r
}

// ID returns the reaction's unique identifier.
func (r *Reaction) ID() uint64 { return r.id }

// Name returns the configured diagnostic name, if any.
func (r *Reaction) Name() string { return r.name }

// IsDisposed reports whether the reaction has been disposed.
func (r *Reaction) IsDisposed() bool {
	return reactionState(r.state.Load()) == stateDisposed
}

// IsScheduled reports whether a deferred re-run callback has been handed to
// the scheduler and has not yet executed.
func (r *Reaction) IsScheduled() bool {
	return reactionState(r.state.Load()) == stateScheduled
}

// Dispose detaches the reaction from every cell and makes it terminal.
// An in-flight deferred callback becomes a no-op. Idempotent.
func (r *Reaction) Dispose() {
	prev := reactionState(r.state.Swap(int32(stateDisposed)))
	if prev == stateDisposed {
		return
	}

	for _, s := range r.sources {
		s.cell().unsubscribe(r)
	}
	r.sources = nil
	r.versions = nil

	r.rt.emit(Event{Kind: EventDispose, ID: r.id, Name: r.name})
}

func (r *Reaction) observerID() uint64 { return r.id }

// invalidate implements observer: hand the reaction to the batch
// coordinator. Whether the re-run happens now or at batch close is the
// coordinator's call; whether it happens synchronously or deferred is
// decided in schedule.
func (r *Reaction) invalidate() {
	if r.IsDisposed() {
		return
	}

	r.rt.enqueue(r)
}

// schedule is invoked by the flush pass, once per reaction per pass.
// Synchronous reactions run in place. Deferred reactions hand a callback to
// their scheduler, guarded by the active->scheduled transition so that
// invalidations arriving before the callback fires coalesce into one run.
func (r *Reaction) schedule() {
	if r.IsDisposed() {
		return
	}

	if r.scheduler == nil {
		r.runNow()
		return
	}

	if !r.state.CompareAndSwap(int32(stateActive), int32(stateScheduled)) {
		// Already scheduled (or disposed concurrently); this invalidation
		// is absorbed by the pending run.
		r.rt.counters.runsCoalesced.Add(1)
		return
	}

	r.scheduler.Schedule(func() {
		// scheduled -> active fails only when Dispose won the race:
		// the callback then degrades to a no-op.
		if !r.state.CompareAndSwap(int32(stateScheduled), int32(stateActive)) {
			return
		}
		r.runNow()
	})
}

// runNow performs the tracked run routine. Before re-running it settles
// lazy computeds among its dependencies and skips the run when no
// dependency value effectively changed since the last run. Failures are
// handed to the error handler when one is configured; otherwise they
// propagate to whatever invoked the run.
func (r *Reaction) runNow() {
	if r.IsDisposed() {
		return
	}

	var start time.Time
	if r.rt.hasHooks() {
		start = time.Now()
	}

	ran := false
	step := func() {
		if !r.depsChanged() {
			r.rt.counters.runsSuppressed.Add(1)
			return
		}
		ran = true

		first := r.first
		r.first = false

		r.rt.runTracked(r, &r.sources, func() {
			r.run(first)
		})
		r.commitVersions()
	}

	var runErr error
	if r.onError == nil {
		step()
	} else {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					runErr = recoveredError(rec)
					r.rt.counters.errorsContained.Add(1)
					r.rt.emit(Event{Kind: EventErrorContained, ID: r.id, Name: r.name, Err: runErr})
					r.onError(runErr)
				}
			}()
			step()
		}()
	}

	if ran || runErr != nil {
		r.rt.counters.reactionRuns.Add(1)
		if r.rt.hasHooks() {
			r.rt.emit(Event{
				Kind:     EventReactionRun,
				ID:       r.id,
				Name:     r.name,
				Err:      runErr,
				Duration: time.Since(start),
			})
		}
	}
}

// start performs or schedules the reaction's first run. In deferred mode
// even the first run goes through the scheduler.
func (r *Reaction) start() {
	if r.scheduler == nil {
		r.runNow()
		return
	}

	r.schedule()
}

// depsChanged reports whether any dependency's value effectively changed
// since the last completed run. Lazily-stale computeds are settled first so
// their version stamps are current. The first run always proceeds, as does
// a run after a failure left versions uncommitted.
func (r *Reaction) depsChanged() bool {
	if r.first {
		return true
	}
	if len(r.versions) != len(r.sources) {
		return true
	}

	for i, s := range r.sources {
		s.refresh()
		if s.cell().version != r.versions[i] {
			return true
		}
	}

	return false
}

// commitVersions records the version stamp of every dependency after a
// completed run.
func (r *Reaction) commitVersions() {
	r.versions = r.versions[:0]
	for _, s := range r.sources {
		r.versions = append(r.versions, s.cell().version)
	}
}

// recoveredError normalizes a recover() value into an error.
func recoveredError(rec any) error {
	if err, ok := rec.(error); ok {
		return err
	}
	return fmt.Errorf("pulse: reaction panic: %v", rec)
}
