// Package pulse implements a fine-grained reactive dependency-tracking
// runtime. It maintains a live dependency graph between mutable state cells
// (atoms) and derived computations (reactions and computeds), and re-runs
// exactly the derivations that read a cell whenever that cell changes.
//
// # Quick Start
//
//	rt := pulse.NewRuntime()
//
//	count := pulse.NewAtom(rt, 0)
//
//	r := pulse.Autorun(rt, func() {
//	    fmt.Println("count is", count.Get())
//	})
//	defer r.Dispose()
//
//	count.Set(1) // prints "count is 1"
//
// # Dependency Tracking
//
// Reading an atom or computed during a tracked run (an Autorun body, a Watch
// expression, or a computed's compute function) registers it as a dependency
// of the innermost running derivation. Dependencies are rebuilt from scratch
// on every run, so branches that are no longer taken stop triggering re-runs.
//
// # Batching
//
// Batch groups multiple writes into a single propagation pass. Derivations
// never observe an intermediate batched state; invalidations queued during
// the batch coalesce into one run at close. Writes made by reactions during
// the pass re-run their dependents within the same pass, bounded per
// reaction by the runtime's flush budget (WithFlushBudget):
//
//	rt.Batch(func() {
//	    x.Set(2)
//	    y.Set(2)
//	})
//
// # Scheduling
//
// By default a reaction re-runs synchronously when invalidated. WithDelay
// defers the re-run by a fixed duration, and WithScheduler hands the re-run
// callback to caller-supplied dispatch. Invalidations that arrive while a
// deferred run is pending coalesce into a single run that observes only the
// latest state of every dependency.
//
// # Threading
//
// A Runtime assumes a single logical thread of control: exactly one
// goroutine drives tracked runs, writes, and batch flushes at a time.
// Deferred schedulers hand control back to their caller immediately; it is
// the caller's responsibility to dispatch the callback back onto the
// goroutine driving the runtime (see Dispatch).
package pulse
