// Package ptest provides testing helpers for reactive code built on pulse.
//
// The ptest package reduces boilerplate when testing deferred reactions by
// replacing timers with a manually-pumped scheduler and by recording effect
// output.
//
// # Manual Scheduler
//
// ManualScheduler satisfies pulse.Scheduler. Callbacks queue instead of
// firing, and the test decides when they run:
//
//	func TestCoalescing(t *testing.T) {
//	    rt := pulse.NewRuntime()
//	    sched := ptest.NewManualScheduler()
//
//	    count := pulse.NewAtom(rt, 0)
//	    pulse.Autorun(rt, func() { _ = count.Get() },
//	        pulse.WithScheduler(sched))
//	    sched.Flush()
//
//	    count.Set(1)
//	    count.Set(2)
//	    if sched.Len() != 1 {
//	        t.Fatalf("expected 1 pending callback, got %d", sched.Len())
//	    }
//	    sched.Flush()
//	}
//
// # Recorder
//
// Recorder collects values pushed from effects so tests can assert on the
// exact observation sequence:
//
//	log := ptest.NewRecorder[int]()
//	pulse.Autorun(rt, func() { log.Push(count.Get()) })
//	count.Set(1)
//	// log.Values() == []int{0, 1}
package ptest
