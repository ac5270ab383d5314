package pulse

import "time"

// Scheduler decides when a reaction's re-run callback executes relative to
// the invalidating mutation. Schedule must eventually invoke fn exactly
// once; it returns to the caller immediately (a cooperative deferral, not a
// blocking wait).
type Scheduler interface {
	Schedule(fn func())
}

// SchedulerFunc adapts a plain function to the Scheduler interface.
type SchedulerFunc func(fn func())

// Schedule implements Scheduler.
func (f SchedulerFunc) Schedule(fn func()) { f(fn) }

// Immediate invokes the callback synchronously. A reaction configured with
// it behaves like a synchronous reaction that still goes through the
// scheduling state machine.
var Immediate Scheduler = SchedulerFunc(func(fn func()) { fn() })

// Delayed invokes the callback after a fixed delay on a timer goroutine.
// The callback mutates the reaction's graph, so a runtime using Delayed
// must not be driven concurrently while timers are in flight.
func Delayed(d time.Duration) Scheduler {
	return SchedulerFunc(func(fn func()) {
		time.AfterFunc(d, fn)
	})
}

// Dispatch wraps a caller-supplied dispatch function, typically one that
// re-enqueues the callback onto the goroutine driving the runtime (an event
// loop, a channel consumer, a frame ticker).
func Dispatch(dispatch func(func())) Scheduler {
	if dispatch == nil {
		panic(errNil("dispatch function"))
	}
	return SchedulerFunc(dispatch)
}
