package pulse

import "time"

// EventKind identifies the type of a runtime event.
type EventKind uint8

const (
	// EventAtomWrite fires after an atom's value effectively changes.
	EventAtomWrite EventKind = iota + 1

	// EventComputedRun fires after a computed recomputes its value.
	EventComputedRun

	// EventReactionRun fires after a reaction's tracked run completes,
	// whether it succeeded or its failure was contained by an error handler.
	EventReactionRun

	// EventBatchEnd fires when the outermost batch closes, before the
	// pending queue is flushed.
	EventBatchEnd

	// EventFlush fires after a propagation pass drains the pending queue.
	EventFlush

	// EventErrorContained fires when a tracked-body failure is handed to a
	// reaction's error handler instead of propagating.
	EventErrorContained

	// EventDispose fires when a reaction is disposed.
	EventDispose

	// EventThrottle fires when a reaction hits the per-pass flush budget
	// and a re-run within the pass is dropped.
	EventThrottle
)

// String returns a human-readable name for the event kind.
func (k EventKind) String() string {
	switch k {
	case EventAtomWrite:
		return "AtomWrite"
	case EventComputedRun:
		return "ComputedRun"
	case EventReactionRun:
		return "ReactionRun"
	case EventBatchEnd:
		return "BatchEnd"
	case EventFlush:
		return "Flush"
	case EventErrorContained:
		return "ErrorContained"
	case EventDispose:
		return "Dispose"
	case EventThrottle:
		return "Throttle"
	default:
		return "Unknown"
	}
}

// Event is a single runtime occurrence delivered to OnEvent hooks.
// It is the integration point for metrics and tracing adapters; the engine
// itself carries no logger.
type Event struct {
	// Kind is the type of occurrence.
	Kind EventKind

	// ID is the identity of the primitive involved, when there is one.
	ID uint64

	// Name is the configured name of the primitive involved, if any.
	Name string

	// Err is the contained failure for EventErrorContained, and is also set
	// on the EventReactionRun of the failing run.
	Err error

	// Duration is how long the run took, for EventReactionRun and
	// EventComputedRun.
	Duration time.Duration
}

// eventHook associates a removable hook with its registration ID.
type eventHook struct {
	id uint64
	fn func(Event)
}

// OnEvent registers a hook invoked synchronously for every runtime event.
// It returns a removal function. Hooks run on the goroutine driving the
// runtime; a slow hook slows propagation.
func (rt *Runtime) OnEvent(fn func(Event)) func() {
	if fn == nil {
		panic(errNil("OnEvent hook"))
	}

	id := nextID()
	rt.hooks = append(rt.hooks, eventHook{id: id, fn: fn})
	rt.observing.Store(true)

	return func() {
		for i, h := range rt.hooks {
			if h.id == id {
				rt.hooks = append(rt.hooks[:i], rt.hooks[i+1:]...)
				break
			}
		}
		if len(rt.hooks) == 0 {
			rt.observing.Store(false)
		}
	}
}

// hasHooks reports whether any event hook is registered. Checked before
// emitting so the hot path pays nothing when nobody is listening.
func (rt *Runtime) hasHooks() bool {
	return rt.observing.Load()
}

// emit delivers an event to every registered hook.
func (rt *Runtime) emit(e Event) {
	if !rt.observing.Load() {
		return
	}

	for _, h := range rt.hooks {
		h.fn(e)
	}
}
