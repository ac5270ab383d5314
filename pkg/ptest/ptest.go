package ptest

import "sync"

// ManualScheduler queues scheduled callbacks until the test pumps them.
// It satisfies pulse.Scheduler and replaces real timers in deferred-mode
// tests, so nothing sleeps and nothing is flaky.
type ManualScheduler struct {
	mu      sync.Mutex
	pending []func()
}

// NewManualScheduler creates an empty manual scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Schedule queues the callback. It never invokes fn itself.
func (s *ManualScheduler) Schedule(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, fn)
}

// Len returns the number of callbacks currently queued.
func (s *ManualScheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Flush runs every queued callback in scheduling order and returns how many
// ran. Callbacks scheduled while flushing queue for the next Flush, which
// mirrors how a real event loop picks up follow-on work on a later tick.
func (s *ManualScheduler) Flush() int {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, fn := range pending {
		fn()
	}
	return len(pending)
}

// Recorder collects values pushed from effects for later assertion.
type Recorder[T any] struct {
	mu     sync.Mutex
	values []T
}

// NewRecorder creates an empty recorder.
func NewRecorder[T any]() *Recorder[T] {
	return &Recorder[T]{}
}

// Push appends a value.
func (r *Recorder[T]) Push(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
}

// Values returns a copy of everything pushed so far.
func (r *Recorder[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, len(r.values))
	copy(out, r.values)
	return out
}

// Len returns how many values have been pushed.
func (r *Recorder[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values)
}

// Reset discards all recorded values.
func (r *Recorder[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = nil
}
