package pulse

import "time"

// Option configures an Autorun or Watch reaction.
type Option func(*config)

// config holds reaction configuration accumulated from options.
type config struct {
	name            string
	delay           time.Duration
	scheduler       Scheduler
	onError         func(error)
	fireImmediately bool
	equals          Comparer
}

// WithName sets a diagnostic name, reported in runtime events.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithDelay defers re-runs by a fixed duration. Invalidations arriving
// before the deferred run fires coalesce into a single run. Ignored when
// WithScheduler is also given.
func WithDelay(d time.Duration) Option {
	return func(c *config) {
		c.delay = d
	}
}

// WithScheduler defers re-runs through a caller-supplied scheduler. Takes
// precedence over WithDelay when both are configured.
func WithScheduler(s Scheduler) Option {
	return func(c *config) {
		c.scheduler = s
	}
}

// WithOnError installs an error handler. A tracked-body failure is handed
// to the handler instead of propagating, and the reaction stays live for
// future invalidations.
func WithOnError(fn func(error)) Option {
	return func(c *config) {
		c.onError = fn
	}
}

// FireImmediately makes a Watch reaction invoke its effect on the very
// first run, rather than only on subsequent changes. It has no influence on
// any later invocation.
func FireImmediately() Option {
	return func(c *config) {
		c.fireImmediately = true
	}
}

// WithEquals sets the comparer deciding whether a Watch expression's new
// value counts as changed. Defaults to Identity.
func WithEquals(cmp Comparer) Option {
	return func(c *config) {
		c.equals = cmp
	}
}

// Structurally selects deep structural comparison for a Watch reaction.
// Shorthand for WithEquals(Structural).
func Structurally() Option {
	return WithEquals(Structural)
}

// applyOptions folds the given options into a config.
func applyOptions(opts []Option) config {
	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// resolveScheduler maps the delay/scheduler configuration onto the
// effective scheduler: an explicit scheduler wins, a delay wraps Delayed,
// and neither means synchronous mode.
func (c *config) resolveScheduler() Scheduler {
	if c.scheduler != nil {
		return c.scheduler
	}
	if c.delay > 0 {
		return Delayed(c.delay)
	}
	return nil
}
