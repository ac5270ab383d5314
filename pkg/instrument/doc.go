// Package instrument connects a pulse runtime's event stream to standard
// observability backends.
//
// Metrics exports propagation counters and reaction-run latency as
// Prometheus metrics:
//
//	m := instrument.Metrics(rt,
//	    instrument.WithNamespace("myapp"),
//	    instrument.WithRegistry(registry),
//	)
//	defer m.Close()
//
// Trace emits an OpenTelemetry span per reaction run:
//
//	stop := instrument.Trace(rt,
//	    instrument.WithTracerName("myapp"),
//	    instrument.WithFilter(func(e pulse.Event) bool {
//	        return e.Name != ""
//	    }),
//	)
//	defer stop()
//
// Both adapters are hooks over Runtime.OnEvent: they add no cost to a
// runtime that does not install them, and removing them restores the
// zero-overhead path.
package instrument
