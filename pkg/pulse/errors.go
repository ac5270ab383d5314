package pulse

import "errors"

// ErrNilRuntime is used in the panic raised when a constructor is given a
// nil *Runtime. Every reactive primitive belongs to exactly one runtime.
var ErrNilRuntime = errors.New("pulse: nil runtime")

// ErrNilFunc is used in the panic raised when a constructor is given a nil
// function where a body, expression, or effect is required. Configuration
// errors fail fast, before any graph state is touched.
var ErrNilFunc = errors.New("pulse: nil function")

// ErrUnbalancedBatch is the panic value for an EndBatch call with no
// matching StartBatch. Unbalanced nesting is a programming error, not a
// condition the runtime recovers from: a silently ignored underflow would
// let propagation fire in the middle of a mutation the caller believes is
// still batched.
var ErrUnbalancedBatch = errors.New("pulse: EndBatch without matching StartBatch")

// ErrReservedKey is returned by Object.Define when a property name is
// reserved (empty, or prefixed with "$"). No field is created when any key
// in the definition is rejected.
var ErrReservedKey = errors.New("pulse: reserved field name")

// ErrFieldExists is returned by Object.Define when a property is already
// instrumented. Re-defining a live field would silently detach existing
// dependents, so the whole definition is rejected up front.
var ErrFieldExists = errors.New("pulse: field already defined")

// ErrFieldUnknown is returned by Object operations that reference a
// property that was never defined.
var ErrFieldUnknown = errors.New("pulse: field not defined")
