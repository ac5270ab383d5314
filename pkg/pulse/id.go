package pulse

import "sync/atomic"

// idCounter hands out identities for atoms, computeds, and reactions across
// every runtime in the process.
var idCounter uint64

// nextID allocates a fresh identifier. Monotonic, never zero, never reused;
// subscriber sets and flush bookkeeping key on it.
func nextID() uint64 {
	return atomic.AddUint64(&idCounter, 1)
}
