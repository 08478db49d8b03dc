// Package access provides valgrind-style accessibility bookkeeping for pool
// chunks.
//
// # Overview
//
// The pool reports every chunk lifecycle transition to a Tracker: payload
// regions become no-access when a block is mapped, a chunk becomes a fresh
// allocation when handed out, and flips back to no-access when freed. The
// tracker is a side-channel over the allocator boundary; all pool invariants
// hold whether or not a tracker is installed.
//
// # Tracker Interface
//
// The Tracker receives:
//
//   - MapPayload(slab, payload): a new block's payload was mapped; mark it
//     no-access
//   - MarkAlloc(slab, chunk, mem, size): a chunk was handed to a client as a
//     fresh allocation of size bytes
//   - MarkFree(slab, chunk, mem): a chunk was returned to the pool and must
//     not be dereferenced
//
// Re-allocation of a previously freed chunk arrives as another MarkAlloc for
// the same (slab, chunk); implementations must discard any state left over
// from the earlier lifetime.
//
// # Implementations
//
// Noop: the default; empty methods, so the fast paths pay only the
// interface call.
//
// Recorder: accumulates labelled events for tests that verify the
// instrumentation contract itself.
//
// # Thread Safety
//
// The pool invokes the tracker from whichever goroutine performs the
// operation. Noop is trivially safe; Recorder serialises internally.
package access
