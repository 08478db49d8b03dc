// Package pool implements a thread-cooperative slab allocator that hands
// out small fixed-size chunks identified by compact opaque handles.
//
// # Overview
//
// The pool targets workloads that allocate millions of short, size-classified
// objects: model checkers, graph explorers, interning tables. It provides
// cache-friendly LIFO reuse, object identity that is independent of machine
// addresses, O(1) handle-to-memory conversion, and an auxiliary slave pool
// that attaches lazily materialised per-object shadow data to the same
// handles.
//
// # Handles
//
// A Handle packs (slab, chunk, tag) into a fixed-width integer. The slab
// field selects a block in the shared table, chunk the position inside it,
// and the tag belongs entirely to clients (for example to mark the pointer
// flavour in a tagged-union graph). Two layouts ship:
//
//	LayoutCompact32: 16-bit slab, 15-bit chunk,  1-bit tag (32-bit raw)
//	LayoutWide64:    16-bit slab, 16-bit chunk, 32-bit tag (64-bit raw)
//
// Handle zero is nil. Handles are stable for the object's lifetime; chunks
// never move.
//
// # Views and Sharing
//
// A Pool is one goroutine's view: per-size reuse lists and a cache of
// pre-claimed slab indices over shared state (block table, slab counter,
// shared freelist directory). Views are NOT safe for concurrent use; give
// each goroutine its own with Clone. The shared state is reference counted
// and finalised when the last view (or slave) closes.
//
// # Allocation
//
// Allocate(size) serves, in priority order: the view's touse list, the
// tofree list promoted wholesale, bump allocation in the active block, a
// freelist node stolen from the shared directory, and finally a fresh block.
// Frees land on touse until it holds SpillThreshold chunks, then on tofree;
// a full tofree list is published to the shared directory in one CAS so
// sibling views can steal it.
//
// The first three paths touch only view-local state and are wait-free. The
// shared paths are lock-free CAS loops. Blocks are claimed sixteen slab
// indices at a time from an atomic counter to keep contention off the
// common path.
//
// # Usage Example
//
//	p, err := pool.New(nil)
//	if err != nil {
//		return err
//	}
//	defer p.Close()
//
//	h, err := p.Allocate(32)
//	if err != nil {
//		return err
//	}
//	copy(p.Bytes(h), payload)
//
//	// Attach 4 bytes of shadow state to the same handle.
//	s := pool.NewSlave(p)
//	defer s.Close()
//	if err := s.Materialise(h, 4, true); err != nil {
//		return err
//	}
//	binary.LittleEndian.PutUint32(s.Bytes(h), 7)
//
//	p.Free(h)
//
// # Blocks and Size Classes
//
// Every block is dedicated to one item size. Chunk strides pad the item
// size to the handle link width (4 or 8 bytes) so a freed chunk can store
// the freelist link in its first bytes. Per class, the first block is
// BlockFloorBytes and each subsequent one is four times larger up to
// BlockCeilBytes, amortising the per-block overhead.
//
// # Error Model
//
// The fast paths are infallible. Allocate returns ErrBadSize for sizes
// outside (0, 2^24) and wraps backing-allocator failures in ErrNoSpace;
// both are structural. Freeing the nil handle is a no-op. Dereferencing an
// unknown or sentinel slab, and exhausting the slab index space, panic.
// Double-free and use-after-free are undefined and surface best-effort
// through the access tracker.
//
// # Statistics
//
// Stats() reports, per size class in use, chunks held and used plus byte
// figures derived from the aligned stride. Stats.Format renders the table
// through a golang.org/x/text/message printer.
//
// # Related Packages
//
//   - github.com/slabkit/slabkit/pool/access: accessibility instrumentation
//   - github.com/slabkit/slabkit/internal/pagealloc: backing page allocator
package pool
