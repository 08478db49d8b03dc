package pool

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/slabkit/slabkit/internal/pagealloc"
	"github.com/slabkit/slabkit/pool/access"
)

// Debug flag - set to true to enable verbose logging (compile-time toggle).
const debugPool = false

// Runtime debug flag for block-creation logging - controlled by SLABKIT_LOG_ALLOC env var.
var logAlloc = os.Getenv("SLABKIT_LOG_ALLOC") != ""

// state is the part of a pool that every view shares: the block table, the
// slab counter, the shared freelist directory and the collaborators. It is
// reference counted; the view that drops the last reference runs the
// finaliser.
type state struct {
	cfg     Config
	layout  Layout
	mem     pagealloc.Source
	tracker access.Tracker

	// blocks is indexed by slab. Entry i is written exactly once, by the
	// view that claimed slab i, with a release store; readers traverse with
	// acquire loads.
	blocks []atomic.Pointer[block]

	// usedblocks is the next unclaimed slab index. Slab 0 is the reserved
	// null slab and is never assigned.
	usedblocks atomic.Uint32

	dir  directory
	refs atomic.Int32
}

// localList is a per-view LIFO of reclaimed chunks. The chain is threaded
// through the chunks themselves: each freed chunk stores the previous head
// in its first link-width bytes.
type localList struct {
	head  Handle
	count int
}

// sizeClass is the per-view state of one item size: the two reuse lists,
// the block bump allocation continues in, and the adaptive size of the next
// block.
type sizeClass struct {
	size   uint32
	stride uint32

	touse  localList // fast path, drained by Allocate
	tofree localList // absorbs frees past the threshold, spills when full

	active     *block
	activeSlab uint32

	blockBytes int // next block size for this class, x4 per creation
}

// Pool is one view of a slab pool: thread-local size-class caches over the
// shared state. A Pool is NOT safe for concurrent use; give each goroutine
// its own view via Clone. Views are cheap and share blocks, handles and the
// shared freelists.
type Pool struct {
	st          *state
	classes     map[uint32]*sizeClass
	emptyblocks []uint32 // slab indices claimed in batch, not yet populated
	closed      bool
}

// New creates a pool and returns its first view. A nil config selects
// DefaultConfig.
func New(cfg *Config) (*Pool, error) {
	conf := DefaultConfig
	if cfg != nil {
		conf = *cfg
	}
	conf = conf.withDefaults()

	st := &state{
		cfg:     conf,
		layout:  conf.Layout,
		mem:     conf.Source,
		tracker: conf.Tracker,
		blocks:  make([]atomic.Pointer[block], conf.Layout.MaxSlabs()),
	}
	st.usedblocks.Store(1) // slab 0 stays null
	st.refs.Store(1)

	return &Pool{
		st:      st,
		classes: make(map[uint32]*sizeClass),
	}, nil
}

// Layout returns the handle representation this pool encodes with.
func (p *Pool) Layout() Layout { return p.st.layout }

// Clone returns a fresh view over the same shared state. The clone starts
// with empty local caches; handles are interchangeable between views once
// the client publishes them with its own happens-before edge.
func (p *Pool) Clone() *Pool {
	p.st.refs.Add(1)
	return &Pool{
		st:      p.st,
		classes: make(map[uint32]*sizeClass),
	}
}

// Close releases this view. Local freelists are published to the shared
// directory first, so chunks cached here stay reusable by sibling views.
// The last view to close finalises the shared state and returns every block
// to the backing allocator. Close is idempotent per view.
func (p *Pool) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	for _, sc := range p.classes {
		if sc.touse.count > 0 {
			p.st.dir.push(sc.size, sc.touse.head, sc.touse.count)
			sc.touse = localList{}
		}
		if sc.tofree.count > 0 {
			p.st.dir.push(sc.size, sc.tofree.head, sc.tofree.count)
			sc.tofree = localList{}
		}
	}
	p.classes = nil
	p.emptyblocks = nil

	return p.st.release()
}

// release drops one shared-state reference and finalises on the last one:
// directory chains are detached and every block goes back to the backing
// allocator with the exact byte count requested at creation.
func (st *state) release() error {
	if st.refs.Add(-1) > 0 {
		return nil
	}

	st.dir.reset()

	var firstErr error
	used := st.usedblocks.Load()
	if used > uint32(len(st.blocks)) {
		used = uint32(len(st.blocks))
	}
	for i := uint32(1); i < used; i++ {
		b := st.blocks[i].Load()
		if b == nil {
			continue
		}
		if err := st.mem.Drop(b.region); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("pool: dropping block %d: %w", i, err)
		}
		st.blocks[i].Store(nil)
	}
	return firstErr
}

// lookup resolves a handle to its block, panicking on the invariant
// violations the contract declares fatal.
func (p *Pool) lookup(h Handle) (*block, uint32, uint32) {
	slab := p.st.layout.Slab(h)
	chunk := p.st.layout.Chunk(h)
	b := p.st.blocks[slab].Load()
	if b == nil {
		panic(fmt.Sprintf("pool: handle (slab=%d chunk=%d) has no block", slab, chunk))
	}
	if b.total == 0 {
		panic(fmt.Sprintf("pool: handle (slab=%d chunk=%d) addresses a sentinel block", slab, chunk))
	}
	return b, slab, chunk
}

// Bytes dereferences a handle to its chunk payload. O(1), no locks; safe
// concurrently with allocations in any view because blocks never move.
// The slice is valid until the pool is destroyed; a freed handle must not
// be dereferenced.
func (p *Pool) Bytes(h Handle) []byte {
	b, _, chunk := p.lookup(h)
	return b.payload(chunk)
}

// SizeOf returns the byte size the chunk's block is dedicated to, which is
// the size passed to the Allocate that produced the handle.
func (p *Pool) SizeOf(h Handle) int {
	b, _, _ := p.lookup(h)
	return int(b.itemsize)
}

// class returns (creating on first use) this view's state for one item size.
func (p *Pool) class(size uint32) *sizeClass {
	sc := p.classes[size]
	if sc == nil {
		sc = &sizeClass{
			size:       size,
			stride:     alignStride(size, p.st.layout),
			blockBytes: p.st.cfg.BlockFloorBytes,
		}
		p.classes[size] = sc
	}
	return sc
}
