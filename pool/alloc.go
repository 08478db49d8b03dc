package pool

import (
	"fmt"
	"os"

	"github.com/slabkit/slabkit/internal/format"
)

// alignStride pads an item size to the layout's link width so a freed chunk
// can always hold a freelist link.
func alignStride(size uint32, layout Layout) uint32 {
	return format.AlignU32(size, uint32(layout.Width()))
}

// Allocate hands out one zero-filled chunk of exactly size bytes and returns
// its handle. size must be in (0, 2^24). The handle's tag field is zero.
//
// Priority order: this view's touse list, then the tofree list promoted
// wholesale, then bump allocation in the active block, then a node stolen
// from the shared directory, then a fresh block. Only the last two touch
// shared state; both are lock-free.
func (p *Pool) Allocate(size int) (Handle, error) {
	if p.closed {
		return Nil, ErrClosed
	}
	if size <= 0 || size > format.MaxItemSize {
		return Nil, fmt.Errorf("%w: %d", ErrBadSize, size)
	}
	sc := p.class(uint32(size))

	if sc.touse.count > 0 {
		return p.popLocal(sc), nil
	}

	if sc.tofree.count > 0 {
		sc.touse, sc.tofree = sc.tofree, localList{}
		return p.popLocal(sc), nil
	}

	if h, ok := p.bump(sc); ok {
		return h, nil
	}

	if node := p.st.dir.steal(sc.size); node != nil {
		sc.touse = localList{head: node.head, count: node.count}
		return p.popLocal(sc), nil
	}

	if err := p.newblock(sc); err != nil {
		return Nil, err
	}
	h, _ := p.bump(sc)
	return h, nil
}

// popLocal pops the head of touse: read the link stored in the chunk's
// first bytes, advance the list, zero the chunk. The chunk was live before,
// so it must be cleared on reuse.
func (p *Pool) popLocal(sc *sizeClass) Handle {
	st := p.st
	h := sc.touse.head
	slab, chunk := st.layout.Slab(h), st.layout.Chunk(h)
	b := st.blocks[slab].Load()
	mem := b.chunk(chunk)

	sc.touse.head = Handle(format.ReadLink(mem, st.layout.Width()))
	sc.touse.count--

	clear(mem)
	st.tracker.MarkAlloc(slab, chunk, mem[:b.itemsize], int(b.itemsize))
	return h
}

// bump takes the next never-used chunk of the active block. No clearing:
// the backing pages arrive zero-filled and the chunk has never been live.
func (p *Pool) bump(sc *sizeClass) (Handle, bool) {
	b := sc.active
	if b == nil {
		return Nil, false
	}
	idx := b.allocated.Load()
	if idx >= b.total {
		return Nil, false
	}
	b.allocated.Store(idx + 1) // single writer: only this view bumps its active block

	h := p.st.layout.Pack(sc.activeSlab, idx, 0)
	p.st.tracker.MarkAlloc(sc.activeSlab, idx, b.payload(idx), int(b.itemsize))
	return h, true
}

// Free returns a chunk to this view's reuse lists. Nil handles are ignored.
// The chunk lands on touse while that list is below the spill threshold,
// otherwise on tofree; a tofree list that fills to the threshold is
// published wholesale to the shared directory so sibling views can steal
// it. The pool reuses the chunk's first bytes for linkage, so a freed
// handle must not be dereferenced.
func (p *Pool) Free(h Handle) {
	if p.closed {
		panic("pool: Free on closed view")
	}
	st := p.st
	if !st.layout.Valid(h) {
		return
	}
	b, slab, chunk := p.lookup(h)
	sc := p.class(b.itemsize)
	mem := b.chunk(chunk)

	st.tracker.MarkFree(slab, chunk, mem[:b.itemsize])

	dst := &sc.touse
	spill := false
	if sc.touse.count >= st.cfg.SpillThreshold {
		dst = &sc.tofree
		spill = true
	}

	// Canonical tag-zero form keeps stored links independent of whatever
	// tag the client set on its copy.
	link := st.layout.WithTag(h, 0)
	format.PutLink(mem, st.layout.Width(), dst.head.Raw())
	dst.head = link
	dst.count++

	if spill && sc.tofree.count >= st.cfg.SpillThreshold {
		st.dir.push(sc.size, sc.tofree.head, sc.tofree.count)
		sc.tofree = localList{}
	}
}

// newblock creates a block for sc, sets it active and publishes it in the
// shared table. Slab indices come from the local batch cache when possible;
// otherwise SlabBatch consecutive indices are claimed from the shared
// counter in one atomic step and the remainder cached.
func (p *Pool) newblock(sc *sizeClass) error {
	st := p.st

	// Grow the class block size until one item and the overhead fit.
	need := format.BlockOverhead + int(sc.stride)
	for sc.blockBytes < need {
		sc.blockBytes *= 2
	}

	total, bytes := blockGeometry(sc.size, sc.stride, sc.blockBytes, st.layout)

	region, err := st.mem.Alloc(bytes)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoSpace, err)
	}

	slab := p.claimSlab()
	b := &block{
		itemsize: sc.size,
		stride:   sc.stride,
		total:    total,
		region:   region,
	}
	if total > 0 {
		b.data = region[format.BlockOverhead:]
		st.tracker.MapPayload(slab, b.data)
	}
	st.blocks[slab].Store(b) // release: readers acquire via Load

	if debugPool || logAlloc {
		fmt.Fprintf(os.Stderr, "[POOL] newblock size=%d slab=%d total=%d bytes=%d\n",
			sc.size, slab, total, bytes)
	}

	sc.active = b
	sc.activeSlab = slab

	// Next block for this class is larger, amortising the overhead.
	sc.blockBytes *= 4
	if sc.blockBytes > st.cfg.BlockCeilBytes {
		sc.blockBytes = st.cfg.BlockCeilBytes
	}
	return nil
}

// claimSlab hands out the next slab index for this view.
func (p *Pool) claimSlab() uint32 {
	if n := len(p.emptyblocks); n > 0 {
		slab := p.emptyblocks[n-1]
		p.emptyblocks = p.emptyblocks[:n-1]
		return slab
	}
	st := p.st
	base := st.usedblocks.Add(format.SlabBatch) - format.SlabBatch
	if base+format.SlabBatch > uint32(len(st.blocks)) {
		panic(fmt.Sprintf("pool: slab space exhausted (%d slabs)", len(st.blocks)))
	}
	for i := uint32(format.SlabBatch) - 1; i >= 1; i-- {
		p.emptyblocks = append(p.emptyblocks, base+i)
	}
	return base
}
