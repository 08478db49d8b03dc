package pool

import (
	"fmt"
	"sync/atomic"

	"github.com/slabkit/slabkit/internal/format"
)

// slaveBlock mirrors one master block's chunk count at the slave's own item
// size. The header carries only itemsize; geometry (chunk count) comes from
// the master block it shadows.
type slaveBlock struct {
	itemsize uint32
	stride   uint32
	region   []byte
	data     []byte
}

// Slave is an auxiliary allocator keyed by master handles. It attaches
// lazily materialised shadow storage to chunks without changing their
// handles: the first Materialise for any handle in a slab maps a parallel
// block sized to the master block's chunk count.
//
// A Slave holds a reference on the master's shared state, so master blocks
// and their geometry outlive it. Materialise and Bytes may be called from
// any goroutine; block installation is a lock-free CAS race and the loser
// discards its speculative mapping.
type Slave struct {
	st     *state
	blocks []atomic.Pointer[slaveBlock]
	closed atomic.Bool
}

// NewSlave attaches a slave pool to the master behind p.
func NewSlave(p *Pool) *Slave {
	p.st.refs.Add(1)
	return &Slave{
		st:     p.st,
		blocks: make([]atomic.Pointer[slaveBlock], p.st.layout.MaxSlabs()),
	}
}

// Materialise ensures shadow storage of size bytes per chunk exists for the
// slab h lives in, and optionally zeroes h's slot. Idempotent for the slab:
// later calls on any handle in it skip block creation but still honour
// clear. The slot stays live and addressable until the slave is closed.
func (s *Slave) Materialise(h Handle, size int, clearSlot bool) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if size <= 0 || size > format.MaxItemSize {
		return fmt.Errorf("%w: %d", ErrBadSize, size)
	}
	slab := s.st.layout.Slab(h)
	mb := s.st.blocks[slab].Load()
	if mb == nil {
		panic(fmt.Sprintf("pool: materialise for unknown slab %d", slab))
	}
	if mb.total == 0 {
		panic(fmt.Sprintf("pool: materialise on sentinel slab %d", slab))
	}

	sb := s.blocks[slab].Load()
	if sb == nil {
		fresh, err := s.mapBlock(mb, uint32(size))
		if err != nil {
			return err
		}
		if s.blocks[slab].CompareAndSwap(nil, fresh) {
			sb = fresh
		} else {
			// Lost the race: discard the speculative mapping.
			_ = s.st.mem.Drop(fresh.region)
			sb = s.blocks[slab].Load()
		}
	}

	if clearSlot {
		chunk := s.st.layout.Chunk(h)
		off := chunk * sb.stride
		clear(sb.data[off : off+sb.itemsize])
	}
	return nil
}

// mapBlock allocates the mirror region: one slot per master chunk. Byte
// slots pack densely; anything larger pads to the link width like the
// master does.
func (s *Slave) mapBlock(mb *block, size uint32) (*slaveBlock, error) {
	stride := alignStride(size, s.st.layout)
	if size == 1 {
		stride = 1
	}
	region, err := s.st.mem.Alloc(int(mb.total) * int(stride))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSpace, err)
	}
	return &slaveBlock{
		itemsize: size,
		stride:   stride,
		region:   region,
		data:     region,
	}, nil
}

// Bytes dereferences h's shadow slot. Same indexing math as the master,
// using the slave block's own itemsize. Panics if the slab was never
// materialised.
func (s *Slave) Bytes(h Handle) []byte {
	slab := s.st.layout.Slab(h)
	sb := s.blocks[slab].Load()
	if sb == nil {
		panic(fmt.Sprintf("pool: slave dereference of unmaterialised slab %d", slab))
	}
	chunk := s.st.layout.Chunk(h)
	off := chunk * sb.stride
	return sb.data[off : off+sb.itemsize : off+sb.stride]
}

// SizeOf returns the shadow payload size for h's slab.
func (s *Slave) SizeOf(h Handle) int {
	slab := s.st.layout.Slab(h)
	sb := s.blocks[slab].Load()
	if sb == nil {
		panic(fmt.Sprintf("pool: slave dereference of unmaterialised slab %d", slab))
	}
	return int(sb.itemsize)
}

// Close drops every shadow block and releases the master state reference.
// Idempotent.
func (s *Slave) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	var firstErr error
	for i := range s.blocks {
		sb := s.blocks[i].Load()
		if sb == nil {
			continue
		}
		if err := s.st.mem.Drop(sb.region); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("pool: dropping slave block %d: %w", i, err)
		}
		s.blocks[i].Store(nil)
	}
	if err := s.st.release(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
