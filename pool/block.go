package pool

import (
	"sync/atomic"

	"github.com/slabkit/slabkit/internal/format"
)

// block is one contiguous region carved from the backing allocator,
// dedicated to a single item size. The payload holds total chunks of stride
// bytes each; allocated is the bump high-water mark and only ever grows.
//
// itemsize, total and stride are immutable after creation. allocated is
// written only by the view that created the block but read by stats in any
// view, hence atomic.
type block struct {
	itemsize  uint32 // bytes per object (24-bit field)
	stride    uint32 // align(itemsize, link width)
	total     uint32 // capacity in chunks (20-bit field); 0 marks a sentinel
	allocated atomic.Uint32

	region []byte // full backing region, returned verbatim to the source
	data   []byte // chunk payload: region[BlockOverhead:]
}

// chunk returns the stride-wide byte window of one chunk.
func (b *block) chunk(i uint32) []byte {
	off := i * b.stride
	return b.data[off : off+b.stride : off+b.stride]
}

// payload returns the itemsize-wide client window of one chunk.
func (b *block) payload(i uint32) []byte {
	off := i * b.stride
	return b.data[off : off+b.itemsize : off+b.stride]
}

// blockGeometry computes the chunk count and exact byte cost of the next
// block for a size class, honouring the header-field limits and the layout's
// chunk addressing width.
func blockGeometry(size, stride uint32, blockBytes int, layout Layout) (total uint32, bytes int) {
	if size == 0 {
		// Sentinel block: no chunks, fixed-width region.
		return 0, blockBytes
	}
	usable := blockBytes - format.BlockOverhead
	total = uint32(usable) / stride
	if total == 0 {
		total = 1
	}
	if lim := layout.MaxChunks(); total > lim {
		total = lim
	}
	if total > format.MaxChunksPerBlock {
		total = format.MaxChunksPerBlock
	}
	return total, format.BlockOverhead + int(total)*int(stride)
}
