package pool

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ClassStats reports one size class. Byte figures derive from the aligned
// chunk stride, not the raw item size.
type ClassStats struct {
	Size       int // item size in bytes
	Stride     int // align(size, link width)
	Blocks     int // blocks dedicated to this size
	ChunksHeld int // sum of block capacities
	ChunksUsed int // bump high-water marks minus freelist residents
	BytesHeld  int64
	BytesUsed  int64
}

// Stats is a snapshot of the pool's size classes, ordered by item size.
//
// The snapshot is exact for a quiesced pool whose other open views hold no
// cached chunks. Chunks cached in sibling views' local freelists are counted
// as used, because only the shared directory is visible across views; while
// other views allocate and free concurrently, counts are momentary.
type Stats struct {
	Classes []ClassStats
}

// Stats enumerates the size classes in use, counting freelist residents
// from this view's local lists and the shared directory.
func (p *Pool) Stats() Stats {
	st := p.st

	type acc struct {
		blocks    int
		held      int
		allocated int
		stride    uint32
	}
	bySize := make(map[uint32]*acc)

	used := st.usedblocks.Load()
	if used > uint32(len(st.blocks)) {
		used = uint32(len(st.blocks))
	}
	for i := uint32(1); i < used; i++ {
		b := st.blocks[i].Load()
		if b == nil || b.total == 0 {
			continue
		}
		a := bySize[b.itemsize]
		if a == nil {
			a = &acc{stride: b.stride}
			bySize[b.itemsize] = a
		}
		a.blocks++
		a.held += int(b.total)
		a.allocated += int(b.allocated.Load())
	}

	var out Stats
	for size, a := range bySize {
		free := st.dir.residents(size)
		if p.classes != nil {
			if sc := p.classes[size]; sc != nil {
				free += sc.touse.count + sc.tofree.count
			}
		}
		cs := ClassStats{
			Size:       int(size),
			Stride:     int(a.stride),
			Blocks:     a.blocks,
			ChunksHeld: a.held,
			ChunksUsed: a.allocated - free,
			BytesHeld:  int64(a.held) * int64(a.stride),
			BytesUsed:  int64(a.allocated-free) * int64(a.stride),
		}
		out.Classes = append(out.Classes, cs)
	}
	sort.Slice(out.Classes, func(i, j int) bool {
		return out.Classes[i].Size < out.Classes[j].Size
	})
	return out
}

// Format renders the stats table with the given printer, so callers control
// locale-aware number formatting.
func (s Stats) Format(pr *message.Printer) string {
	var sb strings.Builder
	pr.Fprintf(&sb, "%8s %8s %8s %12s %12s %14s %14s\n",
		"size", "stride", "blocks", "held", "used", "bytes held", "bytes used")
	for _, c := range s.Classes {
		pr.Fprintf(&sb, "%8d %8d %8d %12d %12d %14d %14d\n",
			c.Size, c.Stride, c.Blocks, c.ChunksHeld, c.ChunksUsed, c.BytesHeld, c.BytesUsed)
	}
	return sb.String()
}

// String renders the stats table with English digit grouping.
func (s Stats) String() string {
	return s.Format(message.NewPrinter(language.English))
}
