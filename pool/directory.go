package pool

import (
	"sync/atomic"

	"github.com/slabkit/slabkit/internal/format"
)

// sharedList is one spilled per-view freelist, published to the directory as
// a single node. head is the newest handle of the chain threaded through the
// chunks themselves; count is the chain length. Nodes are immutable once
// published; steal detaches whole nodes, never splits them.
type sharedList struct {
	head  Handle
	count int
	next  *sharedList
}

// directoryPage is the lazily installed second level for sizes >= 4096.
type directoryPage [format.DirectoryPageSize]atomic.Pointer[sharedList]

// directory is the shared freelist index, keyed by item size in bytes.
// Sizes below DirectoryPageSize index the flat table directly; larger sizes
// split into (size/DirectoryPageSize, size%DirectoryPageSize) with the
// second-level page installed on first spill. Most workloads touch a handful
// of small sizes, so the 2^24 size space is never eagerly tabled.
type directory struct {
	small [format.DirectoryPageSize]atomic.Pointer[sharedList]
	large [format.DirectoryPageSize]atomic.Pointer[directoryPage]
}

// slot returns the list head slot for size, installing the second-level page
// if needed. The install is a CAS race; the loser discards its speculative
// page and adopts the winner's.
func (d *directory) slot(size uint32) *atomic.Pointer[sharedList] {
	if size < format.DirectoryPageSize {
		return &d.small[size]
	}
	hi, lo := size/format.DirectoryPageSize, size%format.DirectoryPageSize
	pg := d.large[hi].Load()
	if pg == nil {
		fresh := new(directoryPage)
		if d.large[hi].CompareAndSwap(nil, fresh) {
			pg = fresh
		} else {
			pg = d.large[hi].Load()
		}
	}
	return &pg[lo]
}

// lookup returns the slot for size without installing anything, or nil when
// no view has ever spilled this size.
func (d *directory) lookup(size uint32) *atomic.Pointer[sharedList] {
	if size < format.DirectoryPageSize {
		return &d.small[size]
	}
	pg := d.large[size/format.DirectoryPageSize].Load()
	if pg == nil {
		return nil
	}
	return &pg[size%format.DirectoryPageSize]
}

// push publishes a detached local freelist as one shared node.
func (d *directory) push(size uint32, head Handle, count int) {
	slot := d.slot(size)
	node := &sharedList{head: head, count: count}
	for {
		cur := slot.Load()
		node.next = cur
		if slot.CompareAndSwap(cur, node) {
			return
		}
	}
}

// steal detaches the head node for size, or returns nil when the shared
// list is empty. Lock-free; retries only while other views win the CAS.
func (d *directory) steal(size uint32) *sharedList {
	slot := d.lookup(size)
	if slot == nil {
		return nil
	}
	for {
		cur := slot.Load()
		if cur == nil {
			return nil
		}
		if slot.CompareAndSwap(cur, cur.next) {
			cur.next = nil
			return cur
		}
	}
}

// residents sums the chunk count parked in the shared chain for size.
// Meaningful only on a quiesced pool; concurrent spills and steals make the
// figure momentary.
func (d *directory) residents(size uint32) int {
	slot := d.lookup(size)
	if slot == nil {
		return 0
	}
	n := 0
	for node := slot.Load(); node != nil; node = node.next {
		n += node.count
	}
	return n
}

// reset detaches every chain. Called by the shared finaliser; the nodes are
// unreachable afterwards and collected by the runtime.
func (d *directory) reset() {
	for i := range d.small {
		d.small[i].Store(nil)
	}
	for i := range d.large {
		if pg := d.large[i].Load(); pg != nil {
			for j := range pg {
				pg[j].Store(nil)
			}
			d.large[i].Store(nil)
		}
	}
}
