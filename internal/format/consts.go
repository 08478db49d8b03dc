package format

// Geometry and header-field limits shared by the pool packages.
const (
	// MaxItemSize is the largest object size a block can be dedicated to.
	// The block header stores itemsize in 24 bits.
	MaxItemSize = 1<<24 - 1

	// MaxChunksPerBlock bounds the total and allocated header fields (20 bits).
	MaxChunksPerBlock = 1<<20 - 1

	// BlockOverhead is the byte cost charged to every block region ahead of
	// the chunk payload. Sized to a cache line so the first chunk never
	// shares a line with bookkeeping.
	BlockOverhead = 64

	// SlabBatch is the number of consecutive slab indices a local view
	// claims from the shared counter in one atomic step. One index becomes
	// the new active block; the remainder are cached locally.
	SlabBatch = 16

	// SpillThreshold is the chunk count at which a local freelist overflows:
	// touse stops absorbing frees beyond it, and tofree is published to the
	// shared directory when it fills to it.
	SpillThreshold = 4096

	// DirectoryPageSize splits a byte size into directory coordinates:
	// sizes below it index the flat table directly, larger sizes index a
	// lazily installed second level by (size/DirectoryPageSize,
	// size%DirectoryPageSize).
	DirectoryPageSize = 4096
)
