package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slabkit/slabkit/internal/format"
)

func TestBlockGeometry_Small(t *testing.T) {
	total, bytes := blockGeometry(32, 32, 4096, LayoutCompact32)
	assert.Equal(t, uint32((4096-format.BlockOverhead)/32), total)
	assert.Equal(t, format.BlockOverhead+int(total)*32, bytes)
}

func TestBlockGeometry_OneChunkMinimum(t *testing.T) {
	// An item bigger than the nominal block still yields one chunk.
	total, bytes := blockGeometry(100000, 100000, 4096, LayoutCompact32)
	assert.Equal(t, uint32(1), total)
	assert.Equal(t, format.BlockOverhead+100000, bytes)
}

func TestBlockGeometry_CappedByLayout(t *testing.T) {
	// The compact layout addresses 2^15 chunks per slab; a huge region for
	// 1-byte items must not exceed that.
	total, _ := blockGeometry(1, 4, 1<<20, LayoutCompact32)
	assert.Equal(t, LayoutCompact32.MaxChunks(), total)

	wide, _ := blockGeometry(1, 8, 1<<25, LayoutWide64)
	assert.LessOrEqual(t, wide, uint32(format.MaxChunksPerBlock))
}

func TestBlockGeometry_Sentinel(t *testing.T) {
	total, bytes := blockGeometry(0, 0, 4096, LayoutCompact32)
	assert.Equal(t, uint32(0), total)
	assert.Equal(t, 4096, bytes)
}

func TestBlock_ChunkAndPayloadWindows(t *testing.T) {
	region := make([]byte, format.BlockOverhead+10*8)
	b := &block{
		itemsize: 5,
		stride:   8,
		total:    10,
		region:   region,
		data:     region[format.BlockOverhead:],
	}

	c := b.chunk(3)
	require.Len(t, c, 8)
	p := b.payload(3)
	require.Len(t, p, 5)
	assert.Equal(t, 8, cap(p), "payload may grow only to the stride")

	// Both views address the same storage.
	c[0] = 0x7E
	assert.Equal(t, byte(0x7E), p[0])

	// Appending to the payload must not leak into the next chunk.
	next := b.payload(4)
	next[0] = 0x55
	_ = append(p, 1, 2, 3)
	assert.Equal(t, byte(0x55), next[0])
}

// heapSource backs blocks with plain heap slices, so tests can install
// regions by hand without the unmap path caring where they came from.
type heapSource struct{}

func (heapSource) Alloc(bytes int) ([]byte, error) { return make([]byte, bytes), nil }

func (heapSource) Drop(region []byte) error { return nil }

func TestLookup_PanicsOnSentinelBlock(t *testing.T) {
	cfg := ConfigCompact
	cfg.Source = heapSource{}
	p, err := New(&cfg)
	require.NoError(t, err)
	defer p.Close()

	// Install a chunkless block by hand on a claimed slab.
	slab := p.claimSlab()
	p.st.blocks[slab].Store(&block{region: make([]byte, 4096)})

	h := p.Layout().Pack(slab, 0, 0)
	assert.Panics(t, func() { p.Bytes(h) })
	assert.Panics(t, func() { s := NewSlave(p); defer s.Close(); _ = s.Materialise(h, 4, false) })
}
