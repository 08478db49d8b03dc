package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T) *Pool {
	t.Helper()
	p, err := New(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestAllocate_Basic(t *testing.T) {
	p := newTestPool(t)

	h, err := p.Allocate(32)
	require.NoError(t, err)
	require.True(t, p.Layout().Valid(h))
	assert.Equal(t, uint64(0), p.Layout().Tag(h))

	b := p.Bytes(h)
	assert.Len(t, b, 32)
	assert.Equal(t, 32, p.SizeOf(h))
}

func TestAllocate_ZeroFilledBump(t *testing.T) {
	p := newTestPool(t)

	for range 64 {
		h, err := p.Allocate(48)
		require.NoError(t, err)
		for _, c := range p.Bytes(h) {
			require.Zero(t, c)
		}
	}
}

func TestAllocate_ZeroFilledOnReuse(t *testing.T) {
	p := newTestPool(t)

	h, err := p.Allocate(16)
	require.NoError(t, err)
	for i := range p.Bytes(h) {
		p.Bytes(h)[i] = 0xAA
	}
	p.Free(h)

	// The freelist threads its link through the chunk, so the reused chunk
	// is dirty and must come back zeroed.
	h2, err := p.Allocate(16)
	require.NoError(t, err)
	require.Equal(t, h, h2)
	for _, c := range p.Bytes(h2) {
		assert.Zero(t, c)
	}
}

func TestAllocate_LIFOReuse(t *testing.T) {
	p := newTestPool(t)

	h1, err := p.Allocate(24)
	require.NoError(t, err)
	h2, err := p.Allocate(24)
	require.NoError(t, err)

	p.Free(h2)
	p.Free(h1)

	// Most recently freed comes back first.
	r1, err := p.Allocate(24)
	require.NoError(t, err)
	assert.Equal(t, h1, r1)
	r2, err := p.Allocate(24)
	require.NoError(t, err)
	assert.Equal(t, h2, r2)
}

func TestAllocate_TagStrippedOnReuse(t *testing.T) {
	p, err := New(&ConfigWide)
	require.NoError(t, err)
	defer p.Close()

	h, err := p.Allocate(8)
	require.NoError(t, err)
	tagged := p.Layout().WithTag(h, 0xBEEF)

	// The client may free through its tagged copy; the handle handed out
	// again carries a zero tag.
	p.Free(tagged)
	h2, err := p.Allocate(8)
	require.NoError(t, err)
	assert.Equal(t, h, h2)
	assert.Equal(t, uint64(0), p.Layout().Tag(h2))
}

func TestAllocate_SizeClassesIndependent(t *testing.T) {
	p := newTestPool(t)

	h8, err := p.Allocate(8)
	require.NoError(t, err)
	p.Free(h8)

	// A different size never reuses another class's chunk.
	h16, err := p.Allocate(16)
	require.NoError(t, err)
	assert.NotEqual(t, h8, h16)
	assert.Equal(t, 16, p.SizeOf(h16))

	back, err := p.Allocate(8)
	require.NoError(t, err)
	assert.Equal(t, h8, back)
}

func TestAllocate_BadSizes(t *testing.T) {
	p := newTestPool(t)

	for _, size := range []int{0, -1, 1 << 24, 1<<24 + 5} {
		_, err := p.Allocate(size)
		assert.ErrorIs(t, err, ErrBadSize, "size %d", size)
	}

	// The largest encodable size is fine.
	h, err := p.Allocate(1<<24 - 1)
	require.NoError(t, err)
	assert.Equal(t, 1<<24-1, p.SizeOf(h))
}

func TestAllocate_DistinctHandles(t *testing.T) {
	p := newTestPool(t)

	seen := make(map[Handle]struct{})
	for range 10000 {
		h, err := p.Allocate(8)
		require.NoError(t, err)
		_, dup := seen[h]
		require.False(t, dup, "handle %#x handed out twice", h.Raw())
		seen[h] = struct{}{}
	}
}

func TestAllocate_PayloadsStable(t *testing.T) {
	p := newTestPool(t)

	// Writes must survive later block creation: blocks never move.
	var handles []Handle
	for i := range 5000 {
		h, err := p.Allocate(8)
		require.NoError(t, err)
		p.Bytes(h)[0] = byte(i)
		p.Bytes(h)[7] = byte(i >> 8)
		handles = append(handles, h)
	}
	for i, h := range handles {
		b := p.Bytes(h)
		require.Equal(t, byte(i), b[0])
		require.Equal(t, byte(i>>8), b[7])
	}
}

func TestFree_NilIsNoOp(t *testing.T) {
	p := newTestPool(t)
	p.Free(Nil)

	h, err := p.Allocate(8)
	require.NoError(t, err)
	assert.True(t, p.Layout().Valid(h))
}

func TestFree_SpillsToSharedDirectory(t *testing.T) {
	cfg := ConfigCompact
	cfg.SpillThreshold = 8
	p, err := New(&cfg)
	require.NoError(t, err)
	defer p.Close()

	var handles []Handle
	for range 16 {
		h, err := p.Allocate(32)
		require.NoError(t, err)
		handles = append(handles, h)
	}
	for _, h := range handles {
		p.Free(h)
	}

	// 8 chunks stay on touse, the next 8 fill tofree and spill as one node.
	assert.Equal(t, 8, p.st.dir.residents(32))
	sc := p.classes[32]
	assert.Equal(t, 8, sc.touse.count)
	assert.Equal(t, 0, sc.tofree.count)
}

func TestAllocate_StealsBeforeNewBlock(t *testing.T) {
	cfg := ConfigCompact
	cfg.SpillThreshold = 4
	// First block for size 16 holds exactly 8 chunks.
	cfg.BlockFloorBytes = 64 + 8*16
	p, err := New(&cfg)
	require.NoError(t, err)
	defer p.Close()

	var handles []Handle
	for range 8 {
		h, err := p.Allocate(16)
		require.NoError(t, err)
		handles = append(handles, h)
	}
	for _, h := range handles {
		p.Free(h)
	}
	require.Equal(t, 4, p.st.dir.residents(16))

	// Draining the local lists does not touch the shared node.
	for range 4 {
		_, err := p.Allocate(16)
		require.NoError(t, err)
	}
	assert.Equal(t, 4, p.st.dir.residents(16))

	// The block is exhausted, so the next allocation steals the shared node
	// instead of creating a block.
	blocksBefore := p.st.usedblocks.Load()
	_, err = p.Allocate(16)
	require.NoError(t, err)
	assert.Equal(t, 0, p.st.dir.residents(16))
	assert.Equal(t, blocksBefore, p.st.usedblocks.Load())
}

func TestAllocate_AfterClose(t *testing.T) {
	p, err := New(nil)
	require.NoError(t, err)
	require.NoError(t, p.Close())

	_, err = p.Allocate(8)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestFree_PanicsAfterClose(t *testing.T) {
	p, err := New(nil)
	require.NoError(t, err)
	clone := p.Clone()
	h, err := clone.Allocate(8)
	require.NoError(t, err)
	require.NoError(t, clone.Close())

	assert.Panics(t, func() { clone.Free(h) })
	_ = p.Close()
}

func TestLookup_PanicsOnUnknownSlab(t *testing.T) {
	p := newTestPool(t)

	bogus := p.Layout().Pack(77, 0, 0)
	assert.Panics(t, func() { p.Bytes(bogus) })
	assert.Panics(t, func() { p.SizeOf(bogus) })
	assert.Panics(t, func() { p.Free(bogus) })
}

func TestAllocate_ErrNoSpace(t *testing.T) {
	cfg := ConfigCompact
	cfg.Source = failSource{}
	p, err := New(&cfg)
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Allocate(64)
	assert.ErrorIs(t, err, ErrNoSpace)
}
