package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory_PushStealLIFO(t *testing.T) {
	var d directory
	l := LayoutCompact32

	d.push(32, l.Pack(1, 0, 0), 10)
	d.push(32, l.Pack(2, 0, 0), 20)

	require.Equal(t, 30, d.residents(32))

	// Nodes come back newest first and are never split.
	n := d.steal(32)
	require.NotNil(t, n)
	assert.Equal(t, l.Pack(2, 0, 0), n.head)
	assert.Equal(t, 20, n.count)
	assert.Nil(t, n.next)

	n = d.steal(32)
	require.NotNil(t, n)
	assert.Equal(t, 10, n.count)

	assert.Nil(t, d.steal(32))
	assert.Equal(t, 0, d.residents(32))
}

func TestDirectory_SizesAreIsolated(t *testing.T) {
	var d directory
	l := LayoutCompact32

	d.push(8, l.Pack(1, 0, 0), 5)
	d.push(16, l.Pack(2, 0, 0), 7)

	assert.Equal(t, 5, d.residents(8))
	assert.Equal(t, 7, d.residents(16))
	assert.Nil(t, d.steal(24))

	n := d.steal(16)
	require.NotNil(t, n)
	assert.Equal(t, 7, n.count)
	assert.Equal(t, 5, d.residents(8))
}

func TestDirectory_LargeSizesUseSecondLevel(t *testing.T) {
	var d directory
	l := LayoutCompact32

	// Nothing installed until the first spill of a large size.
	assert.Nil(t, d.lookup(5000))
	assert.Nil(t, d.steal(5000))
	assert.Equal(t, 0, d.residents(5000))

	d.push(5000, l.Pack(3, 0, 0), 2)
	require.NotNil(t, d.lookup(5000))
	assert.Equal(t, 2, d.residents(5000))

	// Same second-level page, different slot.
	d.push(5001, l.Pack(4, 0, 0), 3)
	assert.Equal(t, 2, d.residents(5000))
	assert.Equal(t, 3, d.residents(5001))

	// Different page entirely.
	d.push(1<<20, l.Pack(5, 0, 0), 4)
	assert.Equal(t, 4, d.residents(1<<20))

	n := d.steal(5000)
	require.NotNil(t, n)
	assert.Equal(t, 2, n.count)
}

func TestDirectory_Reset(t *testing.T) {
	var d directory
	l := LayoutCompact32

	d.push(8, l.Pack(1, 0, 0), 1)
	d.push(9000, l.Pack(2, 0, 0), 2)
	d.reset()

	assert.Equal(t, 0, d.residents(8))
	assert.Equal(t, 0, d.residents(9000))
	assert.Nil(t, d.steal(8))
	assert.Nil(t, d.steal(9000))
}

func TestDirectory_ConcurrentPushSteal(t *testing.T) {
	var d directory
	l := LayoutWide64

	const (
		workers   = 8
		perWorker = 200
	)

	var wg sync.WaitGroup
	stolen := make([]int, workers)
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perWorker {
				d.push(64, l.Pack(uint32(w+1), uint32(i), 0), 1)
				if n := d.steal(64); n != nil {
					stolen[w] += n.count
				}
			}
		}()
	}
	wg.Wait()

	// Every pushed chunk is either stolen by some worker or still parked.
	total := d.residents(64)
	for _, n := range stolen {
		total += n
	}
	assert.Equal(t, workers*perWorker, total)
}
