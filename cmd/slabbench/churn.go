package main

import (
	"encoding/binary"
	"fmt"
	"hash"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/blake2b"

	"github.com/slabkit/slabkit/pool"
)

var (
	churnIters int
	churnSize  int
	churnKeep  int
)

func init() {
	cmd := newChurnCmd()
	cmd.Flags().IntVar(&churnIters, "iters", 1<<15, "Allocation count")
	cmd.Flags().IntVar(&churnSize, "size", 32, "Item size in bytes")
	cmd.Flags().IntVar(&churnKeep, "keep", 1024, "Outstanding handles before the oldest is freed")
	rootCmd.AddCommand(cmd)
}

func newChurnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "churn",
		Short: "Single-goroutine allocate/free churn",
		Long: `The churn command repeatedly allocates chunks, freeing the oldest once
the outstanding window is full, then frees everything and reports stats.

Example:
  slabbench churn --iters 100000 --size 48`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChurn()
		},
	}
}

// stamp writes a deterministic payload derived from the iteration index.
func stamp(b []byte, i uint64) {
	var seed [8]byte
	binary.LittleEndian.PutUint64(seed[:], i)
	for o := 0; o < len(b); o += 8 {
		copy(b[o:], seed[:])
	}
}

func runChurn() error {
	if churnSize < 8 {
		return fmt.Errorf("size must be at least 8, got %d", churnSize)
	}
	p, err := newPool()
	if err != nil {
		return err
	}
	defer p.Close()

	sum, err := blake2b.New256(nil)
	if err != nil {
		return err
	}

	type live struct {
		h pool.Handle
		i uint64
	}
	var window []live

	for i := range churnIters {
		h, err := p.Allocate(churnSize)
		if err != nil {
			return err
		}
		stamp(p.Bytes(h), uint64(i))
		window = append(window, live{h, uint64(i)})

		if len(window) > churnKeep {
			oldest := window[0]
			window = window[1:]
			if err := verify(p, oldest.h, oldest.i, sum); err != nil {
				return err
			}
			p.Free(oldest.h)
		}
	}
	for _, l := range window {
		if err := verify(p, l.h, l.i, sum); err != nil {
			return err
		}
		p.Free(l.h)
	}

	fmt.Printf("churn: %d iterations, payload digest %x\n", churnIters, sum.Sum(nil)[:8])
	printStats(p)
	return nil
}

// verify checks a payload against its stamp and folds it into the digest.
func verify(p *pool.Pool, h pool.Handle, i uint64, sum hash.Hash) error {
	b := p.Bytes(h)
	var seed [8]byte
	binary.LittleEndian.PutUint64(seed[:], i)
	for o := 0; o < len(b); o += 8 {
		n := min(8, len(b)-o)
		for k := range n {
			if b[o+k] != seed[k] {
				return fmt.Errorf("payload corrupted at handle %#x offset %d", h.Raw(), o+k)
			}
		}
	}
	_, _ = sum.Write(b)
	return nil
}
