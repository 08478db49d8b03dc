package main

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/blake2b"

	"github.com/slabkit/slabkit/pool"
)

var (
	parGoroutines int
	parIters      int
	parSize       int
	parKeep       int
)

func init() {
	cmd := newParallelCmd()
	cmd.Flags().IntVar(&parGoroutines, "goroutines", 3, "Concurrent workers")
	cmd.Flags().IntVar(&parIters, "iters", 1<<15, "Allocation count per worker")
	cmd.Flags().IntVar(&parSize, "size", 32, "Item size in bytes")
	cmd.Flags().IntVar(&parKeep, "keep", 1024, "Outstanding handles per worker")
	rootCmd.AddCommand(cmd)
}

func newParallelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parallel",
		Short: "Multi-goroutine churn on views of one pool",
		Long: `The parallel command runs the churn workload on several views of the
same pool concurrently. Views share blocks and the shared freelist directory;
each view publishes its cached chunks to the directory when it closes.

Example:
  slabbench parallel --goroutines 8 --iters 200000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParallel()
		},
	}
}

func runParallel() error {
	if parSize < 8 {
		return fmt.Errorf("size must be at least 8, got %d", parSize)
	}
	p, err := newPool()
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	errs := make([]error, parGoroutines)
	for g := range parGoroutines {
		view := p.Clone()
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer view.Close()
			errs[g] = churnView(view, uint64(g))
		}()
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			p.Close()
			return err
		}
	}

	fmt.Printf("parallel: %d goroutines x %d iterations\n", parGoroutines, parIters)
	printStats(p)
	return p.Close()
}

// churnView runs one worker's allocate/verify/free loop on its own view.
func churnView(v *pool.Pool, worker uint64) error {
	sum, err := blake2b.New256(nil)
	if err != nil {
		return err
	}

	type live struct {
		h pool.Handle
		i uint64
	}
	var window []live

	for i := range parIters {
		h, err := v.Allocate(parSize)
		if err != nil {
			return err
		}
		tag := worker<<32 | uint64(i)
		stamp(v.Bytes(h), tag)
		window = append(window, live{h, tag})

		if len(window) > parKeep {
			oldest := window[0]
			window = window[1:]
			if err := verify(v, oldest.h, oldest.i, sum); err != nil {
				return err
			}
			v.Free(oldest.h)
		}
	}
	for _, l := range window {
		if err := verify(v, l.h, l.i, sum); err != nil {
			return err
		}
		v.Free(l.h)
	}
	return nil
}
