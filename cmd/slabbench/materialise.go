package main

import (
	"encoding/binary"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/slabkit/slabkit/pool"
)

var (
	matCount      int
	matSize       int
	matShadowSize int
)

func init() {
	cmd := newMaterialiseCmd()
	cmd.Flags().IntVar(&matCount, "count", 100000, "Handles to allocate")
	cmd.Flags().IntVar(&matSize, "size", 8, "Master item size in bytes")
	cmd.Flags().IntVar(&matShadowSize, "shadow", 4, "Slave payload size in bytes")
	rootCmd.AddCommand(cmd)
}

func newMaterialiseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "materialise",
		Short: "Slave-pool round-trip over master handles",
		Long: `The materialise command allocates master chunks, attaches shadow
state through a slave pool, and reads every value back through both pools.

Example:
  slabbench materialise --count 1000000 --shadow 16`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMaterialise()
		},
	}
}

func runMaterialise() error {
	if matSize < 4 || matShadowSize < 4 {
		return fmt.Errorf("sizes must be at least 4 bytes")
	}
	p, err := newPool()
	if err != nil {
		return err
	}
	defer p.Close()

	s := pool.NewSlave(p)
	defer s.Close()

	handles := make([]pool.Handle, matCount)
	for i := range matCount {
		h, err := p.Allocate(matSize)
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint32(p.Bytes(h), uint32(i))
		if err := s.Materialise(h, matShadowSize, true); err != nil {
			return err
		}
		binary.LittleEndian.PutUint32(s.Bytes(h), uint32(i))
		handles[i] = h
	}

	for i, h := range handles {
		if got := binary.LittleEndian.Uint32(p.Bytes(h)); got != uint32(i) {
			return fmt.Errorf("master payload mismatch at %d: got %d", i, got)
		}
		if got := binary.LittleEndian.Uint32(s.Bytes(h)); got != uint32(i) {
			return fmt.Errorf("slave payload mismatch at %d: got %d", i, got)
		}
	}

	fmt.Printf("materialise: %d handles round-tripped through master and slave\n", matCount)
	printStats(p)
	return nil
}
