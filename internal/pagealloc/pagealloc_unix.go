//go:build unix

package pagealloc

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Alloc maps an anonymous private region. The kernel delivers zero pages, so
// the pool can skip clearing chunks it bump-allocates from a fresh block.
func (System) Alloc(bytes int) ([]byte, error) {
	if bytes <= 0 {
		return nil, fmt.Errorf("pagealloc: invalid region size %d", bytes)
	}
	data, err := unix.Mmap(-1, 0, bytes, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("pagealloc: mmap %d bytes: %w", bytes, err)
	}
	return data, nil
}

// Drop unmaps a region returned by Alloc.
func (System) Drop(region []byte) error {
	if len(region) == 0 {
		return nil
	}
	err := unix.Munmap(region)
	if errors.Is(err, unix.EINVAL) {
		// Treat double-unmap as no-op for callers.
		return nil
	}
	return err
}
