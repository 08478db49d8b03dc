package pool

import "errors"

var (
	// ErrBadSize indicates an Allocate size outside (0, 2^24).
	ErrBadSize = errors.New("pool: allocation size out of range")

	// ErrNoSpace indicates that the backing page allocator refused a block
	// request. The pool cannot recover from this.
	ErrNoSpace = errors.New("pool: backing allocator out of space")

	// ErrClosed indicates an operation on a closed pool view.
	ErrClosed = errors.New("pool: view is closed")
)
