package pool

import (
	"github.com/slabkit/slabkit/internal/format"
	"github.com/slabkit/slabkit/internal/pagealloc"
	"github.com/slabkit/slabkit/pool/access"
)

// Config defines the pool geometry and its external collaborators.
// Different configurations trade block granularity against mapping count.
type Config struct {
	// Name for this configuration (for benchmarking).
	Name string

	// Layout selects the handle representation. The zero value selects
	// DefaultConfig's layout; otherwise use one of the predefined layouts or
	// NewLayout.
	Layout Layout

	// BlockFloorBytes is the byte size of the first block created for each
	// size class. Subsequent blocks for the same class grow by 4x per
	// creation, amortising header overhead.
	BlockFloorBytes int

	// BlockCeilBytes caps the adaptive per-class block growth. A block may
	// still exceed the ceiling when a single item plus overhead does not
	// fit below it.
	BlockCeilBytes int

	// SpillThreshold is the local freelist bound: frees beyond it divert to
	// the overflow list, and a full overflow list is published to the
	// shared directory for other views to steal.
	SpillThreshold int

	// Source is the backing page allocator. Nil selects the system source
	// (anonymous mmap on Unix).
	Source pagealloc.Source

	// Tracker receives accessibility events. Nil selects the no-op tracker.
	Tracker access.Tracker
}

// Predefined configurations.
var (
	// ConfigCompact: 32-bit handles, small first blocks. Suits interning
	// tables and model-checker state stores with many small size classes.
	ConfigCompact = Config{
		Name:            "Compact",
		Layout:          LayoutCompact32,
		BlockFloorBytes: 4096,
		BlockCeilBytes:  1 << 22,
		SpillThreshold:  format.SpillThreshold,
	}

	// ConfigWide: 64-bit handles with a 32-bit client tag. Larger first
	// blocks for graph workloads that touch few, hot size classes.
	ConfigWide = Config{
		Name:            "Wide",
		Layout:          LayoutWide64,
		BlockFloorBytes: 16384,
		BlockCeilBytes:  1 << 22,
		SpillThreshold:  format.SpillThreshold,
	}

	// DefaultConfig is used when New receives nil.
	DefaultConfig = ConfigCompact
)

// withDefaults fills unset collaborator and geometry fields.
func (c Config) withDefaults() Config {
	if c.Layout.width == 0 {
		c.Layout = DefaultConfig.Layout
	}
	if c.BlockFloorBytes <= 0 {
		c.BlockFloorBytes = DefaultConfig.BlockFloorBytes
	}
	if c.BlockCeilBytes < c.BlockFloorBytes {
		c.BlockCeilBytes = DefaultConfig.BlockCeilBytes
	}
	if c.SpillThreshold <= 0 {
		c.SpillThreshold = format.SpillThreshold
	}
	if c.Source == nil {
		c.Source = pagealloc.System{}
	}
	if c.Tracker == nil {
		c.Tracker = access.Noop{}
	}
	return c
}
