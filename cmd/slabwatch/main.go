package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/slabkit/slabkit/pool"
)

var (
	workers  = flag.Int("goroutines", 3, "Concurrent churn workers")
	itemSize = flag.Int("size", 32, "Item size in bytes")
	keep     = flag.Int("keep", 4096, "Outstanding handles per worker")
	wide     = flag.Bool("wide", false, "Use the 64-bit handle layout")
	interval = flag.Duration("interval", 250*time.Millisecond, "Stats refresh interval")
)

func main() {
	flag.Parse()
	if *itemSize < 8 {
		fmt.Fprintf(os.Stderr, "Error: size must be at least 8, got %d\n", *itemSize)
		os.Exit(1)
	}

	cfg := pool.ConfigCompact
	if *wide {
		cfg = pool.ConfigWide
	}
	p, err := pool.New(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: creating pool: %v\n", err)
		os.Exit(1)
	}

	m := newModel(p, *workers, *itemSize, *keep, *interval)
	m.start()

	prog := tea.NewProgram(m, tea.WithAltScreen())
	final, err := prog.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}

	if fm, ok := final.(model); ok {
		fm.stop()
	}
	if err := p.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: closing pool: %v\n", err)
	}
}
