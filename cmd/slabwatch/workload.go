package main

import (
	"encoding/binary"
	"sync"
	"sync/atomic"
	"time"

	"github.com/slabkit/slabkit/pool"
)

// workload drives churn loops on clones of one pool and exposes shared
// counters the UI samples.
type workload struct {
	p    *pool.Pool
	size int
	keep int

	allocs atomic.Uint64
	frees  atomic.Uint64
	paused atomic.Bool
	quit   atomic.Bool

	wg sync.WaitGroup
}

func newWorkload(p *pool.Pool, size, keep int) *workload {
	return &workload{p: p, size: size, keep: keep}
}

func (w *workload) start(workers int) {
	for range workers {
		view := w.p.Clone()
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			defer view.Close()
			w.churn(view)
		}()
	}
}

// churn is the worker loop: allocate, stamp, free the oldest once the
// window is full. Pausing spins on the flag without touching the pool.
func (w *workload) churn(v *pool.Pool) {
	var window []pool.Handle
	var i uint64
	for !w.quit.Load() {
		if w.paused.Load() {
			time.Sleep(10 * time.Millisecond)
			continue
		}
		h, err := v.Allocate(w.size)
		if err != nil {
			return
		}
		binary.LittleEndian.PutUint64(v.Bytes(h), i)
		i++
		w.allocs.Add(1)
		window = append(window, h)

		if len(window) > w.keep {
			oldest := window[0]
			window = window[1:]
			v.Free(oldest)
			w.frees.Add(1)
		}
	}
	for _, h := range window {
		v.Free(h)
		w.frees.Add(1)
	}
}

func (w *workload) stop() {
	w.quit.Store(true)
	w.wg.Wait()
}

// togglePause flips the pause flag and reports whether the workload is now
// running. Only the UI goroutine toggles.
func (w *workload) togglePause() bool {
	next := !w.paused.Load()
	w.paused.Store(next)
	return !next
}
