package access

import (
	"fmt"
	"sync"
)

// EventKind classifies a recorded tracker event.
type EventKind int

const (
	EventMapPayload EventKind = iota
	EventAlloc
	EventFree
)

// Event is one recorded tracker callback with its human-readable label.
type Event struct {
	Kind  EventKind
	Slab  uint32
	Chunk uint32
	Size  int
	Label string
}

// Recorder accumulates labelled events. Intended for tests that assert the
// instrumentation contract; not for production use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	live   map[uint64]int // (slab,chunk) -> index of current alloc event
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{live: make(map[uint64]int)}
}

func key(slab, chunk uint32) uint64 {
	return uint64(slab)<<32 | uint64(chunk)
}

// MapPayload records the no-access marking of a new block payload.
func (r *Recorder) MapPayload(slab uint32, payload []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{
		Kind:  EventMapPayload,
		Slab:  slab,
		Label: fmt.Sprintf("block slab=%d bytes=%d noaccess", slab, len(payload)),
	})
}

// MarkAlloc records a fresh allocation, clearing any label left by an
// earlier lifetime of the same chunk.
func (r *Recorder) MarkAlloc(slab, chunk uint32, mem []byte, size int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{
		Kind:  EventAlloc,
		Slab:  slab,
		Chunk: chunk,
		Size:  size,
		Label: fmt.Sprintf("alloc slab=%d chunk=%d addr=%p size=%d", slab, chunk, &mem[0], size),
	})
	r.live[key(slab, chunk)] = len(r.events) - 1
}

// MarkFree records the retirement of a chunk.
func (r *Recorder) MarkFree(slab, chunk uint32, mem []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{
		Kind:  EventFree,
		Slab:  slab,
		Chunk: chunk,
		Label: fmt.Sprintf("deleted slab=%d chunk=%d addr=%p", slab, chunk, &mem[0]),
	})
	delete(r.live, key(slab, chunk))
}

// Events returns a snapshot of all recorded events in order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// LiveCount returns the number of chunks currently marked allocated.
func (r *Recorder) LiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

var _ Tracker = (*Recorder)(nil)
