package caption

import "sort"

// PendingEntry is one scheduled packet awaiting its playback position.
type PendingEntry struct {
	Pos    float64
	Packet Packet
}

// Queue is the Pending Queue (C3): a sorted-by-pos queue with
// rewind/skip invalidation. Insertion order is preserved among entries
// sharing the same pos (stable FIFO), resolving spec.md §9's Open
// Question 4.
type Queue struct {
	entries []PendingEntry

	// Window overrides spec.md §4.4's hardcoded 10-second validation
	// window when positive; zero (the Queue{} default) keeps the spec's
	// constant, so existing call sites that never touch Window are
	// unaffected.
	Window float64
}

const defaultValidateWindowSeconds = 10

func (q *Queue) validateWindow() float64 {
	if q.Window > 0 {
		return q.Window
	}
	return defaultValidateWindowSeconds
}

// Defer inserts an entry, maintaining non-decreasing pos with stable
// FIFO ordering among ties.
func (q *Queue) Defer(pos float64, p Packet) {
	idx := sort.Search(len(q.entries), func(i int) bool {
		return q.entries[i].Pos > pos
	})
	q.entries = append(q.entries, PendingEntry{})
	copy(q.entries[idx+1:], q.entries[idx:])
	q.entries[idx] = PendingEntry{Pos: pos, Packet: p}
}

// Tick pops every entry with pos <= now, in non-decreasing pos order,
// and returns them for dispatch to the state machine.
func (q *Queue) Tick(now float64) []PendingEntry {
	idx := sort.Search(len(q.entries), func(i int) bool {
		return q.entries[i].Pos > now
	})
	if idx == 0 {
		return nil
	}
	due := make([]PendingEntry, idx)
	copy(due, q.entries[:idx])
	q.entries = q.entries[idx:]
	return due
}

// Validate drops every entry whose |pos-now| >= the validation window
// (10s by default), purging stale future or past captions after a seek.
func (q *Queue) Validate(now float64) {
	window := q.validateWindow()
	kept := q.entries[:0]
	for _, e := range q.entries {
		d := e.Pos - now
		if d < 0 {
			d = -d
		}
		if d < window {
			kept = append(kept, e)
		}
	}
	q.entries = kept
}

// Len reports the number of entries currently queued.
func (q *Queue) Len() int { return len(q.entries) }
