// Package fallback tracks compat-mode version-dispatch fallbacks: occasions
// where a counter code was unknown under the stream's active major version
// but recognized under the other one.
//
// A chatty stream that keeps using a single unexpected-version code would
// otherwise emit one callback per token; the tracker collapses that to one
// audit record per distinct code, with an occurrence count, keyed by the
// code's xxHash so the lookup stays O(1) on the decode hot path.
package fallback

import "github.com/cespare/xxhash/v2"

// Event records one compat-mode fallback decision.
type Event struct {
	Code   string
	From   int // major version the stream claimed to be
	To     int // major version whose table actually matched
	Domain string
	Count  int
}

// Tracker deduplicates fallback events by counter code.
type Tracker struct {
	byHash map[uint64]*Event
	order  []*Event
}

// NewTracker creates an empty fallback tracker.
func NewTracker() *Tracker {
	return &Tracker{byHash: make(map[uint64]*Event)}
}

// Record registers one fallback occurrence for code, returning the
// (possibly pre-existing) Event so callers can invoke a user callback with
// an up-to-date Count.
func (t *Tracker) Record(code string, from, to int, domain string) *Event {
	h := xxhash.Sum64String(code)
	if ev, ok := t.byHash[h]; ok {
		ev.Count++
		return ev
	}

	ev := &Event{Code: code, From: from, To: to, Domain: domain, Count: 1}
	t.byHash[h] = ev
	t.order = append(t.order, ev)

	return ev
}

// Events returns all recorded fallback events in first-occurrence order.
func (t *Tracker) Events() []*Event {
	return t.order
}

// Reset clears all tracked events, retaining allocated capacity for reuse.
func (t *Tracker) Reset() {
	for k := range t.byHash {
		delete(t.byHash, k)
	}
	t.order = t.order[:0]
}
