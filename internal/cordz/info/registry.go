package info

import (
	"sync"
	"sync/atomic"

	"github.com/kolkov/cordz/internal/cordz/assert"
	"github.com/kolkov/cordz/internal/cordz/handle"
	"github.com/kolkov/cordz/internal/cordz/method"
	"github.com/kolkov/cordz/internal/cordz/sampler"
)

// list is the registry of live tracking records: an intrusive
// doubly-linked list ordered most-recently-tracked first.
//
// head is atomic so snapshot creation freezes it without a lock; mu
// serializes link mutation only and is held for a handful of pointer
// stores per insert/remove, never across traversal.
type list struct {
	mu   sync.Mutex
	head atomic.Pointer[Info]
}

// cordzList outlives every other part of the subsystem; no teardown.
var cordzList list

// track publishes c as the new registry head. The atomic head store is
// the publish point: c is fully initialized before it, so a reader
// that observes the new head observes a complete record.
func (c *Info) track() {
	cordzList.mu.Lock()
	head := cordzList.head.Load()
	if head != nil {
		head.ciPrev.Store(c)
	}
	c.ciNext.Store(head)
	cordzList.head.Store(c)
	cordzList.mu.Unlock()
}

// untrack removes c from the registry and drops its rep reference and
// its cord's record slot. c's own outgoing link is left intact so a
// snapshot standing on c can keep walking.
func (c *Info) untrack() {
	cordzList.mu.Lock()
	next := c.ciNext.Load()
	prev := c.ciPrev.Load()
	if next != nil {
		next.ciPrev.Store(prev)
	}
	if prev != nil {
		prev.ciNext.Store(next)
	} else {
		assert.Check(cordzList.head.Load() == c, "untrack of an unlinked record")
		cordzList.head.Store(next)
	}
	cordzList.mu.Unlock()

	if cord := c.cord; cord != nil {
		cord.ClearCordzInfo()
	}
	c.mu.Lock()
	c.rep = nil
	c.mu.Unlock()
}

// TrackCord starts tracking cord, attributing its creation to m. The
// new record is published at the registry head and stored into the
// cord's record slot.
//
// The cord must not already be tracked; Track/Untrack pair exactly
// once per cord lifetime.
//
// Safe to call concurrently for distinct cords.
func TrackCord(cord *TrackedCord, m method.Identifier) {
	assert.Check(!cord.IsProfiled(), "TrackCord on an already tracked cord")
	ci := newInfo(cord, nil, m)
	cord.setInfo(ci)
	ci.track()
}

// TrackCordFromParent starts tracking cord as derived from parent. If
// the parent is itself tracked, the record inherits a copy of the
// parent's creation stack, its method attribution and its update
// counts; otherwise parentage is unknown and the parent stack empty.
func TrackCordFromParent(cord, parent *TrackedCord, m method.Identifier) {
	// Assignment replaces the destination's record: stop tracking the
	// current one before publishing its successor.
	if ci := cord.CordzInfo(); ci != nil {
		UntrackCord(ci)
	}
	ci := newInfo(cord, parent.CordzInfo(), m)
	cord.setInfo(ci)
	ci.track()
}

// MaybeTrackCord starts tracking cord if the global sampler selects
// it. This is the constructor entry point for root cords: a single
// branch when profiling is disabled.
func MaybeTrackCord(cord *TrackedCord, m method.Identifier) {
	if sampler.ShouldProfile() {
		TrackCord(cord, m)
	}
}

// MaybeTrackCordFromParent maintains tracking across a derive or
// assign: a cord derived from a tracked source is tracked (profiled
// cords keep their full derivation chain), while a tracked destination
// overwritten from an untracked source stops being tracked.
func MaybeTrackCordFromParent(cord, src *TrackedCord, m method.Identifier) {
	if src.IsProfiled() {
		TrackCordFromParent(cord, src, m)
		return
	}
	if ci := cord.CordzInfo(); ci != nil {
		UntrackCord(ci)
	}
}

// UntrackCord stops tracking: the record is unlinked from the registry,
// the cord's record slot is cleared, and the record is enqueued for
// deferred reclamation. Never blocks on concurrent snapshot readers.
func UntrackCord(ci *Info) {
	ci.untrack()
	handle.Delete(&ci.Handle)
}

// Snapshot fixes a consistent view of the registry for lock-free
// traversal: the delete-queue marker guarantees every record reachable
// at creation stays allocated, and the frozen head pins the traversal
// start so records tracked later are not part of this view.
type Snapshot struct {
	*handle.Snapshot
	head *Info
}

// NewSnapshot creates a registry snapshot. The delete-queue marker is
// registered before the head is frozen, so a record untracked in
// between is queued behind the marker and stays traversable.
//
// Callers must Close the snapshot when done.
func NewSnapshot() *Snapshot {
	s := &Snapshot{Snapshot: handle.NewSnapshot()}
	s.head = cordzList.head.Load()
	return s
}

// Head returns the record that was the registry head when s was
// created, or nil if the registry was empty at that moment.
func Head(s *Snapshot) *Info {
	head := s.head
	if head != nil && assert.Enabled() {
		// Guarded: the safety walk takes the delete-queue mutex.
		assert.Check(s.DiagnosticsHandleIsSafeToInspect(&head.Handle),
			"snapshot head not safe to inspect")
	}
	return head
}

// Next returns the record after c in the traversal order fixed at s's
// creation, or nil at the end. c must have been reached from Head(s).
func (c *Info) Next(s *Snapshot) *Info {
	next := c.ciNext.Load()
	if next != nil && assert.Enabled() {
		assert.Check(s.DiagnosticsHandleIsSafeToInspect(&next.Handle),
			"next record not safe to inspect")
	}
	return next
}
