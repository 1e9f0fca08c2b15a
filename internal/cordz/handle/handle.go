// Package handle implements the deferred-deletion protocol that makes
// concurrent registry traversal safe.
//
// Every object whose lifetime must be coordinated with live snapshots
// embeds a Handle. A single global delete queue, protected by one
// mutex, holds pending-deletion handles and live snapshot markers
// interleaved in insertion order (newest at the tail). The rules:
//
//   - Creating a Snapshot appends its marker to the queue.
//   - Delete on a record handle frees it immediately when no snapshot
//     is live, otherwise appends it to the queue.
//   - Closing a Snapshot removes its marker; if the marker was the
//     oldest queue entry, every record handle behind it up to the next
//     snapshot marker is released at that point.
//
// A record handle queued behind a snapshot marker is exactly one that
// the snapshot's registry traversal may still reference, so a record is
// released only once no snapshot that could see it remains. Release in
// Go means unlinking the handle so the garbage collector can reclaim
// it; the Reclaimed flag makes the moment of release observable to
// tests and diagnostics.
package handle

import (
	"sync"
	"sync/atomic"

	"github.com/kolkov/cordz/internal/cordz/assert"
)

// Handle is the embeddable base of every delete-queue participant.
//
// The zero value is a record handle (not a snapshot) that is not on
// the queue. Queue linkage fields are guarded by the global queue
// mutex and must never be touched by embedding types.
type Handle struct {
	isSnapshot bool

	// dqPrev points to the next-older queue entry, dqNext to the
	// next-newer one. Both are nil when the handle is not queued.
	dqPrev, dqNext *Handle

	// reclaimed flips to true exactly once, when the deferred-deletion
	// protocol releases this handle.
	reclaimed atomic.Bool
}

// IsSnapshot reports whether this handle is a live snapshot marker.
func (h *Handle) IsSnapshot() bool {
	return h.isSnapshot
}

// Reclaimed reports whether the deferred-deletion protocol has
// released this handle. Diagnostic only; a released handle must not be
// used.
func (h *Handle) Reclaimed() bool {
	return h.reclaimed.Load()
}

// SafeToDelete reports whether this handle may be released without
// queueing. Snapshot markers are always safe (no traversal references
// a snapshot); record handles are safe only while no queue entry
// exists, meaning no snapshot could be mid-traversal.
func (h *Handle) SafeToDelete() bool {
	return h.isSnapshot || globalQueue.empty()
}

// queue is the process-wide delete queue. Only the tail is stored;
// the oldest entry is recognized by dqPrev == nil.
type queue struct {
	mu sync.Mutex

	// tail is the newest entry. Written under mu; read lock-free by
	// SafeToDelete's empty check.
	tail atomic.Pointer[Handle]
}

// globalQueue outlives every other part of the subsystem; there is no
// teardown.
var globalQueue queue

func (q *queue) empty() bool {
	return q.tail.Load() == nil
}

// push appends h as the newest queue entry. Caller must hold q.mu.
func (q *queue) push(h *Handle) {
	tail := q.tail.Load()
	h.dqPrev = tail
	if tail != nil {
		tail.dqNext = h
	}
	q.tail.Store(h)
}

// Delete releases h, deferring the release while any snapshot marker
// is on the queue. h may be nil.
//
// Must be called at most once per handle; the pairing is the caller's
// contract, checked only when assertions are enabled.
func Delete(h *Handle) {
	if h == nil {
		return
	}
	assert.Check(!h.Reclaimed(), "Delete of an already released handle")
	if !h.SafeToDelete() {
		globalQueue.mu.Lock()
		// Re-check under the lock: the queue may have drained between
		// the lock-free check and here.
		if globalQueue.tail.Load() != nil {
			globalQueue.push(h)
			globalQueue.mu.Unlock()
			return
		}
		globalQueue.mu.Unlock()
	}
	h.reclaimed.Store(true)
}

// Snapshot fixes a consistent view of the tracking registry.
//
// While a Snapshot is live, every record that was reachable from the
// registry at its creation remains allocated (though possibly
// unlinked), so Head/Next traversal never observes freed memory.
// Callers must Close the snapshot when done; an unclosed snapshot
// pins unreclaimed records forever.
type Snapshot struct {
	Handle
}

// NewSnapshot registers a new snapshot marker on the delete queue and
// returns it. Records untracked from now on are queued behind this
// marker instead of being released.
func NewSnapshot() *Snapshot {
	s := &Snapshot{Handle: Handle{isSnapshot: true}}
	globalQueue.mu.Lock()
	globalQueue.push(&s.Handle)
	globalQueue.mu.Unlock()
	return s
}

// Close removes the snapshot marker and releases every queued record
// that no longer has an older snapshot marker ahead of it. Reclamation
// is triggered here, not by any background sweep.
//
// Close must be called exactly once.
func (s *Snapshot) Close() {
	assert.Check(!s.Reclaimed(), "Close of an already closed snapshot")

	var toReclaim []*Handle
	globalQueue.mu.Lock()
	next := s.dqNext
	if s.dqPrev == nil {
		// Oldest queue entry: every record behind us up to the next
		// snapshot marker has no older snapshot left; collect them.
		for next != nil && !next.isSnapshot {
			toReclaim = append(toReclaim, next)
			next = next.dqNext
		}
		if next != nil {
			next.dqPrev = nil
		} else {
			globalQueue.tail.Store(nil)
		}
	} else {
		s.dqPrev.dqNext = next
		if next != nil {
			next.dqPrev = s.dqPrev
		} else {
			globalQueue.tail.Store(s.dqPrev)
		}
	}
	s.dqPrev, s.dqNext = nil, nil
	for _, h := range toReclaim {
		h.dqPrev, h.dqNext = nil, nil
	}
	globalQueue.mu.Unlock()

	// Release outside the lock: reclamation must not extend the
	// critical section other threads block on.
	for _, h := range toReclaim {
		h.reclaimed.Store(true)
	}
	s.reclaimed.Store(true)
}

// DiagnosticsHandleIsSafeToInspect reports whether h may be inspected
// through this snapshot: h must either be live (not queued) or have
// been queued after this snapshot's marker. Snapshot markers are never
// inspectable.
func (s *Snapshot) DiagnosticsHandleIsSafeToInspect(h *Handle) bool {
	if h == nil {
		return true
	}
	if h.isSnapshot {
		return false
	}
	snapshotFound := false
	globalQueue.mu.Lock()
	defer globalQueue.mu.Unlock()
	for p := globalQueue.tail.Load(); p != nil; p = p.dqPrev {
		if p == h {
			return !snapshotFound
		}
		if p == &s.Handle {
			snapshotFound = true
		}
	}
	assert.Check(snapshotFound, "snapshot not on the delete queue")
	return true
}

// DiagnosticsGetSafeToInspectDeletedHandles returns the queued record
// handles this snapshot may still inspect: the non-snapshot entries
// newer than its own marker. Diagnostic only.
func (s *Snapshot) DiagnosticsGetSafeToInspectDeletedHandles() []*Handle {
	var handles []*Handle
	globalQueue.mu.Lock()
	defer globalQueue.mu.Unlock()
	for p := s.dqNext; p != nil; p = p.dqNext {
		if !p.isSnapshot {
			handles = append(handles, p)
		}
	}
	return handles
}

// DiagnosticsGetDeleteQueue returns the current queue contents,
// newest first: pending record handles and snapshot markers
// interleaved exactly as inserted. Diagnostic only, for test
// verification of queue ordering.
func DiagnosticsGetDeleteQueue() []*Handle {
	var handles []*Handle
	globalQueue.mu.Lock()
	defer globalQueue.mu.Unlock()
	for p := globalQueue.tail.Load(); p != nil; p = p.dqPrev {
		handles = append(handles, p)
	}
	return handles
}
