// Package info implements the tracking record and the process-wide
// registry of records for profiled cords.
//
// One Info exists per tracked cord. Records form an intrusive
// doubly-linked list (the registry) whose head and links are atomic
// pointers: snapshot readers traverse lock-free while insertion and
// removal are serialized by one short-held registry mutex. A removed
// record keeps its own outgoing link intact, so a reader standing on
// it mid-traversal continues unharmed; the record's memory stays
// valid until the delete-queue protocol in the handle package releases
// it.
//
// Locking discipline per record: mu guards rep and is the write lock
// for statistics; the registry links are never touched under mu by
// callers (untrack takes the registry mutex first, then briefly takes
// mu to drop the rep reference).
package info

import (
	"sync"
	"sync/atomic"

	"github.com/kolkov/cordz/internal/cordz/assert"
	"github.com/kolkov/cordz/internal/cordz/handle"
	"github.com/kolkov/cordz/internal/cordz/method"
	"github.com/kolkov/cordz/internal/cordz/stacktrace"
)

// Info is the tracking record for one profiled cord.
//
// Created by TrackCord, mutated through Lock/SetCordRep/Unlock and
// RecordMetrics for the cord's lifetime, unlinked by UntrackCord and
// released by the delete-queue protocol once no snapshot can still
// reach it.
type Info struct {
	handle.Handle

	// ciPrev and ciNext are the registry links. Mutated only under the
	// registry mutex; loaded lock-free by traversal. An unlinked
	// record keeps its own links so in-flight traversals can continue
	// past it.
	ciPrev, ciNext atomic.Pointer[Info]

	// mu guards rep and writes to the statistics fields below.
	mu sync.Mutex

	// rep is the cord's current representation root. Non-owning; nil
	// after the record is untracked or the cord became empty.
	rep *CordRep

	// held mirrors whether mu is currently held, for the debug-only
	// precondition check in SetCordRep.
	held atomic.Bool

	// cord points back at the owning cord's control word so untrack
	// can clear its record slot.
	cord *TrackedCord

	// stack and parentStack are captured once at creation and
	// immutable afterwards. Either may be empty.
	stack       []uintptr
	parentStack []uintptr

	// method and parentMethod are fixed at creation.
	method       method.Identifier
	parentMethod method.Identifier

	// tracker counts updates per method; one count per Lock call.
	tracker method.Tracker

	// size is the last recorded cord size. Atomic so the test-only
	// unlocked RecordMetrics stays linearizable with locked readers.
	size atomic.Int64
}

// newInfo builds a record for cord, attributing creation to m and, for
// derived cords, parentage to src.
func newInfo(cord *TrackedCord, src *Info, m method.Identifier) *Info {
	ci := &Info{
		rep:          cord.Rep(),
		cord:         cord,
		stack:        stacktrace.Capture(2),
		method:       m,
		parentMethod: parentMethod(src),
	}
	ci.tracker.LossyAdd(m, 1)
	if src != nil {
		ci.parentStack = append([]uintptr(nil), src.stack...)
		srcCounts := src.tracker.Snapshot()
		ci.tracker.LossyAddAll(&srcCounts)
	}
	if rep := ci.rep; rep != nil {
		ci.size.Store(rep.Length)
	}
	return ci
}

// parentMethod resolves the parent attribution for a derived cord: the
// source's own parent method when known, else the source's method.
// This keeps long derivation chains attributed to their originating
// API rather than to intermediate copies.
func parentMethod(src *Info) method.Identifier {
	if src == nil {
		return method.Unknown
	}
	if src.parentMethod != method.Unknown {
		return src.parentMethod
	}
	return src.method
}

// Lock acquires the record mutex and counts the beginning of an update
// of kind m. Every mutating cord operation on a tracked cord brackets
// its rep changes in Lock/Unlock.
func (c *Info) Lock(m method.Identifier) {
	c.mu.Lock()
	c.held.Store(true)
	c.tracker.LossyAdd(m, 1)
	assert.Check(c.rep != nil, "Lock on a record without representation")
}

// Unlock releases the record mutex. If the rep pointer was cleared
// while locked the cord became empty: the record is untracked before
// Unlock returns, so no snapshot created afterwards sees it.
func (c *Info) Unlock() {
	tracked := c.rep != nil
	c.held.Store(false)
	c.mu.Unlock()
	if !tracked {
		c.untrack()
		handle.Delete(&c.Handle)
	}
}

// SetCordRep stores the cord's new representation root, or nil when
// the cord became empty.
//
// Precondition: the caller holds the record mutex (via Lock). Checked
// only when assertions are enabled; violated otherwise at the caller's
// peril.
func (c *Info) SetCordRep(rep *CordRep) {
	assert.Check(c.held.Load(), "SetCordRep requires the record mutex")
	c.rep = rep
}

// GetCordRepForTesting reads the rep pointer without the record mutex.
// Test and inspection tooling only; never on a production path.
func (c *Info) GetCordRepForTesting() *CordRep {
	return c.rep
}

// RecordMetrics records the cord's current size. Production call sites
// hold the record mutex (they are inside a Lock/Unlock bracket); the
// store itself is atomic so controlled unlocked test use stays
// consistent with locked readers.
func (c *Info) RecordMetrics(size int64) {
	c.size.Store(size)
}

// GetStack returns the stack captured when this record was created.
// May be empty on platforms without stack capture; empty is a valid
// value, not a fault. The returned slice is immutable.
func (c *Info) GetStack() []uintptr {
	return c.stack
}

// GetParentStack returns a copy of the parent cord's creation stack,
// captured when this record was created, or an empty slice when the
// cord was not derived from a tracked parent. Immutable.
func (c *Info) GetParentStack() []uintptr {
	return c.parentStack
}

// GetCordzStatistics returns a value copy of the record's current
// statistics. Safe to call concurrently with updates; counts racing
// with the copy may or may not be included.
func (c *Info) GetCordzStatistics() Statistics {
	return Statistics{
		Size:          c.size.Load(),
		Method:        c.method,
		ParentMethod:  c.parentMethod,
		UpdateTracker: c.tracker.Snapshot(),
	}
}
