package method

import "sync/atomic"

// Tracker counts updates per method for one tracking record.
//
// Counts are "lossy" in the original implementation's sense: each add
// is an independent atomic increment with no ordering against other
// fields, which is all the profiling consumers need. A Tracker is
// embedded by value in its owning record; copy it with Snapshot, never
// by assignment (the atomic counters must not be duplicated while
// concurrently written).
//
// Thread Safety: LossyAdd and Value are safe for concurrent use.
type Tracker struct {
	counts [NumMethods]atomic.Int64
}

// LossyAdd adds n to the counter for m. Out-of-range identifiers are
// folded into Unknown rather than dropped, so misattributed updates
// remain visible in profiles.
func (t *Tracker) LossyAdd(m Identifier, n int64) {
	if m < 0 || m >= NumMethods {
		m = Unknown
	}
	t.counts[m].Add(n)
}

// LossyAddAll folds every counter of src into t. Used when a derived
// cord inherits its source's update history.
func (t *Tracker) LossyAddAll(src *TrackerSnapshot) {
	for i := range src.counts {
		if n := src.counts[i]; n != 0 {
			t.counts[i].Add(n)
		}
	}
}

// Value returns the current count for m.
func (t *Tracker) Value(m Identifier) int64 {
	if m < 0 || m >= NumMethods {
		m = Unknown
	}
	return t.counts[m].Load()
}

// Snapshot returns a plain-value copy of all counters.
//
// The copy is not atomic across counters: counts racing with the copy
// may or may not be included, matching the lossy contract.
func (t *Tracker) Snapshot() TrackerSnapshot {
	var s TrackerSnapshot
	for i := range t.counts {
		s.counts[i] = t.counts[i].Load()
	}
	return s
}

// TrackerSnapshot is a point-in-time copy of a Tracker, safe to copy
// by value and to read without synchronization.
type TrackerSnapshot struct {
	counts [NumMethods]int64
}

// Value returns the copied count for m.
func (s TrackerSnapshot) Value(m Identifier) int64 {
	if m < 0 || m >= NumMethods {
		m = Unknown
	}
	return s.counts[m]
}

// Total returns the sum of all copied counters.
func (s TrackerSnapshot) Total() int64 {
	var sum int64
	for _, n := range s.counts {
		sum += n
	}
	return sum
}
