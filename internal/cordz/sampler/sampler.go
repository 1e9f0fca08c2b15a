// Package sampler decides which new cords get a tracking record.
//
// Tracking every cord in a busy process would be prohibitive, so the
// registry samples: an atomic position counter with modulo selection
// picks one in every Rate tracking candidates. The disabled fast path
// is a single atomic load and branch, which keeps the common case
// (profiling off) at a few memory accesses per cord constructor.
//
// The counter is global rather than goroutine-local: concurrent
// construction interleaves positions, which is randomization enough
// for profiling purposes and avoids any dependence on goroutine
// identity.
package sampler

import "sync/atomic"

// DefaultRate is the sampling rate installed at startup: one in every
// DefaultRate cord constructions is tracked once profiling is enabled.
const DefaultRate = 1 << 10

// Sampler makes the per-cord profiling decision.
//
// Thread Safety: all methods are safe for concurrent use.
type Sampler struct {
	// enabled gates all sampling. When false, ShouldProfile is a
	// single load and branch.
	enabled atomic.Bool

	// rate is the sampling interval. Values below 1 are read as 1
	// (track every candidate).
	rate atomic.Int64

	// pos counts profiling candidates and drives modulo selection.
	pos atomic.Uint64

	// decisions and sampled track how many candidates were seen and
	// how many were selected, for export by the metrics collector.
	decisions atomic.Uint64
	sampled   atomic.Uint64
}

// Stats is a point-in-time copy of a sampler's decision counters.
type Stats struct {
	// Decisions is the number of profiling candidates seen while
	// sampling was enabled.
	Decisions uint64

	// Sampled is the number of candidates selected for tracking.
	Sampled uint64
}

// ShouldProfile reports whether the cord being constructed should get
// a tracking record.
//
// HOT PATH: called from every cord constructor. Disabled cost is one
// atomic load; enabled cost is three atomic adds and a modulo.
func (s *Sampler) ShouldProfile() bool {
	if !s.enabled.Load() {
		return false
	}
	s.decisions.Add(1)
	rate := s.rate.Load()
	if rate <= 1 {
		s.sampled.Add(1)
		return true
	}
	pos := s.pos.Add(1)
	if pos%uint64(rate) == 0 {
		s.sampled.Add(1)
		return true
	}
	return false
}

// Enable turns sampling on or off. Off by default: profiling is an
// opt-in diagnostic.
func (s *Sampler) Enable(on bool) {
	s.enabled.Store(on)
}

// Enabled reports whether sampling is on.
func (s *Sampler) Enabled() bool {
	return s.enabled.Load()
}

// SetRate sets the sampling interval to one in every rate candidates.
// Rates below 1 select every candidate.
func (s *Sampler) SetRate(rate int64) {
	if rate < 1 {
		rate = 1
	}
	s.rate.Store(rate)
}

// Rate returns the effective sampling interval.
func (s *Sampler) Rate() int64 {
	rate := s.rate.Load()
	if rate < 1 {
		return 1
	}
	return rate
}

// GetStats returns a copy of the decision counters.
func (s *Sampler) GetStats() Stats {
	return Stats{
		Decisions: s.decisions.Load(),
		Sampled:   s.sampled.Load(),
	}
}

// global is the process-wide sampler consulted by MaybeTrackCord.
// Initialized on first use, never torn down.
var global = func() *Sampler {
	s := &Sampler{}
	s.rate.Store(DefaultRate)
	return s
}()

// Global returns the process-wide sampler.
func Global() *Sampler {
	return global
}

// ShouldProfile is shorthand for Global().ShouldProfile().
func ShouldProfile() bool {
	return global.ShouldProfile()
}

// ResetForTesting restores the global sampler to its startup state.
//
// NOT safe for concurrent use; test setup/teardown only.
func ResetForTesting() {
	global.enabled.Store(false)
	global.rate.Store(DefaultRate)
	global.pos.Store(0)
	global.decisions.Store(0)
	global.sampled.Store(0)
}
