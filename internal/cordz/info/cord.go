package info

import "sync/atomic"

// CordRep is the registry's non-owning view of a cord's internal
// representation root: identity plus current length. The actual
// reference-counted buffer tree lives in the host string type; the
// registry never reads its contents and never extends its lifetime.
type CordRep struct {
	// Length is the cord's size in bytes at this root.
	Length int64
}

// TrackedCord is the per-cord control word the host string type embeds
// to participate in tracking: the current rep root plus the slot
// holding the cord's tracking record, if any.
//
// The rep pointer is owned by the host and mutated only by the cord's
// own operations. The record slot is atomic because profiling
// decisions on derived cords read the source cord's slot concurrently
// with the owner.
type TrackedCord struct {
	rep  *CordRep
	info atomic.Pointer[Info]
}

// NewTrackedCord returns a control word for a cord whose current
// representation root is rep.
func NewTrackedCord(rep *CordRep) *TrackedCord {
	return &TrackedCord{rep: rep}
}

// Rep returns the cord's current representation root.
func (c *TrackedCord) Rep() *CordRep {
	return c.rep
}

// SetRep updates the cord's representation root. Host side only: the
// tracking record's own rep pointer is updated through SetCordRep
// under the record mutex.
func (c *TrackedCord) SetRep(rep *CordRep) {
	c.rep = rep
}

// CordzInfo returns the cord's tracking record, or nil when the cord
// is not tracked.
func (c *TrackedCord) CordzInfo() *Info {
	return c.info.Load()
}

// IsProfiled reports whether the cord currently has a tracking record.
func (c *TrackedCord) IsProfiled() bool {
	return c.info.Load() != nil
}

func (c *TrackedCord) setInfo(ci *Info) {
	c.info.Store(ci)
}

// ClearCordzInfo drops the cord's reference to its tracking record.
// Called by the host together with UntrackCord.
func (c *TrackedCord) ClearCordzInfo() {
	c.info.Store(nil)
}
