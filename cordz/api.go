package cordz

import (
	"log/slog"

	"github.com/kolkov/cordz/internal/cordz/handle"
	"github.com/kolkov/cordz/internal/cordz/info"
	"github.com/kolkov/cordz/internal/cordz/method"
	"github.com/kolkov/cordz/internal/cordz/sampler"
)

// Method identifies the Cord operation that created or is updating a
// tracked cord.
type Method = method.Identifier

// Method identifiers, re-exported for host call sites.
const (
	MethodUnknown              = method.Unknown
	MethodAppendCord           = method.AppendCord
	MethodAppendString         = method.AppendString
	MethodAssignCord           = method.AssignCord
	MethodAssignString         = method.AssignString
	MethodClear                = method.Clear
	MethodConstructorCord      = method.ConstructorCord
	MethodConstructorString    = method.ConstructorString
	MethodFlatten              = method.Flatten
	MethodGetAppendRegion      = method.GetAppendRegion
	MethodMakeCordFromExternal = method.MakeCordFromExternal
	MethodMoveAppendCord       = method.MoveAppendCord
	MethodMoveAssignCord       = method.MoveAssignCord
	MethodMovePrependCord      = method.MovePrependCord
	MethodPrependCord          = method.PrependCord
	MethodPrependString        = method.PrependString
	MethodRemovePrefix         = method.RemovePrefix
	MethodRemoveSuffix         = method.RemoveSuffix
	MethodSubCord              = method.SubCord
)

// CordRep is the registry's non-owning view of a cord's internal
// representation root.
type CordRep = info.CordRep

// TrackedCord is the per-cord control word the host string type embeds
// to participate in tracking.
type TrackedCord = info.TrackedCord

// Info is the tracking record of one profiled cord.
type Info = info.Info

// Statistics is a value snapshot of one tracking record.
type Statistics = info.Statistics

// Snapshot fixes a consistent view of the registry for safe
// lock-free traversal. Callers must Close it when done.
type Snapshot = info.Snapshot

// Handle is the delete-queue participant base: either a pending
// record or a live snapshot marker.
type Handle = handle.Handle

// NewTrackedCord returns a control word for a cord whose current
// representation root is rep.
func NewTrackedCord(rep *CordRep) *TrackedCord {
	return info.NewTrackedCord(rep)
}

// Track unconditionally starts tracking cord, attributing its creation
// to m. Most hosts use [MaybeTrack] instead and let the sampler
// decide.
func Track(cord *TrackedCord, m Method) {
	info.TrackCord(cord, m)
}

// TrackDerived unconditionally starts tracking cord as derived from
// parent. If the parent is itself tracked, the new record captures a
// copy of the parent's creation stack and method attribution.
func TrackDerived(cord, parent *TrackedCord, m Method) {
	info.TrackCordFromParent(cord, parent, m)
}

// MaybeTrack starts tracking cord if the global sampler selects it.
// This is the constructor entry point: a single branch when profiling
// is disabled.
func MaybeTrack(cord *TrackedCord, m Method) {
	info.MaybeTrackCord(cord, m)
}

// MaybeTrackDerived maintains tracking across a derive or assign:
// a cord derived from a tracked source is tracked, and a tracked
// destination overwritten from an untracked source stops being
// tracked.
func MaybeTrackDerived(cord, src *TrackedCord, m Method) {
	info.MaybeTrackCordFromParent(cord, src, m)
}

// Untrack stops tracking: the record is unlinked from the registry and
// enqueued for deferred reclamation. Called by the host when a tracked
// cord is destroyed. Track/Untrack pair exactly once per cord
// lifetime.
func Untrack(ci *Info) {
	info.UntrackCord(ci)
}

// NewSnapshot creates a registry snapshot for traversal with [Head]
// and [Info.Next]. Callers must Close it; an unclosed snapshot pins
// unreclaimed records forever.
func NewSnapshot() *Snapshot {
	return info.NewSnapshot()
}

// Head returns the record that was the registry head when s was
// created, or nil if no cords were tracked at that moment.
func Head(s *Snapshot) *Info {
	return info.Head(s)
}

// Enable turns cord profiling on or off process-wide. Off by default.
func Enable(on bool) {
	sampler.Global().Enable(on)
	slog.Debug("cordz profiling toggled",
		slog.Bool("enabled", on),
		slog.Int64("sample_rate", sampler.Global().Rate()))
}

// Enabled reports whether cord profiling is on.
func Enabled() bool {
	return sampler.Global().Enabled()
}

// SetSampleRate makes the sampler select one in every rate new cords.
// Rates below 1 select every cord.
func SetSampleRate(rate int64) {
	sampler.Global().SetRate(rate)
	slog.Debug("cordz sample rate changed", slog.Int64("sample_rate", rate))
}

// SampleRate returns the effective sampling interval.
func SampleRate() int64 {
	return sampler.Global().Rate()
}

// Update runs fn inside the record's Lock/Unlock bracket when cord is
// tracked, and bare otherwise, so host mutators need no tracked-ness
// branch of their own. fn receives the record (nil when untracked) and
// returns the cord's new representation root, which Update stores via
// SetCordRep and whose size it records.
//
// When fn returns nil the cord became empty and the record is
// untracked as part of the closing Unlock.
func Update(cord *TrackedCord, m Method, fn func(ci *Info) *CordRep) {
	ci := cord.CordzInfo()
	if ci == nil {
		cord.SetRep(fn(nil))
		return
	}
	ci.Lock(m)
	rep := fn(ci)
	ci.SetCordRep(rep)
	if rep != nil {
		ci.RecordMetrics(rep.Length)
	}
	cord.SetRep(rep)
	ci.Unlock()
}

// Collect walks a fresh snapshot and returns a statistics copy for
// every currently tracked cord, most recently tracked first.
func Collect() []Statistics {
	s := info.NewSnapshot()
	defer s.Close()

	var out []Statistics
	for ci := info.Head(s); ci != nil; ci = ci.Next(s) {
		out = append(out, ci.GetCordzStatistics())
	}
	return out
}

// DiagnosticsGetDeleteQueue returns the delete queue contents, newest
// first: pending records and snapshot markers interleaved as
// inserted. Diagnostic only.
func DiagnosticsGetDeleteQueue() []*Handle {
	return handle.DiagnosticsGetDeleteQueue()
}
