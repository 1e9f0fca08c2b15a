package info

import "github.com/kolkov/cordz/internal/cordz/method"

// Statistics is a value snapshot of one tracking record, safe to copy
// and to read without synchronization.
//
// Size tracks the last recorded cord size; Method and ParentMethod are
// fixed at record creation; UpdateTracker counts how many updates of
// each kind began on the record (one per Lock call).
type Statistics struct {
	// Size is the cord's size in bytes as of the last RecordMetrics.
	Size int64

	// Method is the operation that created this cord.
	Method method.Identifier

	// ParentMethod is the operation that created the cord this one was
	// derived from, or method.Unknown for root cords.
	ParentMethod method.Identifier

	// UpdateTracker is a copy of the per-method update counters.
	UpdateTracker method.TrackerSnapshot
}
