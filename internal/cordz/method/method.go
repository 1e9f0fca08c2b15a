// Package method identifies the Cord API entry points that create and
// mutate tracked cords, and counts updates per entry point.
//
// Identifier values are recorded in each tracking record at creation
// time (which constructor made this cord, which method made its
// parent) and used as the index into the per-record update Tracker.
package method

// Identifier names the Cord operation that created or is updating a
// tracked cord.
//
// Unknown is the zero value and is used when no attribution exists,
// for example for the parent method of a cord derived from an
// untracked source.
type Identifier int

const (
	// Unknown means no method attribution is available.
	Unknown Identifier = iota

	// AppendCord is Cord.Append(Cord).
	AppendCord
	// AppendString is Cord.Append(string).
	AppendString
	// AssignCord is assignment from another Cord.
	AssignCord
	// AssignString is assignment from a string.
	AssignString
	// Clear is Cord.Clear.
	Clear
	// ConstructorCord is construction from another Cord.
	ConstructorCord
	// ConstructorString is construction from a string.
	ConstructorString
	// Flatten is Cord.Flatten.
	Flatten
	// GetAppendRegion is the append-region fast path.
	GetAppendRegion
	// MakeCordFromExternal is construction from external memory.
	MakeCordFromExternal
	// MoveAppendCord is Cord.Append(Cord) consuming its argument.
	MoveAppendCord
	// MoveAssignCord is move-assignment from another Cord.
	MoveAssignCord
	// MovePrependCord is Cord.Prepend(Cord) consuming its argument.
	MovePrependCord
	// PrependCord is Cord.Prepend(Cord).
	PrependCord
	// PrependString is Cord.Prepend(string).
	PrependString
	// RemovePrefix is Cord.RemovePrefix.
	RemovePrefix
	// RemoveSuffix is Cord.RemoveSuffix.
	RemoveSuffix
	// SubCord is Cord.Subcord.
	SubCord

	// NumMethods sizes per-method counter arrays. Keep last.
	NumMethods
)

// methodNames maps Identifier values to their display names.
// Indexed by Identifier; must stay in sync with the const block above.
var methodNames = [NumMethods]string{
	Unknown:              "Unknown",
	AppendCord:           "AppendCord",
	AppendString:         "AppendString",
	AssignCord:           "AssignCord",
	AssignString:         "AssignString",
	Clear:                "Clear",
	ConstructorCord:      "ConstructorCord",
	ConstructorString:    "ConstructorString",
	Flatten:              "Flatten",
	GetAppendRegion:      "GetAppendRegion",
	MakeCordFromExternal: "MakeCordFromExternal",
	MoveAppendCord:       "MoveAppendCord",
	MoveAssignCord:       "MoveAssignCord",
	MovePrependCord:      "MovePrependCord",
	PrependCord:          "PrependCord",
	PrependString:        "PrependString",
	RemovePrefix:         "RemovePrefix",
	RemoveSuffix:         "RemoveSuffix",
	SubCord:              "SubCord",
}

// String returns the display name of the identifier, or "Unknown" for
// out-of-range values. Used only in reports and metrics labels, never
// on the tracking hot path.
func (m Identifier) String() string {
	if m < 0 || m >= NumMethods {
		return methodNames[Unknown]
	}
	return methodNames[m]
}

// All returns every valid identifier in declaration order.
//
// Used by consumers that enumerate counters (report writer, metrics
// collector).
func All() []Identifier {
	ids := make([]Identifier, NumMethods)
	for i := range ids {
		ids[i] = Identifier(i)
	}
	return ids
}
