// Package stacktrace captures bounded call stacks for cord tracking
// records.
//
// A capture is a plain slice of program counters, at most MaxFrames
// deep, taken once when a record is created and immutable afterwards.
// An empty capture is a valid value: platforms or contexts where
// runtime.Callers finds no frames produce a nil slice, and consumers
// must treat two empty captures as equal rather than as a failure.
//
// Unlike a deduplicating stack depot, captures here are owned by their
// record and die with it, so there is no global storage and nothing to
// evict.
package stacktrace

import (
	"fmt"
	"runtime"
	"strings"
)

// MaxFrames is the maximum number of stack frames captured for a
// record. Deep enough to reach user code from any Cord API entry
// point.
const MaxFrames = 64

// Capture returns the current call stack as program counters, skipping
// skip frames on top of Capture itself (skip 0 starts at Capture's
// caller). Returns nil when no frames are available.
//
// Performance: one runtime.Callers call plus one bounded allocation.
// Called once per tracked cord, never on the per-update path.
//
// Thread Safety: safe for concurrent use.
func Capture(skip int) []uintptr {
	var pcs [MaxFrames]uintptr
	// +2 skips runtime.Callers and Capture itself.
	n := runtime.Callers(skip+2, pcs[:])
	if n == 0 {
		return nil
	}
	stack := make([]uintptr, n)
	copy(stack, pcs[:n])
	return stack
}

// Format symbolizes a captured stack for human-readable reports.
//
// Output format, one entry per frame:
//
//	  github.com/example/app.BuildMessage()
//	      /path/to/builder.go:87
//
// Runtime-internal frames are filtered out. An empty capture formats
// as the empty string, keeping empty stacks comparably equal as
// strings.
//
// Performance: runtime.CallersFrames symbolization is slow (~µs per
// frame); call only from report/export paths.
func Format(stack []uintptr) string {
	if len(stack) == 0 {
		return ""
	}

	frames := runtime.CallersFrames(stack)

	var buf strings.Builder
	for {
		frame, more := frames.Next()
		if frame.PC == 0 {
			break
		}
		if strings.HasPrefix(frame.Function, "runtime.") {
			if !more {
				break
			}
			continue
		}
		fmt.Fprintf(&buf, "  %s()\n", frame.Function)
		fmt.Fprintf(&buf, "      %s:%d\n", frame.File, frame.Line)
		if !more {
			break
		}
	}
	return buf.String()
}
