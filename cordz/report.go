package cordz

import (
	"fmt"
	"io"

	"github.com/kolkov/cordz/internal/cordz/info"
	"github.com/kolkov/cordz/internal/cordz/method"
	"github.com/kolkov/cordz/internal/cordz/sampler"
	"github.com/kolkov/cordz/internal/cordz/stacktrace"
)

// WriteReport writes a human-readable dump of every currently tracked
// cord to w: per-record method attribution, size, update activity and
// the symbolized creation stack, followed by process-wide totals.
//
// The walk happens under a single snapshot, so the report is a
// consistent view and never blocks mutator goroutines. Symbolization
// is slow; this is an operator/diagnostic surface, not a hot path.
func WriteReport(w io.Writer) error {
	s := info.NewSnapshot()
	defer s.Close()

	var (
		records    int
		totalBytes int64
	)
	if _, err := fmt.Fprintf(w, "==================\ncordz: tracked cords\n"); err != nil {
		return err
	}
	for ci := info.Head(s); ci != nil; ci = ci.Next(s) {
		stats := ci.GetCordzStatistics()
		records++
		totalBytes += stats.Size

		fmt.Fprintf(w, "\nCord #%d:\n", records)
		fmt.Fprintf(w, "  created by: %s\n", stats.Method)
		if stats.ParentMethod != method.Unknown {
			fmt.Fprintf(w, "  parent:     %s\n", stats.ParentMethod)
		}
		fmt.Fprintf(w, "  size:       %d bytes\n", stats.Size)
		fmt.Fprintf(w, "  updates:    %d\n", stats.UpdateTracker.Total())
		for _, m := range method.All() {
			if n := stats.UpdateTracker.Value(m); n > 0 {
				fmt.Fprintf(w, "    %-20s %d\n", m.String(), n)
			}
		}
		if formatted := stacktrace.Format(ci.GetStack()); formatted != "" {
			fmt.Fprintf(w, "  creation stack:\n%s", formatted)
		} else {
			fmt.Fprintf(w, "  creation stack: <unavailable>\n")
		}
	}

	stats := sampler.Global().GetStats()
	fmt.Fprintf(w, "\nSummary:\n")
	fmt.Fprintf(w, "  tracked cords:     %d\n", records)
	fmt.Fprintf(w, "  tracked bytes:     %d\n", totalBytes)
	fmt.Fprintf(w, "  sampling enabled:  %v (1 in %d)\n",
		sampler.Global().Enabled(), sampler.Global().Rate())
	fmt.Fprintf(w, "  sampling decisions: %d (%d sampled)\n",
		stats.Decisions, stats.Sampled)
	_, err := fmt.Fprintf(w, "==================\n")
	return err
}
