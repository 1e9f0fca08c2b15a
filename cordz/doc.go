// Package cordz provides the public API for the cord tracking
// registry: a concurrent, low-overhead diagnostic facility that
// records which cords exist, how large they are, which API created
// them, and the call stack at creation.
//
// # Quick Start
//
// The host string type calls the tracking surface from its
// constructors and mutators:
//
//	cord := cordz.NewTrackedCord(rep)
//	cordz.MaybeTrack(cord, cordz.MethodConstructorString)
//	...
//	if ci := cord.CordzInfo(); ci != nil {
//		ci.Lock(cordz.MethodAppendString)
//		ci.SetCordRep(newRep)
//		ci.RecordMetrics(newRep.Length)
//		ci.Unlock()
//	}
//
// Profiling is off by default; a process opts in with:
//
//	cordz.Enable(true)
//	cordz.SetSampleRate(128) // track one in 128 new cords
//
// # Inspecting live cords
//
// A profiling consumer enumerates tracked cords without stopping
// mutator goroutines:
//
//	stats := cordz.Collect()
//	for _, s := range stats {
//		fmt.Printf("%s: %d bytes\n", s.Method, s.Size)
//	}
//
// or walks records directly under a snapshot:
//
//	s := cordz.NewSnapshot()
//	defer s.Close()
//	for ci := cordz.Head(s); ci != nil; ci = ci.Next(s) {
//		_ = ci.GetCordzStatistics()
//	}
//
// A snapshot guarantees that every record reachable from the registry
// at its creation stays allocated until the snapshot is closed, even
// while other goroutines concurrently untrack cords. Records are
// reclaimed when the last snapshot that could see them closes.
//
// # Exporting
//
// [WriteReport] writes a human-readable dump of all live records with
// symbolized creation stacks. [NewCollector] returns a
// prometheus.Collector that exports live-record counts, tracked
// bytes, per-method breakdowns and sampler decision counters on every
// scrape.
//
// # Overhead
//
// With profiling disabled, the per-constructor cost is one atomic
// load and a branch. For an already-tracked cord, a mutation costs
// one mutex acquisition and one counter increment. Snapshot traversal
// never blocks writers.
package cordz
