package handle

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireDrained fails the test when the delete queue is not empty.
// Every test is responsible for closing the snapshots it creates.
func requireDrained(t *testing.T) {
	t.Helper()
	require.Empty(t, DiagnosticsGetDeleteQueue(), "delete queue not drained")
}

func TestDeleteWithoutSnapshots(t *testing.T) {
	h := &Handle{}
	require.True(t, h.SafeToDelete(), "no snapshots live, record must be safe to delete")

	Delete(h)
	assert.True(t, h.Reclaimed(), "record must be released immediately")
	requireDrained(t)
}

func TestDeleteNil(t *testing.T) {
	// Must not panic.
	Delete(nil)
	requireDrained(t)
}

func TestSnapshotEntersAndLeavesQueue(t *testing.T) {
	s := NewSnapshot()
	assert.True(t, s.IsSnapshot())
	assert.True(t, s.SafeToDelete(), "snapshot markers are always safe to delete")

	dq := DiagnosticsGetDeleteQueue()
	require.Len(t, dq, 1)
	assert.Same(t, &s.Handle, dq[0])

	s.Close()
	requireDrained(t)
}

func TestDeleteDeferredBehindSnapshot(t *testing.T) {
	s := NewSnapshot()
	h := &Handle{}
	require.False(t, h.SafeToDelete(), "live snapshot must defer record deletion")

	Delete(h)
	assert.False(t, h.Reclaimed(), "record must stay allocated while the snapshot lives")

	dq := DiagnosticsGetDeleteQueue()
	require.Len(t, dq, 2)
	assert.Same(t, h, dq[0], "newest entry first")
	assert.Same(t, &s.Handle, dq[1])

	s.Close()
	assert.True(t, h.Reclaimed(), "closing the last snapshot must release the record")
	requireDrained(t)
}

// TestInterleavedSnapshotsAndRecords exercises the ordering rule: a
// record is released only when no snapshot older than it remains.
func TestInterleavedSnapshotsAndRecords(t *testing.T) {
	s1 := NewSnapshot()
	h1 := &Handle{}
	Delete(h1)
	s2 := NewSnapshot()
	h2 := &Handle{}
	Delete(h2)

	// Queue (newest first): h2, s2, h1, s1.
	dq := DiagnosticsGetDeleteQueue()
	require.Len(t, dq, 4)
	assert.Same(t, h2, dq[0])
	assert.Same(t, &s2.Handle, dq[1])
	assert.Same(t, h1, dq[2])
	assert.Same(t, &s1.Handle, dq[3])

	// Closing s2 releases nothing: s1 is older than both records.
	s2.Close()
	assert.False(t, h1.Reclaimed())
	assert.False(t, h2.Reclaimed())
	require.Len(t, DiagnosticsGetDeleteQueue(), 3)

	// Closing s1 releases both.
	s1.Close()
	assert.True(t, h1.Reclaimed())
	assert.True(t, h2.Reclaimed())
	requireDrained(t)
}

func TestCloseOldestStopsAtNextSnapshot(t *testing.T) {
	s1 := NewSnapshot()
	h1 := &Handle{}
	Delete(h1)
	s2 := NewSnapshot()
	h2 := &Handle{}
	Delete(h2)

	// s1 is the oldest entry: closing it releases h1 but h2 is
	// protected by s2, which is older than h2.
	s1.Close()
	assert.True(t, h1.Reclaimed())
	assert.False(t, h2.Reclaimed())

	s2.Close()
	assert.True(t, h2.Reclaimed())
	requireDrained(t)
}

func TestDiagnosticsHandleIsSafeToInspect(t *testing.T) {
	s1 := NewSnapshot()
	defer s1.Close()

	assert.True(t, s1.DiagnosticsHandleIsSafeToInspect(nil))

	live := &Handle{}
	assert.True(t, s1.DiagnosticsHandleIsSafeToInspect(live),
		"a record not on the queue is live and inspectable")

	queued := &Handle{}
	Delete(queued)
	assert.True(t, s1.DiagnosticsHandleIsSafeToInspect(queued),
		"a record queued after this snapshot is inspectable")

	s2 := NewSnapshot()
	defer s2.Close()
	assert.False(t, s2.DiagnosticsHandleIsSafeToInspect(queued),
		"a record queued before this snapshot is not inspectable")
	assert.False(t, s1.DiagnosticsHandleIsSafeToInspect(&s2.Handle),
		"snapshot markers are never inspectable")
}

func TestDiagnosticsGetSafeToInspectDeletedHandles(t *testing.T) {
	s1 := NewSnapshot()
	assert.Empty(t, s1.DiagnosticsGetSafeToInspectDeletedHandles())

	h1 := &Handle{}
	Delete(h1)
	h2 := &Handle{}
	Delete(h2)

	got := s1.DiagnosticsGetSafeToInspectDeletedHandles()
	require.Len(t, got, 2)
	assert.Same(t, h1, got[0], "oldest deleted handle first")
	assert.Same(t, h2, got[1])

	s2 := NewSnapshot()
	assert.Empty(t, s2.DiagnosticsGetSafeToInspectDeletedHandles(),
		"records queued before the snapshot are not inspectable through it")

	s2.Close()
	s1.Close()
	requireDrained(t)
}

// TestConcurrentSnapshotChurn hammers snapshot creation/closing
// against deferred deletions; the queue must drain completely once
// everything is closed.
func TestConcurrentSnapshotChurn(t *testing.T) {
	const (
		workers    = 8
		iterations = 200
	)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				s := NewSnapshot()
				h := &Handle{}
				Delete(h)
				s.Close()
			}
		}()
	}
	wg.Wait()

	requireDrained(t)
}
