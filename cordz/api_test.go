package cordz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolkov/cordz/internal/cordz/sampler"
)

// newTestCord returns an untracked cord with a rep of the given size.
func newTestCord(size int64) *TrackedCord {
	return NewTrackedCord(&CordRep{Length: size})
}

// untrackAll is the per-test cleanup: every cord the test tracked must
// be untracked so the process-wide registry drains.
func untrackAll(t *testing.T, cords ...*TrackedCord) {
	t.Helper()
	for _, cord := range cords {
		if ci := cord.CordzInfo(); ci != nil {
			Untrack(ci)
		}
	}
	require.Empty(t, Collect(), "registry not drained after test")
}

func TestTrackAndCollect(t *testing.T) {
	a := newTestCord(10)
	b := newTestCord(32)
	Track(a, MethodConstructorString)
	Track(b, MethodConstructorCord)
	defer untrackAll(t, a, b)

	stats := Collect()
	require.Len(t, stats, 2)

	// Most recently tracked first.
	assert.Equal(t, MethodConstructorCord, stats[0].Method)
	assert.Equal(t, int64(32), stats[0].Size)
	assert.Equal(t, MethodConstructorString, stats[1].Method)
	assert.Equal(t, int64(10), stats[1].Size)
}

func TestMaybeTrackRespectsSampler(t *testing.T) {
	sampler.ResetForTesting()
	t.Cleanup(sampler.ResetForTesting)

	// Disabled: never tracked.
	cord := newTestCord(1)
	MaybeTrack(cord, MethodConstructorString)
	assert.False(t, cord.IsProfiled(), "cord tracked while profiling disabled")

	// Enabled at rate 1: always tracked.
	Enable(true)
	SetSampleRate(1)
	cord = newTestCord(1)
	MaybeTrack(cord, MethodConstructorString)
	require.True(t, cord.IsProfiled(), "cord not tracked at sample rate 1")
	untrackAll(t, cord)
}

func TestTrackDerivedCapturesParent(t *testing.T) {
	parent := newTestCord(8)
	child := newTestCord(16)
	Track(parent, MethodConstructorString)
	TrackDerived(child, parent, MethodSubCord)
	defer untrackAll(t, parent, child)

	stats := child.CordzInfo().GetCordzStatistics()
	assert.Equal(t, MethodSubCord, stats.Method)
	assert.Equal(t, MethodConstructorString, stats.ParentMethod)
	assert.Equal(t,
		parent.CordzInfo().GetStack(),
		child.CordzInfo().GetParentStack(),
		"parent stack must be a copy of the parent's creation stack")
}

func TestUpdateTracked(t *testing.T) {
	cord := newTestCord(4)
	Track(cord, MethodConstructorString)

	newRep := &CordRep{Length: 20}
	Update(cord, MethodAppendString, func(ci *Info) *CordRep {
		require.NotNil(t, ci, "tracked cord must expose its record to the callback")
		return newRep
	})
	defer untrackAll(t, cord)

	require.True(t, cord.IsProfiled())
	stats := cord.CordzInfo().GetCordzStatistics()
	assert.Equal(t, int64(20), stats.Size)
	assert.Equal(t, int64(1), stats.UpdateTracker.Value(MethodAppendString))
	assert.Same(t, newRep, cord.Rep())
}

func TestUpdateUntracked(t *testing.T) {
	cord := newTestCord(4)

	called := false
	Update(cord, MethodAppendString, func(ci *Info) *CordRep {
		called = true
		assert.Nil(t, ci, "untracked cord must pass a nil record")
		return &CordRep{Length: 9}
	})

	assert.True(t, called)
	assert.False(t, cord.IsProfiled())
	assert.Equal(t, int64(9), cord.Rep().Length)
}

func TestUpdateToNilUntracksCord(t *testing.T) {
	cord := newTestCord(4)
	Track(cord, MethodConstructorString)

	Update(cord, MethodClear, func(ci *Info) *CordRep {
		return nil
	})

	assert.False(t, cord.IsProfiled(), "clearing the rep must untrack on unlock")
	assert.Empty(t, Collect())
}

func TestSnapshotTraversal(t *testing.T) {
	cord := newTestCord(7)
	Track(cord, MethodConstructorString)
	ci := cord.CordzInfo()

	s := NewSnapshot()
	require.Same(t, ci, Head(s))
	require.Nil(t, Head(s).Next(s))

	// Untracked mid-snapshot: still traversable, reclaimed on close.
	Untrack(ci)
	require.Same(t, ci, Head(s))

	dq := DiagnosticsGetDeleteQueue()
	require.Len(t, dq, 2)
	assert.False(t, dq[0].IsSnapshot())
	assert.True(t, dq[1].IsSnapshot())

	s.Close()
	assert.True(t, ci.Reclaimed())
	assert.Empty(t, DiagnosticsGetDeleteQueue())
}

func TestGetInfo(t *testing.T) {
	sampler.ResetForTesting()
	t.Cleanup(sampler.ResetForTesting)

	Enable(true)
	SetSampleRate(64)

	ri := GetInfo()
	assert.Equal(t, Version, ri.Version)
	assert.True(t, ri.Enabled)
	assert.Equal(t, int64(64), ri.SampleRate)
}
