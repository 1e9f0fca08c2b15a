package method

import (
	"sync"
	"testing"
)

func TestTrackerCounts(t *testing.T) {
	var tr Tracker

	if got := tr.Value(AppendString); got != 0 {
		t.Errorf("fresh tracker Value(AppendString) = %d, want 0", got)
	}

	tr.LossyAdd(AppendString, 1)
	tr.LossyAdd(AppendString, 1)
	tr.LossyAdd(ConstructorString, 1)

	if got := tr.Value(AppendString); got != 2 {
		t.Errorf("Value(AppendString) = %d, want 2", got)
	}
	if got := tr.Value(ConstructorString); got != 1 {
		t.Errorf("Value(ConstructorString) = %d, want 1", got)
	}
	if got := tr.Value(AppendCord); got != 0 {
		t.Errorf("Value(AppendCord) = %d, want 0", got)
	}
}

func TestTrackerFoldsOutOfRange(t *testing.T) {
	var tr Tracker
	tr.LossyAdd(Identifier(-5), 1)
	tr.LossyAdd(NumMethods, 1)

	if got := tr.Value(Unknown); got != 2 {
		t.Errorf("Value(Unknown) = %d, want 2 (out-of-range adds fold into Unknown)", got)
	}
}

func TestTrackerSnapshot(t *testing.T) {
	var tr Tracker
	tr.LossyAdd(AppendString, 3)
	tr.LossyAdd(SubCord, 1)

	snap := tr.Snapshot()

	// The snapshot is a value copy: later adds are not reflected.
	tr.LossyAdd(AppendString, 1)

	if got := snap.Value(AppendString); got != 3 {
		t.Errorf("snapshot Value(AppendString) = %d, want 3", got)
	}
	if got := snap.Value(SubCord); got != 1 {
		t.Errorf("snapshot Value(SubCord) = %d, want 1", got)
	}
	if got := snap.Total(); got != 4 {
		t.Errorf("snapshot Total() = %d, want 4", got)
	}
}

func TestTrackerInherit(t *testing.T) {
	var parent Tracker
	parent.LossyAdd(ConstructorString, 1)
	parent.LossyAdd(AppendString, 2)

	var child Tracker
	child.LossyAdd(ConstructorCord, 1)
	snap := parent.Snapshot()
	child.LossyAddAll(&snap)

	if got := child.Value(ConstructorCord); got != 1 {
		t.Errorf("Value(ConstructorCord) = %d, want 1", got)
	}
	if got := child.Value(ConstructorString); got != 1 {
		t.Errorf("Value(ConstructorString) = %d, want 1", got)
	}
	if got := child.Value(AppendString); got != 2 {
		t.Errorf("Value(AppendString) = %d, want 2", got)
	}
}

// TestTrackerConcurrent verifies no adds are lost under concurrent
// increments of the same counter.
func TestTrackerConcurrent(t *testing.T) {
	const (
		workers       = 8
		addsPerWorker = 1000
	)

	var tr Tracker
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < addsPerWorker; i++ {
				tr.LossyAdd(AppendString, 1)
			}
		}()
	}
	wg.Wait()

	if got, want := tr.Value(AppendString), int64(workers*addsPerWorker); got != want {
		t.Errorf("Value(AppendString) = %d, want %d", got, want)
	}
}
