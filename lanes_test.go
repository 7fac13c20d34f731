package danmu

import "testing"

func TestCenteredLaneMapOrdering(t *testing.T) {
	var m centeredLaneMap
	m.insert(40, 10)
	m.insert(0, 10)
	m.insert(20, 10)

	for i := 1; i < len(m); i++ {
		if m[i-1].top >= m[i].top {
			t.Fatalf("map not ordered: %v", m)
		}
	}

	m.remove(20)
	if len(m) != 2 || m[0].top != 0 || m[1].top != 40 {
		t.Errorf("after remove(20): %v", m)
	}

	// Removing an absent key is a no-op.
	m.remove(99)
	if len(m) != 2 {
		t.Errorf("remove of absent key changed map: %v", m)
	}
}

func TestScrollingLaneMapOccupantGuard(t *testing.T) {
	var m scrollingLaneMap
	m.insert(0, 10, 1)

	// A merge overwrites the slot with the newer occupant.
	m.insert(0, 10, 2)
	if len(m) != 1 || m[0].occupant != 2 {
		t.Fatalf("after overwrite: %v", m)
	}

	// The displaced comment's retirement must not evict the newcomer.
	m.removeIf(0, 1)
	if len(m) != 1 {
		t.Fatal("removeIf evicted a lane held by a different occupant")
	}

	m.removeIf(0, 2)
	if len(m) != 0 {
		t.Fatalf("removeIf did not remove matching occupant: %v", m)
	}
}
