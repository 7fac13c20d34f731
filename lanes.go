package danmu

import "sort"

// Lane occupancy bookkeeping. Two ordered maps keyed by vertical offset
// track which lanes are taken: one for centered (Top/Bottom) comments and
// one for scrolling comments. Entries exist iff the corresponding comment
// is Active in that lane category, and scrolling entries carry the arena
// index of the occupant so the allocator can reason about relative speed.
//
// Both maps are small sorted slices; the key sets change a few entries per
// frame at most, so binary-search insertion beats a tree here.

// centeredLane is one occupied lane of a Top or Bottom comment.
type centeredLane struct {
	top    float32
	height float32
}

// centeredLaneMap is an ordered map from lane top to lane height,
// ascending by top.
type centeredLaneMap []centeredLane

func (m *centeredLaneMap) insert(top, height float32) {
	i := sort.Search(len(*m), func(i int) bool { return (*m)[i].top >= top })
	*m = append(*m, centeredLane{})
	copy((*m)[i+1:], (*m)[i:])
	(*m)[i] = centeredLane{top: top, height: height}
}

func (m *centeredLaneMap) remove(top float32) {
	i := sort.Search(len(*m), func(i int) bool { return (*m)[i].top >= top })
	if i < len(*m) && (*m)[i].top == top {
		*m = append((*m)[:i], (*m)[i+1:]...)
	}
}

func (m centeredLaneMap) clear() centeredLaneMap { return m[:0] }

// scrollingLane is one occupied lane of a scrolling comment. occupant is
// the arena index of the comment currently holding the lane; removal is
// guarded by it, since a newer comment may have overwritten the slot.
type scrollingLane struct {
	top      float32
	height   float32
	occupant int
}

// scrollingLaneMap is an ordered map from lane top to (height, occupant),
// ascending by top.
type scrollingLaneMap []scrollingLane

func (m *scrollingLaneMap) insert(top, height float32, occupant int) {
	i := sort.Search(len(*m), func(i int) bool { return (*m)[i].top >= top })
	if i < len(*m) && (*m)[i].top == top {
		// A lane slot is overwritten when a faster comment merges in
		// behind the previous occupant; the newest occupant governs
		// future merge decisions.
		(*m)[i] = scrollingLane{top: top, height: height, occupant: occupant}
		return
	}
	*m = append(*m, scrollingLane{})
	copy((*m)[i+1:], (*m)[i:])
	(*m)[i] = scrollingLane{top: top, height: height, occupant: occupant}
}

// removeIf removes the lane entry at top only while occupant still holds
// it. Retirement of a comment whose slot was since taken over must not
// evict the newer occupant.
func (m *scrollingLaneMap) removeIf(top float32, occupant int) {
	i := sort.Search(len(*m), func(i int) bool { return (*m)[i].top >= top })
	if i < len(*m) && (*m)[i].top == top && (*m)[i].occupant == occupant {
		*m = append((*m)[:i], (*m)[i+1:]...)
	}
}

func (m scrollingLaneMap) clear() scrollingLaneMap { return m[:0] }
