package danmu

import (
	"image"
	"testing"
)

func TestAtlasAllocateWrapsStrips(t *testing.T) {
	a := newAtlas(64, 16, 64)

	p1, ok := a.allocate(30, 16)
	if !ok || p1 != image.Pt(0, 0) {
		t.Fatalf("first allocation = %v, %v", p1, ok)
	}
	p2, ok := a.allocate(30, 16)
	if !ok || p2 != image.Pt(31, 0) {
		t.Fatalf("second allocation = %v, %v; want gap of 1 after first", p2, ok)
	}

	// No room left in strip 0; wraps to strip 1.
	p3, ok := a.allocate(30, 16)
	if !ok || p3 != image.Pt(0, 16) {
		t.Fatalf("third allocation = %v, %v; want next strip", p3, ok)
	}
}

func TestAtlasRejectsOversized(t *testing.T) {
	a := newAtlas(64, 16, 64)
	if _, ok := a.allocate(65, 10); ok {
		t.Error("allocation wider than atlas succeeded")
	}
	if _, ok := a.allocate(10, 17); ok {
		t.Error("allocation taller than strip succeeded")
	}
}

func TestAtlasFullAtCapacity(t *testing.T) {
	a := newAtlas(64, 16, 32) // two strips total
	for i := 0; i < 2; i++ {
		if _, ok := a.allocate(64, 16); !ok {
			t.Fatalf("strip %d allocation failed", i)
		}
	}
	if _, ok := a.allocate(10, 10); ok {
		t.Error("allocation succeeded past capacity")
	}
}

func TestAtlasGrowsLazily(t *testing.T) {
	a := newAtlas(64, 16, 64)
	if h := a.img.Bounds().Dy(); h != 16 {
		t.Fatalf("initial height = %d, want one strip", h)
	}

	a.allocate(64, 16)
	a.allocate(10, 10) // opens strip 1
	if h := a.img.Bounds().Dy(); h < 32 {
		t.Errorf("height after second strip = %d, want >= 32", h)
	}
}

func TestAtlasFillRatioAgainstCapacity(t *testing.T) {
	a := newAtlas(100, 10, 100) // capacity: 10 strips of 100px

	if r := a.fillRatio(); r != 0 {
		t.Fatalf("empty fill ratio = %v", r)
	}

	a.allocate(100, 10)
	a.allocate(100, 10)
	a.allocate(100, 10)
	// Three full strips of ten; the cursor sits at the start of strip 3.
	if r := a.fillRatio(); r < 0.29 || r > 0.31 {
		t.Errorf("fill ratio = %v, want about 0.3", r)
	}
}

func TestAtlasDirtyTracking(t *testing.T) {
	a := newAtlas(64, 16, 64)

	// A fresh atlas needs a full upload.
	_, full := a.takeDirty()
	if !full {
		t.Fatal("fresh atlas did not request full upload")
	}

	pos, _ := a.allocate(8, 10)
	a.copyMask(pos, &GlyphMask{Pix: make([]uint8, 80), Width: 8, Height: 10})
	region, full := a.takeDirty()
	if full {
		t.Error("incremental allocation requested full upload")
	}
	if region.Empty() || !region.Eq(image.Rect(0, 0, 8, 10)) {
		t.Errorf("dirty region = %v, want (0,0)-(8,10)", region)
	}

	// Consumed: nothing pending anymore.
	region, full = a.takeDirty()
	if !region.Empty() || full {
		t.Errorf("second takeDirty = %v, %v; want empty", region, full)
	}
}
