package danmu_test

import (
	"testing"

	"github.com/go-danmu/danmu"
)

func newCache(t *testing.T) *danmu.GlyphCache {
	t.Helper()
	c := danmu.NewGlyphCache(stubBackend{}, 512)
	if err := c.AddFont("stub", []byte("x")); err != nil {
		t.Fatalf("AddFont: %v", err)
	}
	return c
}

func TestGlyphCacheMeasure(t *testing.T) {
	c := newCache(t)

	w, h, ok := c.Measure("hello")
	if !ok {
		t.Fatal("Measure failed")
	}
	if w != 50 {
		t.Errorf("width = %v, want 50 (5 glyphs x 10px advance)", w)
	}
	if h != c.StripHeight() {
		t.Errorf("height = %v, want strip height %v", h, c.StripHeight())
	}
}

func TestGlyphCacheFontManagement(t *testing.T) {
	c := newCache(t)

	// Duplicate name is a no-op.
	if err := c.AddFont("stub", []byte("y")); err != nil {
		t.Fatalf("duplicate AddFont: %v", err)
	}
	if got := c.FontNames(); len(got) != 1 {
		t.Errorf("FontNames = %v, want [stub]", got)
	}

	// A font that fails to parse keeps its slot but reports the error.
	if err := c.AddFont("broken", nil); err == nil {
		t.Error("AddFont with bad data returned nil error")
	}
	if got := c.FontNames(); len(got) != 2 {
		t.Errorf("FontNames = %v, want both entries", got)
	}

	c.RemoveFont("broken")
	if got := c.FontNames(); len(got) != 1 || got[0] != "stub" {
		t.Errorf("FontNames after remove = %v, want [stub]", got)
	}

	c.ClearFonts()
	if got := c.FontNames(); len(got) != 0 {
		t.Errorf("FontNames after clear = %v, want empty", got)
	}
}

func TestGlyphCacheSizeChangeForcesRecreate(t *testing.T) {
	c := newCache(t)
	if c.NeedsRecreate() {
		t.Fatal("fresh cache needs recreation")
	}

	if !c.SetFontSize(20) {
		t.Fatal("SetFontSize(20) reported no change")
	}
	if !c.NeedsRecreate() {
		t.Error("size change did not mark the cache stale")
	}

	// Setting the same value again is not a change.
	c.Recreate()
	if c.SetFontSize(20) {
		t.Error("SetFontSize with unchanged value reported a change")
	}
}

func TestGlyphCacheClampsParameters(t *testing.T) {
	c := newCache(t)

	c.SetFontSize(100)
	if got := c.FontSize(); got != 32 {
		t.Errorf("FontSize = %v, want clamped to 32", got)
	}
	c.SetFontSize(1)
	if got := c.FontSize(); got != 16 {
		t.Errorf("FontSize = %v, want clamped to 16", got)
	}
	c.SetStrokeWidth(50)
	if got := c.StrokeWidth(); got != 4 {
		t.Errorf("StrokeWidth = %v, want clamped to 4", got)
	}
	c.SetStrokeWidth(0)
	if got := c.StrokeWidth(); got != 0.1 {
		t.Errorf("StrokeWidth = %v, want clamped to 0.1", got)
	}
}

func TestGlyphCacheRecreateEvictsGlyphs(t *testing.T) {
	c := newCache(t)

	before := c.Glyphs("abc")
	if before == nil {
		t.Fatal("Glyphs failed")
	}

	c.SetFontSize(20)
	c.Recreate()
	if c.NeedsRecreate() {
		t.Error("cache still stale after Recreate")
	}

	// Previously cached entries are gone; the same text re-renders into
	// a fresh atlas at new positions.
	after := c.Glyphs("abc")
	if after == nil {
		t.Fatal("Glyphs failed after recreate")
	}
	for i := range after {
		if after[i] == before[i] {
			t.Fatalf("glyph %d survived recreation", i)
		}
	}
}

func TestGlyphCacheFallbackForUncoveredRune(t *testing.T) {
	c := newCache(t)

	gs := c.Glyphs("aあ") // stub covers ASCII only
	if len(gs) != 2 {
		t.Fatalf("glyph count = %d, want 2", len(gs))
	}
	if gs[0] == gs[1] {
		t.Error("covered rune resolved to the fallback glyph")
	}

	// Both uncovered runes share the single fallback entry.
	gs2 := c.Glyphs("あい")
	if gs2[0] != gs2[1] {
		t.Error("uncovered runes did not share the fallback glyph")
	}
}
