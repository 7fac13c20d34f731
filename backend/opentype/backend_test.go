package opentype_test

import (
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/go-danmu/danmu"
	"github.com/go-danmu/danmu/backend/opentype"
)

func loadFace(t *testing.T) danmu.Font {
	t.Helper()
	f, err := opentype.New().Load(goregular.TTF)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return f
}

func TestLoadRejectsGarbage(t *testing.T) {
	if _, err := opentype.New().Load([]byte("not a font")); err == nil {
		t.Error("Load accepted garbage data")
	}
}

func TestGlyphIndex(t *testing.T) {
	f := loadFace(t)

	if _, ok := f.GlyphIndex('A'); !ok {
		t.Error("no glyph for 'A'")
	}
	// Go Regular has no CJK coverage.
	if _, ok := f.GlyphIndex('あ'); ok {
		t.Error("unexpected glyph for hiragana in Go Regular")
	}
}

func TestRasterizeFill(t *testing.T) {
	f := loadFace(t)
	gid, _ := f.GlyphIndex('A')

	mask, err := f.Rasterize(gid, danmu.StyleFill, 28, 1)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if mask.Width <= 0 || mask.Height <= 0 {
		t.Fatalf("mask size = %dx%d, want positive", mask.Width, mask.Height)
	}
	if mask.Height > 30 {
		t.Errorf("mask height = %d, exceeds em-sized strip budget", mask.Height)
	}
	if mask.Advance <= 0 {
		t.Errorf("advance = %v, want positive", mask.Advance)
	}
	if len(mask.Pix) != mask.Width*mask.Height {
		t.Fatalf("pix length = %d, want %d", len(mask.Pix), mask.Width*mask.Height)
	}

	var covered int
	for _, v := range mask.Pix {
		if v > 0 {
			covered++
		}
	}
	if covered == 0 {
		t.Error("fill mask has no coverage")
	}
}

func TestRasterizeStrokeLargerThanFill(t *testing.T) {
	f := loadFace(t)
	gid, _ := f.GlyphIndex('o')

	fill, err := f.Rasterize(gid, danmu.StyleFill, 28, 2)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	stroke, err := f.Rasterize(gid, danmu.StyleStroke, 28, 2)
	if err != nil {
		t.Fatalf("stroke: %v", err)
	}

	if stroke.Width != fill.Width+4 || stroke.Height != fill.Height+4 {
		t.Errorf("stroke size = %dx%d, want fill %dx%d grown by 2 on each side",
			stroke.Width, stroke.Height, fill.Width, fill.Height)
	}
	if stroke.Left != fill.Left-2 || stroke.Top != fill.Top+2 {
		t.Errorf("stroke bearing = (%d,%d), want fill (%d,%d) shifted out",
			stroke.Left, stroke.Top, fill.Left, fill.Top)
	}
	if stroke.Advance != fill.Advance {
		t.Errorf("stroke advance = %v, fill = %v; want equal", stroke.Advance, fill.Advance)
	}
}

func TestRasterizeSpaceIsBlank(t *testing.T) {
	f := loadFace(t)
	gid, ok := f.GlyphIndex(' ')
	if !ok {
		t.Fatal("no glyph for space")
	}

	mask, err := f.Rasterize(gid, danmu.StyleFill, 28, 1)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if mask.Width != 0 || mask.Height != 0 {
		t.Errorf("space mask = %dx%d, want empty", mask.Width, mask.Height)
	}
	if mask.Advance <= 0 {
		t.Errorf("space advance = %v, want positive", mask.Advance)
	}
}

func TestBackendSatisfiesInterface(t *testing.T) {
	var _ danmu.FontBackend = opentype.New()
}
