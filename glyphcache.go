package danmu

import (
	"fmt"
	"image"
	"math"
	"os"
)

// Glyph is one cached rendition (fill or stroke) of a code point: its
// bitmap placement inside the atlas plus baseline metrics.
type Glyph struct {
	Width, Height int     // bitmap size in pixels
	Left, Top     int     // bearing relative to the pen position
	Advance       float32 // pen advance in pixels
	AtlasMin      image.Point
	AtlasMax      image.Point
}

// StrokedGlyph pairs the fill rendition of a code point with its
// separately rendered stroke outline.
type StrokedGlyph struct {
	Fill   Glyph
	Stroke Glyph
}

// fontEntry is one slot in the ordered font list. font is nil when the
// file failed to load; the slot is kept so the ordering is stable and the
// failure is visible to FontNames.
type fontEntry struct {
	name string
	font Font
}

// GlyphCache rasterizes code points on demand through a FontBackend and
// packs the results into a texture atlas. Character lookup walks the
// ordered font list and uses the first font whose character map covers the
// code point; uncovered code points render via a cached fallback glyph
// (the first usable font's missing-glyph placeholder).
//
// Changing the font size or stroke width invalidates every cached entry:
// glyph bitmap dimensions depend on both, so the atlas must be recreated
// before the next measurement.
type GlyphCache struct {
	backend  FontBackend
	fonts    []fontEntry
	glyphs   map[rune]*StrokedGlyph // nil value: no loaded font covers the rune
	fallback *StrokedGlyph
	atlas    *atlas

	stale       bool
	fontSize    float32
	strokeWidth float32
	maxTexSize  int
}

const (
	defaultFontSize    = 28.0
	defaultStrokeWidth = 1.0

	minFontSize    = 16.0
	maxFontSize    = 32.0
	minStrokeWidth = 0.1
	maxStrokeWidth = 4.0

	// atlasFillLimit is the fill ratio beyond which the atlas is
	// recreated, evicting glyphs that are no longer in use.
	atlasFillLimit = 0.8
)

// NewGlyphCache creates a glyph cache backed by the given font backend.
// maxTextureSize bounds both atlas dimensions; pass the GPU's maximum
// texture size (values below 256 are raised to 256).
func NewGlyphCache(backend FontBackend, maxTextureSize int) *GlyphCache {
	if maxTextureSize < 256 {
		maxTextureSize = 256
	}
	c := &GlyphCache{
		backend:     backend,
		fontSize:    defaultFontSize,
		strokeWidth: defaultStrokeWidth,
		maxTexSize:  maxTextureSize,
	}
	c.Recreate()
	return c
}

// AddFont appends a font to the end of the lookup order. Adding a name
// that is already present is a no-op. A font that fails to parse keeps its
// slot (so ordering stays stable) but never serves glyphs; the failure is
// logged and returned.
func (c *GlyphCache) AddFont(name string, data []byte) error {
	for _, e := range c.fonts {
		if e.name == name {
			return nil
		}
	}

	f, err := c.backend.Load(data)
	if err != nil {
		Logger().Warn("font load failed", "font", name, "error", err)
		c.fonts = append(c.fonts, fontEntry{name: name})
		return fmt.Errorf("danmu: load font %q: %w", name, err)
	}
	c.fonts = append(c.fonts, fontEntry{name: name, font: f})
	return nil
}

// AddFontFile reads a font file and appends it to the lookup order.
func (c *GlyphCache) AddFontFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		Logger().Warn("font load failed", "font", path, "error", err)
		c.fonts = append(c.fonts, fontEntry{name: path})
		return fmt.Errorf("danmu: read font %q: %w", path, err)
	}
	return c.AddFont(path, data)
}

// RemoveFont removes a font from the lookup order by name.
// Cached glyphs sourced from it remain valid until the next recreation.
func (c *GlyphCache) RemoveFont(name string) {
	for i, e := range c.fonts {
		if e.name == name {
			c.fonts = append(c.fonts[:i], c.fonts[i+1:]...)
			return
		}
	}
}

// ClearFonts removes every font from the lookup order.
func (c *GlyphCache) ClearFonts() {
	c.fonts = nil
}

// FontNames returns the font lookup order.
func (c *GlyphCache) FontNames() []string {
	names := make([]string, len(c.fonts))
	for i, e := range c.fonts {
		names[i] = e.name
	}
	return names
}

// FontSize returns the current font size in pixels.
func (c *GlyphCache) FontSize() float32 { return c.fontSize }

// StrokeWidth returns the current stroke width in pixels.
func (c *GlyphCache) StrokeWidth() float32 { return c.strokeWidth }

// SetFontSize updates the rendering size for subsequently rendered glyphs,
// clamped to [16, 32] px. Returns true if the value changed, which marks
// the atlas stale: the caller must Recreate before the next measurement.
func (c *GlyphCache) SetFontSize(px float32) bool {
	px = clamp32(px, minFontSize, maxFontSize)
	if px == c.fontSize {
		return false
	}
	c.fontSize = px
	c.stale = true
	return true
}

// SetStrokeWidth updates the stroke width for subsequently rendered
// glyphs, clamped to [0.1, 4] px. Returns true if the value changed, which
// marks the atlas stale.
func (c *GlyphCache) SetStrokeWidth(px float32) bool {
	px = clamp32(px, minStrokeWidth, maxStrokeWidth)
	if px == c.strokeWidth {
		return false
	}
	c.strokeWidth = px
	c.stale = true
	return true
}

// NeedsRecreate reports whether the atlas must be recreated before the
// next measurement: either a size parameter changed, or the fill ratio
// crossed the capacity limit.
func (c *GlyphCache) NeedsRecreate() bool {
	return c.stale || c.atlas.fillRatio() >= atlasFillLimit
}

// Recreate rebuilds the atlas at the current font size and stroke width,
// dropping every cached glyph entry including the fallback. Previously
// seen characters are re-rendered on their next lookup.
func (c *GlyphCache) Recreate() {
	stripH := int(math.Ceil(float64(c.fontSize + 2*c.strokeWidth)))
	c.atlas = newAtlas(c.maxTexSize, stripH, c.maxTexSize)
	c.glyphs = make(map[rune]*StrokedGlyph)
	c.fallback = nil
	c.stale = false
	Logger().Debug("glyph atlas recreated",
		"fontSize", c.fontSize, "strokeWidth", c.strokeWidth, "stripHeight", stripH)
}

// StripHeight returns the atlas strip height: every glyph rendered at the
// current parameters fits a strip, so this is also the text line height.
func (c *GlyphCache) StripHeight() float32 {
	return float32(c.atlas.stripHeight)
}

// Image exposes the atlas backing image for upload and inspection.
func (c *GlyphCache) Image() *image.Alpha { return c.atlas.img }

// Glyphs resolves text into one cached StrokedGlyph per rune, rendering
// missing entries on demand. Runes not covered by any loaded font resolve
// to the fallback glyph. Returns nil when not even the fallback can be
// rendered (no usable fonts), in which case the text is unmeasurable.
//
// Calling Glyphs with a stale atlas is a programming error: size changes
// must be followed by Recreate first.
func (c *GlyphCache) Glyphs(text string) []*StrokedGlyph {
	if c.stale {
		panic("danmu: glyph lookup with stale atlas; call Recreate after changing font size or stroke width")
	}

	if c.fallback == nil {
		c.fallback = c.renderGlyph(0, false)
	}
	if c.fallback == nil {
		return nil
	}

	for _, r := range text {
		if g, ok := c.glyphs[r]; ok && g != nil {
			continue
		}
		// A nil entry is retried: a font added since the last attempt
		// may cover the rune now.
		c.glyphs[r] = c.renderGlyph(r, true)
	}

	out := make([]*StrokedGlyph, 0, len(text))
	for _, r := range text {
		if g := c.glyphs[r]; g != nil {
			out = append(out, g)
		} else {
			out = append(out, c.fallback)
		}
	}
	return out
}

// Measure returns the pixel dimensions of text laid out on one line.
// ok is false when the text is unmeasurable (no glyphs at all).
func (c *GlyphCache) Measure(text string) (w, h float32, ok bool) {
	gs := c.Glyphs(text)
	if gs == nil {
		return 0, 0, false
	}
	for _, g := range gs {
		w += g.Fill.Advance
	}
	return w, c.StripHeight(), true
}

// renderGlyph rasterizes both renditions of a code point from the first
// font that covers it and packs them into the atlas. When mapped is
// false the code point is ignored and glyph index 0 (the missing-glyph
// placeholder) of the first usable font is rendered instead. Returns nil
// when no font can serve the request or the atlas is out of space.
func (c *GlyphCache) renderGlyph(r rune, mapped bool) *StrokedGlyph {
	for _, e := range c.fonts {
		if e.font == nil {
			continue
		}

		var gid GlyphID
		if mapped {
			id, ok := e.font.GlyphIndex(r)
			if !ok || id == 0 {
				continue
			}
			gid = id
		}

		fill, ok := c.packGlyph(e, gid, StyleFill)
		if !ok {
			return nil
		}
		stroke, ok := c.packGlyph(e, gid, StyleStroke)
		if !ok {
			return nil
		}
		return &StrokedGlyph{Fill: fill, Stroke: stroke}
	}
	return nil
}

// packGlyph rasterizes one rendition and copies it into the atlas.
func (c *GlyphCache) packGlyph(e fontEntry, gid GlyphID, style GlyphStyle) (Glyph, bool) {
	mask, err := e.font.Rasterize(gid, style, c.fontSize, c.strokeWidth)
	if err != nil {
		Logger().Warn("glyph rasterization failed",
			"font", e.name, "glyph", gid, "style", style, "error", err)
		return Glyph{}, false
	}

	pos, ok := c.atlas.allocate(mask.Width, mask.Height)
	if !ok {
		Logger().Warn("glyph atlas full", "font", e.name, "glyph", gid)
		return Glyph{}, false
	}
	c.atlas.copyMask(pos, mask)

	return Glyph{
		Width:    mask.Width,
		Height:   mask.Height,
		Left:     mask.Left,
		Top:      mask.Top,
		Advance:  mask.Advance,
		AtlasMin: pos,
		AtlasMax: image.Pt(pos.X+mask.Width, pos.Y+mask.Height),
	}, true
}

// flush pushes pending atlas changes to the texture sink. A grown or
// recreated atlas is uploaded whole; otherwise only the dirty region is.
func (c *GlyphCache) flush(sink TextureSink, tex uint32) error {
	region, full := c.atlas.takeDirty()
	switch {
	case full:
		return sink.Upload(tex, c.atlas.img)
	case !region.Empty():
		return sink.UploadSub(tex, region, c.atlas.img)
	}
	return nil
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
