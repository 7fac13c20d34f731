// Package opentype is a font backend for the danmu engine built on
// go-text/typesetting. Glyph outlines are scaled to pixel size and
// rasterized with x/image/vector; stroke renditions are produced by
// dilating the fill coverage mask by the stroke radius.
package opentype

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/go-text/typesetting/font"
	ot "github.com/go-text/typesetting/font/opentype"
	"golang.org/x/image/vector"

	"github.com/go-danmu/danmu"
)

// Backend parses OpenType and TrueType font files.
type Backend struct{}

// New returns a ready-to-use Backend.
func New() *Backend { return &Backend{} }

// Load implements danmu.FontBackend.
func (Backend) Load(data []byte) (danmu.Font, error) {
	// ParseTTF copies what it needs out of the reader, so the returned
	// face does not alias the caller's slice.
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opentype: parse font: %w", err)
	}
	return &Face{face: face}, nil
}

// Face is one parsed font face.
type Face struct {
	face *font.Face
}

// GlyphIndex implements danmu.Font.
func (f *Face) GlyphIndex(r rune) (danmu.GlyphID, bool) {
	gid, ok := f.face.NominalGlyph(r)
	return danmu.GlyphID(gid), ok
}

// Rasterize implements danmu.Font.
func (f *Face) Rasterize(gid danmu.GlyphID, style danmu.GlyphStyle, size, strokeWidth float32) (*danmu.GlyphMask, error) {
	outline, ok := f.face.GlyphData(font.GID(gid)).(font.GlyphOutline)
	if !ok {
		return nil, danmu.ErrNoOutline
	}

	scale := size / float32(f.face.Upem())
	advance := f.face.HorizontalAdvance(font.GID(gid)) * scale

	mask := fillMask(outline, scale, advance)
	if style == danmu.StyleStroke {
		mask = dilate(mask, strokeWidth)
	}
	return mask, nil
}

// fillMask rasterizes the outline at the given scale into a coverage
// bitmap tightly bounding the glyph. Font units are Y-up; the bitmap is
// Y-down with the bearing recorded relative to the baseline pen position.
func fillMask(outline font.GlyphOutline, scale float32, advance float32) *danmu.GlyphMask {
	if len(outline.Segments) == 0 {
		return &danmu.GlyphMask{Advance: advance}
	}

	minX, minY := float32(math.Inf(1)), float32(math.Inf(1))
	maxX, maxY := float32(math.Inf(-1)), float32(math.Inf(-1))
	visit := func(p ot.SegmentPoint) {
		x, y := p.X*scale, -p.Y*scale
		minX, maxX = min(minX, x), max(maxX, x)
		minY, maxY = min(minY, y), max(maxY, y)
	}
	for _, s := range outline.Segments {
		switch s.Op {
		case ot.SegmentOpMoveTo, ot.SegmentOpLineTo:
			visit(s.Args[0])
		case ot.SegmentOpQuadTo:
			visit(s.Args[0])
			visit(s.Args[1])
		case ot.SegmentOpCubeTo:
			visit(s.Args[0])
			visit(s.Args[1])
			visit(s.Args[2])
		}
	}

	x0 := float32(math.Floor(float64(minX)))
	y0 := float32(math.Floor(float64(minY)))
	w := int(math.Ceil(float64(maxX))) - int(x0)
	h := int(math.Ceil(float64(maxY))) - int(y0)
	if w <= 0 || h <= 0 {
		return &danmu.GlyphMask{Advance: advance}
	}

	z := vector.NewRasterizer(w, h)
	z.DrawOp = draw.Src
	px := func(p ot.SegmentPoint) (float32, float32) {
		return p.X*scale - x0, -p.Y*scale - y0
	}
	started := false
	for _, s := range outline.Segments {
		switch s.Op {
		case ot.SegmentOpMoveTo:
			if started {
				z.ClosePath()
			}
			x, y := px(s.Args[0])
			z.MoveTo(x, y)
			started = true
		case ot.SegmentOpLineTo:
			x, y := px(s.Args[0])
			z.LineTo(x, y)
		case ot.SegmentOpQuadTo:
			cx, cy := px(s.Args[0])
			x, y := px(s.Args[1])
			z.QuadTo(cx, cy, x, y)
		case ot.SegmentOpCubeTo:
			c1x, c1y := px(s.Args[0])
			c2x, c2y := px(s.Args[1])
			x, y := px(s.Args[2])
			z.CubeTo(c1x, c1y, c2x, c2y, x, y)
		}
	}
	if started {
		z.ClosePath()
	}

	dst := image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})

	return &danmu.GlyphMask{
		Pix:     dst.Pix,
		Width:   w,
		Height:  h,
		Left:    int(x0),
		Top:     -int(y0),
		Advance: advance,
	}
}

// dilate expands the coverage mask by a disk of the given radius,
// producing the stroke rendition. The result grows by the ceiled radius
// on every side and its bearing shifts accordingly.
func dilate(mask *danmu.GlyphMask, radius float32) *danmu.GlyphMask {
	if mask.Width == 0 || mask.Height == 0 {
		return mask
	}

	ir := int(math.Ceil(float64(radius)))
	if ir < 1 {
		ir = 1
	}
	w := mask.Width + 2*ir
	h := mask.Height + 2*ir
	pix := make([]uint8, w*h)

	// Precompute disk offsets once per call; glyph masks are small and
	// the radius rarely exceeds a few pixels.
	type offset struct{ dx, dy int }
	var disk []offset
	rr := float64(radius) * float64(radius)
	for dy := -ir; dy <= ir; dy++ {
		for dx := -ir; dx <= ir; dx++ {
			if float64(dx*dx+dy*dy) <= rr || (dx == 0 && dy == 0) {
				disk = append(disk, offset{dx, dy})
			}
		}
	}

	for y := 0; y < mask.Height; y++ {
		for x := 0; x < mask.Width; x++ {
			v := mask.Pix[y*mask.Width+x]
			if v == 0 {
				continue
			}
			for _, o := range disk {
				tx, ty := x+ir+o.dx, y+ir+o.dy
				if p := &pix[ty*w+tx]; *p < v {
					*p = v
				}
			}
		}
	}

	return &danmu.GlyphMask{
		Pix:     pix,
		Width:   w,
		Height:  h,
		Left:    mask.Left - ir,
		Top:     mask.Top + ir,
		Advance: mask.Advance,
	}
}
