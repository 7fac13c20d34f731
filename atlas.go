package danmu

import "image"

// atlas packs glyph coverage bitmaps into a single alpha image using
// fixed-height strips. Every glyph rendered at the current font size and
// stroke width fits one strip, so allocation is a left-to-right cursor
// walk that wraps to the next strip when a row fills up.
//
// The backing image starts one strip tall and grows (up to maxHeight) as
// strips are opened, so a session that only ever renders a few glyphs
// keeps a small upload.
type atlas struct {
	img         *image.Alpha
	width       int // fixed texture width
	maxHeight   int // capacity; fillRatio is measured against this
	stripHeight int

	cursorX int // next free x in the current strip
	cursorY int // top of the current strip

	dirty image.Rectangle // region needing incremental upload
	grown bool            // image was reallocated; next flush is a full upload
}

// glyphGap is the padding in pixels between packed glyphs, preventing
// sampling bleed between neighbors.
const glyphGap = 1

func newAtlas(width, stripHeight, maxHeight int) *atlas {
	if stripHeight > maxHeight {
		maxHeight = stripHeight
	}
	return &atlas{
		img:         image.NewAlpha(image.Rect(0, 0, width, stripHeight)),
		width:       width,
		maxHeight:   maxHeight,
		stripHeight: stripHeight,
		grown:       true,
	}
}

// allocate reserves a w×h region and returns its top-left position.
// Returns false when the region cannot fit a strip or the atlas is full.
func (a *atlas) allocate(w, h int) (image.Point, bool) {
	if w > a.width || h > a.stripHeight {
		return image.Point{}, false
	}

	if a.cursorX+w > a.width {
		// Open the next strip.
		if a.cursorY+2*a.stripHeight > a.maxHeight {
			return image.Point{}, false
		}
		a.cursorY += a.stripHeight
		a.cursorX = 0
	}

	if need := a.cursorY + a.stripHeight; need > a.img.Bounds().Dy() {
		a.grow(need)
	}

	pos := image.Pt(a.cursorX, a.cursorY)
	a.cursorX += w + glyphGap
	a.dirty = a.dirty.Union(image.Rect(pos.X, pos.Y, pos.X+w, pos.Y+h))
	return pos, true
}

// grow reallocates the backing image to at least need rows of pixels.
// Existing pixels are preserved; the stride is unchanged so a flat copy
// suffices.
func (a *atlas) grow(need int) {
	newH := a.img.Bounds().Dy()
	for newH < need {
		newH *= 2
	}
	if newH > a.maxHeight {
		newH = a.maxHeight
	}
	next := image.NewAlpha(image.Rect(0, 0, a.width, newH))
	copy(next.Pix, a.img.Pix)
	a.img = next
	a.grown = true
}

// copyMask blits a glyph coverage mask to the given atlas position.
func (a *atlas) copyMask(pos image.Point, mask *GlyphMask) {
	for y := 0; y < mask.Height; y++ {
		row := a.img.Pix[(pos.Y+y)*a.img.Stride+pos.X:]
		copy(row[:mask.Width], mask.Pix[y*mask.Width:(y+1)*mask.Width])
	}
}

// fillRatio returns how much of the atlas capacity has been consumed,
// in [0, 1]. Capacity is the full maxHeight even while the backing image
// is still small, so the ratio never decreases when the image grows.
func (a *atlas) fillRatio() float64 {
	if a.width == 0 || a.maxHeight == 0 {
		return 1
	}
	stripLen := a.cursorY/a.stripHeight*a.width + a.cursorX
	total := a.maxHeight / a.stripHeight * a.width
	return float64(stripLen) / float64(total)
}

// takeDirty returns and clears the pending upload region and the grown
// flag. A grown atlas requires a full re-upload; otherwise the returned
// rectangle (possibly empty) can be uploaded as a sub-image.
func (a *atlas) takeDirty() (region image.Rectangle, full bool) {
	region, full = a.dirty, a.grown
	a.dirty = image.Rectangle{}
	a.grown = false
	return region, full
}
