package danmu

import "image"

// FontBackend is the capability surface for font rasterization. The engine
// does not parse or rasterize fonts itself; applications inject a backend
// (e.g. backend/opentype, or a mock backend for testing).
type FontBackend interface {
	// Load parses font file data (TTF or OTF) and returns a usable Font.
	// The backend must not retain the data slice after Load returns.
	Load(data []byte) (Font, error)
}

// Font is a single loaded font face.
//
// Implementations are only accessed from the render thread and need not
// be safe for concurrent use.
type Font interface {
	// GlyphIndex returns the glyph index for a code point, or false if
	// the font's character map does not cover it. Glyph index 0 is the
	// font's missing-glyph placeholder and is always rasterizable.
	GlyphIndex(r rune) (GlyphID, bool)

	// Rasterize renders a glyph at the given pixel size into a coverage
	// mask. For StyleStroke the outline is expanded by strokeWidth pixels
	// on every side; for StyleFill strokeWidth is ignored.
	Rasterize(gid GlyphID, style GlyphStyle, size, strokeWidth float32) (*GlyphMask, error)
}

// GlyphID is a glyph index within a font, assigned by the font file.
type GlyphID uint32

// GlyphStyle selects which rendition of a glyph to rasterize.
type GlyphStyle uint8

const (
	// StyleFill is the glyph's filled outline.
	StyleFill GlyphStyle = iota
	// StyleStroke is the glyph's stroked (expanded) outline, painted
	// beneath the fill to keep text legible on any background.
	StyleStroke
)

// GlyphMask is a rasterized glyph: an 8-bit coverage bitmap plus the
// placement metrics needed to position it on a text baseline.
type GlyphMask struct {
	// Pix holds Width*Height coverage values, row-major, 0 = transparent.
	Pix []uint8

	// Width and Height are the bitmap dimensions in pixels. Both may be
	// zero for blank glyphs such as spaces.
	Width, Height int

	// Left is the horizontal bearing: the offset from the pen position to
	// the bitmap's left edge.
	Left int

	// Top is the vertical bearing: the distance from the baseline up to
	// the bitmap's top edge.
	Top int

	// Advance is how far the pen moves after this glyph, in pixels.
	Advance float32
}

// TextureSink uploads atlas pixels to the GPU. The glyph atlas texture is
// mutated in place: incremental glyph additions use UploadSub, and atlas
// recreation or growth triggers a full Upload. All calls happen on the
// render thread.
//
// Upload failures are unrecoverable for the engine and are propagated out
// of Manager.Render; the caller decides whether to disable the overlay.
type TextureSink interface {
	// CreateTexture allocates a texture of the given size and returns its
	// id. The contents are undefined until the first Upload.
	CreateTexture(width, height int) (uint32, error)

	// DeleteTexture releases a texture previously returned by CreateTexture.
	DeleteTexture(id uint32)

	// Upload replaces the entire texture with the image contents.
	// The image dimensions may differ from the creation size when the
	// atlas has grown; the sink must reallocate storage accordingly.
	Upload(id uint32, img *image.Alpha) error

	// UploadSub updates the given region of the texture from the matching
	// region of the image.
	UploadSub(id uint32, region image.Rectangle, img *image.Alpha) error
}

// Renderer consumes finished DrawLists. backend/opengl provides the
// OpenGL implementation; tests substitute mocks.
type Renderer interface {
	Render(dl *DrawList) error
	Resize(width, height int)
}
