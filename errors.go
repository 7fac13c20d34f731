package danmu

import (
	"errors"
	"fmt"
)

// ErrNotArray is returned by Load when the comment source is not a JSON
// array of objects.
var ErrNotArray = errors.New("danmu: comment source is not a JSON array")

// ErrNoOutline is returned by a font backend when a glyph has no outline
// data to rasterize (for example a pure bitmap glyph).
var ErrNoOutline = errors.New("danmu: glyph has no outline data")

// ParseError describes a malformed record in a comment source. The load
// is atomic: when a ParseError is returned no records from the source are
// retained.
type ParseError struct {
	Index int    // index of the offending record in the source array
	Field string // missing or unparsable field
	Err   error  // underlying cause, if any
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("danmu: record %d: bad field %q: %v", e.Index, e.Field, e.Err)
	}
	return fmt.Sprintf("danmu: record %d: missing or invalid field %q", e.Index, e.Field)
}

func (e *ParseError) Unwrap() error { return e.Err }
