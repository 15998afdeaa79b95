// Package glyph defines the glyph-rendering collaborator the renderer
// draws against, plus a development implementation backed by
// golang.org/x/image/font/basicfont so the renderer always has
// something concrete to draw without requiring a real font stack.
package glyph

// Metrics describes the fixed monospace cell geometry a provider
// renders into at a given point size.
type Metrics struct {
	CellW, CellH int
	OriginY      int
}

// Bitmap is an immutable 8-bit alpha glyph mask, with its origin offset
// relative to the cell's upper-left corner. Provider implementations
// must return a pointer stable for the lifetime of their glyph cache
// so callers may safely retain it across frames.
type Bitmap struct {
	W, H    int
	Stride  int
	Alpha   []uint8
	OriginX int
	OriginY int
}

// Provider is the glyph-rendering collaborator. Render may return nil
// for a codepoint the font doesn't cover, in which case the cell is
// drawn with background only.
type Provider interface {
	Metrics(size int) Metrics
	Render(codepoint rune, size int, monochrome bool, orientation int) *Bitmap
}
