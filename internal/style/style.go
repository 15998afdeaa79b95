// Package style holds the terminal cell Style type: fg/bg color plus
// attribute bits, as a struct with named accessors rather than a packed
// flags byte.
package style

import "github.com/inkterm/inkterm/internal/gfxcolor"

// Underline styles.
const (
	UnderlineNone = iota
	UnderlineSingle
	UnderlineDouble
)

// Style carries fg/bg color plus attribute bits for a single matrix
// cell.
type Style struct {
	Fg, Bg           gfxcolor.Color
	DefaultFg        bool
	DefaultBg        bool
	Bold             bool
	Italic           bool
	Underline        int // UnderlineNone/Single/Double
	Strikethrough    bool
	Inverse          bool
	Concealed        bool
}

// Default is the blank cell's style: default fg/bg, no attributes.
var Default = Style{DefaultFg: true, DefaultBg: true}

// Equal reports whether two styles are identical in every field that
// affects rendering.
func (s Style) Equal(o Style) bool {
	return s == o
}

// foregroundVisible reports whether a cell's foreground contributes to
// its needs_update comparison: not (concealed OR (no-strikethrough AND
// no-underline AND glyph empty-or-space)). glyphEmpty must be supplied
// by the caller since Style has no glyph of its own.
func (s Style) foregroundVisible(glyphEmptyOrSpace bool) bool {
	if s.Concealed {
		return false
	}
	if !s.Strikethrough && s.Underline == UnderlineNone && glyphEmptyOrSpace {
		return false
	}
	return true
}

// ForegroundVisible is exported for the matrix package's needs_update
// rule.
func ForegroundVisible(s Style, glyphEmptyOrSpace bool) bool {
	return s.foregroundVisible(glyphEmptyOrSpace)
}

// AttrsEqual compares the attribute bits that rule 3 of needs_update
// checks (bold, italic, strikethrough, underline) — fg/bg/cursor/inverse
// are compared separately by the caller.
func AttrsEqual(a, b Style) bool {
	return a.Bold == b.Bold && a.Italic == b.Italic &&
		a.Strikethrough == b.Strikethrough && a.Underline == b.Underline
}
