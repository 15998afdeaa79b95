package matrix

import "github.com/inkterm/inkterm/internal/style"

// Cell is one position in the logical character grid: a Unicode scalar
// (0 means empty), its style, whether the terminal cursor currently sits
// there, and whether it has changed since the last commit.
type Cell struct {
	Glyph rune
	Style style.Style
	Cursor bool
	Dirty bool
}

// blank is the default cell: empty glyph, default style, not the
// cursor, but dirty — a freshly allocated grid must be drawn once.
var blank = Cell{Glyph: 0, Style: style.Default, Cursor: false, Dirty: true}

func glyphEmptyOrSpace(g rune) bool {
	return g == 0 || g == ' '
}
