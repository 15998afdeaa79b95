package matrix

import (
	"github.com/inkterm/inkterm/internal/gfxcolor"
	"github.com/inkterm/inkterm/internal/style"
)

// effectiveColors resolves which of a cell's fg/bg act as foreground and
// background once "cursor XOR inverse" is taken into account.
func effectiveColors(c Cell) (fg, bg gfxcolor.Color) {
	if c.Cursor != c.Style.Inverse {
		return c.Style.Bg, c.Style.Fg
	}
	return c.Style.Fg, c.Style.Bg
}

// needsUpdate reports whether drawing cur over old changes anything a
// viewer could see.
func needsUpdate(old, cur Cell) bool {
	if !cur.Dirty {
		return false
	}

	curXor := cur.Cursor != cur.Style.Inverse
	oldXor := old.Cursor != old.Style.Inverse
	if curXor != oldXor {
		return true
	}

	curFg, curBg := effectiveColors(cur)
	oldFg, oldBg := effectiveColors(old)

	curVisible := style.ForegroundVisible(cur.Style, glyphEmptyOrSpace(cur.Glyph))
	oldVisible := style.ForegroundVisible(old.Style, glyphEmptyOrSpace(old.Glyph))
	if curVisible || oldVisible {
		if cur.Glyph != old.Glyph || curFg != oldFg || !style.AttrsEqual(cur.Style, old.Style) {
			return true
		}
	}

	return curBg != oldBg
}
