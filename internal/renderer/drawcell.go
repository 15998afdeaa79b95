package renderer

import (
	"github.com/inkterm/inkterm/internal/geometry"
	"github.com/inkterm/inkterm/internal/gfxcolor"
	"github.com/inkterm/inkterm/internal/matrix"
	"github.com/inkterm/inkterm/internal/memdisplay"
)

// resolveColors applies bright-on-bold, palette/direct resolution,
// default-color substitution, and the cursor-XOR-inverse swap to
// produce the fg/bg pair a cell actually draws with.
func (r *Renderer) resolveColors(cell matrix.Cell) (fg, bg gfxcolor.RGBA) {
	fgColor, bgColor := cell.Style.Fg, cell.Style.Bg
	if r.brightOnBold && cell.Style.Bold {
		fgColor = fgColor.Brighten()
	}

	if cell.Style.DefaultFg {
		fg = r.defaultFg
	} else if fgColor.IsIndexed() {
		fg = r.palette.At(fgColor.Index())
	} else {
		fg = fgColor.RGBValue()
	}

	if cell.Style.DefaultBg {
		bg = r.defaultBg
	} else if bgColor.IsIndexed() {
		bg = r.palette.At(bgColor.Index())
	} else {
		bg = bgColor.RGBValue()
	}

	if cell.Cursor != cell.Style.Inverse {
		fg, bg = bg, fg
	}
	return fg, bg
}

var pureBlack = gfxcolor.RGBA{A: 255}
var pureWhite = gfxcolor.RGBA{R: 255, G: 255, B: 255, A: 255}

// drawCell draws or erases one cell. erase=true undoes a
// previously-drawn cell (DrawMode::Erase on the glyph blit, and skips
// the background fill entirely); erase=false draws cell's contents at
// the requested quality. Returns the union of the background and
// glyph rects touched, in backend pixel coordinates.
func (r *Renderer) drawCell(col, row int, cell matrix.Cell, erase bool, lowQuality bool) geometry.Rect {
	ox, oy := r.cellOrigin(col, row)
	bgRect := geometry.NewRect(ox, oy, ox+r.cellW-1, oy+r.cellH-1)
	fgRGBA, bgRGBA := r.resolveColors(cell)

	touched := geometry.Invalid
	if !erase {
		if lowQuality {
			r.display.FillDither(memdisplay.Background, bgRGBA.Gray4(), bgRect)
		} else {
			r.display.Fill(memdisplay.Background, bgRGBA, bgRect)
		}
		touched = touched.GrowRect(bgRect)
	}

	bmp := r.glyphs.Render(cell.Glyph, r.fontSize, lowQuality, r.orientation)
	if bmp == nil {
		return touched
	}

	gx := ox + bmp.OriginX
	gy := oy + r.originY - bmp.OriginY
	glyphRect := geometry.NewRect(gx, gy, gx+bmp.W-1, gy+bmp.H-1)

	drawFg := fgRGBA
	bgGray := bgRGBA.Gray4()
	if lowQuality {
		if bgGray > 7 {
			drawFg = pureBlack
		} else {
			drawFg = pureWhite
		}
	}

	mode := memdisplay.Write
	if erase {
		mode = memdisplay.Erase
	}
	r.display.Blit(memdisplay.Presentation, drawFg, bmp.Alpha, bmp.Stride, glyphRect, mode)
	touched = touched.GrowRect(glyphRect)

	if lowQuality && !erase && bgGray > 0 && bgGray < 15 {
		shadowRect := glyphRect.Translate(geometry.Point{X: 1, Y: 1})
		r.display.Blit(memdisplay.Presentation, drawFg.Not(), bmp.Alpha, bmp.Stride, shadowRect, memdisplay.Write)
		touched = touched.GrowRect(shadowRect)
	}

	return touched
}
