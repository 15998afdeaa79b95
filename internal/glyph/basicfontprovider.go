package glyph

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// BasicFontProvider renders glyphs from golang.org/x/image/font/basicfont's
// fixed 7x13 bitmap face. It ignores the requested point size (the face
// has exactly one) and the monochrome flag (the face is already 1-bit
// coverage) but honors orientation, rotating the rendered bitmap so the
// renderer's geometry mapping sees a cell-shaped glyph in every
// orientation.
type BasicFontProvider struct {
	face  font.Face
	cache map[basicFontCacheKey]*Bitmap
}

type basicFontCacheKey struct {
	r           rune
	orientation int
}

// NewBasicFontProvider builds a provider around basicfont.Face7x13.
func NewBasicFontProvider() *BasicFontProvider {
	return &BasicFontProvider{
		face:  basicfont.Face7x13,
		cache: map[basicFontCacheKey]*Bitmap{},
	}
}

// Metrics reports the face's fixed 7x13 cell geometry regardless of
// the requested size.
func (p *BasicFontProvider) Metrics(size int) Metrics {
	m := p.face.Metrics()
	return Metrics{
		CellW:   7,
		CellH:   m.Height.Ceil(),
		OriginY: m.Ascent.Ceil(),
	}
}

// Render rasterizes codepoint, caching the result by (codepoint,
// orientation) — the returned pointer is stable across calls for the
// same key, so callers may safely retain it across frames.
func (p *BasicFontProvider) Render(codepoint rune, size int, monochrome bool, orientation int) *Bitmap {
	orientation = ((orientation % 4) + 4) % 4
	key := basicFontCacheKey{r: codepoint, orientation: orientation}
	if b, ok := p.cache[key]; ok {
		return b
	}

	// basicfont substitutes U+FFFD for codepoints outside its ranges;
	// report those as uncovered instead.
	if bf, isBasic := p.face.(*basicfont.Face); isBasic {
		covered := false
		for _, rng := range bf.Ranges {
			if codepoint >= rng.Low && codepoint < rng.High {
				covered = true
				break
			}
		}
		if !covered {
			p.cache[key] = nil
			return nil
		}
	}

	dr, mask, maskp, _, ok := p.face.Glyph(fixed.Point26_6{}, codepoint)
	if !ok || mask == nil {
		p.cache[key] = nil
		return nil
	}

	w, h := dr.Dx(), dr.Dy()
	alpha := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			_, _, _, a := mask.At(maskp.X+x, maskp.Y+y).RGBA()
			alpha[y*w+x] = uint8(a >> 8)
		}
	}

	b := &Bitmap{
		W: w, H: h, Stride: w,
		Alpha:   alpha,
		OriginX: -dr.Min.X,
		OriginY: -dr.Min.Y,
	}
	b = rotateBitmap(b, orientation)
	p.cache[key] = b
	return b
}

// rotateBitmap rotates a glyph bitmap by orientation*90 degrees
// clockwise, swapping W/H for odd orientations to match the
// renderer's axis-swap convention.
func rotateBitmap(b *Bitmap, orientation int) *Bitmap {
	if orientation == 0 {
		return b
	}
	src := image.NewAlpha(image.Rect(0, 0, b.W, b.H))
	copy(src.Pix, b.Alpha)

	var w, h int
	switch orientation {
	case 1, 3:
		w, h = b.H, b.W
	default:
		w, h = b.W, b.H
	}
	out := make([]uint8, w*h)
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			v := src.AlphaAt(x, y).A
			var dx, dy int
			switch orientation {
			case 1:
				dx, dy = b.H-1-y, x
			case 2:
				dx, dy = b.W-1-x, b.H-1-y
			case 3:
				dx, dy = y, b.W-1-x
			}
			out[dy*w+dx] = v
		}
	}
	return &Bitmap{
		W: w, H: h, Stride: w,
		Alpha:   out,
		OriginX: b.OriginX,
		OriginY: b.OriginY,
	}
}
