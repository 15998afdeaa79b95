// Package gfxcolor implements the tagged Color variant, RGBA pixel type,
// dense Palette and backend ColorLayout used throughout the rendering
// pipeline.
package gfxcolor

// RGBA is an 8-8-8-8 color. Straight (non-premultiplied) unless the
// caller has explicitly called Premultiply.
type RGBA struct {
	R, G, B, A uint8
}

// Premultiply returns c with RGB scaled by A/255.
func (c RGBA) Premultiply() RGBA {
	return RGBA{
		R: uint8(uint32(c.R) * uint32(c.A) / 255),
		G: uint8(uint32(c.G) * uint32(c.A) / 255),
		B: uint8(uint32(c.B) * uint32(c.A) / 255),
		A: c.A,
	}
}

// Not returns the bitwise complement of each channel (used for the
// "invert" output op and the dither shadow-glyph compensation).
func (c RGBA) Not() RGBA {
	return RGBA{R: ^c.R, G: ^c.G, B: ^c.B, A: ^c.A}
}

// Gray4 converts c to a 4-bit (0-15) grayscale level using the same
// fixed-point luminance weights as the e-paper emulation:
// (77*r + 151*g + 28*b) >> 12.
func (c RGBA) Gray4() int {
	return int((77*uint32(c.R) + 151*uint32(c.G) + 28*uint32(c.B)) >> 12)
}

var black = RGBA{0, 0, 0, 255}

// Color is a tagged variant: an index into a Palette, or a direct RGB
// triple. The zero value is Indexed(0).
type Color struct {
	isRGB bool
	index uint8
	rgb   RGBA
}

// Indexed constructs a palette-indexed color.
func Indexed(i uint8) Color { return Color{index: i} }

// RGB constructs a direct-color value. Alpha is ignored for terminal
// cell colors (always opaque) but carried through for compositing code
// that reuses Color for layer fills.
func RGB(c RGBA) Color { return Color{isRGB: true, rgb: c} }

// IsIndexed reports whether the color is a palette index.
func (c Color) IsIndexed() bool { return !c.isRGB }

// Index returns the palette index; valid only if IsIndexed().
func (c Color) Index() uint8 { return c.index }

// RGBValue returns the direct RGB value; valid only if !IsIndexed().
func (c Color) RGBValue() RGBA { return c.rgb }

// Brighten returns the color shifted into the bright half of a 16-color
// indexed palette (+8), used by the renderer's bright-on-bold rule. A
// non-indexed (RGB) color, or an index already >= 8, is returned
// unchanged.
func (c Color) Brighten() Color {
	if !c.isRGB && c.index < 8 {
		return Indexed(c.index + 8)
	}
	return c
}

// Palette is a dense array of up to 256 RGBA entries. Out-of-range
// indexing returns black rather than panicking.
type Palette struct {
	entries [256]RGBA
}

// NewPalette builds a palette from the given entries; any entry beyond
// 256 is ignored, any index not covered defaults to black.
func NewPalette(entries []RGBA) *Palette {
	p := &Palette{}
	for i, e := range entries {
		if i >= 256 {
			break
		}
		p.entries[i] = e
	}
	return p
}

// At returns the palette entry at i, or black for a nil Palette. Every
// uint8 index falls inside the 256 entries, so no index is out of range.
func (p *Palette) At(i uint8) RGBA {
	if p == nil {
		return black
	}
	return p.entries[i]
}

// Set stores c at index i.
func (p *Palette) Set(i uint8, c RGBA) {
	p.entries[i] = c
}

// ColorLayout describes how a backend packs color channels into a
// pixel, for backends whose native format is not already our in-memory
// RGBA (e.g. a framebuffer with a 16-bit RGB565 layout). BitsPerPixel
// plus per-channel (Shift, Mask) pairs are enough to pack/unpack.
type ColorLayout struct {
	BitsPerPixel int
	RShift, RMask uint32
	GShift, GMask uint32
	BShift, BMask uint32
	AShift, AMask uint32
}

// RGBA565 is the common 16bpp layout used by small e-paper/LCD
// controllers that accept a grayscale-ramp source image pre-packed.
var RGBA565 = ColorLayout{
	BitsPerPixel: 16,
	RShift: 11, RMask: 0x1f,
	GShift: 5, GMask: 0x3f,
	BShift: 0, BMask: 0x1f,
}

// Pack encodes c according to the layout, returning the bits in the low
// BitsPerPixel bits of the result.
func (l ColorLayout) Pack(c RGBA) uint32 {
	r := uint32(c.R) * l.RMask / 255
	g := uint32(c.G) * l.GMask / 255
	b := uint32(c.B) * l.BMask / 255
	a := uint32(c.A) * l.AMask / 255
	return (r << l.RShift) | (g << l.GShift) | (b << l.BShift) | (a << l.AShift)
}

// ansiBase is the standard 16-color ANSI palette (dark 0-7, bright
// 8-15), the values 8-color SGR codes map onto.
var ansiBase = [16]RGBA{
	{0, 0, 0, 255}, {205, 0, 0, 255}, {0, 205, 0, 255}, {205, 205, 0, 255},
	{0, 0, 238, 255}, {205, 0, 205, 255}, {0, 205, 205, 255}, {229, 229, 229, 255},
	{127, 127, 127, 255}, {255, 0, 0, 255}, {0, 255, 0, 255}, {255, 255, 0, 255},
	{92, 92, 255, 255}, {255, 0, 255, 255}, {0, 255, 255, 255}, {255, 255, 255, 255},
}

// DefaultPalette builds the standard xterm 256-color palette: the 16
// ANSI base colors, a 6x6x6 color cube (indices 16-231), and a 24-step
// grayscale ramp (indices 232-255), the same layout terminal
// emulators conventionally expose for indexed SGR colors.
func DefaultPalette() *Palette {
	p := &Palette{}
	for i, c := range ansiBase {
		p.entries[i] = c
	}
	steps := [6]uint8{0, 95, 135, 175, 215, 255}
	idx := 16
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				p.entries[idx] = RGBA{R: steps[r], G: steps[g], B: steps[b], A: 255}
				idx++
			}
		}
	}
	for i := 0; i < 24; i++ {
		v := uint8(8 + i*10)
		p.entries[232+i] = RGBA{R: v, G: v, B: v, A: 255}
	}
	return p
}
