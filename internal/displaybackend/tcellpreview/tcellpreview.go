// Package tcellpreview is a concrete epaper.Backend implementation,
// alongside the in-memory emulation and hardware backends: it
// renders the MemoryDisplay composite buffer into a real ANSI
// terminal using tcell, shading each screen "pixel" with a 16-level
// grayscale gradient table, for developers who want to watch the
// e-paper emulation without a framebuffer.
package tcellpreview

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/inkterm/inkterm/internal/epaper"
	"github.com/inkterm/inkterm/internal/geometry"
	"github.com/inkterm/inkterm/internal/gfxcolor"
)

// halfBlock is used as the rendered glyph for every pixel pair; the
// upper half takes the even row's color as foreground, the odd row's
// as background, compressing two source rows into one terminal row.
const halfBlock = '▀'

// Backend renders composite buffer updates onto a tcell.Screen, two
// source pixel rows per terminal cell. It implements epaper.Backend so
// cmd/inkterm can select it in place of the emulation or hardware
// backend via --display-backend=tcell.
type Backend struct {
	log      *zap.Logger
	screen   tcell.Screen
	w, h     int
	gradient []tcell.Color
}

// Open initializes a new tcell screen sized from the terminal's
// current dimensions (each terminal row covers two emulated display
// pixel rows), builds the 16-level grayscale gradient table, and
// returns a ready Backend.
func Open(log *zap.Logger) (*Backend, error) {
	if log == nil {
		log = zap.NewNop()
	}
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("tcellpreview: new screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("tcellpreview: init screen: %w", err)
	}
	screen.Clear()

	cols, rows := screen.Size()
	b := &Backend{
		log:      log,
		screen:   screen,
		w:        cols,
		h:        rows * 2,
		gradient: buildGradient(),
	}
	return b, nil
}

func buildGradient() []tcell.Color {
	g := make([]tcell.Color, 16)
	for i := range g {
		v := int32(17 * i)
		g[i] = tcell.NewRGBColor(v, v, v)
	}
	return g
}

// Close tears down the tcell screen.
func (b *Backend) Close() { b.screen.Fini() }

// DoLock returns the emulated display bounds derived from the
// terminal's current size; tcell screens never fail to acquire.
func (b *Backend) DoLock() (geometry.Rect, error) {
	return geometry.NewRect(0, 0, b.w-1, b.h-1), nil
}

// DoUnlock paints every request's rect onto the tcell screen, running
// epaper.Apply against the screen's current grayscale state: tcell
// itself is the target surface, so Apply's target read is reconstructed
// from what was last painted via screenPixel.
func (b *Backend) DoUnlock(requests []epaper.Request, composite []gfxcolor.RGBA, stride int) error {
	for _, req := range requests {
		rect := req.Rect
		for y := rect.Y0; y <= rect.Y1; y++ {
			if y < 0 || y >= b.h {
				continue
			}
			for x := rect.X0; x <= rect.X1; x++ {
				if x < 0 || x >= b.w {
					continue
				}
				src := composite[y*stride+x]
				tar := b.screenPixel(x, y)
				out := epaper.Apply(req.Mode, src, tar)
				b.setPixel(x, y, out)
			}
		}
	}
	b.screen.Show()
	return nil
}

// screenPixel reconstructs the grayscale level last painted at (x,y)
// by reading the half-block cell's corresponding fg/bg color back out
// of tcell's content buffer.
func (b *Backend) screenPixel(x, y int) gfxcolor.RGBA {
	row := y / 2
	mainc, _, style, _ := b.screen.GetContent(x, row)
	fg, bg, _ := style.Decompose()
	var c tcell.Color
	if mainc == halfBlock {
		if y%2 == 0 {
			c = fg
		} else {
			c = bg
		}
	} else {
		c = bg
	}
	r, g, bl := c.RGB()
	return gfxcolor.RGBA{R: uint8(r), G: uint8(g), B: uint8(bl), A: 255}
}

// setPixel writes a grayscale RGBA pixel at (x,y) into the half-block
// cell at (x, y/2), updating only the half (fg for even rows, bg for
// odd) that corresponds to this source row.
func (b *Backend) setPixel(x, y int, c gfxcolor.RGBA) {
	row := y / 2
	level := c.Gray4()
	color := b.gradient[level]

	mainc, _, style, _ := b.screen.GetContent(x, row)
	fg, bg, _ := style.Decompose()
	if mainc != halfBlock {
		fg, bg = color, color
	}
	if y%2 == 0 {
		fg = color
	} else {
		bg = color
	}
	b.screen.SetContent(x, row, halfBlock, nil, tcell.StyleDefault.Foreground(fg).Background(bg))
}

// PollEvent exposes the underlying tcell screen's event channel for
// callers that want to forward key/resize events into the eventloop
// Source interface.
func (b *Backend) PollEvent() tcell.Event { return b.screen.PollEvent() }
