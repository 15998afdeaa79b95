// Package memdisplay implements the layered, scoped-lock drawing
// surface with deferred batched commit: a background layer and a
// presentation layer composited into a single buffer on unlock and
// handed to a Backend. Lock/unlock nest through an integer counter
// guarded by a plain mutex rather than a recursive mutex.
package memdisplay

import (
	"sync"

	"go.uber.org/zap"

	"github.com/inkterm/inkterm/internal/epaper"
	"github.com/inkterm/inkterm/internal/geometry"
	"github.com/inkterm/inkterm/internal/gfxcolor"
)

// Layer selects one of the two drawable RGBA planes.
type Layer int

const (
	Background Layer = iota
	Presentation
)

// DrawMode selects how Blit combines mask alpha with the destination.
type DrawMode int

const (
	Write DrawMode = iota
	Erase
)

// Display is the layered compositor: background + presentation,
// composited into a single composite buffer on unlock and handed to a
// Backend. Lock/unlock are reentrant through an integer counter guarded
// by mu; callers are trusted to only reenter from the thread that
// already holds the lock, matching the single-owner event loop that
// drives every Display in this process.
type Display struct {
	mu        sync.Mutex
	lockCount int

	backend epaper.Backend
	log     *zap.Logger

	w, h, stride int
	origin       geometry.Point // display-coordinate origin from the last DoLock

	background   []gfxcolor.RGBA
	presentation []gfxcolor.RGBA
	composite    []gfxcolor.RGBA

	queue []epaper.Request
}

// New builds a Display around backend. The surface is empty until the
// first Lock call obtains real geometry.
func New(backend epaper.Backend, log *zap.Logger) *Display {
	if log == nil {
		log = zap.NewNop()
	}
	return &Display{backend: backend, log: log}
}

// strideFor pads width to a 16-byte row alignment, expressed in pixels
// (4 bytes each).
func strideFor(w int) int {
	bytes := w * 4
	padded := (bytes + 15) / 16 * 16
	return padded / 4
}

// Lock blocks until the surface is available, obtaining the physical
// display rectangle from the backend on the outermost 0->1 transition,
// then returns the surface rectangle in local (0-based) coordinates.
func (d *Display) Lock() geometry.Rect {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.lockCount++
	if d.lockCount == 1 {
		rect, err := d.backend.DoLock()
		if err != nil {
			d.log.Warn("memdisplay: do_lock failed, treating as empty surface", zap.Error(err))
			rect = geometry.Invalid
		}
		d.resizeIfNeeded(rect)
	}
	return d.surfaceRectLocked()
}

func (d *Display) surfaceRectLocked() geometry.Rect {
	if d.w == 0 || d.h == 0 {
		return geometry.Invalid
	}
	return geometry.NewRect(0, 0, d.w-1, d.h-1)
}

// resizeIfNeeded reallocates the three buffers when the backend's
// geometry changed, preserving the common overlap and zero-filling the
// rest.
func (d *Display) resizeIfNeeded(rect geometry.Rect) {
	w, h := rect.Width(), rect.Height()
	if w == d.w && h == d.h && w != 0 {
		d.origin = geometry.Point{X: rect.X0, Y: rect.Y0}
		return
	}
	stride := strideFor(w)
	bg := make([]gfxcolor.RGBA, stride*h)
	pr := make([]gfxcolor.RGBA, stride*h)
	co := make([]gfxcolor.RGBA, stride*h)

	minW, minH := min(w, d.w), min(h, d.h)
	if minW > 0 && minH > 0 {
		for y := 0; y < minH; y++ {
			copy(bg[y*stride:y*stride+minW], d.background[y*d.stride:y*d.stride+minW])
			copy(pr[y*stride:y*stride+minW], d.presentation[y*d.stride:y*d.stride+minW])
			copy(co[y*stride:y*stride+minW], d.composite[y*d.stride:y*d.stride+minW])
		}
	}

	d.w, d.h, d.stride = w, h, stride
	d.background, d.presentation, d.composite = bg, pr, co
	if rect.Valid() {
		d.origin = geometry.Point{X: rect.X0, Y: rect.Y0}
	}
}

// Unlock releases one level of the lock; on the outermost 1->0
// transition it composes every queued commit rect, translates it to
// display coordinates, and calls the backend's DoUnlock exactly once.
func (d *Display) Unlock() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.lockCount--
	if d.lockCount != 0 {
		return
	}

	for _, req := range d.queue {
		d.composeLocked(req.Rect)
	}

	translated := make([]epaper.Request, len(d.queue))
	for i, req := range d.queue {
		translated[i] = epaper.Request{
			Rect: req.Rect.Translate(d.origin),
			Mode: req.Mode,
		}
	}
	d.queue = d.queue[:0]

	if err := d.backend.DoUnlock(translated, d.composite, d.stride); err != nil {
		d.log.Warn("memdisplay: do_unlock failed", zap.Error(err))
	}
}

// Commit enqueues a commit request. Valid only while locked; an empty
// (invalid) rect is replaced by the full surface.
func (d *Display) Commit(rect geometry.Rect, mode epaper.UpdateMode) {
	d.mu.Lock()
	defer d.mu.Unlock()

	surface := d.surfaceRectLocked()
	rect = rect.Clip(surface)
	if !rect.Valid() {
		rect = surface
	}
	if !rect.Valid() {
		return
	}
	d.queue = append(d.queue, epaper.Request{Rect: rect, Mode: mode})
}

func (d *Display) layerBuf(l Layer) []gfxcolor.RGBA {
	if l == Background {
		return d.background
	}
	return d.presentation
}

// Fill clips rect to the surface and stamps the premultiplied color
// over every pixel of layer within it.
func (d *Display) Fill(layer Layer, c gfxcolor.RGBA, rect geometry.Rect) {
	d.mu.Lock()
	defer d.mu.Unlock()

	rect = rect.Clip(d.surfaceRectLocked())
	if !rect.Valid() {
		return
	}
	pm := c.Premultiply()
	buf := d.layerBuf(layer)
	for y := rect.Y0; y <= rect.Y1; y++ {
		row := buf[y*d.stride : y*d.stride+d.stride]
		for x := rect.X0; x <= rect.X1; x++ {
			row[x] = pm
		}
	}
}

// bayer4x4 is the standard ordered-dithering threshold matrix, values
// 0-15 scaled so that thresholding against a grayscale level g yields a
// white-pixel fraction of approximately g/15.
var bayer4x4 = [4][4]int{
	{0, 8, 2, 10},
	{12, 4, 14, 6},
	{3, 11, 1, 9},
	{15, 7, 13, 5},
}

// FillDither writes a binary (black/white, opaque) ordered-dithering
// pattern approximating grayscale level g (0-15) over rect.
func (d *Display) FillDither(layer Layer, g int, rect geometry.Rect) {
	d.mu.Lock()
	defer d.mu.Unlock()

	rect = rect.Clip(d.surfaceRectLocked())
	if !rect.Valid() {
		return
	}
	buf := d.layerBuf(layer)
	white := gfxcolor.RGBA{R: 255, G: 255, B: 255, A: 255}
	black := gfxcolor.RGBA{A: 255}
	for y := rect.Y0; y <= rect.Y1; y++ {
		row := buf[y*d.stride : y*d.stride+d.stride]
		for x := rect.X0; x <= rect.X1; x++ {
			if bayer4x4[y%4][x%4] < g {
				row[x] = white
			} else {
				row[x] = black
			}
		}
	}
}

// Blit stamps color through an 8-bit alpha mask (maskStride pixels per
// row, indexed relative to rect's upper-left corner) onto layer within
// rect. In Write mode, pixels with a>0 store the premultiplied color;
// in Erase mode, pixels with a>0 are zeroed.
func (d *Display) Blit(layer Layer, color gfxcolor.RGBA, mask []uint8, maskStride int, rect geometry.Rect, mode DrawMode) {
	d.mu.Lock()
	defer d.mu.Unlock()

	clipped := rect.Clip(d.surfaceRectLocked())
	if !clipped.Valid() {
		return
	}
	buf := d.layerBuf(layer)
	for y := clipped.Y0; y <= clipped.Y1; y++ {
		my := y - rect.Y0
		for x := clipped.X0; x <= clipped.X1; x++ {
			mx := x - rect.X0
			a := mask[my*maskStride+mx]
			if a == 0 {
				continue
			}
			idx := y*d.stride + x
			if mode == Erase {
				buf[idx] = gfxcolor.RGBA{}
				continue
			}
			buf[idx] = gfxcolor.RGBA{
				R: uint8(uint32(color.R) * uint32(a) / 255),
				G: uint8(uint32(color.G) * uint32(a) / 255),
				B: uint8(uint32(color.B) * uint32(a) / 255),
				A: a,
			}
		}
	}
}

// composeLocked computes composite[p] = bg*(255-a)/255 + pr (premultiplied
// presentation over opaque background), for every pixel in rect. Caller
// must hold mu.
func (d *Display) composeLocked(rect geometry.Rect) {
	rect = rect.Clip(d.surfaceRectLocked())
	if !rect.Valid() {
		return
	}
	for y := rect.Y0; y <= rect.Y1; y++ {
		base := y * d.stride
		for x := rect.X0; x <= rect.X1; x++ {
			idx := base + x
			bg := d.background[idx]
			pr := d.presentation[idx]
			inv := 255 - uint32(pr.A)
			d.composite[idx] = gfxcolor.RGBA{
				R: uint8(uint32(bg.R)*inv/255 + uint32(pr.R)),
				G: uint8(uint32(bg.G)*inv/255 + uint32(pr.G)),
				B: uint8(uint32(bg.B)*inv/255 + uint32(pr.B)),
				A: 255,
			}
		}
	}
}

// Stride reports the current row stride in pixels.
func (d *Display) Stride() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stride
}

// Composite returns the composite buffer and stride, for read-only
// consumers (the debug HTTP frame endpoint and preview stream).
func (d *Display) Composite() (pixels []gfxcolor.RGBA, stride, w, h int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.composite, d.stride, d.w, d.h
}
