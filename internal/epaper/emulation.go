package epaper

import (
	"go.uber.org/zap"

	"github.com/inkterm/inkterm/internal/geometry"
	"github.com/inkterm/inkterm/internal/gfxcolor"
)

// EmulationBackend is the development Backend: it keeps its own
// grayscale "screen" buffer in memory and runs the exact per-pixel
// algorithm from §4.5 against it, rather than talking to hardware.
// Anything reading this buffer afterwards through Screen sees
// precisely what a physical panel would show.
type EmulationBackend struct {
	log    *zap.Logger
	bounds geometry.Rect
	screen []gfxcolor.RGBA // bounds.Width() * bounds.Height(), row-major
}

// NewEmulationBackend builds an emulation backend of the given display
// size, initialized to white (grayscale level 15), matching a freshly
// cleared e-paper panel.
func NewEmulationBackend(log *zap.Logger, w, h int) *EmulationBackend {
	if log == nil {
		log = zap.NewNop()
	}
	b := &EmulationBackend{
		log:    log,
		bounds: geometry.NewRect(0, 0, w-1, h-1),
		screen: make([]gfxcolor.RGBA, w*h),
	}
	white := grayscaleToRGBA(15)
	for i := range b.screen {
		b.screen[i] = white
	}
	return b
}

// DoLock returns the fixed emulated display bounds; it never fails and
// never blocks, unlike a real panel waiting on a hardware mutex.
func (b *EmulationBackend) DoLock() (geometry.Rect, error) {
	return b.bounds, nil
}

// DoUnlock applies every request's UpdateMode against the emulated
// screen buffer using Apply, reading the source from composite (laid
// out with the given stride) and the target from the current screen
// state.
func (b *EmulationBackend) DoUnlock(requests []Request, composite []gfxcolor.RGBA, stride int) error {
	w := b.bounds.Width()
	for _, req := range requests {
		rect := req.Rect.Clip(b.bounds)
		if !rect.Valid() {
			continue
		}
		for y := rect.Y0; y <= rect.Y1; y++ {
			for x := rect.X0; x <= rect.X1; x++ {
				src := composite[y*stride+x]
				idx := y*w + x
				b.screen[idx] = Apply(req.Mode, src, b.screen[idx])
			}
		}
	}
	b.log.Debug("epaper emulation applied commit batch", zap.Int("requests", len(requests)))
	return nil
}

// Screen exposes the emulated on-screen buffer read-only, with its
// stride in pixels.
func (b *EmulationBackend) Screen() (pixels []gfxcolor.RGBA, stride int) {
	return b.screen, b.bounds.Width()
}

// Bounds reports the emulated display's fixed size.
func (b *EmulationBackend) Bounds() geometry.Rect {
	return b.bounds
}
