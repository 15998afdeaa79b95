package epaper

import (
	"github.com/inkterm/inkterm/internal/geometry"
	"github.com/inkterm/inkterm/internal/gfxcolor"
)

// Request is one queued commit from MemoryDisplay.unlock: a display
// rectangle plus the UpdateMode it should be committed with.
type Request struct {
	Rect geometry.Rect
	Mode UpdateMode
}

// Backend is the display backend interface: DoLock returns the
// physical display rectangle (display coordinates), possibly blocking
// until a surface is available; later geometry changes are only
// observed on the next DoLock call. DoUnlock blits every queued
// request from the composite buffer to the physical display, honoring
// each request's UpdateMode, and blocks until the hardware confirms
// completion.
type Backend interface {
	DoLock() (geometry.Rect, error)
	DoUnlock(requests []Request, composite []gfxcolor.RGBA, stride int) error
}
