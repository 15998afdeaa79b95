package memdisplay

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inkterm/inkterm/internal/epaper"
	"github.com/inkterm/inkterm/internal/geometry"
	"github.com/inkterm/inkterm/internal/gfxcolor"
)

type fakeBackend struct {
	bounds       geometry.Rect
	unlockCalls  int
	lastRequests []epaper.Request
	lastComposite []gfxcolor.RGBA
	lastStride   int
}

func (f *fakeBackend) DoLock() (geometry.Rect, error) { return f.bounds, nil }

func (f *fakeBackend) DoUnlock(requests []epaper.Request, composite []gfxcolor.RGBA, stride int) error {
	f.unlockCalls++
	f.lastRequests = append([]epaper.Request(nil), requests...)
	f.lastComposite = append([]gfxcolor.RGBA(nil), composite...)
	f.lastStride = stride
	return nil
}

func TestLockUnlockOnlyTouchesBackendOnceAtOuterLevel(t *testing.T) {
	be := &fakeBackend{bounds: geometry.NewRect(0, 0, 3, 3)}
	d := New(be, nil)

	surface := d.Lock()
	require.Equal(t, geometry.NewRect(0, 0, 3, 3), surface)

	d.Lock() // nested
	d.Commit(geometry.Rect{}, epaper.UpdateMode{Output: epaper.Identity, Mask: epaper.Full})
	d.Unlock() // inner, must not call backend yet
	require.Equal(t, 0, be.unlockCalls)

	d.Unlock() // outer
	require.Equal(t, 1, be.unlockCalls)
}

func TestCommitWithoutRectUsesFullSurface(t *testing.T) {
	be := &fakeBackend{bounds: geometry.NewRect(0, 0, 1, 1)}
	d := New(be, nil)
	d.Lock()
	d.Commit(geometry.Rect{}, epaper.UpdateMode{})
	d.Unlock()
	require.Len(t, be.lastRequests, 1)
	require.Equal(t, geometry.NewRect(0, 0, 1, 1), be.lastRequests[0].Rect)
}

// the composite buffer matches the documented alpha-blend formula.
func TestComposeMatchesFormula(t *testing.T) {
	be := &fakeBackend{bounds: geometry.NewRect(0, 0, 1, 1)}
	d := New(be, nil)
	d.Lock()

	bg := gfxcolor.RGBA{R: 100, G: 150, B: 200, A: 255}
	d.Fill(Background, bg, geometry.NewRect(0, 0, 1, 1))

	mask := []uint8{200, 200, 200, 200}
	fg := gfxcolor.RGBA{R: 10, G: 20, B: 30, A: 255}
	d.Blit(Presentation, fg, mask, 2, geometry.NewRect(0, 0, 1, 1), Write)

	d.Commit(geometry.Rect{}, epaper.UpdateMode{})
	d.Unlock()

	require.Equal(t, 1, be.unlockCalls)
	pr := gfxcolor.RGBA{
		R: uint8(uint32(fg.R) * 200 / 255),
		G: uint8(uint32(fg.G) * 200 / 255),
		B: uint8(uint32(fg.B) * 200 / 255),
		A: 200,
	}
	inv := uint32(255 - pr.A)
	want := gfxcolor.RGBA{
		R: uint8(uint32(bg.R)*inv/255 + uint32(pr.R)),
		G: uint8(uint32(bg.G)*inv/255 + uint32(pr.G)),
		B: uint8(uint32(bg.B)*inv/255 + uint32(pr.B)),
		A: 255,
	}
	for _, p := range be.lastComposite {
		require.Equal(t, want, p)
	}
}

func TestResizePreservesOverlapAndZeroFillsRest(t *testing.T) {
	be := &fakeBackend{bounds: geometry.NewRect(0, 0, 1, 1)}
	d := New(be, nil)
	d.Lock()
	d.Fill(Background, gfxcolor.RGBA{R: 9, A: 255}, geometry.NewRect(0, 0, 1, 1))
	d.Unlock()

	be.bounds = geometry.NewRect(0, 0, 3, 3)
	d.Lock()
	pixels, stride, w, h := d.Composite()
	_ = pixels
	require.Equal(t, 4, w)
	require.Equal(t, 4, h)
	require.GreaterOrEqual(t, stride, w)
	// the old 2x2 area keeps its fill, the newly exposed area is zero
	require.Equal(t, gfxcolor.RGBA{R: 9, A: 255}, d.background[0])
	require.Equal(t, gfxcolor.RGBA{R: 9, A: 255}, d.background[1*stride+1])
	require.Equal(t, gfxcolor.RGBA{}, d.background[2])
	require.Equal(t, gfxcolor.RGBA{}, d.background[3*stride+3])
	d.Unlock()
}
