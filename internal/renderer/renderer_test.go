package renderer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inkterm/inkterm/internal/epaper"
	"github.com/inkterm/inkterm/internal/geometry"
	"github.com/inkterm/inkterm/internal/gfxcolor"
	"github.com/inkterm/inkterm/internal/glyph"
	"github.com/inkterm/inkterm/internal/matrix"
	"github.com/inkterm/inkterm/internal/memdisplay"
	"github.com/inkterm/inkterm/internal/style"
)

type fakeProvider struct{}

func (fakeProvider) Metrics(size int) glyph.Metrics {
	return glyph.Metrics{CellW: 8, CellH: 16, OriginY: 12}
}

func (fakeProvider) Render(codepoint rune, size int, monochrome bool, orientation int) *glyph.Bitmap {
	if codepoint == 0 {
		return nil
	}
	return &glyph.Bitmap{W: 4, H: 4, Stride: 4, Alpha: []uint8{
		255, 255, 255, 255,
		255, 255, 255, 255,
		255, 255, 255, 255,
		255, 255, 255, 255,
	}}
}

type fakeBackend struct {
	bounds      geometry.Rect
	unlockCalls int
	lastModes   []epaper.MaskOp
}

func (f *fakeBackend) DoLock() (geometry.Rect, error) { return f.bounds, nil }

func (f *fakeBackend) DoUnlock(requests []epaper.Request, composite []gfxcolor.RGBA, stride int) error {
	f.unlockCalls++
	f.lastModes = nil
	for _, r := range requests {
		f.lastModes = append(f.lastModes, r.Mode.Mask)
	}
	return nil
}

func newTestRenderer(t *testing.T) (*Renderer, *matrix.Matrix, *fakeBackend) {
	t.Helper()
	m := matrix.New(1, 1)
	be := &fakeBackend{bounds: geometry.NewRect(0, 0, 79, 47)}
	d := memdisplay.New(be, nil)
	palette := gfxcolor.NewPalette(make([]gfxcolor.RGBA, 16))
	r := New(m, d, fakeProvider{}, palette, nil)
	r.SetBackendBounds(80, 48)
	return r, m, be
}

func TestDrawResizesMatrixFromBackendBounds(t *testing.T) {
	r, m, _ := newTestRenderer(t)
	r.Draw(false, 0)
	require.Equal(t, 80/8, m.Cols())
	require.Equal(t, 48/16, m.Rows())
}

func TestDrawSingleCharacterCommitsDraftPass(t *testing.T) {
	r, m, be := newTestRenderer(t)
	r.Draw(false, 0) // establish geometry first

	m.Set('A', style.Default, geometry.Point{X: 1, Y: 1})
	r.Draw(false, 16)

	require.Equal(t, 1, be.unlockCalls)
	require.Contains(t, be.lastModes, epaper.SourceMono)
}

func TestNoPendingOutputProducesNoUnlockCall(t *testing.T) {
	r, _, be := newTestRenderer(t)
	r.Draw(false, 0) // geometry pass consumes the initial empty commit
	before := be.unlockCalls
	r.Draw(false, 16)
	require.Equal(t, before, be.unlockCalls, "no matrix changes means no draw work")
}

// a cell left untouched for at least redraw_timeout_high ms, with a
// draw() every frame, eventually promotes to high quality.
func TestEventualHighQualityPromotion(t *testing.T) {
	r, m, _ := newTestRenderer(t)
	r.Draw(false, 0)

	m.Set('A', style.Default, geometry.Point{X: 1, Y: 1})
	r.Draw(false, 16)
	require.True(t, r.metadata[0][0].lowQuality)
	require.False(t, r.metadata[0][0].highQuality)

	for ms := 0; ms < r.thresholds.RedrawTimeoutHighMs+100; ms += 100 {
		r.Draw(false, 100)
	}
	require.True(t, r.metadata[0][0].highQuality, "cell must eventually promote to high quality")
	require.False(t, r.metadata[0][0].lowQuality)
}

func TestRedrawMarksEveryCellDirty(t *testing.T) {
	r, _, be := newTestRenderer(t)
	r.Draw(false, 0)
	before := be.unlockCalls
	r.Draw(true, 16)
	require.Greater(t, be.unlockCalls, before, "redraw must force a full-screen commit")
}

func TestSetOrientationTogglesAndMarksGeometryDirty(t *testing.T) {
	r, _, _ := newTestRenderer(t)
	r.Draw(false, 0)
	r.geometryDirty = false
	r.SetOrientation(1)
	require.True(t, r.geometryDirty)
	require.Equal(t, 1, r.orientation)

	r.geometryDirty = false
	r.SetOrientation(1) // same value, no-op
	require.False(t, r.geometryDirty)
}
