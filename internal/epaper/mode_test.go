package epaper

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inkterm/inkterm/internal/geometry"
	"github.com/inkterm/inkterm/internal/gfxcolor"
)

// for every UpdateMode combination, for every (g_src, g_tar) pair,
// ApplyGray matches the derived table.
func TestApplyGrayMatchesTable(t *testing.T) {
	modes := []UpdateMode{
		{Identity, Full}, {Identity, Partial}, {Identity, SourceMono},
		{Identity, TargetMono}, {Identity, SourceAndTargetMono},
		{Invert, Full}, {ForceMono, Full}, {InvertAndForceMono, Full},
		{White, Full}, {White, Partial},
	}

	for _, mode := range modes {
		for gSrc := 0; gSrc <= 15; gSrc++ {
			for gTar := 0; gTar <= 15; gTar++ {
				got := ApplyGray(mode, gSrc, gTar)

				wantSrc := applyOutputOp(mode.Output, gSrc)
				want := wantSrc
				if masked(mode.Mask, wantSrc, gTar) {
					want = gTar
				}
				require.Equal(t, want, got, "mode=%+v gSrc=%d gTar=%d", mode, gSrc, gTar)
			}
		}
	}
}

func TestPartialMaskSameValueIsNoOp(t *testing.T) {
	require.Equal(t, 7, ApplyGray(UpdateMode{Identity, Partial}, 7, 7))
}

func TestSourceMonoSkipsMidTone(t *testing.T) {
	require.Equal(t, 9, ApplyGray(UpdateMode{Identity, SourceMono}, 8, 9), "mid-tone source is skipped, target kept")
	require.Equal(t, 0, ApplyGray(UpdateMode{Identity, SourceMono}, 0, 9), "pure-black source is not mid-tone")
	require.Equal(t, 15, ApplyGray(UpdateMode{Identity, SourceMono}, 15, 9), "pure-white source is not mid-tone")
}

func TestOtherwiseOutputsPostOutputOpSource(t *testing.T) {
	require.Equal(t, 15-5, ApplyGray(UpdateMode{Invert, Full}, 5, 3))
}

// with Identity/Partial, drawing the same image twice produces zero
// visible changes on the second commit.
func TestIdenticalPartialRedrawIsInvisible(t *testing.T) {
	b := NewEmulationBackend(nil, 2, 2)
	composite := make([]gfxcolor.RGBA, 4)
	for i := range composite {
		composite[i] = gfxcolor.RGBA{R: 200, G: 200, B: 200, A: 255}
	}
	req := []Request{{Rect: geometry.NewRect(0, 0, 1, 1), Mode: UpdateMode{Identity, Partial}}}

	require.NoError(t, b.DoUnlock(req, composite, 2))
	before, _ := b.Screen()
	snapshot := append([]gfxcolor.RGBA(nil), before...)

	require.NoError(t, b.DoUnlock(req, composite, 2))
	after, _ := b.Screen()
	require.Equal(t, snapshot, after)
}
