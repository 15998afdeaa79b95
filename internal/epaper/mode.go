// Package epaper implements the e-paper update-protocol semantics:
// translating a (source rect, UpdateMode) pair into a physical display
// update, shared verbatim by a hardware IOCTL backend and an in-memory
// emulation backend for development. The pattern — a command-sequence
// write followed by a busy-wait for a completion edge — is the usual
// shape of an e-paper panel driver, here generalized from SPI command
// bytes to a waveform/mask algebra.
package epaper

import "github.com/inkterm/inkterm/internal/gfxcolor"

// OutputOp transforms the source grayscale level before masking.
type OutputOp int

const (
	Identity OutputOp = iota
	Invert
	ForceMono
	InvertAndForceMono
	White
)

// MaskOp decides, per pixel, whether the transformed source replaces
// the target or the target is left alone.
type MaskOp int

const (
	Full MaskOp = iota
	SourceMono
	TargetMono
	SourceAndTargetMono
	Partial
)

// UpdateMode pairs an OutputOp and a MaskOp. The two are
// bitwise-combinable in principle, but only a handful of combinations
// are meaningful, so we keep them as two small enums rather than a
// single packed bitset — clearer call sites, same semantics.
type UpdateMode struct {
	Output OutputOp
	Mask   MaskOp
}

// grayscaleToRGBA maps a 4-bit grayscale level to its 16-level ramp
// RGBA value `{17k, 17k, 17k, 0xFF}`.
func grayscaleToRGBA(g int) gfxcolor.RGBA {
	v := uint8(17 * g)
	return gfxcolor.RGBA{R: v, G: v, B: v, A: 0xFF}
}

func midTone(g int) bool {
	return g > 0 && g < 15
}

// applyOutputOp computes g_src after the output transform.
func applyOutputOp(op OutputOp, gSrc int) int {
	switch op {
	case Invert:
		return 15 - gSrc
	case ForceMono:
		if gSrc > 7 {
			return 15
		}
		return 0
	case InvertAndForceMono:
		g := 15 - gSrc
		if g > 7 {
			return 15
		}
		return 0
	case White:
		return 15
	default:
		return gSrc
	}
}

// masked reports whether the mask op suppresses this pixel's update
// (the target value is kept instead of the transformed source).
func masked(op MaskOp, gSrc, gTar int) bool {
	switch op {
	case SourceMono:
		return midTone(gSrc)
	case TargetMono:
		return midTone(gTar)
	case SourceAndTargetMono:
		return midTone(gSrc) || midTone(gTar)
	case Partial:
		return gTar == gSrc
	default: // Full
		return false
	}
}

// Apply implements the per-pixel emulation algorithm that defines the
// update-protocol semantics: given the raw source and target pixels,
// returns the grayscale level that ends up on screen.
func Apply(mode UpdateMode, src, tar gfxcolor.RGBA) gfxcolor.RGBA {
	gSrc := src.Gray4()
	gTar := tar.Gray4()
	gSrc = applyOutputOp(mode.Output, gSrc)
	if masked(mode.Mask, gSrc, gTar) {
		return grayscaleToRGBA(gTar)
	}
	return grayscaleToRGBA(gSrc)
}

// ApplyGray is Apply's pure grayscale-level form, used directly by
// table-driven tests and anywhere a caller already has 4-bit levels
// instead of RGBA pixels.
func ApplyGray(mode UpdateMode, gSrc, gTar int) int {
	gSrc = applyOutputOp(mode.Output, gSrc)
	if masked(mode.Mask, gSrc, gTar) {
		return gTar
	}
	return gSrc
}
