// Package renderer drains Matrix commits and turns them into
// MemoryDisplay draws under an e-paper-appropriate two-pass
// (draft, then promote) update policy: a fast low-quality pass draws
// every dirty cell immediately, while a slower high-quality pass
// revisits cells that have gone stale for long enough to deserve a
// clean redraw.
package renderer

import (
	"go.uber.org/zap"

	"github.com/inkterm/inkterm/internal/epaper"
	"github.com/inkterm/inkterm/internal/geometry"
	"github.com/inkterm/inkterm/internal/gfxcolor"
	"github.com/inkterm/inkterm/internal/glyph"
	"github.com/inkterm/inkterm/internal/matrix"
	"github.com/inkterm/inkterm/internal/memdisplay"
	"github.com/inkterm/inkterm/internal/rectmerge"
)

// Thresholds holds the overdue-detection base values. These are
// configuration knobs, not constants, and may be hot-reloaded via
// SetThresholds.
type Thresholds struct {
	RedrawTimeoutHighMs int
	RedrawTimeoutLowMs  int
	CounterThresholdHigh int
	CounterThresholdLow  int
}

// DefaultThresholds are the renderer's out-of-the-box overdue-detection
// base values.
var DefaultThresholds = Thresholds{
	RedrawTimeoutHighMs:  1000,
	RedrawTimeoutLowMs:   250,
	CounterThresholdHigh: 2000,
	CounterThresholdLow:  1000,
}

// cellMeta is the per-cell bookkeeping the draw pass protocol
// maintains. onScreen is what's actually drawn on the display right
// now (used to erase before redrawing); pending is the latest cell
// value ingested from a Matrix commit, carried forward across frames
// until a pass actually draws it, at which point onScreen catches up.
type cellMeta struct {
	onScreen         matrix.Cell
	pending          matrix.Cell
	lastUpdateMs     int
	operationCounter int
	lowQuality       bool
	highQuality      bool
	dirty            bool
	overdue          bool
}

// Renderer is the MatrixRenderer. It owns a reference to the Matrix it
// drains (so it can resize it on geometry change) and to the
// MemoryDisplay it draws into.
type Renderer struct {
	log *zap.Logger

	mtx     *matrix.Matrix
	display *memdisplay.Display
	merger  *rectmerge.Merger
	glyphs  glyph.Provider
	palette *gfxcolor.Palette

	thresholds   Thresholds
	brightOnBold bool
	fontSize     int
	defaultFg    gfxcolor.RGBA
	defaultBg    gfxcolor.RGBA

	backendW, backendH int
	orientation        int
	geometryDirty      bool

	cols, rows         int
	cellW, cellH       int
	originY            int
	padX, padY         int

	metadata     [][]cellMeta
	updateBounds geometry.Rect // cell coordinates, 0-based
}

// New builds a Renderer with its own RectangleMerger at
// rectmerge.DefaultWasteRatio. palette and provider must be non-nil.
func New(mtx *matrix.Matrix, display *memdisplay.Display, provider glyph.Provider, palette *gfxcolor.Palette, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{
		log:          log,
		mtx:          mtx,
		display:      display,
		merger:       rectmerge.New(rectmerge.DefaultWasteRatio),
		glyphs:       provider,
		palette:      palette,
		thresholds:   DefaultThresholds,
		fontSize:     13,
		defaultFg:    gfxcolor.RGBA{R: 0, G: 0, B: 0, A: 255},
		defaultBg:    gfxcolor.RGBA{R: 255, G: 255, B: 255, A: 255},
		updateBounds: geometry.Invalid,
	}
}

// SetThresholds replaces the overdue-detection base thresholds
// (config hot-reload path).
func (r *Renderer) SetThresholds(t Thresholds) { r.thresholds = t }

// SetBrightOnBold toggles the bright-on-bold color rule (config
// hot-reload path).
func (r *Renderer) SetBrightOnBold(v bool) { r.brightOnBold = v }

// SetWasteRatio forwards to the internal RectangleMerger (config
// hot-reload path).
func (r *Renderer) SetWasteRatio(ratio float64) { r.merger.SetWasteRatio(ratio) }

// QualityStats is a point-in-time census of per-cell metadata,
// exposed for introspection (internal/httpapi's /status endpoint).
type QualityStats struct {
	Cols, Rows  int
	LowQuality  int
	HighQuality int
	Dirty       int
	Overdue     int
}

// Stats reports QualityStats for the current geometry.
func (r *Renderer) Stats() QualityStats {
	s := QualityStats{Cols: r.cols, Rows: r.rows}
	for _, row := range r.metadata {
		for _, c := range row {
			if c.lowQuality {
				s.LowQuality++
			}
			if c.highQuality {
				s.HighQuality++
			}
			if c.dirty {
				s.Dirty++
			}
			if c.overdue {
				s.Overdue++
			}
		}
	}
	return s
}

// SetDefaultColors configures the RGBA substituted when a cell's style
// carries default_fg/default_bg.
func (r *Renderer) SetDefaultColors(fg, bg gfxcolor.RGBA) {
	r.defaultFg, r.defaultBg = fg, bg
}

// SetBackendBounds records the display backend's pixel geometry,
// marking the renderer's own geometry dirty if it changed.
func (r *Renderer) SetBackendBounds(w, h int) {
	if w == r.backendW && h == r.backendH {
		return
	}
	r.backendW, r.backendH = w, h
	r.geometryDirty = true
}

// SetFontSize updates the point size passed to the glyph provider,
// marking geometry dirty.
func (r *Renderer) SetFontSize(size int) {
	if size == r.fontSize {
		return
	}
	r.fontSize = size
	r.geometryDirty = true
}

// SetOrientation rotates the display mod 4. If it actually changes,
// both layers are cleared (background to black, presentation to fully
// transparent) across the current surface and geometry is marked
// dirty so the next Draw recomputes cols/rows/padding for the new
// rotation.
func (r *Renderer) SetOrientation(o int) {
	o = ((o % 4) + 4) % 4
	if o == r.orientation {
		return
	}
	rect := r.display.Lock()
	if rect.Valid() {
		r.display.Fill(memdisplay.Background, gfxcolor.RGBA{A: 255}, rect)
		r.display.Fill(memdisplay.Presentation, gfxcolor.RGBA{}, rect)
		r.display.Commit(rect, epaper.UpdateMode{Output: epaper.Identity, Mask: epaper.Full})
	}
	r.display.Unlock()

	r.orientation = o
	r.geometryDirty = true
}

// cellOrigin maps a (col, row) cell to its upper-left pixel in backend
// coordinates, applying the orientation mapping: odd orientations swap
// axes, orientations 2/3 additionally mirror within the backend bounds.
func (r *Renderer) cellOrigin(col, row int) (x, y int) {
	cx := r.padX + col*r.cellW
	cy := r.padY + row*r.cellH
	switch r.orientation {
	case 0:
		return cx, cy
	case 1:
		return cy, cx
	case 2:
		return r.backendW - r.cellW - cx, r.backendH - r.cellH - cy
	default: // 3
		return r.backendH - r.cellH - cy, r.backendW - r.cellW - cx
	}
}

// handleGeometryChange recomputes cols/rows/padding from the current
// backend bounds and font metrics, resizes the Matrix, and
// reallocates per-cell metadata.
func (r *Renderer) handleGeometryChange() {
	if !r.geometryDirty {
		return
	}
	m := r.glyphs.Metrics(r.fontSize)
	r.cellW, r.cellH, r.originY = m.CellW, m.CellH, m.OriginY
	if r.cellW <= 0 {
		r.cellW = 1
	}
	if r.cellH <= 0 {
		r.cellH = 1
	}

	r.cols = r.backendW / r.cellW
	r.rows = r.backendH / r.cellH
	r.padX = (r.backendW - r.cols*r.cellW) / 2
	r.padY = (r.backendH - r.rows*r.cellH) / 2

	r.mtx.Resize(r.cols, r.rows)

	r.metadata = make([][]cellMeta, r.rows)
	for y := range r.metadata {
		r.metadata[y] = make([]cellMeta, r.cols)
	}
	r.updateBounds = geometry.Invalid
	r.geometryDirty = false
}

func (r *Renderer) fullBounds() geometry.Rect {
	if r.cols == 0 || r.rows == 0 {
		return geometry.Invalid
	}
	return geometry.NewRect(0, 0, r.cols-1, r.rows-1)
}

// Draw runs one iteration of the draw pass protocol. dtMs is the
// number of milliseconds elapsed since the previous call.
func (r *Renderer) Draw(redraw bool, dtMs int) {
	r.handleGeometryChange()
	if r.cols == 0 || r.rows == 0 {
		return
	}

	if redraw {
		r.updateBounds = r.fullBounds()
		for y := range r.metadata {
			for x := range r.metadata[y] {
				r.metadata[y][x].dirty = true
			}
		}
	}

	for y := range r.metadata {
		for x := range r.metadata[y] {
			r.metadata[y][x].lastUpdateMs += dtMs
		}
	}

	for _, u := range r.mtx.Commit() {
		x, y := u.Pos.X-1, u.Pos.Y-1
		if y < 0 || y >= r.rows || x < 0 || x >= r.cols {
			continue
		}
		r.metadata[y][x].dirty = true
		r.metadata[y][x].pending = u.Current
		r.updateBounds = r.updateBounds.GrowPoint(geometry.Point{X: x, Y: y})
	}

	r.detectOverdue()

	if !r.updateBounds.Valid() {
		return
	}

	for y := range r.metadata {
		for x := range r.metadata[y] {
			r.metadata[y][x].operationCounter++
		}
	}

	r.display.Lock()

	r.passA()
	r.merger.Merge()
	for _, rect := range r.merger.Begin() {
		r.display.Commit(rect, epaper.UpdateMode{Output: epaper.Identity, Mask: epaper.SourceMono})
	}
	r.merger.Reset()

	r.passB()
	r.merger.Merge()
	for _, rect := range r.merger.Begin() {
		r.display.Commit(rect, epaper.UpdateMode{Output: epaper.Identity, Mask: epaper.Partial})
	}
	r.merger.Reset()

	r.display.Unlock()
	r.updateBounds = geometry.Invalid
}

// detectOverdue tightens the base thresholds globally if any cell has
// drifted past the high watermark, and folds the bounds of any cell
// meeting the (now possibly tightened) overdue criterion into
// update_bounds. Without this, a cell that goes overdue purely by
// elapsed time/counter with no fresh write would never be visited by
// Pass B, so it would never reach high quality.
func (r *Renderer) detectOverdue() {
	counterThreshold := r.thresholds.CounterThresholdHigh
	timeoutThreshold := r.thresholds.RedrawTimeoutHighMs
	for _, row := range r.metadata {
		for _, c := range row {
			if c.operationCounter > r.thresholds.CounterThresholdHigh {
				counterThreshold = r.thresholds.CounterThresholdLow
			}
			if c.lowQuality && c.lastUpdateMs > r.thresholds.RedrawTimeoutHighMs {
				timeoutThreshold = r.thresholds.RedrawTimeoutLowMs
			}
		}
	}

	for y, row := range r.metadata {
		for x, c := range row {
			overdue := c.operationCounter >= counterThreshold ||
				(c.lowQuality && c.lastUpdateMs >= timeoutThreshold)
			if overdue {
				r.metadata[y][x].overdue = true
				r.updateBounds = r.updateBounds.GrowPoint(geometry.Point{X: x, Y: y})
			}
		}
	}
}

func (r *Renderer) passA() {
	b := r.updateBounds
	for y := b.Y0; y <= b.Y1; y++ {
		for x := b.X0; x <= b.X1; x++ {
			meta := &r.metadata[y][x]
			if !meta.dirty {
				continue
			}
			rectOld := r.drawCell(x, y, meta.onScreen, true, !meta.highQuality)
			rectNew := r.drawCell(x, y, meta.pending, false, true)
			r.merger.Insert(rectOld.GrowRect(rectNew))

			meta.onScreen = meta.pending
			meta.lastUpdateMs = 0
			meta.operationCounter = 0
			meta.lowQuality = true
			meta.highQuality = false
			meta.dirty = false
			meta.overdue = false
		}
	}
}

func (r *Renderer) passB() {
	b := r.updateBounds
	for y := b.Y0; y <= b.Y1; y++ {
		for x := b.X0; x <= b.X1; x++ {
			meta := &r.metadata[y][x]
			if !meta.overdue {
				continue
			}
			rectOld := r.drawCell(x, y, meta.onScreen, true, meta.lowQuality)
			rectNew := r.drawCell(x, y, meta.pending, false, false)
			r.merger.Insert(rectOld.GrowRect(rectNew))

			meta.onScreen = meta.pending
			meta.lastUpdateMs = 0
			meta.operationCounter = 0
			meta.lowQuality = false
			meta.highQuality = true
			meta.overdue = false
			meta.dirty = false
		}
	}
}
