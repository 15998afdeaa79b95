// Package matrix implements the logical terminal cell grid: dirty
// tracking, cursor bookkeeping, the primary/alternate buffer swap, and
// the commit step that emits a minimal diff. It tracks dirty state
// per cell, exposes a snapshot-style commit that resets that state,
// and resizes its buffer geometry while preserving the common
// sub-grid. Matrix is single-owner/single-threaded: it carries no
// mutex of its own and callers serialize access themselves (the event
// loop thread).
package matrix

import (
	"github.com/inkterm/inkterm/internal/geometry"
	"github.com/inkterm/inkterm/internal/style"
)

// Update is one reported change from Commit: the cell position plus its
// new and previous contents.
type Update struct {
	Pos     geometry.Point
	Current Cell
	Old     Cell
}

// Matrix is the logical character grid. Addressing through the exported
// API is 1-based (col, row) from the upper-left; internal storage is
// 0-based.
type Matrix struct {
	cols, rows int

	current [][]Cell // rows x cols, 0-based
	old     [][]Cell
	alt     [][]Cell
	altActive bool

	pos              geometry.Point // 1-based (col, row)
	posLast          geometry.Point
	posOld           geometry.Point
	cursorVisible    bool
	cursorVisibleOld bool

	updateBounds geometry.Rect // 0-based cell coordinates
}

// New builds a Matrix of the given geometry, cursor at (1,1), visible.
// The cursor bit is pre-materialized into both the current and old
// buffers so that an immediate Commit() with no prior writes reports no
// updates — there is no "previous frame" for the cursor's appearance to
// diff against yet.
func New(cols, rows int) *Matrix {
	m := &Matrix{}
	m.allocate(cols, rows)
	m.pos = geometry.Point{X: 1, Y: 1}
	m.cursorVisible = true
	m.syncCursorState()
	return m
}

// syncCursorState materializes the current cursor position/visibility
// into both current and old buffers and records posOld/cursorVisibleOld
// to match, so the next Commit() sees no spurious cursor-only diff.
func (m *Matrix) syncCursorState() {
	if m.cols == 0 || m.rows == 0 {
		return
	}
	if m.cellBounds1().ContainsPoint(m.pos) {
		x, y := m.pos.X-1, m.pos.Y-1
		m.current[y][x].Cursor = m.cursorVisible
		m.old[y][x].Cursor = m.cursorVisible
	}
	m.posOld = m.pos
	m.cursorVisibleOld = m.cursorVisible
}

func makeGrid(cols, rows int) [][]Cell {
	g := make([][]Cell, rows)
	for y := range g {
		row := make([]Cell, cols)
		for x := range row {
			row[x] = blank
		}
		g[y] = row
	}
	return g
}

func (m *Matrix) allocate(cols, rows int) {
	m.cols, m.rows = cols, rows
	m.current = makeGrid(cols, rows)
	m.old = makeGrid(cols, rows)
	m.alt = makeGrid(cols, rows)
	m.updateBounds = geometry.Invalid
}

// Cols and Rows report the current geometry.
func (m *Matrix) Cols() int { return m.cols }
func (m *Matrix) Rows() int { return m.rows }

// Pos returns the current 1-based cursor position.
func (m *Matrix) Pos() geometry.Point { return m.pos }

// CursorVisible reports whether the cursor is currently shown.
func (m *Matrix) CursorVisible() bool { return m.cursorVisible }

// SetCursorVisible toggles cursor visibility; the actual cell-level
// cursor bit is only materialized on the next Commit.
func (m *Matrix) SetCursorVisible(v bool) { m.cursorVisible = v }

// Resize grows the cell buffers to the new geometry (never shrinking
// capacity below what's needed — we simply reallocate, since Go slices
// give us no cheaper "keep the old backing array" trick across a 2-D
// resize), preserving contents within the common sub-grid, and clamps
// update_bounds to the new bounds.
func (m *Matrix) Resize(cols, rows int) {
	if cols == m.cols && rows == m.rows {
		return
	}
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}

	newCurrent := makeGrid(cols, rows)
	newOld := makeGrid(cols, rows)
	newAlt := makeGrid(cols, rows)

	minRows := min(rows, m.rows)
	minCols := min(cols, m.cols)
	for y := 0; y < minRows; y++ {
		copy(newCurrent[y][:minCols], m.current[y][:minCols])
		copy(newOld[y][:minCols], m.old[y][:minCols])
		copy(newAlt[y][:minCols], m.alt[y][:minCols])
	}

	m.current, m.old, m.alt = newCurrent, newOld, newAlt
	m.cols, m.rows = cols, rows

	bounds := geometry.NewRect(0, 0, cols-1, rows-1)
	m.updateBounds = m.updateBounds.Clip(bounds)

	m.pos = bounds1Based(bounds).ClipPoint(m.pos)
	m.posOld = bounds1Based(bounds).ClipPoint(m.posOld)
}

func bounds1Based(r geometry.Rect) geometry.Rect {
	if !r.Valid() {
		return r
	}
	return geometry.Rect{X0: r.X0 + 1, Y0: r.Y0 + 1, X1: r.X1 + 1, Y1: r.Y1 + 1}
}

// Reset clears both buffers to blank/default and homes the cursor. The
// old buffer is cleared too and the cursor state pre-synced, matching
// New()'s convention that a freshly reset matrix has no pending visible
// change until something is actually drawn differently.
func (m *Matrix) Reset() {
	m.current = makeGrid(m.cols, m.rows)
	m.old = makeGrid(m.cols, m.rows)
	m.alt = makeGrid(m.cols, m.rows)
	m.pos = geometry.Point{X: 1, Y: 1}
	m.cursorVisible = true
	m.updateBounds = geometry.Invalid
	m.syncCursorState()
}

func (m *Matrix) cellBounds0() geometry.Rect {
	if m.cols == 0 || m.rows == 0 {
		return geometry.Invalid
	}
	return geometry.NewRect(0, 0, m.cols-1, m.rows-1)
}

func (m *Matrix) cellBounds1() geometry.Rect {
	return bounds1Based(m.cellBounds0())
}

// MoveAbs sets the cursor to an absolute 1-based position, clipped to
// the grid.
func (m *Matrix) MoveAbs(row, col int) {
	m.pos = m.cellBounds1().ClipPoint(geometry.Point{X: col, Y: row})
}

// MoveRel moves the cursor by (dx, dy). With wrap=true, column overflow
// wraps to the next row and row overflow beyond the bottom scrolls the
// view up by the overflow amount before clamping. Without wrap it
// behaves like MoveAbs on the translated position.
func (m *Matrix) MoveRel(dy, dx int, wrap bool) {
	if m.cols == 0 || m.rows == 0 {
		return
	}
	newX := m.pos.X + dx
	newY := m.pos.Y + dy

	if !wrap {
		m.pos = m.cellBounds1().ClipPoint(geometry.Point{X: newX, Y: newY})
		return
	}

	for newX > m.cols {
		newX -= m.cols
		newY++
	}
	for newX < 1 {
		newX += m.cols
		newY--
	}
	if newY > m.rows {
		overflow := newY - m.rows
		m.scrollLines(overflow)
		newY = m.rows
	}
	if newY < 1 {
		newY = 1
	}
	m.pos = geometry.Point{X: newX, Y: newY}
}

// scrollLines scrolls the full screen up by n lines, revealing blank
// lines at the bottom, used by MoveRel's wrap-induced overflow.
func (m *Matrix) scrollLines(n int) {
	full := m.cellBounds1()
	if !full.Valid() || n == 0 {
		return
	}
	m.Scroll(0, style.Default, full, n, 0)
}

// Set stamps (glyph, style) at pt (1-based) if it differs from what's
// already there, marking the cell dirty and extending update_bounds.
// No-op if pt is outside the grid.
func (m *Matrix) Set(glyph rune, st style.Style, pt geometry.Point) {
	if !m.cellBounds1().ContainsPoint(pt) {
		return
	}
	x, y := pt.X-1, pt.Y-1
	cell := &m.current[y][x]
	if cell.Glyph != glyph || cell.Style != st {
		cell.Glyph = glyph
		cell.Style = st
		cell.Dirty = true
		m.growBounds0(geometry.Point{X: x, Y: y})
	}
}

func (m *Matrix) growBounds0(p geometry.Point) {
	m.updateBounds = m.updateBounds.GrowPoint(p)
}

// Write stamps a glyph at the cursor, optionally replacing the
// previous write position (for combining characters), then advances
// the cursor by one column with wrap.
func (m *Matrix) Write(glyph rune, st style.Style, replacesLast bool) {
	if replacesLast {
		m.pos = m.posLast
	}
	m.Set(glyph, st, m.pos)
	m.posLast = m.pos
	m.MoveRel(0, 1, true)
}

// Fill stamps (glyph, style) over the inclusive range [from, to] in
// reading order: the first row starts at from.X, the last row ends at
// to.X, and any rows in between are filled in full.
func (m *Matrix) Fill(glyph rune, st style.Style, from, to geometry.Point) {
	if from.Y > to.Y || (from.Y == to.Y && from.X > to.X) {
		return
	}
	for y := from.Y; y <= to.Y; y++ {
		startX := 1
		if y == from.Y {
			startX = from.X
		}
		endX := m.cols
		if y == to.Y {
			endX = to.X
		}
		for x := startX; x <= endX; x++ {
			m.Set(glyph, st, geometry.Point{X: x, Y: y})
		}
	}
}

// Scroll translates rect's cell contents by (-rightward, -downward):
// the cell that ends up at q held, before the scroll, whatever was at
// q+(rightward,downward); positions whose source falls outside rect are
// replaced by (glyph, style). rect is 1-based inclusive, like every
// other public Matrix coordinate. Source cells are snapshotted before
// any cell is written, so the copy never reads an already-moved cell.
func (m *Matrix) Scroll(glyph rune, st style.Style, rect geometry.Rect, downward, rightward int) {
	rect = rect.Translate(geometry.Point{X: -1, Y: -1}) // 1-based -> 0-based
	rect = rect.Clip(m.cellBounds0())
	if !rect.Valid() {
		return
	}
	if downward == 0 && rightward == 0 {
		// scrolling by (0,0) is always a no-op, draw-wise.
		return
	}

	// Snapshot the source rows before writing: reading from a copy
	// rather than racing an in-place shift makes the direction of
	// iteration irrelevant while still only ever touching rect once.
	srcRows := make([][]Cell, rect.Height())
	for i, y := 0, rect.Y0; y <= rect.Y1; i, y = i+1, y+1 {
		row := make([]Cell, rect.Width())
		copy(row, m.current[y][rect.X0:rect.X1+1])
		srcRows[i] = row
	}

	for y := rect.Y0; y <= rect.Y1; y++ {
		srcY := y + downward
		for x := rect.X0; x <= rect.X1; x++ {
			srcX := x + rightward
			var newCell Cell
			if srcY >= rect.Y0 && srcY <= rect.Y1 && srcX >= rect.X0 && srcX <= rect.X1 {
				newCell = srcRows[srcY-rect.Y0][srcX-rect.X0]
			} else {
				newCell = Cell{Glyph: glyph, Style: st}
			}
			newCell.Dirty = true
			m.current[y][x] = newCell
		}
	}

	m.posOld = geometry.Point{X: m.posOld.X - rightward, Y: m.posOld.Y - downward}
	m.updateBounds = m.cellBounds0()
}

// SetAlternateBufferActive swaps the primary and alternate buffers when
// the requested state differs from the current one, marking every cell
// dirty.
func (m *Matrix) SetAlternateBufferActive(active bool) {
	if active == m.altActive {
		return
	}
	m.altActive = active
	m.current, m.alt = m.alt, m.current
	for y := range m.current {
		for x := range m.current[y] {
			m.current[y][x].Dirty = true
		}
	}
	if m.cols > 0 && m.rows > 0 {
		m.updateBounds = geometry.NewRect(0, 0, m.cols-1, m.rows-1)
	}
}

// Commit materializes accumulated changes and returns the minimal list
// of cells whose visible contents changed since the last commit.
func (m *Matrix) Commit() []Update {
	boundsValid := m.cellBounds1().Valid()

	if m.cursorVisibleOld && boundsValid && m.cellBounds1().ContainsPoint(m.posOld) {
		ox, oy := m.posOld.X-1, m.posOld.Y-1
		if m.current[oy][ox].Cursor {
			m.current[oy][ox].Cursor = false
			m.current[oy][ox].Dirty = true
			m.growBounds0(geometry.Point{X: ox, Y: oy})
		}
	}
	if m.cursorVisible && boundsValid && m.cellBounds1().ContainsPoint(m.pos) {
		nx, ny := m.pos.X-1, m.pos.Y-1
		if !m.current[ny][nx].Cursor {
			m.current[ny][nx].Cursor = true
			m.current[ny][nx].Dirty = true
			m.growBounds0(geometry.Point{X: nx, Y: ny})
		}
	}

	var updates []Update
	if m.updateBounds.Valid() {
		for y := m.updateBounds.Y0; y <= m.updateBounds.Y1; y++ {
			for x := m.updateBounds.X0; x <= m.updateBounds.X1; x++ {
				cur := m.current[y][x]
				old := m.old[y][x]
				if needsUpdate(old, cur) {
					updates = append(updates, Update{
						Pos:     geometry.Point{X: x + 1, Y: y + 1},
						Current: cur,
						Old:     old,
					})
				}
				m.old[y][x] = cur
				m.current[y][x].Dirty = false
			}
		}
	}

	m.posOld = m.pos
	m.cursorVisibleOld = m.cursorVisible
	m.updateBounds = geometry.Invalid

	return updates
}
