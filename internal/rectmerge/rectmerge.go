// Package rectmerge collapses a set of inserted rectangles into fewer,
// possibly-overlapping rectangles while bounding total waste. The
// coalescing generalizes the usual per-write dirty-range merge (as
// seen coalescing line ranges in a terminal buffer) from 1-D line
// ranges to 2-D rectangles.
package rectmerge

import "github.com/inkterm/inkterm/internal/geometry"

// DefaultWasteRatio is the threshold: two rectangles may merge iff
// their combined area is at least this fraction of their bounding
// box's area.
const DefaultWasteRatio = 0.75

// Merger accumulates rectangles and coalesces them on Merge. The waste
// ratio is a configuration knob, not a constant, so callers may retune
// it at runtime via SetWasteRatio.
type Merger struct {
	wasteRatio float64
	rects      []geometry.Rect
}

// New builds a Merger with the given waste ratio; a non-positive value
// falls back to DefaultWasteRatio.
func New(wasteRatio float64) *Merger {
	if wasteRatio <= 0 {
		wasteRatio = DefaultWasteRatio
	}
	return &Merger{wasteRatio: wasteRatio}
}

// SetWasteRatio updates the merge threshold for subsequent Insert/Merge
// calls; it does not retroactively re-evaluate already-merged state.
func (m *Merger) SetWasteRatio(r float64) {
	if r <= 0 {
		r = DefaultWasteRatio
	}
	m.wasteRatio = r
}

// mergeable reports whether r and s may be combined into their bounding
// box without wasting more than (1 - wasteRatio) of its area.
func (m *Merger) mergeable(r, s geometry.Rect) bool {
	u := r.GrowRect(s)
	if !u.Valid() {
		return false
	}
	return float64(r.Area()+s.Area()) >= m.wasteRatio*float64(u.Area())
}

// Insert adds r, first trying to merge it into an existing rectangle:
// scan in reverse insertion order, merge into the first candidate that
// satisfies the waste-ratio rule, else append r as a new entry.
func (m *Merger) Insert(r geometry.Rect) {
	if !r.Valid() {
		return
	}
	for i := len(m.rects) - 1; i >= 0; i-- {
		if m.mergeable(m.rects[i], r) {
			m.rects[i] = m.rects[i].GrowRect(r)
			return
		}
	}
	m.rects = append(m.rects, r)
}

// Merge repeatedly rescans the whole list, merging any pair that
// satisfies the waste-ratio rule, until a full pass produces no new
// merge. Rectangles consumed by a merge are dropped from the list.
func (m *Merger) Merge() {
	for {
		merged := false
		for i := 0; i < len(m.rects); i++ {
			if !m.rects[i].Valid() {
				continue
			}
			for j := i + 1; j < len(m.rects); j++ {
				if !m.rects[j].Valid() {
					continue
				}
				if m.mergeable(m.rects[i], m.rects[j]) {
					m.rects[i] = m.rects[i].GrowRect(m.rects[j])
					m.rects[j] = geometry.Invalid
					merged = true
				}
			}
		}
		m.compact()
		if !merged {
			return
		}
	}
}

// compact drops invalid (sentinel) entries left behind by Merge.
func (m *Merger) compact() {
	out := m.rects[:0]
	for _, r := range m.rects {
		if r.Valid() {
			out = append(out, r)
		}
	}
	m.rects = out
}

// Begin returns the current rectangle list, in arbitrary order — the
// same backing slice Merge/Insert operate on, so callers must treat it
// as read-only and not retain it across a subsequent Insert/Merge/Reset.
func (m *Merger) Begin() []geometry.Rect {
	return m.rects
}

// Reset empties the merger, ready for the next draw pass.
func (m *Merger) Reset() {
	m.rects = m.rects[:0]
}

// Len reports the current rectangle count.
func (m *Merger) Len() int {
	return len(m.rects)
}
