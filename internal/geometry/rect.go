// Package geometry provides the integer point/rectangle types shared by
// the matrix, renderer, memory display and e-paper packages.
package geometry

import "math"

// Point is an integer 2-D coordinate.
type Point struct {
	X, Y int
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Rect is an axis-aligned rectangle with inclusive bounds on all four
// sides: (X0,Y0) is the upper-left cell/pixel, (X1,Y1) is the lower-right
// one, both included. An empty/invalid rectangle uses math.MaxInt/MinInt
// sentinels so that Grow() on it acts as identity.
type Rect struct {
	X0, Y0, X1, Y1 int
}

// Invalid is the canonical empty rectangle: growing it by anything
// yields that thing unchanged.
var Invalid = Rect{X0: math.MaxInt, Y0: math.MaxInt, X1: math.MinInt, Y1: math.MinInt}

// NewRect builds a rect from two corners, normalizing order.
func NewRect(x0, y0, x1, y1 int) Rect {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	return Rect{x0, y0, x1, y1}
}

// Valid reports whether the rectangle contains at least one cell.
func (r Rect) Valid() bool {
	return r.X0 <= r.X1 && r.Y0 <= r.Y1
}

// Width returns the number of columns covered (0 if invalid).
func (r Rect) Width() int {
	if !r.Valid() {
		return 0
	}
	return r.X1 - r.X0 + 1
}

// Height returns the number of rows covered (0 if invalid).
func (r Rect) Height() int {
	if !r.Valid() {
		return 0
	}
	return r.Y1 - r.Y0 + 1
}

// Area returns Width()*Height().
func (r Rect) Area() int {
	return r.Width() * r.Height()
}

// ContainsPoint reports whether p lies within r.
func (r Rect) ContainsPoint(p Point) bool {
	return r.Valid() && p.X >= r.X0 && p.X <= r.X1 && p.Y >= r.Y0 && p.Y <= r.Y1
}

// ClipPoint clips p into r, returning the closest point inside r.
// If r is invalid, p is returned unchanged.
func (r Rect) ClipPoint(p Point) Point {
	if !r.Valid() {
		return p
	}
	if p.X < r.X0 {
		p.X = r.X0
	} else if p.X > r.X1 {
		p.X = r.X1
	}
	if p.Y < r.Y0 {
		p.Y = r.Y0
	} else if p.Y > r.Y1 {
		p.Y = r.Y1
	}
	return p
}

// Clip intersects r with s, returning Invalid if they don't overlap.
func (r Rect) Clip(s Rect) Rect {
	x0 := max(r.X0, s.X0)
	y0 := max(r.Y0, s.Y0)
	x1 := min(r.X1, s.X1)
	y1 := min(r.Y1, s.Y1)
	if x0 > x1 || y0 > y1 {
		return Invalid
	}
	return Rect{x0, y0, x1, y1}
}

// GrowRect returns the bounding-box union of r and s. Either side may be
// Invalid, in which case the other is returned unchanged.
func (r Rect) GrowRect(s Rect) Rect {
	if !r.Valid() {
		return s
	}
	if !s.Valid() {
		return r
	}
	return Rect{
		X0: min(r.X0, s.X0),
		Y0: min(r.Y0, s.Y0),
		X1: max(r.X1, s.X1),
		Y1: max(r.Y1, s.Y1),
	}
}

// GrowPoint returns the bounding-box union of r and the single-cell
// rectangle at p.
func (r Rect) GrowPoint(p Point) Rect {
	return r.GrowRect(Rect{p.X, p.Y, p.X, p.Y})
}

// Translate shifts r by d.
func (r Rect) Translate(d Point) Rect {
	if !r.Valid() {
		return r
	}
	return Rect{r.X0 + d.X, r.Y0 + d.Y, r.X1 + d.X, r.Y1 + d.Y}
}

// Overlaps reports whether r and s share any cell.
func (r Rect) Overlaps(s Rect) bool {
	return r.Clip(s).Valid()
}
