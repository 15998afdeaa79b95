package geometry

import "testing"

func TestRectValid(t *testing.T) {
	if Invalid.Valid() {
		t.Fatal("Invalid rect reported as valid")
	}
	if !(Rect{0, 0, 0, 0}).Valid() {
		t.Fatal("single-cell rect should be valid")
	}
}

func TestRectGrow(t *testing.T) {
	r := NewRect(0, 0, 10, 10)
	s := NewRect(5, 5, 15, 15)
	u := r.GrowRect(s)
	if u != (Rect{0, 0, 15, 15}) {
		t.Fatalf("got %+v", u)
	}

	// growing by Invalid is identity
	if r.GrowRect(Invalid) != r {
		t.Fatal("grow by Invalid changed rect")
	}
	if Invalid.GrowRect(r) != r {
		t.Fatal("Invalid.Grow(r) should equal r")
	}
}

func TestRectClip(t *testing.T) {
	r := NewRect(0, 0, 10, 10)
	s := NewRect(5, 5, 20, 20)
	c := r.Clip(s)
	if c != (Rect{5, 5, 10, 10}) {
		t.Fatalf("got %+v", c)
	}

	disjoint := NewRect(100, 100, 110, 110)
	if r.Clip(disjoint).Valid() {
		t.Fatal("disjoint clip should be invalid")
	}
}

func TestRectAreaWidthHeight(t *testing.T) {
	r := NewRect(0, 0, 9, 4)
	if r.Width() != 10 || r.Height() != 5 || r.Area() != 50 {
		t.Fatalf("got w=%d h=%d a=%d", r.Width(), r.Height(), r.Area())
	}
	if Invalid.Area() != 0 {
		t.Fatal("invalid rect should have zero area")
	}
}

func TestRectClipPoint(t *testing.T) {
	r := NewRect(1, 1, 5, 5)
	got := r.ClipPoint(Point{X: 0, Y: 10})
	if got != (Point{X: 1, Y: 5}) {
		t.Fatalf("got %+v", got)
	}
}
