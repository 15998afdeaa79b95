package gfxcolor

import "testing"

func TestPaletteOutOfRangeIsBlack(t *testing.T) {
	var p *Palette
	if got := p.At(5); got != (RGBA{0, 0, 0, 255}) {
		t.Fatalf("nil palette should yield black, got %+v", got)
	}
}

func TestBrighten(t *testing.T) {
	c := Indexed(3).Brighten()
	if c.Index() != 11 {
		t.Fatalf("expected index 11, got %d", c.Index())
	}
	already := Indexed(12).Brighten()
	if already.Index() != 12 {
		t.Fatalf("already-bright index should be unchanged, got %d", already.Index())
	}
	rgb := RGB(RGBA{10, 20, 30, 255}).Brighten()
	if rgb.IsIndexed() || rgb.RGBValue() != (RGBA{10, 20, 30, 255}) {
		t.Fatalf("RGB color must be left untouched by Brighten")
	}
}

func TestGray4(t *testing.T) {
	if g := (RGBA{0, 0, 0, 255}).Gray4(); g != 0 {
		t.Fatalf("black should be gray 0, got %d", g)
	}
	if g := (RGBA{255, 255, 255, 255}).Gray4(); g != 15 {
		t.Fatalf("white should be gray 15, got %d", g)
	}
}

func TestPremultiply(t *testing.T) {
	c := RGBA{R: 200, G: 100, B: 50, A: 128}.Premultiply()
	if c.A != 128 {
		t.Fatal("alpha should be unchanged")
	}
	if c.R >= 200 {
		t.Fatal("premultiplied R should shrink")
	}
}
