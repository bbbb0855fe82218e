package photostamp

import (
	"image"
	"image/color"
	"strings"
	"testing"
)

func newStamper(t *testing.T, sizing SizingFunc) *Stamper {
	t.Helper()
	ts, err := NewFontTypesetter("")
	if err != nil {
		t.Fatalf("NewFontTypesetter: %v", err)
	}
	t.Cleanup(func() { ts.Close() })
	return &Stamper{T: ts, Sizing: sizing, MinFontSize: 4, Padding: 20}
}

func isWhite(c color.Color) bool {
	r, g, b, a := c.RGBA()
	return r == 0xffff && g == 0xffff && b == 0xffff && a == 0xffff
}

func TestStampGeometry(t *testing.T) {
	s := newStamper(t, ScaledSizing)
	red := color.RGBA{R: 200, G: 10, B: 10, A: 255}
	src := newRGBA(200, 100, red)

	got, err := s.Stamp(src, CaptionDate{Caption: "Hi", Date: "March 1998"})
	if err != nil {
		t.Fatalf("Stamp: %v", err)
	}

	// margin = round(100/10) + 10
	if want := image.Rect(0, 0, 200, 120); got.Bounds() != want {
		t.Fatalf("bounds = %v, want %v", got.Bounds(), want)
	}

	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			if c := got.RGBAAt(x, y); c != red {
				t.Fatalf("pixel (%d,%d) = %v, want unchanged %v", x, y, c, red)
			}
		}
	}

	if !isWhite(got.At(0, 119)) || !isWhite(got.At(199, 119)) || !isWhite(got.At(0, 100)) {
		t.Errorf("band corners are not white")
	}

	inked := 0
	for y := 100; y < 120; y++ {
		for x := 0; x < 200; x++ {
			if !isWhite(got.At(x, y)) {
				inked++
			}
		}
	}
	if inked == 0 {
		t.Errorf("no text drawn in the band")
	}
}

func TestStampOffsetSource(t *testing.T) {
	s := newStamper(t, ScaledSizing)
	blue := color.RGBA{B: 255, A: 255}
	src := newRGBA(80, 60, blue).SubImage(image.Rect(10, 10, 60, 50))

	got, err := s.Stamp(src, CaptionDate{Caption: "offset"})
	if err != nil {
		t.Fatalf("Stamp: %v", err)
	}
	if want := image.Rect(0, 0, 50, 40+14); got.Bounds() != want {
		t.Fatalf("bounds = %v, want %v", got.Bounds(), want)
	}
	if c := got.RGBAAt(0, 0); c != blue {
		t.Errorf("origin pixel = %v, want %v", c, blue)
	}
}

func TestStampLongCaption(t *testing.T) {
	s := newStamper(t, ScaledSizing)
	src := newRGBA(60, 40, color.RGBA{G: 255, A: 255})

	got, err := s.Stamp(src, CaptionDate{Caption: strings.Repeat("a very long caption ", 20), Date: "May 2020"})
	if err != nil {
		t.Fatalf("Stamp: %v", err)
	}
	if got.Bounds().Dx() != 60 {
		t.Errorf("width = %d, want 60", got.Bounds().Dx())
	}
}

func TestStampEmptyDate(t *testing.T) {
	s := newStamper(t, ScaledSizing)
	if _, err := s.Stamp(newRGBA(50, 50, color.RGBA{A: 255}), CaptionDate{Caption: "c"}); err != nil {
		t.Fatalf("Stamp: %v", err)
	}
}

func TestStampFixedSizing(t *testing.T) {
	s := newStamper(t, FixedSizing(Geometry{Margin: 30, CaptionSize: 12, DateSize: 8, DateOffset: 10}))
	got, err := s.Stamp(newRGBA(100, 500, color.RGBA{A: 255}), CaptionDate{Caption: "c", Date: "d"})
	if err != nil {
		t.Fatalf("Stamp: %v", err)
	}
	if want := image.Rect(0, 0, 100, 530); got.Bounds() != want {
		t.Errorf("bounds = %v, want %v", got.Bounds(), want)
	}
}

func TestStampInvalidMargin(t *testing.T) {
	s := newStamper(t, FixedSizing(Geometry{}))
	if _, err := s.Stamp(newRGBA(10, 10, color.RGBA{A: 255}), CaptionDate{Caption: "c"}); err == nil {
		t.Errorf("Stamp with zero margin succeeded, want error")
	}
}

func TestFontTypesetterMeasure(t *testing.T) {
	ts, err := NewFontTypesetter("")
	if err != nil {
		t.Fatalf("NewFontTypesetter: %v", err)
	}
	defer ts.Close()

	small, err := ts.Measure("January 2021", 10)
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}
	large, err := ts.Measure("January 2021", 40)
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}
	if small.X <= 0 || small.Y <= 0 {
		t.Errorf("small extent %v is not positive", small)
	}
	if large.X <= small.X || large.Y <= small.Y {
		t.Errorf("extent at 40pt %v is not larger than at 10pt %v", large, small)
	}

	if _, err := ts.Measure("x", 0); err == nil {
		t.Errorf("Measure at size 0 succeeded, want error")
	}
}

func TestNewFontTypesetterMissingFile(t *testing.T) {
	if _, err := NewFontTypesetter("/nonexistent/font.ttf"); err == nil {
		t.Errorf("NewFontTypesetter succeeded for missing file")
	}
}
