package photostamp

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// Stamper composites captions and dates onto images.
type Stamper struct {
	T           Typesetter
	Sizing      SizingFunc
	MinFontSize int
	Padding     int
}

// Stamp returns a copy of img with a white band below it holding the caption and date.
func (s *Stamper) Stamp(img image.Image, cd CaptionDate) (*image.RGBA, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("empty image %v", b)
	}
	g := s.Sizing(w, h)
	if g.Margin <= 0 {
		return nil, fmt.Errorf("invalid margin %d", g.Margin)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, w, h+g.Margin))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(0, 0, w, h), img, b.Min, draw.Src)

	cw, ch := canvas.Bounds().Dx(), canvas.Bounds().Dy()
	l := &Layouter{M: s.T}

	cl, err := l.Fit(cd.Caption, cw, g.CaptionSize, s.MinFontSize, cw-s.Padding, ch-g.Margin)
	if err != nil {
		return nil, fmt.Errorf("caption layout: %w", err)
	}
	if err := s.T.Draw(canvas, cd.Caption, cl.FontSize, cl.Pos, color.Black); err != nil {
		return nil, fmt.Errorf("draw caption: %w", err)
	}

	if cd.Date == "" {
		return canvas, nil
	}

	dl, err := l.Center(cd.Date, cw, g.DateSize, ch-g.DateOffset)
	if err != nil {
		return nil, fmt.Errorf("date layout: %w", err)
	}
	if err := s.T.Draw(canvas, cd.Date, dl.FontSize, dl.Pos, color.Black); err != nil {
		return nil, fmt.Errorf("draw date: %w", err)
	}
	return canvas, nil
}
