package photostamp

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"k8s.io/klog/v2"
)

// Measurer reports the rendered extent of text at a point size.
type Measurer interface {
	Measure(text string, size int) (image.Point, error)
}

// Typesetter measures and draws text.
type Typesetter interface {
	Measurer
	// Draw renders text with its top-left corner at pt.
	Draw(dst draw.Image, text string, size int, pt image.Point, c color.Color) error
}

// FontTypesetter renders with an OpenType font at 72 DPI, so sizes are pixels.
type FontTypesetter struct {
	font  *opentype.Font
	faces map[int]font.Face
}

// NewFontTypesetter loads the font at path, or the embedded Go Regular font if path is empty.
func NewFontTypesetter(path string) (*FontTypesetter, error) {
	bs := goregular.TTF
	if path != "" {
		var err error
		bs, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read font: %w", err)
		}
	}

	f, err := opentype.Parse(bs)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	klog.V(1).Infof("loaded font %q", path)
	return &FontTypesetter{font: f, faces: map[int]font.Face{}}, nil
}

func (t *FontTypesetter) face(size int) (font.Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid font size %d", size)
	}
	if f, ok := t.faces[size]; ok {
		return f, nil
	}

	f, err := opentype.NewFace(t.font, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("new face at %d: %w", size, err)
	}
	t.faces[size] = f
	return f, nil
}

func (t *FontTypesetter) Measure(text string, size int) (image.Point, error) {
	f, err := t.face(size)
	if err != nil {
		return image.Point{}, err
	}
	m := f.Metrics()
	return image.Pt(font.MeasureString(f, text).Ceil(), (m.Ascent + m.Descent).Ceil()), nil
}

func (t *FontTypesetter) Draw(dst draw.Image, text string, size int, pt image.Point, c color.Color) error {
	f, err := t.face(size)
	if err != nil {
		return err
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: f,
		Dot:  fixed.P(pt.X, pt.Y).Add(fixed.Point26_6{Y: f.Metrics().Ascent}),
	}
	d.DrawString(text)
	return nil
}

// Close releases cached faces.
func (t *FontTypesetter) Close() error {
	for size, f := range t.faces {
		if err := f.Close(); err != nil {
			return err
		}
		delete(t.faces, size)
	}
	return nil
}
