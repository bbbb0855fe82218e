package photostamp

import (
	"image"

	"k8s.io/klog/v2"
)

// shrinkStep is how many points a too-wide caption loses per attempt.
const shrinkStep = 2

// Layout places one line of text on a canvas.
type Layout struct {
	FontSize int
	Pos      image.Point
	// Size is the measured extent at FontSize.
	Size image.Point
	// Clipped is set when the text is wider than the canvas even at the final size.
	Clipped bool
	// Shrinks counts shrink iterations.
	Shrinks int
}

// Layouter fits text into a canvas.
type Layouter struct {
	M Measurer
}

// Fit picks the font size for text on a canvas of the given width. Text that
// fits at size is kept at size; otherwise it shrinks until it is no wider
// than maxWidth or reaches minSize. The returned position is horizontally
// centered at vertical position y.
func (l *Layouter) Fit(text string, canvasWidth, size, minSize, maxWidth, y int) (Layout, error) {
	ext, err := l.M.Measure(text, size)
	if err != nil {
		return Layout{}, err
	}

	lo := Layout{FontSize: size}
	if ext.X > canvasWidth {
		for ext.X > maxWidth && lo.FontSize > minSize {
			next := lo.FontSize - shrinkStep
			if next < minSize {
				next = minSize
			}
			klog.V(1).Infof("text %q is %dpx wide (max %dpx) at %dpt, shrinking to %dpt", text, ext.X, maxWidth, lo.FontSize, next)
			lo.FontSize = next
			lo.Shrinks++

			ext, err = l.M.Measure(text, lo.FontSize)
			if err != nil {
				return Layout{}, err
			}
		}
	}

	lo.Size = ext
	lo.Pos = image.Pt(centerX(canvasWidth, ext.X), y)
	lo.Clipped = ext.X > canvasWidth
	if lo.Clipped {
		klog.Warningf("text %q does not fit in %dpx even at %dpt; left-aligning", text, canvasWidth, lo.FontSize)
	}
	return lo, nil
}

// Center lays out text at a fixed size, horizontally centered at vertical position y.
func (l *Layouter) Center(text string, canvasWidth, size, y int) (Layout, error) {
	ext, err := l.M.Measure(text, size)
	if err != nil {
		return Layout{}, err
	}
	return Layout{
		FontSize: size,
		Pos:      image.Pt(centerX(canvasWidth, ext.X), y),
		Size:     ext,
		Clipped:  ext.X > canvasWidth,
	}, nil
}

// centerX centers a line, pinning text wider than the canvas to the left edge.
func centerX(canvasWidth, textWidth int) int {
	if textWidth > canvasWidth {
		return 0
	}
	return (canvasWidth - textWidth) / 2
}
