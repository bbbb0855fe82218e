package photostamp

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"k8s.io/klog/v2"
)

// Album is a source subdirectory.
type Album struct {
	Name    string
	InPath  string
	OutPath string
	Images  []*Image
}

// Image is a photo found in an album.
type Image struct {
	InPath      string
	ContentType string
	Album       *Album
}

// Stem is the file name without its extension.
func (i *Image) Stem() string {
	base := filepath.Base(i.InPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// OutName is the stamped file name.
func (i *Image) OutName() string {
	return i.Stem() + "-stamped.jpg"
}

// OutPath is where the stamped file is written.
func (i *Image) OutPath() string {
	return filepath.Join(i.Album.OutPath, i.OutName())
}

func open(path string, maxDim int) (image.Image, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imgio.Open: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("no pixels in %+v", img.Bounds())
	}
	return shrink(img, maxDim), nil
}

// shrink downscales img so its longest side is at most maxDim.
func shrink(img image.Image, maxDim int) image.Image {
	x, y := img.Bounds().Dx(), img.Bounds().Dy()
	if maxDim <= 0 || (x <= maxDim && y <= maxDim) {
		return img
	}

	if x >= y {
		scale := float64(x) / float64(maxDim)
		x, y = maxDim, int(float64(y)/scale)
	} else {
		scale := float64(y) / float64(maxDim)
		x, y = int(float64(x)/scale), maxDim
	}
	if x < 1 {
		x = 1
	}
	if y < 1 {
		y = 1
	}
	klog.V(1).Infof("resizing %+v to %dx%d", img.Bounds(), x, y)
	return transform.Resize(img, x, y, transform.Lanczos)
}

// save writes img as a JPEG. Nothing is left at path if encoding fails.
func save(path string, img image.Image, quality int) error {
	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".tmp")
	if err := imgio.Save(tmp, img, imgio.JPEGEncoder(quality)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("save: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
