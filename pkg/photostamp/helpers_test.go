package photostamp

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func newRGBA(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func writeFile(t *testing.T, path string, bs []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, bs, 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func writeJPEG(t *testing.T, path string, w, h int) {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, newRGBA(w, h, color.RGBA{R: 200, G: 50, B: 50, A: 255}), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode test jpeg: %v", err)
	}
	writeFile(t, path, buf.Bytes())
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, newRGBA(w, h, color.RGBA{R: 50, G: 50, B: 200, A: 255})); err != nil {
		t.Fatalf("encode test png: %v", err)
	}
	writeFile(t, path, buf.Bytes())
}

// writeTaggedJPEG writes a JPEG carrying an EXIF DateTimeOriginal and an
// IPTC 2:5 object name, laid out the way cameras and Photoshop store them.
func writeTaggedJPEG(t *testing.T, path string, w, h int, caption, taken string) {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, newRGBA(w, h, color.RGBA{R: 50, G: 200, B: 50, A: 255}), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode test jpeg: %v", err)
	}
	plain := buf.Bytes()

	out := append([]byte{}, plain[:2]...) // SOI
	out = append(out, segment(0xE1, append([]byte("Exif\x00\x00"), exifTIFF(taken)...))...)
	out = append(out, segment(0xED, photoshopIPTC(caption))...)
	out = append(out, plain[2:]...)
	writeFile(t, path, out)
}

func segment(marker byte, payload []byte) []byte {
	seg := []byte{0xFF, marker, 0, 0}
	binary.BigEndian.PutUint16(seg[2:], uint16(len(payload)+2))
	return append(seg, payload...)
}

// exifTIFF is a big-endian TIFF whose IFD0 points at an EXIF IFD
// holding a single DateTimeOriginal entry.
func exifTIFF(taken string) []byte {
	be := binary.BigEndian
	value := append([]byte(taken), 0)
	b := make([]byte, 44, 44+len(value))
	copy(b, "MM\x00\x2A")
	be.PutUint32(b[4:], 8)

	// IFD0: ExifIFDPointer -> 26
	be.PutUint16(b[8:], 1)
	be.PutUint16(b[10:], 0x8769)
	be.PutUint16(b[12:], 4)
	be.PutUint32(b[14:], 1)
	be.PutUint32(b[18:], 26)
	be.PutUint32(b[22:], 0)

	// EXIF IFD: DateTimeOriginal ASCII at 44
	be.PutUint16(b[26:], 1)
	be.PutUint16(b[28:], 0x9003)
	be.PutUint16(b[30:], 2)
	be.PutUint32(b[32:], uint32(len(value)))
	be.PutUint32(b[36:], 44)
	be.PutUint32(b[40:], 0)

	return append(b, value...)
}

// photoshopIPTC is an APP13 payload with one 8BIM IPTC resource.
func photoshopIPTC(caption string) []byte {
	be := binary.BigEndian
	var iim []byte
	iim = append(iim, 0x1C, 2, 0, 0, 2, 0, 4) // 2:0 record version
	iim = append(iim, 0x1C, 2, 5, 0, 0)
	be.PutUint16(iim[len(iim)-2:], uint16(len(caption)))
	iim = append(iim, caption...)
	if len(iim)%2 != 0 {
		iim = append(iim, 0)
	}

	p := []byte("Photoshop 3.0\x00")
	p = append(p, "8BIM"...)
	p = append(p, 0x04, 0x04, 0, 0) // resource id, empty padded name
	size := make([]byte, 4)
	be.PutUint32(size, uint32(len(iim)))
	p = append(p, size...)
	return append(p, iim...)
}

// writeCorruptJPEG writes a file that sniffs as JPEG but cannot be decoded.
func writeCorruptJPEG(t *testing.T, path string) {
	t.Helper()
	writeFile(t, path, append([]byte("\xFF\xD8\xFF\xE0"), bytes.Repeat([]byte("garbage"), 64)...))
}

// fakeReader returns canned metadata for every path.
type fakeReader struct {
	caption    []byte
	captionErr error
	date       string
	dateErr    error
	panics     bool
}

func (f fakeReader) Caption(string) ([]byte, error) {
	if f.panics {
		panic("boom")
	}
	return f.caption, f.captionErr
}

func (f fakeReader) DateTimeOriginal(string) (string, error) {
	if f.panics {
		panic("boom")
	}
	return f.date, f.dateErr
}

var noMetadata = fakeReader{captionErr: ErrNoCaption, dateErr: ErrNoDate}
