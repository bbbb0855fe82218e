package photostamp

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/bep/imagemeta"
	"github.com/rwcarlsen/goexif/exif"
	"k8s.io/klog/v2"
)

// captionTag is the exiftool/imagemeta name of IPTC IIM dataset 2:5.
const captionTag = "ObjectName"

// MetadataReader reads raw metadata fields from an image file.
type MetadataReader interface {
	// Caption returns the raw IPTC 2:5 bytes, or ErrNoCaption.
	Caption(path string) ([]byte, error)
	// DateTimeOriginal returns the raw EXIF timestamp, or ErrNoDate.
	DateTimeOriginal(path string) (string, error)
}

// NativeReader reads metadata in-process.
type NativeReader struct{}

func (NativeReader) Caption(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	format, err := imagemetaFormat(f)
	if err != nil {
		return nil, err
	}

	var caption []byte
	found := false
	err = decodeIPTCSafe(imagemeta.Options{
		R:           f,
		ImageFormat: format,
		Sources:     imagemeta.IPTC,
		HandleTag: func(ti imagemeta.TagInfo) error {
			klog.V(2).Infof("%s IPTC %s=%v", path, ti.Tag, ti.Value)
			if ti.Tag != captionTag {
				return nil
			}
			switch v := ti.Value.(type) {
			case string:
				caption = []byte(v)
			case []byte:
				caption = v
			default:
				caption = []byte(fmt.Sprint(v))
			}
			found = true
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("decode IPTC: %w", err)
	}
	if !found {
		return nil, ErrNoCaption
	}
	return caption, nil
}

func (NativeReader) DateTimeOriginal(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoDate, err)
	}

	tag, err := x.Get(exif.DateTimeOriginal)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoDate, err)
	}

	ds, err := tag.StringVal()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoDate, err)
	}
	return ds, nil
}

// decodeIPTCSafe protects against panics from the decoder on malformed files.
func decodeIPTCSafe(opts imagemeta.Options) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic while decoding: %v", rec)
		}
	}()
	return imagemeta.Decode(opts)
}

func imagemetaFormat(r io.ReadSeeker) (imagemeta.ImageFormat, error) {
	ct, err := sniff(r)
	if err != nil {
		return 0, err
	}
	switch ct {
	case "image/jpeg":
		return imagemeta.JPEG, nil
	case "image/png":
		return imagemeta.PNG, nil
	case "image/webp":
		return imagemeta.WebP, nil
	}
	return 0, fmt.Errorf("%w: unsupported content type %q", ErrNoCaption, ct)
}

// sniff returns the content type of r and rewinds it.
func sniff(r io.ReadSeeker) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("seek: %w", err)
	}
	ct := http.DetectContentType(head[:n])
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return ct, nil
}

// sniffFile returns the content type of the file at path.
func sniffFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return sniff(f)
}
