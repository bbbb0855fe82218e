package photostamp

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"k8s.io/klog/v2"
)

var (
	exifDate    = "2006:01:02 15:04:05"
	stampFormat = "January 2006"
)

// Source says where a resolved value came from.
type Source string

const (
	FromMetadata Source = "metadata"
	FromFallback Source = "fallback"
)

// CaptionDate is the text stamped onto one image.
type CaptionDate struct {
	Caption       string
	Date          string
	CaptionSource Source
	DateSource    Source
}

// DateFallback supplies a date when EXIF resolution fails.
// cause describes why; returning an error fails the file.
type DateFallback func(path string, cause error) (string, error)

// EmptyDate stamps no date.
func EmptyDate(string, error) (string, error) { return "", nil }

// FixedDate stamps s on every image lacking a usable date.
func FixedDate(s string) DateFallback {
	return func(string, error) (string, error) { return s, nil }
}

// StrictDate fails any image lacking a usable date.
func StrictDate(path string, cause error) (string, error) {
	return "", fmt.Errorf("%s: %w", path, cause)
}

// Resolver produces the caption and date for an image.
type Resolver struct {
	Reader   MetadataReader
	Fallback DateFallback
}

// Resolve returns the caption and date for the image at path. fallbackCaption
// is used when no IPTC caption is available. Metadata problems never fail
// resolution; only an error from the date fallback policy does.
func (r *Resolver) Resolve(path string, fallbackCaption string) (CaptionDate, error) {
	cd := CaptionDate{}

	caption, err := r.caption(path)
	if err != nil {
		klog.Warningf("%s: %v; using directory name %q as caption", path, err, fallbackCaption)
		cd.Caption = fallbackCaption
		cd.CaptionSource = FromFallback
	} else {
		klog.Infof("%s: caption %q", path, caption)
		cd.Caption = caption
		cd.CaptionSource = FromMetadata
	}

	date, err := r.date(path)
	if err == nil {
		klog.Infof("%s: date %q", path, date)
		cd.Date = date
		cd.DateSource = FromMetadata
		return cd, nil
	}

	klog.Warningf("%s: no date available: %v", path, err)
	fb := r.Fallback
	if fb == nil {
		fb = EmptyDate
	}
	date, err = fb(path, err)
	if err != nil {
		return cd, err
	}
	cd.Date = date
	cd.DateSource = FromFallback
	return cd, nil
}

func (r *Resolver) caption(path string) (s string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("caption reader panic: %v", rec)
		}
	}()

	bs, err := r.Reader.Caption(path)
	if err != nil {
		return "", err
	}
	return decodeCaption(bs)
}

func (r *Resolver) date(path string) (s string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("date reader panic: %v", rec)
		}
	}()

	ds, err := r.Reader.DateTimeOriginal(path)
	if err != nil {
		return "", err
	}
	return FormatDate(ds)
}

func decodeCaption(bs []byte) (string, error) {
	if !utf8.Valid(bs) {
		return "", fmt.Errorf("%w: caption is not valid UTF-8", ErrNoCaption)
	}
	s := strings.TrimSpace(strings.TrimRight(string(bs), "\x00"))
	if s == "" {
		return "", fmt.Errorf("%w: caption is empty", ErrNoCaption)
	}
	return s, nil
}

// FormatDate turns an EXIF timestamp into "<Month> <Year>".
func FormatDate(ds string) (string, error) {
	ds = strings.TrimSpace(strings.TrimRight(ds, "\x00"))
	t, err := time.Parse(exifDate, ds)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrUnparsableDate, ds, err)
	}
	return t.Format(stampFormat), nil
}
