package photostamp

import (
	"fmt"
	"os"
	"time"

	"github.com/barasher/go-exiftool"
	"k8s.io/klog/v2"
)

// ExiftoolReader reads metadata through a long-running exiftool process.
type ExiftoolReader struct {
	et      *exiftool.Exiftool
	extract func(files ...string) []exiftool.FileMetadata

	// the orchestrator asks for both fields of one file back to back
	lastKey fileKey
	last    exiftool.FileMetadata
}

// fileKey identifies one version of a file; a rewrite in place changes it.
type fileKey struct {
	path string
	mod  time.Time
	size int64
}

func keyOf(path string) (fileKey, bool) {
	fi, err := os.Stat(path)
	if err != nil {
		return fileKey{}, false
	}
	return fileKey{path: path, mod: fi.ModTime(), size: fi.Size()}, true
}

// NewExiftoolReader starts exiftool. Callers must Close it.
func NewExiftoolReader() (*ExiftoolReader, error) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("exiftool: %w", err)
	}
	return &ExiftoolReader{et: et, extract: et.ExtractMetadata}, nil
}

// Close stops the exiftool process.
func (r *ExiftoolReader) Close() error {
	if r.et == nil {
		return nil
	}
	return r.et.Close()
}

func (r *ExiftoolReader) metadata(path string) (exiftool.FileMetadata, error) {
	key, ok := keyOf(path)
	if !ok || key != r.lastKey {
		fis := r.extract(path)
		if len(fis) == 0 {
			return exiftool.FileMetadata{}, fmt.Errorf("no metadata returned for %q", path)
		}
		r.lastKey = key
		r.last = fis[0]

		for k, v := range r.last.Fields {
			klog.V(2).Infof("%q=%v", k, v)
		}
	}

	if r.last.Err != nil {
		return r.last, fmt.Errorf("extract fail for %q: %w", path, r.last.Err)
	}
	return r.last, nil
}

func (r *ExiftoolReader) Caption(path string) ([]byte, error) {
	fi, err := r.metadata(path)
	if err != nil {
		return nil, err
	}
	s, err := fi.GetString(captionTag)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoCaption, err)
	}
	return []byte(s), nil
}

func (r *ExiftoolReader) DateTimeOriginal(path string) (string, error) {
	fi, err := r.metadata(path)
	if err != nil {
		return "", err
	}
	ds, err := fi.GetString("DateTimeOriginal")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoDate, err)
	}
	return ds, nil
}
