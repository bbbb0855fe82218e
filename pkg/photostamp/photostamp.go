// Package photostamp stamps photographs with a caption and date taken from their embedded metadata.
package photostamp

import (
	"fmt"
	"strings"
)

// DefaultOutDirName is the output directory created under the root.
const DefaultOutDirName = "newly_stamped_images"

var (
	defaultQuality     = 95
	defaultMinFontSize = 8
	defaultPadding     = 500
	defaultFormats     = []string{"image/jpeg", "image/png"}
)

// Config holds configuration for a stamping run.
type Config struct {
	Root       string
	OutDirName string

	// Quality is the JPEG quality of stamped output.
	Quality int
	// MinFontSize is the floor for caption shrinking.
	MinFontSize int
	// Padding is the lateral space a shrunken caption must leave free.
	Padding int
	// MaxDimension downscales sources whose longest side exceeds it. Zero disables.
	MaxDimension int

	Sizing   SizingFunc
	FontPath string
	Formats  []string

	Reader       MetadataReader
	DateFallback DateFallback

	// Confirm is asked once before anything is written. Nil means yes.
	Confirm func(albums, files int) bool
	// Progress is called after every file.
	Progress func(done, total int)
}

// Validate performs basic validation and assigns defaults where needed.
func (c *Config) Validate() error {
	c.Root = strings.TrimSpace(c.Root)
	c.OutDirName = strings.TrimSpace(c.OutDirName)

	if c.Root == "" {
		return fmt.Errorf("root directory is required")
	}
	if c.OutDirName == "" {
		c.OutDirName = DefaultOutDirName
	}
	if strings.ContainsAny(c.OutDirName, `/\`) {
		return fmt.Errorf("output directory name %q must not contain a path separator", c.OutDirName)
	}
	if c.Quality == 0 {
		c.Quality = defaultQuality
	}
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("quality %d out of range 1-100", c.Quality)
	}
	if c.MinFontSize <= 0 {
		c.MinFontSize = defaultMinFontSize
	}
	if c.Padding < 0 {
		return fmt.Errorf("padding must not be negative")
	}
	if c.Padding == 0 {
		c.Padding = defaultPadding
	}
	if c.MaxDimension < 0 {
		return fmt.Errorf("max dimension must not be negative")
	}
	if c.Sizing == nil {
		c.Sizing = ScaledSizing
	}
	if len(c.Formats) == 0 {
		c.Formats = defaultFormats
	}
	if c.Reader == nil {
		c.Reader = NativeReader{}
	}
	if c.DateFallback == nil {
		c.DateFallback = EmptyDate
	}
	return nil
}
