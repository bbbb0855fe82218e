package photostamp

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"k8s.io/klog/v2"
)

// job carries one file's transient state between pipeline stages.
type job struct {
	img     *Image
	raster  image.Image
	cd      CaptionDate
	stamped *image.RGBA
}

type pipeline struct {
	c        *Config
	resolver *Resolver
	stamper  *Stamper
}

// Run stamps every image under c.Root. Per-file failures are recorded in the
// summary and never stop the run; Run only fails for an unreadable root, an
// unusable font, operator decline, or cancellation. On cancellation the
// partial summary is returned along with ctx.Err().
func Run(ctx context.Context, c *Config) (*Summary, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	klog.Infof("stamping images under %s -> %s", c.Root, filepath.Join(c.Root, c.OutDirName))
	as, err := Discover(c.Root, c.OutDirName, c.Formats)
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}

	total := 0
	for _, a := range as {
		total += len(a.Images)
	}
	klog.Infof("found %d images in %d albums", total, len(as))

	if c.Confirm != nil && !c.Confirm(len(as), total) {
		return nil, ErrDeclined
	}
	// time spent discovering and waiting on the operator is not stamping work
	start := time.Now()

	ts, err := NewFontTypesetter(c.FontPath)
	if err != nil {
		return nil, err
	}
	defer ts.Close()

	p := &pipeline{
		c:        c,
		resolver: &Resolver{Reader: c.Reader, Fallback: c.DateFallback},
		stamper: &Stamper{
			T:           ts,
			Sizing:      c.Sizing,
			MinFontSize: c.MinFontSize,
			Padding:     c.Padding,
		},
	}

	sum := &Summary{Albums: len(as), Files: total}
	if err := ensureDir(filepath.Join(c.Root, c.OutDirName)); err != nil {
		klog.Errorf("unable to create output directory: %v", err)
	}

	done := 0
	for _, a := range as {
		klog.Infof("processing album %q with %d images", a.Name, len(a.Images))
		var dirErr error
		dirMade := false
		mkdir := func() error {
			if !dirMade {
				dirErr = ensureDir(a.OutPath)
				dirMade = true
			}
			return dirErr
		}

		for n, i := range a.Images {
			if err := ctx.Err(); err != nil {
				sum.Elapsed = time.Since(start)
				return sum, err
			}

			r := p.process(i, mkdir)
			sum.add(r)
			done++
			if c.Progress != nil {
				c.Progress(done, total)
			}

			if dirErr != nil {
				klog.Errorf("skipping %d remaining images in %q: %v", len(a.Images)-n-1, a.Name, dirErr)
				for _, rest := range a.Images[n+1:] {
					sum.add(FileResult{
						Path:  rest.InPath,
						Stage: StageSaved,
						Err:   &StageError{Stage: StageSaved, Path: rest.InPath, Err: dirErr},
					})
					done++
					if c.Progress != nil {
						c.Progress(done, total)
					}
				}
				break
			}
		}
	}

	sum.Elapsed = time.Since(start)
	klog.Infof("%s", sum)
	return sum, nil
}

func (p *pipeline) process(i *Image, mkdir func() error) FileResult {
	start := time.Now()
	r := FileResult{Path: i.InPath, Stage: StageDiscovered}
	j := &job{img: i}

	fail := func(s Stage, err error) FileResult {
		r.Stage = s
		r.Err = &StageError{Stage: s, Path: i.InPath, Err: err}
		r.Duration = time.Since(start)
		klog.Errorf("%v", r.Err)
		return r
	}

	var err error
	j.raster, err = open(i.InPath, p.c.MaxDimension)
	if err != nil {
		return fail(StageOpened, err)
	}
	r.Stage = StageOpened

	j.cd, err = p.resolver.Resolve(j.img.InPath, j.img.Album.Name)
	if err != nil {
		return fail(StageResolved, err)
	}
	r.Stage = StageResolved
	r.CaptionSource = j.cd.CaptionSource
	r.DateSource = j.cd.DateSource

	j.stamped, err = p.stamp(j)
	if err != nil {
		return fail(StageStamped, err)
	}
	r.Stage = StageStamped

	if err := mkdir(); err != nil {
		return fail(StageSaved, err)
	}
	out := i.OutPath()
	if err := save(out, j.stamped, p.c.Quality); err != nil {
		return fail(StageSaved, err)
	}
	r.Stage = StageSaved
	r.Output = out
	r.Duration = time.Since(start)
	klog.Infof("stamped %s -> %s in %s", i.InPath, out, r.Duration.Round(time.Millisecond))
	return r
}

// stamp recovers drawing panics so a single bad glyph only fails its own file.
func (p *pipeline) stamp(j *job) (img *image.RGBA, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic while stamping: %v", rec)
		}
	}()
	return p.stamper.Stamp(j.raster, j.cd)
}

// ensureDir creates dir; an existing directory is not an error.
func ensureDir(dir string) error {
	err := os.MkdirAll(dir, 0o755)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrExist) {
		if st, serr := os.Stat(dir); serr == nil && st.IsDir() {
			return nil
		}
	}
	return fmt.Errorf("mkdir: %w", err)
}
