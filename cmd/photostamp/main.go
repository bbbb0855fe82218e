// photostamp stamps every photo under a directory with its caption and date.
package main

import (
	"context"
	"errors"
	goflag "flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	flag "github.com/spf13/pflag"
	"k8s.io/klog/v2"

	"github.com/tstromberg/photostamp/pkg/console"
	"github.com/tstromberg/photostamp/pkg/photostamp"
)

var (
	root         = flag.StringP("root", "d", ".", "Directory whose subdirectories hold the photos")
	outName      = flag.String("out-name", photostamp.DefaultOutDirName, "Name of the output directory created under --root")
	fontPath     = flag.String("font", "", "Path to a TrueType/OpenType font (defaults to the embedded Go font)")
	quality      = flag.Int("quality", 95, "JPEG quality of stamped output")
	minFontSize  = flag.Int("min-font-size", 8, "Smallest size a long caption may shrink to")
	padding      = flag.Int("padding", 500, "Lateral space a shrunken caption must leave free, in pixels")
	maxDimension = flag.Int("max-dimension", 0, "Downscale photos whose longest side exceeds this before stamping (0 disables)")
	sizing       = flag.String("sizing", "scaled", "Stamp sizing: scaled (from image height) or fixed")
	fixedMargin  = flag.Int("margin", 200, "Band height for --sizing=fixed")
	captionSize  = flag.Int("caption-size", 100, "Caption font size for --sizing=fixed")
	dateSize     = flag.Int("date-size", 50, "Date font size for --sizing=fixed")
	dateOffset   = flag.Int("date-offset", 80, "Date line distance from the bottom for --sizing=fixed")
	dateFallback = flag.String("date-fallback", "empty", "What to stamp when EXIF has no date: empty, fixed, prompt, or strict")
	defaultDate  = flag.String("default-date", "", "Date stamped with --date-fallback=fixed")
	metadata     = flag.String("metadata", "native", "Metadata backend: native or exiftool")
	yes          = flag.BoolP("yes", "y", false, "Do not ask for confirmation")
	watchFlag    = flag.Bool("watch", false, "Watch --root and restamp on changes (implies --yes)")
	settle       = flag.Duration("settle", 2*time.Second, "With --watch, how long the tree must stay quiet before restamping")
)

func main() {
	klog.InitFlags(nil)
	flag.CommandLine.AddGoFlagSet(goflag.CommandLine)
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c, closer, err := config()
	if err != nil {
		klog.Exitf("config: %v", err)
	}
	defer closer()

	sum, err := photostamp.Run(ctx, c)
	if sum != nil {
		fmt.Println(sum)
		for _, r := range sum.Results {
			if r.Err != nil {
				fmt.Printf("  FAILED %v\n", r.Err)
			}
		}
	}
	if err != nil {
		if errors.Is(err, photostamp.ErrDeclined) {
			fmt.Println("Nothing stamped.")
		} else {
			klog.Errorf("run failed: %v", err)
		}
		closer()
		os.Exit(1)
	}

	if *watchFlag {
		if err := watch(ctx, c, *settle); err != nil && !errors.Is(err, context.Canceled) {
			klog.Errorf("watch failed: %v", err)
			closer()
			os.Exit(1)
		}
		return
	}

	if sum.Failed > 0 {
		closer()
		os.Exit(2)
	}
}

func config() (*photostamp.Config, func(), error) {
	closer := func() {}
	p := console.New(os.Stdin, os.Stdout)

	c := &photostamp.Config{
		Root:         *root,
		OutDirName:   *outName,
		FontPath:     *fontPath,
		Quality:      *quality,
		MinFontSize:  *minFontSize,
		Padding:      *padding,
		MaxDimension: *maxDimension,
		Progress:     console.Progress(os.Stdout),
	}

	if !*yes && !*watchFlag {
		c.Confirm = p.Confirm
	}

	switch *sizing {
	case "scaled":
		c.Sizing = photostamp.ScaledSizing
	case "fixed":
		c.Sizing = photostamp.FixedSizing(photostamp.Geometry{
			Margin:      *fixedMargin,
			CaptionSize: *captionSize,
			DateSize:    *dateSize,
			DateOffset:  *dateOffset,
		})
	default:
		return nil, closer, fmt.Errorf("invalid --sizing %q (expected scaled or fixed)", *sizing)
	}

	switch *dateFallback {
	case "empty":
		c.DateFallback = photostamp.EmptyDate
	case "fixed":
		c.DateFallback = photostamp.FixedDate(*defaultDate)
	case "prompt":
		if *watchFlag {
			return nil, closer, fmt.Errorf("--date-fallback=prompt cannot be used with --watch")
		}
		c.DateFallback = p.Date
	case "strict":
		c.DateFallback = photostamp.StrictDate
	default:
		return nil, closer, fmt.Errorf("invalid --date-fallback %q (expected empty, fixed, prompt, or strict)", *dateFallback)
	}

	switch *metadata {
	case "native":
		c.Reader = photostamp.NativeReader{}
	case "exiftool":
		r, err := photostamp.NewExiftoolReader()
		if err != nil {
			return nil, closer, err
		}
		c.Reader = r
		closer = func() {
			if err := r.Close(); err != nil {
				klog.Errorf("Failed to close exiftool: %v", err)
			}
		}
	default:
		return nil, closer, fmt.Errorf("invalid --metadata %q (expected native or exiftool)", *metadata)
	}

	return c, closer, nil
}

// watch restamps once a burst of changes under the root has settled.
func watch(ctx context.Context, c *photostamp.Config, quiet time.Duration) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new watcher: %w", err)
	}
	defer w.Close()

	as, err := photostamp.Discover(c.Root, c.OutDirName, c.Formats)
	if err != nil {
		return err
	}
	dirs := []string{c.Root}
	for _, a := range as {
		dirs = append(dirs, a.InPath)
	}

	klog.Infof("watching %d dirs ...", len(dirs))
	for _, d := range dirs {
		if err := w.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}

	changes := make(chan struct{})
	defer close(changes)
	settled := debounce(ctx, changes, quiet)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) == c.OutDirName || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) {
				continue
			}
			klog.V(1).Infof("event: %s", event)
			if event.Has(fsnotify.Create) {
				if st, err := os.Stat(event.Name); err == nil && st.IsDir() {
					if err := w.Add(event.Name); err != nil {
						klog.Errorf("watch %s: %v", event.Name, err)
					}
				}
			}
			select {
			case changes <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}
		case _, ok := <-settled:
			if !ok {
				return ctx.Err()
			}
			klog.Infof("changes settled, restamping %s", c.Root)
			sum, err := photostamp.Run(ctx, c)
			if err != nil {
				return err
			}
			fmt.Println(sum)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			klog.Errorf("watch error: %v", err)
		}
	}
}

// debounce sends one value on the returned channel after in has been quiet
// for the given duration. A burst that arrives while the previous value is
// still unread folds into it.
func debounce(ctx context.Context, in <-chan struct{}, quiet time.Duration) <-chan struct{} {
	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		t := time.NewTimer(quiet)
		t.Stop()
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-in:
				if !ok {
					return
				}
				t.Reset(quiet)
			case <-t.C:
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out
}
