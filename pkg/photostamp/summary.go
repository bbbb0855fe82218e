package photostamp

import (
	"fmt"
	"time"
)

// FileResult is the outcome of stamping one file.
type FileResult struct {
	Path   string
	Output string
	// Stage is the last stage reached, or the stage that failed when Err is set.
	Stage Stage
	Err   error

	CaptionSource Source
	DateSource    Source
	Duration      time.Duration
}

// OK reports whether the file was stamped and saved.
func (r FileResult) OK() bool {
	return r.Err == nil && r.Stage == StageSaved
}

// Summary describes a completed run.
type Summary struct {
	Albums  int
	Files   int
	Stamped int
	Failed  int
	// Elapsed covers stamping only, from after confirmation to the last file.
	Elapsed time.Duration
	Results []FileResult
}

// Mean is the average wall-clock time per processed file.
func (s *Summary) Mean() time.Duration {
	if len(s.Results) == 0 {
		return 0
	}
	return s.Elapsed / time.Duration(len(s.Results))
}

func (s *Summary) add(r FileResult) {
	s.Results = append(s.Results, r)
	if r.OK() {
		s.Stamped++
	} else {
		s.Failed++
	}
}

func (s *Summary) String() string {
	return fmt.Sprintf("Finished. albums=%d files=%d stamped=%d failed=%d elapsed=%s avg=%.2fs/file",
		s.Albums, s.Files, s.Stamped, s.Failed, s.Elapsed.Round(time.Millisecond), s.Mean().Seconds())
}
