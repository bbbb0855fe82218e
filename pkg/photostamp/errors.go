package photostamp

import (
	"errors"
	"fmt"
)

// Stage is a step of the per-file pipeline.
type Stage string

const (
	StageDiscovered Stage = "discovered"
	StageOpened     Stage = "opened"
	StageResolved   Stage = "metadata-resolved"
	StageStamped    Stage = "stamped"
	StageSaved      Stage = "saved"
)

var (
	ErrNoCaption      = errors.New("no IPTC caption")
	ErrNoDate         = errors.New("no EXIF DateTimeOriginal")
	ErrUnparsableDate = errors.New("unparsable DateTimeOriginal")
	ErrDeclined       = errors.New("declined by operator")
)

// StageError records which stage a file failed to reach.
type StageError struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Path, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// FailedStage returns the stage err failed at, or "" if err is not a *StageError.
func FailedStage(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
