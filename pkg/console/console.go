// Package console provides the interactive front end: confirmation, manual date entry, and progress.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Prompter asks the operator questions.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New returns a Prompter reading answers from in and writing questions to out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

func (p *Prompter) line() (string, error) {
	s, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// Confirm presents the work about to be done and reports whether the operator agreed.
// Anything but y or yes, including end of input, declines.
func (p *Prompter) Confirm(albums, files int) bool {
	fmt.Fprintf(p.out, "About to stamp %d images in %d subdirectories. Continue? [y/N]: ", files, albums)
	s, err := p.line()
	if err != nil {
		fmt.Fprintln(p.out)
		return false
	}
	switch strings.ToLower(s) {
	case "y", "yes":
		return true
	}
	return false
}

// Date asks the operator for the date to stamp on the image at path.
// It satisfies photostamp.DateFallback.
func (p *Prompter) Date(path string, cause error) (string, error) {
	fmt.Fprintf(p.out, "\nNo date available for %s (%v)\n", filepath.Base(path), cause)
	fmt.Fprintf(p.out, "Enter the date as it should appear, e.g. \"January 2021\" or \"November 1980\": ")
	s, err := p.line()
	if err != nil {
		return "", fmt.Errorf("read date: %w", err)
	}
	return s, nil
}

// Progress returns a progress callback printing current/total to out.
func Progress(out io.Writer) func(done, total int) {
	return func(done, total int) {
		if total <= 0 {
			return
		}
		fmt.Fprintf(out, "[%d/%d] %3.0f%%\n", done, total, float64(done)*100/float64(total))
	}
}
