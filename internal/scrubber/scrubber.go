// Package scrubber runs the external DICOM anonymizer that produces the
// first-pass de-identified copy of a directory.
package scrubber

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultBinary is the anonymizer looked up on PATH when none is configured.
const DefaultBinary = "dicom-anonymizer"

// KeepPrivateTagsFlag asks the anonymizer to preserve vendor/private groups.
const KeepPrivateTagsFlag = "--keepPrivateTags"

// ErrNotInstalled is returned when the anonymizer binary cannot be found.
var ErrNotInstalled = errors.New("dicom anonymizer not installed")

// ExitError reports a non-zero exit from the anonymizer.
type ExitError struct {
	Args     []string
	ExitCode int
	Output   string
	Err      error
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", strings.Join(e.Args, " "), e.ExitCode)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

func (e *ExitError) Unwrap() error { return e.Err }

// Scrubber invokes the external anonymizer.
type Scrubber struct {
	// Path is the resolved binary.
	Path string
	// KeepPrivateTags adds --keepPrivateTags to every invocation.
	KeepPrivateTags bool
}

// New resolves binary (DefaultBinary when empty) and returns a Scrubber.
func New(binary string, keepPrivateTags bool) (*Scrubber, error) {
	path, err := LookupBinary(binary)
	if err != nil {
		return nil, err
	}
	return &Scrubber{Path: path, KeepPrivateTags: keepPrivateTags}, nil
}

// Args returns the argument vector for anonymizing src into dst, without the
// binary itself.
func (s *Scrubber) Args(src, dst string) []string {
	args := make([]string, 0, 3)
	if s.KeepPrivateTags {
		args = append(args, KeepPrivateTagsFlag)
	}
	return append(args, src, dst)
}

// Run anonymizes the files of src into dst and blocks until the tool exits.
// Its combined output is returned so callers can log it.
func (s *Scrubber) Run(ctx context.Context, src, dst string) (string, error) {
	args := s.Args(src, dst)
	cmd := exec.CommandContext(ctx, s.Path, args...)
	output, err := cmd.CombinedOutput()
	if err == nil {
		return string(output), nil
	}

	if ctx.Err() != nil {
		return string(output), fmt.Errorf("anonymizer interrupted: %w", ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return string(output), &ExitError{
			Args:     append([]string{s.Path}, args...),
			ExitCode: exitErr.ExitCode(),
			Output:   string(output),
			Err:      err,
		}
	}
	return string(output), fmt.Errorf("could not run %s: %w", s.Path, err)
}

// LookupBinary finds the anonymizer. Explicit paths are checked directly;
// bare names are looked up on PATH and then in common install directories
// that might not be on PATH.
func LookupBinary(binary string) (string, error) {
	if binary == "" {
		binary = DefaultBinary
	}

	if strings.ContainsRune(binary, filepath.Separator) {
		if isExecutable(binary) {
			return binary, nil
		}
		return "", fmt.Errorf("%w: %s", ErrNotInstalled, binary)
	}

	if path, err := exec.LookPath(binary); err == nil {
		return path, nil
	}

	for _, dir := range commonDirs() {
		path := filepath.Join(dir, binary)
		if isExecutable(path) {
			return path, nil
		}
	}

	return "", fmt.Errorf("%w: %s not found on PATH (install with: pip install dicom-anonymizer)", ErrNotInstalled, binary)
}

func commonDirs() []string {
	switch runtime.GOOS {
	case "darwin":
		// Homebrew paths (ARM and Intel)
		return []string{"/opt/homebrew/bin", "/usr/local/bin"}
	case "linux":
		return []string{"/usr/local/bin", "/usr/bin"}
	default:
		return nil
	}
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0111 != 0
}
