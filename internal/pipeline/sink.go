package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
)

// Sink stages received bytes in a temp file inside the destination
// directory and only exposes them at destPath once Commit is called.
// A half-written Transit download must never appear at its final name,
// so every write lands in the temp file and only Commit renames it into
// place.
type Sink struct {
	tmp      *os.File
	destPath string
}

// NewSink creates the staging temp file for filename inside destDir.
func NewSink(destDir, filename string) (*Sink, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("pipeline: create destination dir: %w", err)
	}
	tmp, err := os.CreateTemp(destDir, ".transit-*.part")
	if err != nil {
		return nil, fmt.Errorf("pipeline: create temp file: %w", err)
	}
	return &Sink{tmp: tmp, destPath: filepath.Join(destDir, filename)}, nil
}

// Write implements io.Writer against the staged temp file.
func (s *Sink) Write(p []byte) (int, error) {
	return s.tmp.Write(p)
}

// Commit closes the temp file and atomically renames it onto destPath.
func (s *Sink) Commit() error {
	if err := s.tmp.Close(); err != nil {
		return fmt.Errorf("pipeline: close temp file: %w", err)
	}
	if err := os.Rename(s.tmp.Name(), s.destPath); err != nil {
		return fmt.Errorf("pipeline: rename into place: %w", err)
	}
	return nil
}

// Discard closes and removes the temp file without ever exposing it at
// destPath, used when the transfer aborts.
func (s *Sink) Discard() error {
	s.tmp.Close()
	return os.Remove(s.tmp.Name())
}

// Name returns the final destination path this sink commits to.
func (s *Sink) Name() string {
	return s.destPath
}
