package filesystem

import (
	"os"

	"audio-segment-downloader/domain/segment"
)

// Checker implements segment.FileChecker using the os package
type Checker struct{}

// NewChecker creates a new filesystem checker
func NewChecker() *Checker {
	return &Checker{}
}

// Exists returns true if path exists and is a regular file
func (c *Checker) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Ensure Checker implements segment.FileChecker
var _ segment.FileChecker = (*Checker)(nil)
