package types

import (
	"fmt"
	"strings"
)

// Statistics holds the per-run counters of an organization run.
// "Moved" counts moves that were performed, or would have been in a dry run.
type Statistics struct {
	FilesProcessed       int `json:"files_processed" yaml:"files_processed"`
	FilesMoved           int `json:"files_moved" yaml:"files_moved"`
	FilesSkipped         int `json:"files_skipped" yaml:"files_skipped"`
	DirectoriesProcessed int `json:"directories_processed" yaml:"directories_processed"`
	DirectoriesMoved     int `json:"directories_moved" yaml:"directories_moved"`
	DirectoriesSkipped   int `json:"directories_skipped" yaml:"directories_skipped"`
	Excluded             int `json:"excluded" yaml:"excluded"`
	Errors               int `json:"errors" yaml:"errors"`
}

// Failed reports whether the run recorded any error
func (s Statistics) Failed() bool {
	return s.Errors > 0
}

// String returns a single-line summary
func (s Statistics) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("files: %d processed, %d moved, %d skipped; ", s.FilesProcessed, s.FilesMoved, s.FilesSkipped))
	sb.WriteString(fmt.Sprintf("directories: %d processed, %d moved, %d skipped; ", s.DirectoriesProcessed, s.DirectoriesMoved, s.DirectoriesSkipped))
	sb.WriteString(fmt.Sprintf("excluded: %d; errors: %d", s.Excluded, s.Errors))
	return sb.String()
}
