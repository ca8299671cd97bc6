package organize

import (
	"dirsort/pkg/types"
)

// Organizer defines the interface for a file organization run
// This allows for dependency injection in tests and other parts of the application
type Organizer interface {
	// Run organizes the source tree and returns the run's statistics
	Run() types.Statistics

	// Statistics returns the counters of the last run
	Statistics() types.Statistics

	// ResetStatistics zeroes all counters
	ResetStatistics()

	// SetDryRun sets whether moves should be performed or just counted
	SetDryRun(dryRun bool)

	// IsDryRun returns whether moves are only counted
	IsDryRun() bool

	// SetLogger replaces the logger used for progress reporting
	SetLogger(l Logger)
}

// Ensure Engine implements the Organizer interface
var _ Organizer = (*Engine)(nil)
