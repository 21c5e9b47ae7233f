package domain

import "time"

// SeedStats holds statistics about a catalog seed run.
type SeedStats struct {
	Fetched   int
	New       int
	Updated   int
	Errors    int
	Published int
	Duration  time.Duration
}
