package ingest

import "time"

// Report summarizes one rebuild run.
type Report struct {
	// RunID correlates the report with log entries and staging artifacts.
	RunID string

	// Documents and Topics are the row counts of the committed store.
	Documents int
	Topics    int

	// Skipped lists source files the run recovered from and left out.
	Skipped []SkippedFile

	// Collisions lists slugs where a later file replaced an earlier one.
	Collisions []string

	// ApproxCreationDates counts documents whose creation time degraded to
	// the modification time because the platform exposes no birth time.
	ApproxCreationDates int

	Duration time.Duration
}

// SkippedFile records a per-file failure that did not abort the run.
type SkippedFile struct {
	Path   string
	Reason string
}
