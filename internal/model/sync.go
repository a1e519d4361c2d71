package model

import "time"

// ReconcileResult counts how each reconciled price record was persisted.
type ReconcileResult struct {
	Updated  int
	Inserted int
}

// Processed returns the total number of records written.
func (r ReconcileResult) Processed() int {
	return r.Updated + r.Inserted
}

// SyncSummary is the user-visible outcome of a single synchronization run.
type SyncSummary struct {
	RunID     string
	Found     int
	Fetched   int
	Persisted int
	Updated   int
	Inserted  int
	Elapsed   time.Duration
}
