package domain

import "time"

// TrackerEntry is one row of the seen-items ledger, at most one per id.
// Entries are only added or updated, never deleted.
type TrackerEntry struct {
	ID             string
	FirstSeenAt    time.Time
	LastSeenAt     time.Time
	FilterInitial  bool
	FilterBusiness bool
	Enriched       bool
}
