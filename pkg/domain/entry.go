package domain

import "time"

// ListEntry is a Candidate that has been persisted to the curated list. It
// is created only through the approval -> persist transition, never silently
// overwritten, and removed only by an explicit user-confirmed edit.
type ListEntry struct {
	Candidate

	AddedAt time.Time `json:"added_at"`
}

// NewListEntry stamps a candidate at persistence time.
func NewListEntry(c Candidate, now time.Time) ListEntry {
	return ListEntry{Candidate: c.Clone(), AddedAt: now}
}
