package model

import "time"

// PlannedEntry is a row describing an intended workout before it occurs.
// Entries are immutable once extracted; a matched entry is superseded by the
// ledger row it seeded, never edited.
type PlannedEntry struct {
	Date        time.Time // calendar day
	Sport       Sport
	SportTagged bool // whether an explicit marker resolved the sport
	Workout     string
	DurationMin float64
	Notes       string
}
