package model

import (
	"strings"
	"time"
)

// Status is the completion state of a ledger row.
type Status string

// Row completion states.
const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
)

// MatchStatus records how telemetry was attributed to a row.
type MatchStatus string

// Match states. MatchNone is the initial state of plan-derived rows; the
// transition to MatchLinked happens at most once. Manual rows are terminal
// and never touched by a reconciliation run.
const (
	MatchNone      MatchStatus = ""
	MatchLinked    MatchStatus = "Linked"
	MatchUnplanned MatchStatus = "Unplanned"
	MatchManual    MatchStatus = "Manual"
)

// LedgerRow is the canonical persisted unit reconciling plan and actual.
// Rows are never deleted; they are created from planned entries (PENDING) or
// promoted from unmatched telemetry bundles (COMPLETED/Unplanned), and
// mutated in place when a match links telemetry to a pending row.
type LedgerRow struct {
	Status Status
	Match  MatchStatus
	Date   time.Time // calendar day

	PlannedWorkout     string
	PlannedDurationMin float64

	ActualWorkout     string
	ActualDurationMin float64 // minutes, one decimal when serialized

	DistanceKM    float64
	AvgHeartRate  *float64
	MaxHeartRate  float64
	AvgPower      *float64
	MaxPower      float64
	AvgCadence    *float64
	AvgSpeedKPH   *float64
	Calories      float64
	ElevationGain float64

	PerceivedEffort *float64
	Feeling         *float64

	Notes string

	// ActivityID holds the telemetry id consumed by this row, or the
	// comma-joined ids of a bundled session.
	ActivityID string
}

// ActivityIDs splits the row's activity-id field into individual telemetry
// record ids. Empty when no telemetry has been attributed.
func (r *LedgerRow) ActivityIDs() []string {
	if strings.TrimSpace(r.ActivityID) == "" {
		return nil
	}
	parts := strings.Split(r.ActivityID, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}

// DeclaredSport extracts the sport the plan declared for this row from the
// explicit marker in the planned workout text. Rows without a resolvable
// marker report false and are deliberately never auto-linked.
func (r *LedgerRow) DeclaredSport() (Sport, bool) {
	return ParseSportTag(r.PlannedWorkout)
}

// Day returns the row's date truncated to a calendar-day key (YYYY-MM-DD).
func (r *LedgerRow) Day() string {
	return r.Date.Format("2006-01-02")
}
