// Package timeline indexes telemetry records by calendar date.
package timeline

import (
	"sort"
	"time"

	"github.com/okian/trainsync/internal/domain/model"
)

// DayKey formats a timestamp as the calendar-day key used across the ledger.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Index maps a calendar date (local start timestamp truncated to day) to the
// records starting that day. Provider-supplied order is preserved within a
// day as the secondary tie-break for the clusterer's stable sort.
type Index struct {
	byDay map[string][]model.TelemetryRecord
}

// ByDay builds an index from a flat record collection. Pure function: the
// input slice is not mutated and records are copied by value.
func ByDay(records []model.TelemetryRecord) Index {
	idx := Index{byDay: make(map[string][]model.TelemetryRecord)}
	for _, r := range records {
		if r.Start.IsZero() {
			continue
		}
		day := DayKey(r.Start)
		idx.byDay[day] = append(idx.byDay[day], r)
	}
	return idx
}

// Records returns the records starting on the given day, in provider order.
func (i Index) Records(day string) []model.TelemetryRecord {
	return i.byDay[day]
}

// Days returns all indexed calendar dates in ascending order.
func (i Index) Days() []string {
	days := make([]string, 0, len(i.byDay))
	for d := range i.byDay {
		days = append(days, d)
	}
	sort.Strings(days)
	return days
}

// Len returns the number of indexed records across all days.
func (i Index) Len() int {
	n := 0
	for _, recs := range i.byDay {
		n += len(recs)
	}
	return n
}
