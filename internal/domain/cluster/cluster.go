// Package cluster groups same-day telemetry records into logical sessions.
//
// A session cluster is a maximal run of same-sport records where each record
// starts within the chaining window of the previous record's end. Multi-part
// workouts recorded as separate provider activities (a ride interrupted by a
// flat, a swim split into sets) collapse into one cluster.
package cluster

import (
	"sort"
	"time"

	"github.com/okian/trainsync/internal/domain/model"
)

// DefaultGapWindow is the maximum gap between one record's end and the next
// record's start for them to chain into one session.
const DefaultGapWindow = 60 * time.Minute

// Cluster is an ordered, non-empty, sport-homogeneous sequence of records
// sharing one calendar date.
type Cluster struct {
	Sport   model.Sport
	Records []model.TelemetryRecord
}

// Clusterer walks same-day records and closes clusters on sport changes or
// gaps exceeding the chaining window.
type Clusterer struct {
	gap time.Duration
}

// New constructs a Clusterer with default configuration.
func New(opts ...Option) *Clusterer {
	c := &Clusterer{gap: DefaultGapWindow}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ForSport clusters records whose classification equals the target sport
// exactly. No partial or fuzzy sport matching happens here: when a plan
// declares a sport, a cross-sport link is never acceptable, even as the only
// same-day candidate. OTHER is not a matchable target and yields no clusters.
func (c *Clusterer) ForSport(records []model.TelemetryRecord, target model.Sport) []Cluster {
	if !target.Recognized() {
		return nil
	}
	return c.cluster(records, func(s model.Sport) bool { return s == target })
}

// Recognized clusters records of any recognized sport (RUN, BIKE, SWIM).
// Unclassifiable records are excluded entirely, so they can never be promoted
// as unplanned sessions.
func (c *Clusterer) Recognized(records []model.TelemetryRecord) []Cluster {
	return c.cluster(records, model.Sport.Recognized)
}

func (c *Clusterer) cluster(records []model.TelemetryRecord, keep func(model.Sport) bool) []Cluster {
	filtered := make([]model.TelemetryRecord, 0, len(records))
	for _, r := range records {
		if keep(r.Sport()) {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) == 0 {
		return nil
	}

	// Stable sort keeps provider order as the tie-break for equal starts.
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Start.Before(filtered[j].Start)
	})

	var out []Cluster
	current := Cluster{Sport: filtered[0].Sport(), Records: []model.TelemetryRecord{filtered[0]}}
	for _, r := range filtered[1:] {
		prev := current.Records[len(current.Records)-1]
		if r.Sport() == current.Sport && r.Start.Sub(prev.End()) <= c.gap {
			current.Records = append(current.Records, r)
			continue
		}
		out = append(out, current)
		current = Cluster{Sport: r.Sport(), Records: []model.TelemetryRecord{r}}
	}
	return append(out, current)
}
