// Package bundle merges a session cluster into one synthetic record.
package bundle

import (
	"fmt"
	"strings"

	"github.com/okian/trainsync/internal/domain/cluster"
	"github.com/okian/trainsync/internal/domain/model"
)

// Session is the aggregate of a cluster: one synthetic record plus the ids
// of every constituent telemetry record, in cluster order.
type Session struct {
	Record model.TelemetryRecord
	IDs    []string
}

// ID returns the bundle identifier: the comma-joined member ids.
func (s Session) ID() string {
	return strings.Join(s.IDs, ",")
}

// Aggregate reduces a cluster to a single session.
//
// A single-member cluster is returned verbatim. For multi-member clusters the
// primary record (greatest total duration, ties by cluster order) seeds the
// name and subjective metadata; volume fields are summed, rate fields are
// duration-weighted averages over the members that supply them, and peak
// fields take the maximum.
func Aggregate(c cluster.Cluster) Session {
	ids := make([]string, len(c.Records))
	for i, r := range c.Records {
		ids[i] = r.ID
	}

	if len(c.Records) == 1 {
		return Session{Record: c.Records[0], IDs: ids}
	}

	primary := c.Records[0]
	for _, r := range c.Records[1:] {
		if r.TotalDuration() > primary.TotalDuration() {
			primary = r
		}
	}

	agg := model.TelemetryRecord{
		ID:       strings.Join(ids, ","),
		Name:     fmt.Sprintf("%s +%d", primary.Name, len(c.Records)-1),
		Start:    c.Records[0].Start,
		SportKey: primary.SportKey,

		PerceivedEffort:    primary.PerceivedEffort,
		RawPerceivedEffort: primary.RawPerceivedEffort,
		Feeling:            primary.Feeling,
		RawFeeling:         primary.RawFeeling,
	}

	for _, r := range c.Records {
		// Each member contributes its elapsed duration, falling back to its
		// moving duration, so an elapsed-only and a moving-only member both
		// count toward the bundle's total.
		agg.Elapsed += r.TotalDuration()
		agg.Moving += r.Moving
		agg.DistanceM += r.DistanceM
		agg.Calories += r.Calories
		agg.ElevationGain += r.ElevationGain
		if r.MaxHeartRate > agg.MaxHeartRate {
			agg.MaxHeartRate = r.MaxHeartRate
		}
		if r.MaxPower > agg.MaxPower {
			agg.MaxPower = r.MaxPower
		}
	}

	agg.AvgHeartRate = weightedAverage(c.Records, func(r model.TelemetryRecord) *float64 { return r.AvgHeartRate })
	agg.AvgPower = weightedAverage(c.Records, func(r model.TelemetryRecord) *float64 { return r.AvgPower })
	agg.AvgCadence = weightedAverage(c.Records, func(r model.TelemetryRecord) *float64 { return r.AvgCadence })
	agg.AvgSpeed = weightedAverage(c.Records, func(r model.TelemetryRecord) *float64 { return r.AvgSpeed })

	return Session{Record: agg, IDs: ids}
}

// weightedAverage combines a rate field across members by duration-weighted
// average, skipping members where the field is absent. If no member supplies
// the field the aggregate stays absent rather than zero.
func weightedAverage(records []model.TelemetryRecord, field func(model.TelemetryRecord) *float64) *float64 {
	var weighted, total float64
	for _, r := range records {
		v := field(r)
		d := r.TotalDuration()
		if v == nil || d <= 0 {
			continue
		}
		weighted += *v * d
		total += d
	}
	if total == 0 {
		return nil
	}
	avg := weighted / total
	return &avg
}
