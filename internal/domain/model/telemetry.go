package model

import "time"

// TelemetryRecord is one recorded activity session handed to the core by a
// telemetry source. Records are read-only inputs: the reconciler never
// mutates them, it only groups and aggregates copies.
//
// Optional rate fields are pointers so that "absent" survives aggregation;
// peak fields use zero as absent, matching the provider's encoding.
type TelemetryRecord struct {
	ID       string    // unique per provider
	Name     string    // provider display name
	Start    time.Time // local start timestamp
	Elapsed  float64   // elapsed duration, seconds
	Moving   float64   // moving duration, seconds
	SportKey string    // provider sport classification key, e.g. "cycling"

	DistanceM     float64 // meters
	Calories      float64
	ElevationGain float64 // meters

	AvgHeartRate *float64 // bpm
	MaxHeartRate float64  // bpm, 0 when absent
	AvgPower     *float64 // watts
	MaxPower     float64  // watts, 0 when absent
	AvgCadence   *float64 // rpm
	AvgSpeed     *float64 // m/s

	// Subjective fields. The flat values are on the final scale; the raw
	// values carry the provider's encoding (effort 10-100, feel 0-100) and
	// are decoded only when the flat field is absent.
	PerceivedEffort    *float64
	RawPerceivedEffort *float64
	Feeling            *float64
	RawFeeling         *float64
}

// Sport resolves the record's provider classification to a flat sport.
func (r TelemetryRecord) Sport() Sport {
	return ResolveSportKey(r.SportKey)
}

// TotalDuration returns the elapsed duration in seconds, falling back to the
// moving duration when the provider omitted it.
func (r TelemetryRecord) TotalDuration() float64 {
	if r.Elapsed > 0 {
		return r.Elapsed
	}
	return r.Moving
}

// End returns the wall-clock end of the record (start plus total duration),
// used for gap computation between same-day records.
func (r TelemetryRecord) End() time.Time {
	return r.Start.Add(time.Duration(r.TotalDuration() * float64(time.Second)))
}
