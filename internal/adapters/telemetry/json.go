package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/okian/trainsync/internal/domain/model"
	"github.com/okian/trainsync/pkg/logger"
)

// Provider timestamps come in two shapes depending on export age.
var startLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// providerActivity is the typed boundary for one exported activity. Optional
// numeric fields are pointers so absence survives into the record.
type providerActivity struct {
	ActivityID   json.Number `json:"activityId"`
	ActivityName string      `json:"activityName"`
	StartLocal   string      `json:"startTimeLocal"`
	Duration     float64     `json:"duration"`
	Moving       float64     `json:"movingDuration"`

	ActivityType struct {
		TypeKey string `json:"typeKey"`
	} `json:"activityType"`

	Distance      float64 `json:"distance"`
	Calories      float64 `json:"calories"`
	ElevationGain float64 `json:"elevationGain"`

	AverageHR  *float64 `json:"averageHR"`
	MaxHR      *float64 `json:"maxHR"`
	AvgPower   *float64 `json:"avgPower"`
	MaxPower   *float64 `json:"maxPower"`
	AvgCadence *float64 `json:"averageBikingCadenceInRevPerMinute"`
	AvgRunCad  *float64 `json:"averageRunningCadenceInStepsPerMinute"`
	AvgSpeed   *float64 `json:"averageSpeed"` // m/s

	PerceivedEffort *float64 `json:"perceivedEffort"`
	RPERaw          *float64 `json:"directWorkoutRpe"`
	Feeling         *float64 `json:"feeling"`
	FeelRaw         *float64 `json:"directWorkoutFeel"`
}

// JSONExportSource reads a provider activity export file (a JSON array of
// activity objects) from disk.
type JSONExportSource struct {
	path string
	log  logger.Logger
}

// NewJSONExportSource creates a source over the given export file.
func NewJSONExportSource(path string, opts ...JSONOption) *JSONExportSource {
	s := &JSONExportSource{path: path}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// JSONOption applies a configuration option to the JSONExportSource.
type JSONOption func(*JSONExportSource)

// WithJSONLogger sets the logger used for row-level skip reporting.
func WithJSONLogger(log logger.Logger) JSONOption {
	return func(s *JSONExportSource) {
		if log != nil {
			s.log = log
		}
	}
}

// Records decodes the export. Individual activities with no id or an
// unparseable start timestamp are skipped; a missing or syntactically
// broken file fails the whole source.
func (s *JSONExportSource) Records(ctx context.Context) ([]model.TelemetryRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTelemetryUnavailable, s.path, err)
	}

	var activities []providerActivity
	if err := json.Unmarshal(data, &activities); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrTelemetryUnavailable, s.path, err)
	}

	records := make([]model.TelemetryRecord, 0, len(activities))
	for _, a := range activities {
		rec, err := a.toRecord()
		if err != nil {
			if s.log != nil {
				s.log.Warn(ctx, "skipping telemetry activity",
					logger.String("id", a.ActivityID.String()),
					logger.Error(err))
			}
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (a providerActivity) toRecord() (model.TelemetryRecord, error) {
	id := a.ActivityID.String()
	if id == "" {
		return model.TelemetryRecord{}, fmt.Errorf("missing activity id")
	}
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		return model.TelemetryRecord{}, fmt.Errorf("bad activity id %q", id)
	}

	var start time.Time
	var err error
	for _, layout := range startLayouts {
		if start, err = time.ParseInLocation(layout, a.StartLocal, time.Local); err == nil {
			break
		}
	}
	if err != nil {
		return model.TelemetryRecord{}, fmt.Errorf("bad start timestamp %q", a.StartLocal)
	}

	cadence := a.AvgCadence
	if cadence == nil {
		cadence = a.AvgRunCad
	}

	return model.TelemetryRecord{
		ID:       id,
		Name:     a.ActivityName,
		Start:    start,
		Elapsed:  a.Duration,
		Moving:   a.Moving,
		SportKey: a.ActivityType.TypeKey,

		DistanceM:     a.Distance,
		Calories:      a.Calories,
		ElevationGain: a.ElevationGain,

		AvgHeartRate: a.AverageHR,
		MaxHeartRate: deref(a.MaxHR),
		AvgPower:     a.AvgPower,
		MaxPower:     deref(a.MaxPower),
		AvgCadence:   cadence,
		AvgSpeed:     a.AvgSpeed,

		PerceivedEffort:    a.PerceivedEffort,
		RawPerceivedEffort: a.RPERaw,
		Feeling:            a.Feeling,
		RawFeeling:         a.FeelRaw,
	}, nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
