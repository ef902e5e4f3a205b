package telemetry

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/tormoder/fit"

	"github.com/okian/trainsync/internal/domain/model"
	"github.com/okian/trainsync/pkg/logger"
)

// FITDirSource decodes every .fit activity file in a directory. Record ids
// are derived from file names, which are stable per provider download.
type FITDirSource struct {
	dir string
	log logger.Logger
}

// NewFITDirSource creates a source over a directory of FIT files.
func NewFITDirSource(dir string, opts ...FITOption) *FITDirSource {
	s := &FITDirSource{dir: dir}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FITOption applies a configuration option to the FITDirSource.
type FITOption func(*FITDirSource)

// WithFITLogger sets the logger used for per-file skip reporting.
func WithFITLogger(log logger.Logger) FITOption {
	return func(s *FITDirSource) {
		if log != nil {
			s.log = log
		}
	}
}

// Records decodes all activity files. A file that fails to decode is skipped
// with a logged reason; a missing directory fails the whole source.
func (s *FITDirSource) Records(ctx context.Context) ([]model.TelemetryRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTelemetryUnavailable, s.dir, err)
	}

	var records []model.TelemetryRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".fit") {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		rec, err := decodeFITFile(path)
		if err != nil {
			if s.log != nil {
				s.log.Warn(ctx, "skipping FIT file",
					logger.String("path", path),
					logger.Error(err))
			}
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func decodeFITFile(path string) (model.TelemetryRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.TelemetryRecord{}, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	decoded, err := fit.Decode(f)
	if err != nil {
		return model.TelemetryRecord{}, fmt.Errorf("decode: %w", err)
	}
	activity, err := decoded.Activity()
	if err != nil {
		return model.TelemetryRecord{}, fmt.Errorf("activity file expected: %w", err)
	}
	if len(activity.Sessions) == 0 {
		return model.TelemetryRecord{}, fmt.Errorf("no session message")
	}
	sess := activity.Sessions[0]

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	rec := model.TelemetryRecord{
		ID:       fitRecordID(base),
		Name:     base,
		Start:    sess.StartTime,
		Elapsed:  safePositive(sess.GetTotalTimerTimeScaled()),
		Moving:   safePositive(sess.GetTotalMovingTimeScaled()),
		SportKey: fitSportKey(sess.Sport),

		DistanceM:     safePositive(sess.GetTotalDistanceScaled()),
		Calories:      float64(validUint16(sess.TotalCalories)),
		ElevationGain: float64(validUint16(sess.TotalAscent)),

		MaxHeartRate: float64(validUint8(sess.MaxHeartRate)),
		MaxPower:     float64(validUint16(sess.MaxPower)),
	}
	if rec.Start.IsZero() || fit.IsBaseTime(rec.Start) {
		return model.TelemetryRecord{}, fmt.Errorf("no usable start timestamp")
	}

	if hr := validUint8(sess.AvgHeartRate); hr > 0 {
		v := float64(hr)
		rec.AvgHeartRate = &v
	}
	if p := validUint16(sess.AvgPower); p > 0 {
		v := float64(p)
		rec.AvgPower = &v
	}
	if cad := cadenceFromAny(sess.GetAvgCadence()); cad > 0 {
		rec.AvgCadence = &cad
	}
	speed := safePositive(sess.GetEnhancedAvgSpeedScaled())
	if speed == 0 {
		speed = safePositive(sess.GetAvgSpeedScaled())
	}
	if speed > 0 {
		rec.AvgSpeed = &speed
	}
	return rec, nil
}

// fitRecordID derives a claimable id from a file name. Commas and pipes
// would corrupt the comma-joined activity-id column of the ledger table, so
// they are replaced before the id can enter a claim.
func fitRecordID(base string) string {
	return "fit-" + strings.Map(func(r rune) rune {
		switch r {
		case ',', '|':
			return '-'
		default:
			return r
		}
	}, base)
}

// fitSportKey maps the FIT sport enum onto provider-style classification
// keys so both sources resolve through the same table.
func fitSportKey(s fit.Sport) string {
	switch s {
	case fit.SportRunning:
		return "running"
	case fit.SportCycling:
		return "cycling"
	case fit.SportSwimming:
		return "swimming"
	default:
		return strings.ToLower(fmt.Sprint(s))
	}
}

func validUint8(v uint8) uint8 {
	if v == math.MaxUint8 {
		return 0
	}
	return v
}

func validUint16(v uint16) uint16 {
	if v == math.MaxUint16 {
		return 0
	}
	return v
}

func cadenceFromAny(v any) float64 {
	switch x := v.(type) {
	case uint8:
		if x == math.MaxUint8 {
			return 0
		}
		return float64(x)
	case uint16:
		if x == math.MaxUint16 {
			return 0
		}
		return float64(x)
	case float64:
		return safePositive(x)
	default:
		return 0
	}
}

func safePositive(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	return v
}
