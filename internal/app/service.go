// Package service orchestrates one reconciliation pass: plan ingestion,
// claim-based matching of telemetry bundles against pending ledger rows, and
// promotion of unplanned sessions.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/trainsync/internal/adapters/planfile"
	"github.com/okian/trainsync/internal/adapters/repository"
	"github.com/okian/trainsync/internal/adapters/telemetry"
	"github.com/okian/trainsync/internal/domain/bundle"
	"github.com/okian/trainsync/internal/domain/claims"
	"github.com/okian/trainsync/internal/domain/cluster"
	"github.com/okian/trainsync/internal/domain/model"
	"github.com/okian/trainsync/internal/domain/timeline"
	"github.com/okian/trainsync/pkg/logger"
	"github.com/okian/trainsync/pkg/metrics"
)

// Default reconciliation configuration constants.
const (
	defaultWindowDays = 7
	secondsPerMinute  = 60
	metersPerKM       = 1000
	mpsToKPH          = 3.6

	// Provider encodings for subjective fields when the flat value is absent.
	effortRawScale = 10
	feelRawScale   = 25
)

// Skip reasons reported on the skipped-rows metric.
const (
	reasonUntaggedSport = "untagged_sport"
	reasonNoCandidates  = "no_candidates"
	reasonAllClaimed    = "all_claimed"
)

// Summary reports what a single reconciliation run did to the ledger.
type Summary struct {
	RunID    string
	Planned  int // new plan-derived rows appended
	Linked   int // pending rows matched to telemetry
	Promoted int // unplanned sessions appended
	Skipped  int // in-window pending rows left unmatched
	Rows     int // ledger size after the run
}

// Service runs reconciliation passes. A pass is single-threaded and batch:
// the ledger is read in full, mutated in memory, and written back in full.
// Callers must not run two passes concurrently against the same ledger file.
type Service struct {
	store  repository.Store
	source telemetry.Source
	plans  *planfile.Extractor

	clusterer  *cluster.Clusterer
	windowDays int
	now        func() time.Time

	logger logger.Logger
}

// New creates a reconciliation service over the given ledger store and
// telemetry source.
func New(store repository.Store, source telemetry.Source, opts ...Option) *Service {
	s := &Service{
		store:      store,
		source:     source,
		windowDays: defaultWindowDays,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("reconcile")
	}
	if s.clusterer == nil {
		s.clusterer = cluster.New()
	}
	if s.plans == nil {
		s.plans = planfile.New(planfile.WithClock(s.now), planfile.WithLogger(s.logger))
	}
	return s
}

// Run executes one full reconciliation pass against planText and persists the
// resulting ledger. A missing or unreadable ledger or telemetry source aborts
// the run before any write; malformed individual rows are skipped and logged.
func (s *Service) Run(ctx context.Context, planText string) (Summary, error) {
	started := s.now()
	sum := Summary{RunID: uuid.NewString()}
	log := s.logger

	rows, err := s.store.Load(ctx)
	if err != nil {
		metrics.RecordRunFailure()
		return sum, fmt.Errorf("loading ledger: %w", err)
	}

	records, err := s.source.Records(ctx)
	if err != nil {
		metrics.RecordRunFailure()
		return sum, fmt.Errorf("loading telemetry: %w", err)
	}
	index := timeline.ByDay(records)
	metrics.AddTelemetryRecords(index.Len())

	log.Info(ctx, "reconciliation run started",
		logger.String("run_id", sum.RunID),
		logger.Int("ledger_rows", len(rows)),
		logger.Int("telemetry_records", index.Len()))

	rows = s.ingestPlan(ctx, rows, planText, &sum)

	set := s.seedClaims(ctx, rows)

	s.linkPending(ctx, rows, index, set, &sum)
	rows = s.promoteUnplanned(ctx, rows, index, set, &sum)

	if err := s.store.Save(ctx, rows); err != nil {
		metrics.RecordRunFailure()
		return sum, fmt.Errorf("persisting ledger: %w", err)
	}
	sum.Rows = len(rows)

	metrics.RecordRun()
	metrics.RecordRunDuration(s.now().Sub(started).Seconds())
	metrics.UpdateClaimedIDs(set.Size())
	metrics.UpdateLedgerRows(len(rows))

	log.Info(ctx, "reconciliation run finished",
		logger.String("run_id", sum.RunID),
		logger.Int("planned", sum.Planned),
		logger.Int("linked", sum.Linked),
		logger.Int("promoted", sum.Promoted),
		logger.Int("skipped", sum.Skipped))
	return sum, nil
}

// ingestPlan appends planned entries not already represented on the ledger,
// deduplicated by calendar day plus exact planned-workout text.
func (s *Service) ingestPlan(ctx context.Context, rows []model.LedgerRow, planText string, sum *Summary) []model.LedgerRow {
	entries := s.plans.Extract(ctx, planText)
	if len(entries) == 0 {
		return rows
	}

	seen := make(map[string]struct{}, len(rows))
	for i := range rows {
		seen[planKey(rows[i].Day(), rows[i].PlannedWorkout)] = struct{}{}
	}

	for _, e := range entries {
		key := planKey(timeline.DayKey(e.Date), e.Workout)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		rows = append(rows, model.LedgerRow{
			Status:             model.StatusPending,
			Date:               e.Date,
			PlannedWorkout:     e.Workout,
			PlannedDurationMin: e.DurationMin,
			Notes:              e.Notes,
		})
		sum.Planned++
		metrics.AddRowsPlanned(1)
	}
	return rows
}

func planKey(day, workout string) string {
	return day + "\x00" + workout
}

// seedClaims builds the claim set from every activity id already on the
// ledger, splitting comma-joined bundle ids into individual members. An id
// appearing on two rows is a ledger integrity fault; it is logged and the
// first claimant wins.
func (s *Service) seedClaims(ctx context.Context, rows []model.LedgerRow) *claims.Set {
	set := claims.NewSet()
	for i := range rows {
		for _, id := range rows[i].ActivityIDs() {
			if err := set.Claim(id); err != nil {
				s.logger.Warn(ctx, "activity id claimed by more than one row",
					logger.String("activity_id", id),
					logger.String("date", rows[i].Day()))
			}
		}
	}
	return set
}

// linkPending walks in-window pending rows and links each to the first
// same-date, same-sport bundle whose member ids are all unclaimed.
func (s *Service) linkPending(ctx context.Context, rows []model.LedgerRow, index timeline.Index, set *claims.Set, sum *Summary) {
	for i := range rows {
		row := &rows[i]
		if row.Status != model.StatusPending || row.ActivityID != "" {
			continue
		}
		if !s.inWindow(row.Date) {
			continue
		}

		sport, tagged := row.DeclaredSport()
		if !tagged {
			// An untagged row never auto-links; guessing a sport risks
			// consuming another row's candidate.
			s.skipRow(ctx, row, reasonUntaggedSport, sum)
			continue
		}

		clusters := s.clusterer.ForSport(index.Records(row.Day()), sport)
		if len(clusters) == 0 {
			s.skipRow(ctx, row, reasonNoCandidates, sum)
			continue
		}

		linked := false
		for _, c := range clusters {
			sess := bundle.Aggregate(c)
			if !set.AllUnclaimed(sess.IDs) {
				continue
			}
			if err := set.Claim(sess.IDs...); err != nil {
				continue
			}
			s.link(row, sess)
			sum.Linked++
			metrics.AddRowsLinked(1)
			s.logger.Debug(ctx, "linked row to session",
				logger.String("date", row.Day()),
				logger.String("activity_id", sess.ID()))
			linked = true
			break
		}
		if !linked {
			s.skipRow(ctx, row, reasonAllClaimed, sum)
		}
	}
}

func (s *Service) skipRow(ctx context.Context, row *model.LedgerRow, reason string, sum *Summary) {
	sum.Skipped++
	metrics.RecordRowSkipped(reason)
	s.logger.Debug(ctx, "row left pending",
		logger.String("date", row.Day()),
		logger.String("reason", reason))
}

// link transitions a pending row to COMPLETED/Linked and copies the bundled
// session's metric fields onto it.
func (s *Service) link(row *model.LedgerRow, sess bundle.Session) {
	row.Status = model.StatusCompleted
	row.Match = model.MatchLinked
	row.ActualWorkout = displayName(sess.Record)
	copyMetrics(row, sess)
}

// promoteUnplanned appends a COMPLETED/Unplanned row for every in-window
// recognized-sport bundle whose ids survived the linking phase unclaimed.
func (s *Service) promoteUnplanned(ctx context.Context, rows []model.LedgerRow, index timeline.Index, set *claims.Set, sum *Summary) []model.LedgerRow {
	for _, day := range index.Days() {
		date, err := time.ParseInLocation("2006-01-02", day, time.Local)
		if err != nil {
			continue
		}
		if !s.inWindow(date) {
			continue
		}

		for _, c := range s.clusterer.Recognized(index.Records(day)) {
			sess := bundle.Aggregate(c)
			if !set.AllUnclaimed(sess.IDs) {
				continue
			}
			if err := set.Claim(sess.IDs...); err != nil {
				continue
			}

			row := model.LedgerRow{
				Status:        model.StatusCompleted,
				Match:         model.MatchUnplanned,
				Date:          date,
				ActualWorkout: displayName(sess.Record),
			}
			copyMetrics(&row, sess)
			rows = append(rows, row)
			sum.Promoted++
			metrics.AddRowsPromoted(1)
			s.logger.Debug(ctx, "promoted unplanned session",
				logger.String("date", day),
				logger.String("activity_id", sess.ID()))
		}
	}
	return rows
}

// inWindow reports whether a calendar date falls inside the trailing match
// window ending today. Rows outside stay untouched even when telemetry for
// their date exists.
func (s *Service) inWindow(date time.Time) bool {
	today := dayStart(s.now())
	cutoff := today.AddDate(0, 0, -s.windowDays)
	day := dayStart(date)
	return !day.Before(cutoff) && !day.After(today)
}

// copyMetrics maps a bundled session's telemetry fields onto a ledger row,
// converting units (seconds to minutes, meters to kilometers, m/s to km/h)
// and decoding subjective fields when only the raw encoding is present.
func copyMetrics(row *model.LedgerRow, sess bundle.Session) {
	rec := sess.Record

	row.ActualDurationMin = rec.TotalDuration() / secondsPerMinute
	row.DistanceKM = rec.DistanceM / metersPerKM
	row.Calories = rec.Calories
	row.ElevationGain = rec.ElevationGain
	row.AvgHeartRate = rec.AvgHeartRate
	row.MaxHeartRate = rec.MaxHeartRate
	row.AvgPower = rec.AvgPower
	row.MaxPower = rec.MaxPower
	row.AvgCadence = rec.AvgCadence
	if rec.AvgSpeed != nil {
		kph := *rec.AvgSpeed * mpsToKPH
		row.AvgSpeedKPH = &kph
	}

	row.PerceivedEffort = rec.PerceivedEffort
	if row.PerceivedEffort == nil && rec.RawPerceivedEffort != nil {
		v := *rec.RawPerceivedEffort / effortRawScale
		row.PerceivedEffort = &v
	}
	row.Feeling = rec.Feeling
	if row.Feeling == nil && rec.RawFeeling != nil {
		v := *rec.RawFeeling/feelRawScale + 1
		row.Feeling = &v
	}

	row.ActivityID = sess.ID()
}

// displayName prefixes the session name with the bracketed sport tag unless
// that exact tag is already present. A provider name that merely starts with
// a bracket ("[Intervals] hard") still gets the tag.
func displayName(rec model.TelemetryRecord) string {
	name := strings.TrimSpace(rec.Name)
	if name == "" {
		name = rec.SportKey
	}
	tag := rec.Sport().Tag()
	if strings.HasPrefix(name, tag) {
		return name
	}
	return tag + " " + name
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
