package telemetry_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/trainsync/internal/adapters/telemetry"
	"github.com/okian/trainsync/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const sampleExport = `[
  {
    "activityId": 101,
    "activityName": "Morning Ride",
    "startTimeLocal": "2026-01-10 09:00:00",
    "duration": 1500.0,
    "movingDuration": 1480.0,
    "activityType": {"typeKey": "cycling"},
    "distance": 12000.0,
    "calories": 300,
    "elevationGain": 150,
    "averageHR": 140,
    "maxHR": 166,
    "avgPower": 200,
    "maxPower": 450,
    "averageBikingCadenceInRevPerMinute": 85,
    "averageSpeed": 8.0,
    "directWorkoutRpe": 70,
    "directWorkoutFeel": 75
  },
  {
    "activityId": 102,
    "activityName": "Evening Run",
    "startTimeLocal": "2026-01-10T18:30:00",
    "duration": 2400.0,
    "activityType": {"typeKey": "running"},
    "averageRunningCadenceInStepsPerMinute": 172
  },
  {
    "activityName": "No Id",
    "startTimeLocal": "2026-01-10 20:00:00",
    "activityType": {"typeKey": "running"}
  },
  {
    "activityId": 104,
    "activityName": "Bad Start",
    "startTimeLocal": "yesterday-ish",
    "activityType": {"typeKey": "running"}
  }
]`

func writeExport(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "activities.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestJSONExportSource(t *testing.T) {
	ctx := context.Background()

	Convey("Given a provider activity export", t, func() {
		src := telemetry.NewJSONExportSource(writeExport(t, sampleExport))
		records, err := src.Records(ctx)

		Convey("Then well-formed activities decode into records", func() {
			So(err, ShouldBeNil)
			So(records, ShouldHaveLength, 2)
		})

		Convey("Then numeric and optional fields map through", func() {
			r := records[0]
			So(r.ID, ShouldEqual, "101")
			So(r.Name, ShouldEqual, "Morning Ride")
			So(r.Elapsed, ShouldEqual, 1500)
			So(r.Moving, ShouldEqual, 1480)
			So(r.Sport(), ShouldEqual, model.SportBike)
			So(r.DistanceM, ShouldEqual, 12000)
			So(r.AvgHeartRate, ShouldNotBeNil)
			So(*r.AvgHeartRate, ShouldEqual, 140)
			So(r.MaxHeartRate, ShouldEqual, 166)
			So(r.MaxPower, ShouldEqual, 450)
			So(r.AvgCadence, ShouldNotBeNil)
			So(*r.AvgCadence, ShouldEqual, 85)
		})

		Convey("Then raw subjective fields stay raw at the boundary", func() {
			r := records[0]
			So(r.PerceivedEffort, ShouldBeNil)
			So(r.RawPerceivedEffort, ShouldNotBeNil)
			So(*r.RawPerceivedEffort, ShouldEqual, 70)
			So(r.RawFeeling, ShouldNotBeNil)
			So(*r.RawFeeling, ShouldEqual, 75)
		})

		Convey("Then both start timestamp shapes parse", func() {
			So(records[1].Start.Hour(), ShouldEqual, 18)
			So(records[1].Start.Minute(), ShouldEqual, 30)
		})

		Convey("Then running cadence feeds the cadence field", func() {
			So(records[1].AvgCadence, ShouldNotBeNil)
			So(*records[1].AvgCadence, ShouldEqual, 172)
		})

		Convey("Then activities without id or start are skipped", func() {
			for _, r := range records {
				So(r.ID, ShouldNotEqual, "")
				So(r.Name, ShouldNotEqual, "No Id")
				So(r.Name, ShouldNotEqual, "Bad Start")
			}
		})
	})

	Convey("Given a missing export file", t, func() {
		src := telemetry.NewJSONExportSource(filepath.Join(t.TempDir(), "nope.json"))
		_, err := src.Records(ctx)

		Convey("Then the source fails with ErrTelemetryUnavailable", func() {
			So(err, ShouldNotBeNil)
			So(errors.Is(err, telemetry.ErrTelemetryUnavailable), ShouldBeTrue)
		})
	})

	Convey("Given a syntactically broken export", t, func() {
		src := telemetry.NewJSONExportSource(writeExport(t, "{not json"))
		_, err := src.Records(ctx)

		Convey("Then the whole source fails, no partial decode", func() {
			So(errors.Is(err, telemetry.ErrTelemetryUnavailable), ShouldBeTrue)
		})
	})
}

func TestFITDirSource(t *testing.T) {
	ctx := context.Background()

	Convey("Given a missing FIT directory", t, func() {
		src := telemetry.NewFITDirSource(filepath.Join(t.TempDir(), "nope"))
		_, err := src.Records(ctx)

		Convey("Then the source fails with ErrTelemetryUnavailable", func() {
			So(errors.Is(err, telemetry.ErrTelemetryUnavailable), ShouldBeTrue)
		})
	})

	Convey("Given a directory with an undecodable FIT file", t, func() {
		dir := t.TempDir()
		So(os.WriteFile(filepath.Join(dir, "broken.fit"), []byte("not a fit file"), 0o644), ShouldBeNil)
		So(os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644), ShouldBeNil)

		src := telemetry.NewFITDirSource(dir)
		records, err := src.Records(ctx)

		Convey("Then the bad file is skipped and the source survives", func() {
			So(err, ShouldBeNil)
			So(records, ShouldBeEmpty)
		})
	})
}
