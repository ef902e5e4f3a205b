package timeline_test

import (
	"testing"
	"time"

	"github.com/okian/trainsync/internal/domain/model"
	"github.com/okian/trainsync/internal/domain/timeline"
	. "github.com/smartystreets/goconvey/convey"
)

func rec(id string, start time.Time) model.TelemetryRecord {
	return model.TelemetryRecord{ID: id, Start: start, Elapsed: 600, SportKey: "running"}
}

func TestByDay(t *testing.T) {
	Convey("Given a flat collection of telemetry records", t, func() {
		d1 := time.Date(2026, 1, 10, 9, 0, 0, 0, time.Local)
		d2 := time.Date(2026, 1, 11, 7, 30, 0, 0, time.Local)

		records := []model.TelemetryRecord{
			rec("a", d1),
			rec("b", d2),
			rec("c", d1.Add(2*time.Hour)),
		}

		idx := timeline.ByDay(records)

		Convey("When looking up a day with records", func() {
			day := idx.Records("2026-01-10")

			Convey("Then provider order is preserved", func() {
				So(day, ShouldHaveLength, 2)
				So(day[0].ID, ShouldEqual, "a")
				So(day[1].ID, ShouldEqual, "c")
			})
		})

		Convey("When looking up a day without records", func() {
			So(idx.Records("2026-01-12"), ShouldBeEmpty)
		})

		Convey("When listing indexed days", func() {
			So(idx.Days(), ShouldResemble, []string{"2026-01-10", "2026-01-11"})
		})

		Convey("When counting records", func() {
			So(idx.Len(), ShouldEqual, 3)
		})

		Convey("Then the input is not mutated", func() {
			So(records[0].ID, ShouldEqual, "a")
			So(records, ShouldHaveLength, 3)
		})
	})

	Convey("Given records with a zero start timestamp", t, func() {
		idx := timeline.ByDay([]model.TelemetryRecord{{ID: "x"}})

		Convey("Then they are not indexed", func() {
			So(idx.Len(), ShouldEqual, 0)
			So(idx.Days(), ShouldBeEmpty)
		})
	})
}
