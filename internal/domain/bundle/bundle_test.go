package bundle_test

import (
	"testing"
	"time"

	"github.com/okian/trainsync/internal/domain/bundle"
	"github.com/okian/trainsync/internal/domain/cluster"
	"github.com/okian/trainsync/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func ptr(v float64) *float64 { return &v }

func TestAggregate(t *testing.T) {
	Convey("Given session clusters", t, func() {
		start := time.Date(2026, 1, 10, 9, 0, 0, 0, time.Local)

		Convey("When the cluster has a single member", func() {
			member := model.TelemetryRecord{
				ID: "101", Name: "Morning Ride", Start: start,
				Elapsed: 1800, SportKey: "cycling",
				AvgPower: ptr(200), MaxPower: 450,
			}
			ses := bundle.Aggregate(cluster.Cluster{Sport: model.SportBike, Records: []model.TelemetryRecord{member}})

			Convey("Then the member is returned verbatim", func() {
				So(ses.Record, ShouldResemble, member)
				So(ses.IDs, ShouldResemble, []string{"101"})
				So(ses.ID(), ShouldEqual, "101")
			})
		})

		Convey("When the cluster has two members with power", func() {
			a := model.TelemetryRecord{
				ID: "101", Name: "Ride pt1", Start: start,
				Elapsed: 1800, SportKey: "cycling", AvgPower: ptr(200),
			}
			b := model.TelemetryRecord{
				ID: "102", Name: "Ride pt2", Start: start.Add(35 * time.Minute),
				Elapsed: 1200, SportKey: "cycling", AvgPower: ptr(250),
			}
			ses := bundle.Aggregate(cluster.Cluster{Sport: model.SportBike, Records: []model.TelemetryRecord{a, b}})

			Convey("Then the weighted average power is exact", func() {
				// (200*1800 + 250*1200) / 3000 = 220
				So(ses.Record.AvgPower, ShouldNotBeNil)
				So(*ses.Record.AvgPower, ShouldEqual, 220)
			})

			Convey("And volume fields are summed", func() {
				So(ses.Record.Elapsed, ShouldEqual, 3000)
			})

			Convey("And the primary seeds the display name", func() {
				So(ses.Record.Name, ShouldEqual, "Ride pt1 +1")
			})

			Convey("And the identifier joins member ids in cluster order", func() {
				So(ses.ID(), ShouldEqual, "101,102")
				So(ses.IDs, ShouldResemble, []string{"101", "102"})
			})
		})

		Convey("When a rate field is absent on one member", func() {
			a := model.TelemetryRecord{ID: "1", Name: "Run", Start: start, Elapsed: 600, SportKey: "running", AvgHeartRate: ptr(150)}
			b := model.TelemetryRecord{ID: "2", Name: "Run 2", Start: start.Add(15 * time.Minute), Elapsed: 600, SportKey: "running"}
			ses := bundle.Aggregate(cluster.Cluster{Sport: model.SportRun, Records: []model.TelemetryRecord{a, b}})

			Convey("Then the member without the field is skipped", func() {
				So(ses.Record.AvgHeartRate, ShouldNotBeNil)
				So(*ses.Record.AvgHeartRate, ShouldEqual, 150)
			})
		})

		Convey("When a rate field is absent on every member", func() {
			a := model.TelemetryRecord{ID: "1", Name: "Swim", Start: start, Elapsed: 600, SportKey: "lap_swimming"}
			b := model.TelemetryRecord{ID: "2", Name: "Swim 2", Start: start.Add(15 * time.Minute), Elapsed: 600, SportKey: "lap_swimming"}
			ses := bundle.Aggregate(cluster.Cluster{Sport: model.SportSwim, Records: []model.TelemetryRecord{a, b}})

			Convey("Then the aggregate field stays absent, not zero", func() {
				So(ses.Record.AvgPower, ShouldBeNil)
				So(ses.Record.AvgHeartRate, ShouldBeNil)
			})
		})

		Convey("When one member has only a moving duration", func() {
			a := model.TelemetryRecord{ID: "1", Name: "Ride", Start: start, Moving: 1200, SportKey: "cycling"}
			b := model.TelemetryRecord{ID: "2", Name: "Ride 2", Start: start.Add(30 * time.Minute), Elapsed: 1800, SportKey: "cycling"}
			ses := bundle.Aggregate(cluster.Cluster{Sport: model.SportBike, Records: []model.TelemetryRecord{a, b}})

			Convey("Then each member contributes its fallback duration", func() {
				So(ses.Record.TotalDuration(), ShouldEqual, 3000)
			})
		})

		Convey("When members carry peak fields", func() {
			a := model.TelemetryRecord{ID: "1", Name: "Ride", Start: start, Elapsed: 1800, SportKey: "cycling", MaxHeartRate: 160, MaxPower: 400}
			b := model.TelemetryRecord{ID: "2", Name: "Ride 2", Start: start.Add(40 * time.Minute), Elapsed: 1200, SportKey: "cycling", MaxHeartRate: 172, MaxPower: 380}
			ses := bundle.Aggregate(cluster.Cluster{Sport: model.SportBike, Records: []model.TelemetryRecord{a, b}})

			Convey("Then maxima win across members", func() {
				So(ses.Record.MaxHeartRate, ShouldEqual, 172)
				So(ses.Record.MaxPower, ShouldEqual, 400)
			})
		})

		Convey("When the longest member is not first", func() {
			a := model.TelemetryRecord{ID: "1", Name: "Short", Start: start, Elapsed: 600, SportKey: "running", PerceivedEffort: ptr(3)}
			b := model.TelemetryRecord{ID: "2", Name: "Long", Start: start.Add(15 * time.Minute), Elapsed: 3000, SportKey: "running", PerceivedEffort: ptr(7)}
			ses := bundle.Aggregate(cluster.Cluster{Sport: model.SportRun, Records: []model.TelemetryRecord{a, b}})

			Convey("Then the longest member is primary", func() {
				So(ses.Record.Name, ShouldEqual, "Long +1")
			})

			Convey("And subjective fields are inherited from the primary", func() {
				So(ses.Record.PerceivedEffort, ShouldNotBeNil)
				So(*ses.Record.PerceivedEffort, ShouldEqual, 7)
			})

			Convey("But the bundle start stays the cluster's first start", func() {
				So(ses.Record.Start, ShouldEqual, start)
			})
		})

		Convey("When durations tie", func() {
			a := model.TelemetryRecord{ID: "1", Name: "First", Start: start, Elapsed: 900, SportKey: "running"}
			b := model.TelemetryRecord{ID: "2", Name: "Second", Start: start.Add(20 * time.Minute), Elapsed: 900, SportKey: "running"}
			ses := bundle.Aggregate(cluster.Cluster{Sport: model.SportRun, Records: []model.TelemetryRecord{a, b}})

			Convey("Then cluster order breaks the tie", func() {
				So(ses.Record.Name, ShouldEqual, "First +1")
			})
		})
	})
}
