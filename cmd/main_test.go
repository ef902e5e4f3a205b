package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/trainsync/internal/adapters/repository"
	"github.com/okian/trainsync/internal/adapters/telemetry"
	app "github.com/okian/trainsync/internal/app"
	"github.com/okian/trainsync/internal/config"
	"github.com/okian/trainsync/pkg/logger"
	"github.com/okian/trainsync/pkg/metrics"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("TRAINSYNC_LEDGER_PATH", "log.md")
			_ = os.Setenv("TRAINSYNC_WINDOW_DAYS", "14")
			defer func() {
				_ = os.Unsetenv("TRAINSYNC_LEDGER_PATH")
				_ = os.Unsetenv("TRAINSYNC_WINDOW_DAYS")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.LedgerPath, convey.ShouldEqual, "log.md")
				convey.So(cfg.WindowDays, convey.ShouldEqual, 14)
			})
		})

		convey.Convey("When testing service creation", func() {
			dir := t.TempDir()
			store := repository.NewFileStore(filepath.Join(dir, "log.md"))
			source := telemetry.NewJSONExportSource(filepath.Join(dir, "activities.json"))

			convey.Convey("Then service should be creatable with default options", func() {
				svc := app.New(store, source)
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom options", func() {
				svc := app.New(store, source,
					app.WithWindowDays(14),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then metrics manager should be creatable", func() {
				manager := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}
