// Package config defines process configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load(ctx) layers defaults, optional file, and environment variables.
// - External errors must be wrapped via this package's error helpers.
package config

// Telemetry source formats.
const (
	FormatJSON = "json"
	FormatFIT  = "fit"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LedgerPath locates the canonical markdown ledger.
	LedgerPath string `koanf:"ledger_path"`

	// PlanPath locates the plan document. Empty skips plan ingestion.
	PlanPath string `koanf:"plan_path"`

	// TelemetryPath locates the telemetry source: the export file for the
	// json format, a directory of activity files for the fit format.
	TelemetryPath string `koanf:"telemetry_path"`

	// TelemetryFormat selects the source adapter: json or fit.
	TelemetryFormat string `koanf:"telemetry_format"`

	// WindowDays bounds matching to a trailing date window from "now".
	// Rows outside the window are left untouched even when telemetry for
	// their date exists.
	WindowDays int `koanf:"window_days"`

	// ClusterGapMinutes is the chaining window between same-sport records.
	ClusterGapMinutes int `koanf:"cluster_gap_minutes"`

	// MetricsAddr serves Prometheus metrics when non-empty, e.g. ":9090".
	// Empty disables the endpoint.
	MetricsAddr string `koanf:"metrics_addr"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LedgerPath:        "training_log.md",
		PlanPath:          "plan.md",
		TelemetryPath:     "activities.json",
		TelemetryFormat:   FormatJSON,
		WindowDays:        7,
		ClusterGapMinutes: 60,
	}
}
