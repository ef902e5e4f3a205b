package telemetry

import "errors"

// Sentinel kinds for telemetry source errors.
var (
	// ErrTelemetryUnavailable means the telemetry source is missing or
	// unreadable; the run must abort with no ledger mutation.
	ErrTelemetryUnavailable = errors.New("telemetry source unavailable")
)
