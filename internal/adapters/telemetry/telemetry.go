// Package telemetry adapts external activity exports into telemetry records.
//
// The core never fetches or authenticates against the provider; sources here
// only decode collections that already landed on disk, validating the
// dynamic provider payloads into the fixed record type at this boundary.
package telemetry

import (
	"context"

	"github.com/okian/trainsync/internal/domain/model"
)

// Source supplies the flat collection of telemetry records for one run.
type Source interface {
	// Records returns every available record. A missing or unreadable
	// backing source returns ErrTelemetryUnavailable: the reconciler must
	// abort rather than merge against no data.
	Records(ctx context.Context) ([]model.TelemetryRecord, error)
}
