package claims

import "errors"

// Sentinel kinds for claim errors.
var (
	ErrAlreadyClaimed = errors.New("telemetry id already claimed")
)
