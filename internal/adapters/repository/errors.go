package repository

import "errors"

// Sentinel kinds for ledger store errors.
var (
	// ErrLedgerUnavailable means the ledger file is missing or unreadable.
	// Callers must abort the run without mutating persisted state.
	ErrLedgerUnavailable = errors.New("ledger unavailable")

	// ErrMalformedRow marks a single unparseable row; recovery is local.
	ErrMalformedRow = errors.New("malformed ledger row")
)
