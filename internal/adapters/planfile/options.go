package planfile

import (
	"time"

	"github.com/okian/trainsync/pkg/logger"
)

// Option applies a configuration option to the Extractor.
type Option func(*Extractor)

// WithSectionHeading overrides the heading that introduces the plan table.
func WithSectionHeading(heading string) Option {
	return func(e *Extractor) {
		if heading != "" {
			e.heading = heading
		}
	}
}

// WithClock overrides the "now" used for the future-date acceptance rule.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets the logger used for row-level skip reporting.
func WithLogger(log logger.Logger) Option {
	return func(e *Extractor) {
		if log != nil {
			e.log = log
		}
	}
}
