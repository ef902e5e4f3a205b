package service

import (
	"time"

	"github.com/okian/trainsync/internal/adapters/planfile"
	"github.com/okian/trainsync/internal/domain/cluster"
	"github.com/okian/trainsync/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWindowDays sets the trailing match window in days.
func WithWindowDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.windowDays = days
		}
	}
}

// WithGapWindow sets the session chaining window used by the clusterer.
func WithGapWindow(gap time.Duration) Option {
	return func(s *Service) {
		if gap > 0 {
			s.clusterer = cluster.New(cluster.WithGapWindow(gap))
		}
	}
}

// WithPlanExtractor sets a custom plan extractor.
func WithPlanExtractor(e *planfile.Extractor) Option {
	return func(s *Service) {
		if e != nil {
			s.plans = e
		}
	}
}

// WithClock sets the time source used for the trailing window.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}
