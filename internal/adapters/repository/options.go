package repository

import "github.com/okian/trainsync/pkg/logger"

// Option applies a configuration option to the FileStore.
type Option func(*FileStore)

// WithLogger sets the logger used for row-level skip and repair reporting.
func WithLogger(log logger.Logger) Option {
	return func(s *FileStore) {
		if log != nil {
			s.log = log
		}
	}
}

// WithTitle overrides the document title written above the ledger table.
func WithTitle(title string) Option {
	return func(s *FileStore) {
		if title != "" {
			s.title = title
		}
	}
}
