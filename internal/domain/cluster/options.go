package cluster

import "time"

// Option applies a configuration option to the Clusterer.
type Option func(*Clusterer)

// WithGapWindow sets the maximum chaining gap between consecutive records.
// Non-positive values keep the default.
func WithGapWindow(gap time.Duration) Option {
	return func(c *Clusterer) {
		if gap > 0 {
			c.gap = gap
		}
	}
}
