// Package claims tracks telemetry record ids already attributed to a
// ledger row, guaranteeing at-most-one consumption per id.
package claims

// Set records claimed telemetry ids. The reconciliation driver is the only
// mutator within one pass and passes never overlap, so no locking is carried.
type Set struct {
	ids map[string]struct{}
}

// NewSet creates an empty claim set.
func NewSet() *Set {
	return &Set{ids: make(map[string]struct{})}
}

// Claimed reports whether id has already been attributed to a ledger row.
func (s *Set) Claimed(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// AllUnclaimed reports whether every id in the bundle is still free. A
// bundle is consumed whole or not at all; partial claims never happen.
func (s *Set) AllUnclaimed(ids []string) bool {
	for _, id := range ids {
		if s.Claimed(id) {
			return false
		}
	}
	return true
}

// Claim attributes every id atomically with the assignment that uses them.
// Returns ErrAlreadyClaimed without recording anything if any id is taken,
// so a failed claim never leaves the set half-updated.
func (s *Set) Claim(ids ...string) error {
	for _, id := range ids {
		if s.Claimed(id) {
			return ErrAlreadyClaimed
		}
	}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return nil
}

// Size returns the number of claimed ids.
func (s *Set) Size() int {
	return len(s.ids)
}
