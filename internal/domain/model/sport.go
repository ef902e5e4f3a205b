// Package model contains domain models passed between layers.
package model

import "strings"

// Sport is the flat sport classification used across the ledger.
type Sport string

// Recognized sport tags plus the catch-all.
const (
	SportRun   Sport = "RUN"
	SportBike  Sport = "BIKE"
	SportSwim  Sport = "SWIM"
	SportOther Sport = "OTHER"
)

// Recognized reports whether the sport is one of the three tracked sports.
// OTHER never participates in matching or unplanned promotion.
func (s Sport) Recognized() bool {
	switch s {
	case SportRun, SportBike, SportSwim:
		return true
	default:
		return false
	}
}

// Tag returns the bracketed in-text marker for the sport, e.g. "[RUN]".
func (s Sport) Tag() string {
	return "[" + string(s) + "]"
}

// sportKeys maps provider classification keys to flat sports. Keys are the
// provider's type keys plus the lowercase names FIT files decode to.
var sportKeys = map[string]Sport{
	"running":             SportRun,
	"trail_running":       SportRun,
	"treadmill_running":   SportRun,
	"track_running":       SportRun,
	"cycling":             SportBike,
	"road_biking":         SportBike,
	"mountain_biking":     SportBike,
	"gravel_cycling":      SportBike,
	"indoor_cycling":      SportBike,
	"virtual_ride":        SportBike,
	"swimming":            SportSwim,
	"lap_swimming":        SportSwim,
	"open_water_swimming": SportSwim,
}

// ResolveSportKey maps a provider sport classification key to a Sport.
// Unknown keys resolve to OTHER rather than erroring; the clusterer excludes
// OTHER records from unplanned promotion.
func ResolveSportKey(key string) Sport {
	k := strings.ToLower(strings.TrimSpace(key))
	if s, ok := sportKeys[k]; ok {
		return s
	}
	switch {
	case strings.Contains(k, "running"):
		return SportRun
	case strings.Contains(k, "cycling"), strings.Contains(k, "biking"):
		return SportBike
	case strings.Contains(k, "swimming"):
		return SportSwim
	}
	return SportOther
}

// ParseSportTag extracts the explicit bracketed sport marker from workout
// text, e.g. "[BIKE] Sweet Spot 3x12". The second return is false when no
// marker resolves, which callers treat as a deliberate no-match.
func ParseSportTag(text string) (Sport, bool) {
	open := strings.Index(text, "[")
	if open < 0 {
		return SportOther, false
	}
	close := strings.Index(text[open:], "]")
	if close < 0 {
		return SportOther, false
	}
	tag := strings.ToUpper(strings.TrimSpace(text[open+1 : open+close]))
	switch Sport(tag) {
	case SportRun, SportBike, SportSwim:
		return Sport(tag), true
	case SportOther:
		return SportOther, true
	default:
		return SportOther, false
	}
}
