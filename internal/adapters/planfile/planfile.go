// Package planfile extracts planned workouts from the user's plan document.
package planfile

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/okian/trainsync/internal/domain/model"
	"github.com/okian/trainsync/pkg/logger"
)

const dateLayout = "2006-01-02"

// Extractor parses the plan table out of raw plan text. The plan is plain
// markdown: a section heading followed by a table with at least a date and a
// workout column; duration and notes columns are optional.
type Extractor struct {
	heading string
	now     func() time.Time
	log     logger.Logger
}

// New constructs an Extractor with default configuration.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		heading: "## Plan",
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the ordered planned entries found in text.
//
// Rows are dropped when the date is missing, unparseable, or in the future
// relative to "now" (a plan cannot retroactively record what has not
// occurred), and when explicitly marked as rest. Each drop is row-level:
// extraction always continues.
func (e *Extractor) Extract(ctx context.Context, text string) []model.PlannedEntry {
	table := e.sectionTable(text)
	if len(table) == 0 {
		return nil
	}

	dateCol, workoutCol, durationCol, notesCol := resolveColumns(table[0])
	if dateCol < 0 || workoutCol < 0 {
		if e.log != nil {
			e.log.Warn(ctx, "plan table missing date or workout column")
		}
		return nil
	}

	today := dayStart(e.now())
	var entries []model.PlannedEntry

	for _, cells := range table[1:] {
		if workoutCol >= len(cells) || dateCol >= len(cells) {
			e.skip(ctx, cells, "too few columns")
			continue
		}
		workout := cells[workoutCol]
		if isRest(workout) {
			continue
		}

		date, err := time.ParseInLocation(dateLayout, cells[dateCol], time.Local)
		if err != nil {
			e.skip(ctx, cells, "unparseable date")
			continue
		}
		if date.After(today) {
			e.skip(ctx, cells, "future date")
			continue
		}

		sport, tagged := model.ParseSportTag(workout)
		entry := model.PlannedEntry{
			Date:        date,
			Sport:       sport,
			SportTagged: tagged,
			Workout:     workout,
		}
		if durationCol >= 0 && durationCol < len(cells) {
			entry.DurationMin = parseDuration(cells[durationCol])
		}
		if notesCol >= 0 && notesCol < len(cells) {
			entry.Notes = cells[notesCol]
		}
		entries = append(entries, entry)
	}
	return entries
}

func (e *Extractor) skip(ctx context.Context, cells []string, reason string) {
	if e.log != nil {
		e.log.Warn(ctx, "skipping plan row",
			logger.String("reason", reason),
			logger.String("row", strings.Join(cells, " | ")))
	}
}

// sectionTable returns the first table after the plan heading as rows of
// cells, header first. Separator rows are dropped.
func (e *Extractor) sectionTable(text string) [][]string {
	var (
		inSection bool
		table     [][]string
	)
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.EqualFold(trimmed, e.heading) {
			inSection = true
			continue
		}
		if !inSection {
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			break // next section
		}
		if !strings.HasPrefix(trimmed, "|") {
			if len(table) > 0 {
				break // table ended
			}
			continue
		}
		cells := splitRow(trimmed)
		if isSeparator(cells) {
			continue
		}
		table = append(table, cells)
	}
	return table
}

func resolveColumns(header []string) (date, workout, duration, notes int) {
	date, workout, duration, notes = -1, -1, -1, -1
	for i, h := range header {
		switch {
		case strings.EqualFold(h, "date"):
			date = i
		case strings.EqualFold(h, "workout"):
			workout = i
		case strings.Contains(strings.ToLower(h), "duration"):
			duration = i
		case strings.EqualFold(h, "notes"):
			notes = i
		}
	}
	return date, workout, duration, notes
}

// isRest reports whether a row is explicitly marked as a rest day. Rest rows
// never become ledger rows.
func isRest(workout string) bool {
	w := strings.ToLower(strings.TrimSpace(workout))
	return w == "rest" || strings.HasPrefix(w, "[rest]") || strings.HasPrefix(w, "rest ")
}

// parseDuration reads the leading number out of a duration cell ("60",
// "60 min", "90min"). Unreadable cells yield zero rather than an error.
func parseDuration(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.') {
		end++
	}
	if end == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return v
}

func splitRow(line string) []string {
	line = strings.Trim(line, "|")
	parts := strings.Split(line, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

func isSeparator(cells []string) bool {
	for _, c := range cells {
		if strings.Trim(c, "-: ") != "" {
			return false
		}
	}
	return true
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
