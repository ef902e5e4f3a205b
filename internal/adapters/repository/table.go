package repository

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/okian/trainsync/internal/domain/model"
)

// Fixed column schema of the ledger table. Order is load-bearing: rows are
// parsed positionally.
var columns = []string{
	"Status", "Match", "Date",
	"Planned Workout", "Planned (min)",
	"Actual Workout", "Actual (min)",
	"Distance (km)", "Avg HR", "Max HR", "Avg Power", "Max Power",
	"Cadence", "Speed (km/h)", "Calories", "Elev Gain (m)",
	"RPE", "Feel", "Notes", "Activity ID",
}

const dateLayout = "2006-01-02"

type skippedRow struct {
	line   int
	reason string
}

// unmarshalRows parses the ledger table out of file content. Lines before
// the header are ignored (title, prose). Malformed rows are reported back to
// the caller instead of aborting the parse.
func unmarshalRows(content string) ([]model.LedgerRow, []skippedRow) {
	var (
		rows    []model.LedgerRow
		skipped []skippedRow
		inTable bool
	)

	for n, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "|") {
			inTable = false
			continue
		}
		cells := splitRow(trimmed)
		if !inTable {
			if len(cells) > 0 && strings.EqualFold(cells[0], columns[0]) {
				inTable = true
			}
			continue
		}
		if isSeparator(cells) {
			continue
		}
		row, err := parseRow(cells)
		if err != nil {
			skipped = append(skipped, skippedRow{line: n + 1, reason: err.Error()})
			continue
		}
		rows = append(rows, row)
	}
	return rows, skipped
}

// marshalRows renders the full ledger file: title, blank line, table.
func marshalRows(title string, rows []model.LedgerRow) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	b.WriteString("| " + strings.Join(columns, " | ") + " |\n")

	sep := make([]string, len(columns))
	for i := range sep {
		sep[i] = "---"
	}
	b.WriteString("| " + strings.Join(sep, " | ") + " |\n")

	for i := range rows {
		b.WriteString(formatRow(&rows[i]))
		b.WriteByte('\n')
	}
	return b.String()
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

func parseRow(cells []string) (model.LedgerRow, error) {
	if len(cells) != len(columns) {
		return model.LedgerRow{}, fmt.Errorf("%w: expected %d columns, got %d", ErrMalformedRow, len(columns), len(cells))
	}

	date, err := time.ParseInLocation(dateLayout, cells[2], time.Local)
	if err != nil {
		return model.LedgerRow{}, fmt.Errorf("%w: bad date %q", ErrMalformedRow, cells[2])
	}

	row := model.LedgerRow{
		Status:             model.Status(cells[0]),
		Match:              model.MatchStatus(cells[1]),
		Date:               date,
		PlannedWorkout:     cells[3],
		PlannedDurationMin: parseFloat(cells[4]),
		ActualWorkout:      cells[5],
		ActualDurationMin:  parseFloat(cells[6]),
		DistanceKM:         parseFloat(cells[7]),
		AvgHeartRate:       parseOptFloat(cells[8]),
		MaxHeartRate:       parseFloat(cells[9]),
		AvgPower:           parseOptFloat(cells[10]),
		MaxPower:           parseFloat(cells[11]),
		AvgCadence:         parseOptFloat(cells[12]),
		AvgSpeedKPH:        parseOptFloat(cells[13]),
		Calories:           parseFloat(cells[14]),
		ElevationGain:      parseFloat(cells[15]),
		PerceivedEffort:    parseOptFloat(cells[16]),
		Feeling:            parseOptFloat(cells[17]),
		Notes:              cells[18],
		ActivityID:         cells[19],
	}

	switch row.Status {
	case model.StatusPending, model.StatusCompleted:
	default:
		return model.LedgerRow{}, fmt.Errorf("%w: bad status %q", ErrMalformedRow, cells[0])
	}
	return row, nil
}

func formatRow(r *model.LedgerRow) string {
	cells := []string{
		string(r.Status),
		string(r.Match),
		r.Date.Format(dateLayout),
		sanitize(r.PlannedWorkout),
		fmtFloat(r.PlannedDurationMin, 0),
		sanitize(r.ActualWorkout),
		fmtFloat(r.ActualDurationMin, 1),
		fmtFloat(r.DistanceKM, 2),
		fmtOptFloat(r.AvgHeartRate, 0),
		fmtFloat(r.MaxHeartRate, 0),
		fmtOptFloat(r.AvgPower, 0),
		fmtFloat(r.MaxPower, 0),
		fmtOptFloat(r.AvgCadence, 0),
		fmtOptFloat(r.AvgSpeedKPH, 1),
		fmtFloat(r.Calories, 0),
		fmtFloat(r.ElevationGain, 0),
		fmtOptFloat(r.PerceivedEffort, 1),
		fmtOptFloat(r.Feeling, 1),
		sanitize(r.Notes),
		r.ActivityID,
	}
	return "| " + strings.Join(cells, " | ") + " |"
}

// sanitize keeps free text from breaking the table grid.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "|", "/")
	return strings.ReplaceAll(s, "\n", " ")
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseOptFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func fmtFloat(v float64, decimals int) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

func fmtOptFloat(v *float64, decimals int) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', decimals, 64)
}

// repairSportValue detects the structured sport-type value that earlier
// versions serialized into a workout column (a provider activityType object
// printed whole) and collapses it back to a tagged placeholder name.
func repairSportValue(s string) (string, bool) {
	if !strings.Contains(s, "typeKey") {
		return s, false
	}
	key := extractTypeKey(s)
	if key == "" {
		return s, false
	}
	sport := model.ResolveSportKey(key)
	return sport.Tag() + " " + strings.ReplaceAll(key, "_", " "), true
}

// extractTypeKey pulls the typeKey value out of a serialized mapping, either
// python-style ({'typeKey': 'cycling', ...}) or Go-style (map[typeKey:cycling ...]).
func extractTypeKey(s string) string {
	i := strings.Index(s, "typeKey")
	rest := s[i+len("typeKey"):]
	rest = strings.TrimLeft(rest, "'\": ")
	end := strings.IndexAny(rest, "'\",} ]")
	if end < 0 {
		end = len(rest)
	}
	return strings.TrimSpace(rest[:end])
}
