package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"

	"pickem-app-go/logging"
	"pickem-app-go/models"
)

// SheetRow is one contest row recovered from the per-week sheet
// export: the matchup, optional odds and scores, and each recognized
// picker's pick fields.
type SheetRow struct {
	Away      string
	Home      string
	Spread    *float64 // signed home handicap as the sheet writes it
	AwayScore *int
	HomeScore *int
	Picks     map[string]models.Pick
}

// SheetWeek is the parsed content of one week's export
type SheetWeek struct {
	Rows []SheetRow
}

// IsEmpty reports whether the export yielded nothing usable
func (w SheetWeek) IsEmpty() bool {
	return len(w.Rows) == 0
}

// sheetField names a recoverable column. Columns are located by header
// sniffing: exact case-insensitive match first, then partial match.
// A field that cannot be located is omitted from every row rather
// than read from a guessed position.
type sheetField struct {
	name    string
	exact   []string
	partial []string
}

var sheetFields = []sheetField{
	{name: "away", exact: []string{"away", "away team", "visitor"}, partial: []string{"away"}},
	{name: "home", exact: []string{"home", "home team"}, partial: []string{"home"}},
	{name: "spread", exact: []string{"spread", "line"}, partial: []string{"spread"}},
	{name: "awayScore", exact: []string{"away score"}, partial: []string{"away score", "visitor score"}},
	{name: "homeScore", exact: []string{"home score"}, partial: []string{"home score"}},
}

// SheetService fetches and parses the spreadsheet-backed per-week
// export, the highest-priority source for results, sheet odds, and the
// blazin flag on picks.
type SheetService struct {
	fetcher     *Fetcher
	urlTemplate string // %d is the week number
	pickers     []string
	logger      *logging.Logger
}

// NewSheetService creates a sheet export client for the given roster
func NewSheetService(fetcher *Fetcher, urlTemplate string, pickers []string) *SheetService {
	return &SheetService{
		fetcher:     fetcher,
		urlTemplate: urlTemplate,
		pickers:     pickers,
		logger:      logging.WithPrefix("Sheet"),
	}
}

// GetWeek fetches and parses one week's export. A payload with no
// recognizable headers yields an empty week, not an error.
func (s *SheetService) GetWeek(ctx context.Context, week int) (SheetWeek, error) {
	if s.urlTemplate == "" {
		return SheetWeek{}, fmt.Errorf("no sheet export configured")
	}

	body, err := s.fetcher.Fetch(ctx, fmt.Sprintf(s.urlTemplate, week))
	if err != nil {
		return SheetWeek{}, fmt.Errorf("failed to fetch sheet for week %d: %w", week, err)
	}

	parsed := s.Parse(string(body))
	s.logger.Infof("Parsed %d sheet rows for week %d", len(parsed.Rows), week)
	return parsed, nil
}

// Parse recovers rows from tabular text. Tab-separated is tried first
// (the export's native format), then comma-separated.
func (s *SheetService) Parse(text string) SheetWeek {
	records := splitTabular(text)
	if len(records) < 2 {
		return SheetWeek{}
	}

	headerIdx, columns := s.sniffHeader(records)
	if columns == nil {
		s.logger.Warn("No recognizable headers in sheet export, returning empty result")
		return SheetWeek{}
	}

	var week SheetWeek
	for _, record := range records[headerIdx+1:] {
		row, ok := s.parseRow(record, columns)
		if !ok {
			continue
		}
		week.Rows = append(week.Rows, row)
	}
	return week
}

// columnMap holds the located column index per field and per picker
type columnMap struct {
	fields map[string]int // field name -> column
	line   map[string]int // picker -> line pick column
	winner map[string]int // picker -> winner pick column
	blazin map[string]int // picker -> blazin flag column
}

// sniffHeader scans for the first row that locates both team columns,
// then maps every other recognizable header on that row.
func (s *SheetService) sniffHeader(records [][]string) (int, *columnMap) {
	for idx, record := range records {
		columns := s.mapColumns(record)
		_, hasAway := columns.fields["away"]
		_, hasHome := columns.fields["home"]
		if hasAway && hasHome {
			return idx, columns
		}
	}
	return 0, nil
}

func (s *SheetService) mapColumns(header []string) *columnMap {
	columns := &columnMap{
		fields: make(map[string]int),
		line:   make(map[string]int),
		winner: make(map[string]int),
		blazin: make(map[string]int),
	}

	for col, raw := range header {
		label := strings.ToLower(strings.TrimSpace(raw))
		if label == "" {
			continue
		}

		for _, field := range sheetFields {
			if _, done := columns.fields[field.name]; done {
				continue
			}
			if matchLabel(label, field.exact, field.partial) {
				columns.fields[field.name] = col
				break
			}
		}

		for _, picker := range s.pickers {
			p := strings.ToLower(picker)
			if !strings.Contains(label, p) {
				continue
			}
			switch {
			case strings.Contains(label, "blazin"):
				columns.blazin[picker] = col
			case strings.Contains(label, "winner"):
				columns.winner[picker] = col
			default:
				// The bare picker-name column is the spread pick
				if _, done := columns.line[picker]; !done {
					columns.line[picker] = col
				}
			}
		}
	}

	return columns
}

func matchLabel(label string, exact, partial []string) bool {
	for _, e := range exact {
		if label == e {
			return true
		}
	}
	for _, p := range partial {
		if strings.Contains(label, p) {
			return true
		}
	}
	return false
}

// parseRow recovers one contest row; rows without both teams are
// skipped.
func (s *SheetService) parseRow(record []string, columns *columnMap) (SheetRow, bool) {
	row := SheetRow{Picks: make(map[string]models.Pick)}

	row.Away = cellAt(record, columns.fields, "away")
	row.Home = cellAt(record, columns.fields, "home")
	if row.Away == "" || row.Home == "" {
		return SheetRow{}, false
	}

	if raw := cellAt(record, columns.fields, "spread"); raw != "" {
		if spread, err := strconv.ParseFloat(strings.TrimPrefix(raw, "+"), 64); err == nil {
			row.Spread = &spread
		}
	}
	if raw := cellAt(record, columns.fields, "awayScore"); raw != "" {
		if score, err := strconv.Atoi(raw); err == nil && score >= 0 {
			row.AwayScore = &score
		}
	}
	if raw := cellAt(record, columns.fields, "homeScore"); raw != "" {
		if score, err := strconv.Atoi(raw); err == nil && score >= 0 {
			row.HomeScore = &score
		}
	}

	for _, picker := range s.pickers {
		var pick models.Pick
		if col, ok := columns.line[picker]; ok {
			pick.Line = parseSideCell(cell(record, col), row.Away, row.Home)
		}
		if col, ok := columns.winner[picker]; ok {
			pick.Winner = parseSideCell(cell(record, col), row.Away, row.Home)
		}
		if col, ok := columns.blazin[picker]; ok {
			if parseBoolCell(cell(record, col)) {
				pick.Blazin = true
				pick.BlazinTeam = pickedTeam(pick.Line, row)
			}
		}
		if !pick.IsEmpty() || pick.Blazin {
			row.Picks[picker] = pick
		}
	}

	return row, true
}

// parseSideCell reads a pick cell that may hold "away"/"home" or a
// team name.
func parseSideCell(raw, away, home string) models.Side {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	switch cleaned {
	case "", "-":
		return models.SideNone
	case "away", "a":
		return models.SideAway
	case "home", "h":
		return models.SideHome
	}
	if models.TeamsMatch(raw, away) {
		return models.SideAway
	}
	if models.TeamsMatch(raw, home) {
		return models.SideHome
	}
	return models.SideNone
}

func parseBoolCell(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes", "y", "x", "1", "🔥":
		return true
	default:
		return false
	}
}

func cellAt(record []string, fields map[string]int, name string) string {
	col, ok := fields[name]
	if !ok {
		return ""
	}
	return cell(record, col)
}

func cell(record []string, col int) string {
	if col < 0 || col >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[col])
}

// splitTabular splits export text into records, preferring tabs when
// the first line carries any, falling back to CSV parsing.
func splitTabular(text string) [][]string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) == 0 {
		return nil
	}

	if strings.Contains(lines[0], "\t") {
		records := make([][]string, 0, len(lines))
		for _, line := range lines {
			records = append(records, strings.Split(line, "\t"))
		}
		return records
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil
	}
	return records
}

// pickedTeam resolves which team name a pick's line selection points
// at, for the display-only BlazinTeam snapshot.
func pickedTeam(line models.Side, row SheetRow) string {
	switch line {
	case models.SideAway:
		return row.Away
	case models.SideHome:
		return row.Home
	default:
		return ""
	}
}

// ResultFromRow builds a Result when the sheet carries both scores
func (r SheetRow) ResultFromRow() (models.Result, bool) {
	if r.AwayScore == nil || r.HomeScore == nil {
		return models.Result{}, false
	}
	return models.Result{AwayScore: *r.AwayScore, HomeScore: *r.HomeScore}.Normalized(), true
}

// SpreadFavorite converts the sheet's signed home handicap into the
// (magnitude, favorite) pair contests carry.
func (r SheetRow) SpreadFavorite() (float64, models.Side, bool) {
	if r.Spread == nil {
		return 0, models.SideNone, false
	}
	if *r.Spread < 0 {
		return math.Abs(*r.Spread), models.SideHome, true
	}
	return *r.Spread, models.SideAway, true
}
