package services

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"pickem-app-go/logging"
	"pickem-app-go/models"
)

// archiveContest is the on-disk shape of one archived game
type archiveContest struct {
	Away      string  `json:"away"`
	Home      string  `json:"home"`
	Spread    float64 `json:"spread"`
	Favorite  string  `json:"favorite"`
	Kickoff   string  `json:"kickoff,omitempty"`
	AwayScore *int    `json:"awayScore,omitempty"`
	HomeScore *int    `json:"homeScore,omitempty"`
	AwayML    int     `json:"awayML,omitempty"`
	HomeML    int     `json:"homeML,omitempty"`
	OverUnder float64 `json:"overUnder,omitempty"`
}

// archiveWeek maps contest number (as a string key, JSON object keys
// are always strings) to archived game.
type archiveWeek map[string]archiveContest

// HistoryService loads the bundled season archive, the
// lowest-priority data source. It only ever seeds weeks no live
// source has populated.
type HistoryService struct {
	path   string
	logger *logging.Logger
}

func NewHistoryService(path string) *HistoryService {
	return &HistoryService{
		path:   path,
		logger: logging.WithPrefix("History"),
	}
}

// Load reads the archive file and converts it to per-week data.
// A missing file is not an error, it just means no archive shipped.
func (s *HistoryService) Load() (map[int]*models.WeekData, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Infof("No history archive at %s", s.path)
			return map[int]*models.WeekData{}, nil
		}
		return nil, fmt.Errorf("failed to read history archive: %w", err)
	}

	var raw map[string]archiveWeek
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse history archive: %w", err)
	}

	weeks := make(map[int]*models.WeekData, len(raw))
	for weekKey, archived := range raw {
		week, err := strconv.Atoi(weekKey)
		if err != nil || week < 1 {
			s.logger.Warnf("Skipping non-numeric week key %q in archive", weekKey)
			continue
		}
		weeks[week] = s.convertWeek(archived)
	}

	s.logger.Infof("Loaded %d archived weeks from %s", len(weeks), s.path)
	return weeks, nil
}

func (s *HistoryService) convertWeek(archived archiveWeek) *models.WeekData {
	data := models.NewWeekData()
	for idKey, game := range archived {
		id, err := strconv.Atoi(idKey)
		if err != nil || id < 1 {
			s.logger.Warnf("Skipping archived game with bad key %q", idKey)
			continue
		}

		contest := models.Contest{
			ID:        id,
			Away:      models.NormalizeTeam(game.Away),
			Home:      models.NormalizeTeam(game.Home),
			Spread:    game.Spread,
			Favorite:  models.Side(game.Favorite),
			AwayML:    game.AwayML,
			HomeML:    game.HomeML,
			OverUnder: game.OverUnder,
		}
		if !contest.Favorite.Valid() {
			contest.Favorite = models.SideNone
		}
		if kickoff, ok := parseFeedTime(game.Kickoff); ok {
			contest.Kickoff = &kickoff
		}
		data.Games = append(data.Games, contest)

		if game.AwayScore != nil && game.HomeScore != nil {
			data.Results[id] = models.Result{
				AwayScore: *game.AwayScore,
				HomeScore: *game.HomeScore,
			}.Normalized()
		}
	}
	// Archive IDs are the keys picks reference, keep them as-is
	sort.Slice(data.Games, func(i, j int) bool {
		return data.Games[i].ID < data.Games[j].ID
	})
	return data
}
