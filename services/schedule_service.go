package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pickem-app-go/logging"
	"pickem-app-go/models"
)

// ScheduleService fetches and parses the live schedule/score feed.
// The feed's shape is never guaranteed: ids arrive as strings or
// numbers, fields go missing, and an error page can replace the body.
// A single bad event is skipped rather than failing the batch.
type ScheduleService struct {
	fetcher *Fetcher
	baseURL string
	liveURL string
	logger  *logging.Logger
}

// NewScheduleService creates a schedule feed client. The live URL
// serves the current slate's scoreboard; an empty one falls back to
// the schedule URL.
func NewScheduleService(fetcher *Fetcher, baseURL, liveURL string) *ScheduleService {
	if liveURL == "" {
		liveURL = baseURL
	}
	return &ScheduleService{
		fetcher: fetcher,
		baseURL: baseURL,
		liveURL: liveURL,
		logger:  logging.WithPrefix("Schedule"),
	}
}

// Schedule feed response structures

type scheduleResponse struct {
	Events []scheduleEvent `json:"events"`
}

type scheduleEvent struct {
	ID           json.Number           `json:"id"`
	Date         string                `json:"date"`
	Week         scheduleWeek          `json:"week"`
	Status       scheduleStatus        `json:"status"`
	Competitions []scheduleCompetition `json:"competitions"`
}

type scheduleWeek struct {
	Number int `json:"number"`
}

type scheduleStatus struct {
	Type   scheduleStatusType `json:"type"`
	Period int                `json:"period"`
	Clock  string             `json:"displayClock,omitempty"`
}

type scheduleStatusType struct {
	Name      string `json:"name"`
	State     string `json:"state"`
	Completed bool   `json:"completed"`
}

type scheduleCompetition struct {
	Competitors []scheduleCompetitor `json:"competitors"`
	Venue       scheduleVenue        `json:"venue"`
	Broadcasts  []scheduleBroadcast  `json:"broadcasts"`
}

type scheduleCompetitor struct {
	HomeAway string       `json:"homeAway"`
	Score    feedScore    `json:"score"`
	Team     scheduleTeam `json:"team"`
}

// feedScore tolerates every shape the feed uses for a score: a bare
// number, a quoted number, null, and the empty string a game carries
// before kickoff. Anything unreadable decodes to zero instead of
// failing the whole payload.
type feedScore int

func (f *feedScore) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if raw == "" || raw == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		*f = 0
		return nil
	}
	*f = feedScore(n)
	return nil
}

type scheduleTeam struct {
	Abbreviation string `json:"abbreviation"`
	DisplayName  string `json:"displayName"`
	Name         string `json:"name"`
}

type scheduleVenue struct {
	FullName string `json:"fullName"`
}

type scheduleBroadcast struct {
	Names []string `json:"names"`
}

// GetWeekSchedule fetches the contests for one week. Returned contests
// carry no ids; the merge layer sorts by kickoff and renumbers.
func (s *ScheduleService) GetWeekSchedule(ctx context.Context, week int) ([]models.Contest, error) {
	body, err := s.FetchWeekRaw(ctx, week)
	if err != nil {
		return nil, err
	}

	games, err := s.ParseSchedule(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schedule for week %d: %w", week, err)
	}

	s.logger.Infof("Fetched %d contests for week %d", len(games), week)
	return games, nil
}

// FetchWeekRaw fetches one week's raw feed body, for callers that
// cache payloads before parsing.
func (s *ScheduleService) FetchWeekRaw(ctx context.Context, week int) ([]byte, error) {
	url := fmt.Sprintf("%s?week=%d", s.baseURL, week)

	body, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule for week %d: %w", week, err)
	}
	return body, nil
}

// ParseSchedule converts a raw feed body into contests
func (s *ScheduleService) ParseSchedule(body []byte) ([]models.Contest, error) {
	var resp scheduleResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode schedule response: %w", err)
	}

	games := make([]models.Contest, 0, len(resp.Events))
	for _, event := range resp.Events {
		contest, ok := s.convertEvent(event)
		if !ok {
			s.logger.Warnf("Skipping malformed schedule event %s", event.ID)
			continue
		}
		games = append(games, contest)
	}
	return games, nil
}

// convertEvent converts a single feed event into a Contest
func (s *ScheduleService) convertEvent(event scheduleEvent) (models.Contest, bool) {
	if len(event.Competitions) == 0 || len(event.Competitions[0].Competitors) < 2 {
		return models.Contest{}, false
	}
	competition := event.Competitions[0]

	var contest models.Contest
	for _, competitor := range competition.Competitors {
		name := competitor.Team.DisplayName
		if name == "" {
			name = competitor.Team.Abbreviation
		}
		if name == "" {
			return models.Contest{}, false
		}
		switch strings.ToLower(competitor.HomeAway) {
		case "home":
			contest.Home = name
		case "away":
			contest.Away = name
		}
	}
	if contest.Home == "" || contest.Away == "" {
		return models.Contest{}, false
	}

	if kickoff, ok := parseFeedTime(event.Date); ok {
		contest.Kickoff = &kickoff
	}
	contest.Venue = competition.Venue.FullName
	if len(competition.Broadcasts) > 0 && len(competition.Broadcasts[0].Names) > 0 {
		contest.Broadcast = competition.Broadcasts[0].Names[0]
	}

	return contest, true
}

// GetLiveStatuses fetches the live-score entries for the current slate
func (s *ScheduleService) GetLiveStatuses(ctx context.Context) ([]models.LiveStatus, error) {
	body, err := s.fetcher.Fetch(ctx, s.liveURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch live statuses: %w", err)
	}

	var resp scheduleResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode live status response: %w", err)
	}

	statuses := make([]models.LiveStatus, 0, len(resp.Events))
	for _, event := range resp.Events {
		status, ok := s.convertLiveEvent(event)
		if !ok {
			continue
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// convertLiveEvent converts one feed event to a live-status entry
func (s *ScheduleService) convertLiveEvent(event scheduleEvent) (models.LiveStatus, bool) {
	if len(event.Competitions) == 0 || len(event.Competitions[0].Competitors) < 2 {
		return models.LiveStatus{}, false
	}

	var status models.LiveStatus
	for _, competitor := range event.Competitions[0].Competitors {
		name := competitor.Team.DisplayName
		if name == "" {
			name = competitor.Team.Abbreviation
		}
		score := int(competitor.Score)
		switch strings.ToLower(competitor.HomeAway) {
		case "home":
			status.Home = name
			status.HomeScore = score
		case "away":
			status.Away = name
			status.AwayScore = score
		}
	}
	if status.Home == "" || status.Away == "" {
		return models.LiveStatus{}, false
	}

	status.State = convertLiveState(event.Status)
	status.Period = event.Status.Period
	status.Clock = event.Status.Clock
	status.Completed = event.Status.Type.Completed || status.State == models.LiveStateFinal

	return status, true
}

// convertLiveState folds the feed's state/name pair onto the coarse
// status enum. The halftime and end-of-period refinements only show up
// in the name field.
func convertLiveState(status scheduleStatus) models.LiveState {
	name := strings.ToUpper(status.Type.Name)
	if strings.Contains(name, "HALFTIME") {
		return models.LiveStateHalftime
	}
	if strings.Contains(name, "END") && strings.Contains(name, "PERIOD") {
		return models.LiveStateEndOfPeriod
	}

	switch strings.ToLower(status.Type.State) {
	case "pre":
		return models.LiveStateScheduled
	case "in":
		return models.LiveStateInProgress
	case "post":
		return models.LiveStateFinal
	default:
		return models.ParseLiveState(status.Type.Name)
	}
}

// parseFeedTime handles the two timestamp layouts the feed alternates
// between (with and without seconds).
func parseFeedTime(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02T15:04Z", "2006-01-02T15:04:05Z", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
