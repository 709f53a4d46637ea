package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"pickem-app-go/logging"
	"pickem-app-go/models"
)

// OddsQuote is one matchup's worth of parsed odds, ready for the merge
// layer to apply onto a contest.
type OddsQuote struct {
	Away      string
	Home      string
	Spread    float64 // magnitude, >= 0
	Favorite  models.Side
	AwayML    int
	HomeML    int
	OverUnder float64
}

// OddsService fetches and parses the odds feed. Each matchup carries a
// list of bookmaker quotes; one is chosen by the configured priority
// order, falling back to the first available book when no preferred
// one is quoting the game.
type OddsService struct {
	fetcher    *Fetcher
	baseURL    string
	bookmakers []string
	logger     *logging.Logger
}

// NewOddsService creates an odds feed client
func NewOddsService(fetcher *Fetcher, baseURL string, bookmakers []string) *OddsService {
	return &OddsService{
		fetcher:    fetcher,
		baseURL:    baseURL,
		bookmakers: bookmakers,
		logger:     logging.WithPrefix("Odds"),
	}
}

// Odds feed response structures

type oddsEvent struct {
	AwayTeam   string          `json:"away_team"`
	HomeTeam   string          `json:"home_team"`
	Bookmakers []oddsBookmaker `json:"bookmakers"`
}

type oddsBookmaker struct {
	Key     string       `json:"key"`
	Markets []oddsMarket `json:"markets"`
}

type oddsMarket struct {
	Key      string        `json:"key"`
	Outcomes []oddsOutcome `json:"outcomes"`
}

type oddsOutcome struct {
	Name  string   `json:"name"`
	Price int      `json:"price"`
	Point *float64 `json:"point,omitempty"`
}

// GetOdds fetches and parses the current odds board
func (s *OddsService) GetOdds(ctx context.Context) ([]OddsQuote, error) {
	body, err := s.FetchRaw(ctx)
	if err != nil {
		return nil, err
	}

	quotes, err := s.ParseOdds(body)
	if err != nil {
		return nil, err
	}

	s.logger.Infof("Fetched odds for %d matchups", len(quotes))
	return quotes, nil
}

// FetchRaw fetches the raw odds payload, for callers that cache
// payloads before parsing.
func (s *OddsService) FetchRaw(ctx context.Context) ([]byte, error) {
	if s.baseURL == "" {
		return nil, fmt.Errorf("no odds feed configured")
	}

	body, err := s.fetcher.Fetch(ctx, s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch odds: %w", err)
	}
	return body, nil
}

// ParseOdds converts a raw odds payload into quotes, skipping any
// event that cannot be read.
func (s *OddsService) ParseOdds(body []byte) ([]OddsQuote, error) {
	var events []oddsEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("failed to decode odds response: %w", err)
	}

	quotes := make([]OddsQuote, 0, len(events))
	for _, event := range events {
		quote, ok := s.convertEvent(event)
		if !ok {
			s.logger.Warnf("Skipping odds event %s @ %s with no usable book", event.AwayTeam, event.HomeTeam)
			continue
		}
		quotes = append(quotes, quote)
	}
	return quotes, nil
}

// convertEvent picks the preferred bookmaker and derives the quote
func (s *OddsService) convertEvent(event oddsEvent) (OddsQuote, bool) {
	if event.AwayTeam == "" || event.HomeTeam == "" || len(event.Bookmakers) == 0 {
		return OddsQuote{}, false
	}

	book := s.pickBookmaker(event.Bookmakers)
	quote := OddsQuote{Away: event.AwayTeam, Home: event.HomeTeam}
	haveSpread := false

	for _, market := range book.Markets {
		switch market.Key {
		case "spreads":
			for _, outcome := range market.Outcomes {
				if outcome.Point == nil {
					continue
				}
				if models.TeamsMatch(outcome.Name, event.HomeTeam) {
					// Negative home handicap means home is favored;
					// the magnitude is the spread either way.
					quote.Spread = math.Abs(*outcome.Point)
					if *outcome.Point < 0 {
						quote.Favorite = models.SideHome
					} else {
						quote.Favorite = models.SideAway
					}
					haveSpread = true
				}
			}
		case "h2h":
			for _, outcome := range market.Outcomes {
				if models.TeamsMatch(outcome.Name, event.HomeTeam) {
					quote.HomeML = outcome.Price
				} else if models.TeamsMatch(outcome.Name, event.AwayTeam) {
					quote.AwayML = outcome.Price
				}
			}
		case "totals":
			for _, outcome := range market.Outcomes {
				if outcome.Point != nil {
					quote.OverUnder = *outcome.Point
					break
				}
			}
		}
	}

	return quote, haveSpread || quote.AwayML != 0 || quote.OverUnder != 0
}

// pickBookmaker returns the highest-priority configured book present
// on the event, or the first book when none of the preferred ones are.
func (s *OddsService) pickBookmaker(books []oddsBookmaker) oddsBookmaker {
	for _, preferred := range s.bookmakers {
		for _, book := range books {
			if strings.EqualFold(book.Key, preferred) {
				return book
			}
		}
	}
	return books[0]
}

// IsContestDay reports whether today plausibly has games scheduled.
// A refresh is skipped on non-contest days when a cached fallback
// already exists. Saturday joins the slate late in the season.
func IsContestDay(t time.Time, week int) bool {
	switch t.Weekday() {
	case time.Thursday, time.Sunday, time.Monday:
		return true
	case time.Saturday:
		return week >= 15
	default:
		return false
	}
}
