package models

import (
	"fmt"
	"sort"
	"time"
)

// Side identifies one side of a contest
type Side string

const (
	SideAway Side = "away"
	SideHome Side = "home"
	SideNone Side = ""
)

// Valid returns true for the two real sides
func (s Side) Valid() bool {
	return s == SideAway || s == SideHome
}

// Opposite returns the other side
func (s Side) Opposite() Side {
	switch s {
	case SideAway:
		return SideHome
	case SideHome:
		return SideAway
	default:
		return SideNone
	}
}

// Contest represents a single game within a week. IDs are small
// positive integers, dense and unique only within their week; they are
// reassigned whenever a week's schedule is replaced wholesale.
type Contest struct {
	ID        int        `json:"id" bson:"id"`
	Away      string     `json:"away" bson:"away"`
	Home      string     `json:"home" bson:"home"`
	Spread    float64    `json:"spread" bson:"spread"` // Always >= 0; side carried by Favorite
	Favorite  Side       `json:"favorite,omitempty" bson:"favorite,omitempty"`
	Kickoff   *time.Time `json:"kickoff,omitempty" bson:"kickoff,omitempty"`
	Venue     string     `json:"venue,omitempty" bson:"venue,omitempty"`
	Broadcast string     `json:"broadcast,omitempty" bson:"broadcast,omitempty"`
	AwayML    int        `json:"awayML,omitempty" bson:"awayML,omitempty"`
	HomeML    int        `json:"homeML,omitempty" bson:"homeML,omitempty"`
	OverUnder float64    `json:"overUnder,omitempty" bson:"overUnder,omitempty"`
}

// HasOdds returns true if a spread has been attached to the contest
func (c *Contest) HasOdds() bool {
	return c.Favorite.Valid()
}

// MatchupKey returns the stable within-week identity of the contest
func (c *Contest) MatchupKey() string {
	return MatchupKey(c.Away, c.Home)
}

// TeamFor returns the team name playing the given side
func (c *Contest) TeamFor(side Side) string {
	switch side {
	case SideAway:
		return c.Away
	case SideHome:
		return c.Home
	default:
		return ""
	}
}

// SignedSpread returns the spread faced by the given side: negative if
// that side is favored by that many points, positive if it is the
// underdog. Zero when no odds are attached or the contest is a pick'em.
func (c *Contest) SignedSpread(side Side) float64 {
	if !c.HasOdds() {
		return 0
	}
	if side == c.Favorite {
		return -c.Spread
	}
	return c.Spread
}

// FormatSpread renders the spread from the home team's perspective
func (c *Contest) FormatSpread() string {
	if !c.HasOdds() || c.Spread == 0 {
		return "PK"
	}
	return fmt.Sprintf("%+.1f", c.SignedSpread(SideHome))
}

// String returns the "AWAY @ HOME" description used in logs
func (c *Contest) String() string {
	return fmt.Sprintf("%s @ %s", c.Away, c.Home)
}

// SortAndRenumber orders contests by kickoff ascending (contests with
// no kickoff sort last, keeping their relative order) and reassigns IDs
// sequentially 1..N. Called only on genuine schedule replacement: the
// renumbering invalidates previously issued IDs for the week.
func SortAndRenumber(games []Contest) {
	sort.SliceStable(games, func(i, j int) bool {
		ki, kj := games[i].Kickoff, games[j].Kickoff
		switch {
		case ki == nil:
			return false
		case kj == nil:
			return true
		default:
			return ki.Before(*kj)
		}
	})
	for i := range games {
		games[i].ID = i + 1
	}
}
