package models

// Result holds the final score of a contest, keyed externally by
// (week, contest id). Scores are non-negative; Winner is derived from
// the scores and away wins on a strictly greater away score.
type Result struct {
	AwayScore int  `json:"awayScore" bson:"awayScore"`
	HomeScore int  `json:"homeScore" bson:"homeScore"`
	Winner    Side `json:"winner,omitempty" bson:"winner,omitempty"`
}

// DerivedWinner computes the straight-up winner from the scores.
// A tie yields SideNone.
func (r Result) DerivedWinner() Side {
	switch {
	case r.AwayScore > r.HomeScore:
		return SideAway
	case r.HomeScore > r.AwayScore:
		return SideHome
	default:
		return SideNone
	}
}

// Normalized returns the result with Winner forced to agree with the
// scores. Feeds occasionally carry an explicit winner that contradicts
// the score pair; the scores are authoritative.
func (r Result) Normalized() Result {
	r.Winner = r.DerivedWinner()
	return r
}
