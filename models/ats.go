package models

// ATSOutcome is the against-the-spread outcome of a finished contest
type ATSOutcome string

const (
	ATSAway ATSOutcome = "away"
	ATSHome ATSOutcome = "home"
	ATSPush ATSOutcome = "push"
)

// CalculateATSWinner computes the against-the-spread winner for a
// contest and its final score. The favored side's raw score is used
// unmodified; the other side's score is increased by the spread. Equal
// adjusted scores are a push, possible only for whole-number spreads.
func CalculateATSWinner(contest Contest, result Result) ATSOutcome {
	awayAdjusted := float64(result.AwayScore)
	homeAdjusted := float64(result.HomeScore)
	if contest.Favorite != SideAway {
		awayAdjusted += contest.Spread
	}
	if contest.Favorite != SideHome {
		homeAdjusted += contest.Spread
	}

	switch {
	case awayAdjusted > homeAdjusted:
		return ATSAway
	case homeAdjusted > awayAdjusted:
		return ATSHome
	default:
		return ATSPush
	}
}

// OutcomeForSide translates an ATS outcome into a win/loss/push for
// the picker who took the given side.
func (o ATSOutcome) OutcomeForSide(side Side) Outcome {
	switch {
	case o == ATSPush:
		return OutcomePush
	case (o == ATSAway && side == SideAway) || (o == ATSHome && side == SideHome):
		return OutcomeWin
	default:
		return OutcomeLoss
	}
}
