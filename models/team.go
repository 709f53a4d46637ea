package models

import (
	"strings"
)

// teamAliases maps every rendering of a team name a feed has been seen
// to use (full name, location, mascot, short code) onto one canonical
// abbreviation. Statistics bucket by the canonical form so "Kansas City
// Chiefs", "Chiefs" and "KC" all land in the same record.
var teamAliases = map[string]string{
	// AFC East
	"buf": "BUF", "buffalo": "BUF", "bills": "BUF", "buffalo bills": "BUF",
	"mia": "MIA", "miami": "MIA", "dolphins": "MIA", "miami dolphins": "MIA",
	"ne": "NE", "nwe": "NE", "new england": "NE", "patriots": "NE", "pats": "NE", "new england patriots": "NE",
	"nyj": "NYJ", "jets": "NYJ", "new york jets": "NYJ",
	// AFC North
	"bal": "BAL", "baltimore": "BAL", "ravens": "BAL", "baltimore ravens": "BAL",
	"cin": "CIN", "cincinnati": "CIN", "bengals": "CIN", "cincinnati bengals": "CIN",
	"cle": "CLE", "cleveland": "CLE", "browns": "CLE", "cleveland browns": "CLE",
	"pit": "PIT", "pittsburgh": "PIT", "steelers": "PIT", "pittsburgh steelers": "PIT",
	// AFC South
	"hou": "HOU", "houston": "HOU", "texans": "HOU", "houston texans": "HOU",
	"ind": "IND", "indianapolis": "IND", "indy": "IND", "colts": "IND", "indianapolis colts": "IND",
	"jax": "JAX", "jac": "JAX", "jacksonville": "JAX", "jaguars": "JAX", "jags": "JAX", "jacksonville jaguars": "JAX",
	"ten": "TEN", "tennessee": "TEN", "titans": "TEN", "tennessee titans": "TEN",
	// AFC West
	"den": "DEN", "denver": "DEN", "broncos": "DEN", "denver broncos": "DEN",
	"kc": "KC", "kan": "KC", "kansas city": "KC", "chiefs": "KC", "kansas city chiefs": "KC",
	"lv": "LV", "lvr": "LV", "las vegas": "LV", "raiders": "LV", "las vegas raiders": "LV", "oakland raiders": "LV",
	"lac": "LAC", "chargers": "LAC", "los angeles chargers": "LAC", "la chargers": "LAC", "san diego chargers": "LAC",
	// NFC East
	"dal": "DAL", "dallas": "DAL", "cowboys": "DAL", "dallas cowboys": "DAL",
	"nyg": "NYG", "giants": "NYG", "new york giants": "NYG",
	"phi": "PHI", "philadelphia": "PHI", "philly": "PHI", "eagles": "PHI", "philadelphia eagles": "PHI",
	"was": "WAS", "wsh": "WAS", "washington": "WAS", "commanders": "WAS", "washington commanders": "WAS",
	// NFC North
	"chi": "CHI", "chicago": "CHI", "bears": "CHI", "chicago bears": "CHI",
	"det": "DET", "detroit": "DET", "lions": "DET", "detroit lions": "DET",
	"gb": "GB", "gnb": "GB", "green bay": "GB", "packers": "GB", "green bay packers": "GB",
	"min": "MIN", "minnesota": "MIN", "vikings": "MIN", "minnesota vikings": "MIN",
	// NFC South
	"atl": "ATL", "atlanta": "ATL", "falcons": "ATL", "atlanta falcons": "ATL",
	"car": "CAR", "carolina": "CAR", "panthers": "CAR", "carolina panthers": "CAR",
	"no": "NO", "nor": "NO", "new orleans": "NO", "saints": "NO", "new orleans saints": "NO",
	"tb": "TB", "tam": "TB", "tampa bay": "TB", "buccaneers": "TB", "bucs": "TB", "tampa bay buccaneers": "TB",
	// NFC West
	"ari": "ARI", "arizona": "ARI", "cardinals": "ARI", "cards": "ARI", "arizona cardinals": "ARI",
	"lar": "LAR", "rams": "LAR", "los angeles rams": "LAR", "la rams": "LAR", "st. louis rams": "LAR",
	"sf": "SF", "sfo": "SF", "san francisco": "SF", "49ers": "SF", "niners": "SF", "san francisco 49ers": "SF",
	"sea": "SEA", "seattle": "SEA", "seahawks": "SEA", "hawks": "SEA", "seattle seahawks": "SEA",
}

// NormalizeTeam resolves a free-text team name to its canonical
// abbreviation. Unknown names are returned trimmed and upper-cased so
// they still bucket consistently, just without alias collapsing.
func NormalizeTeam(name string) string {
	cleaned := strings.ToLower(strings.TrimSpace(name))
	if cleaned == "" {
		return ""
	}
	if abbr, ok := teamAliases[cleaned]; ok {
		return abbr
	}
	// Try the last token alone: "Kansas City Chiefs" -> "chiefs"
	if tok := lastToken(cleaned); tok != cleaned {
		if abbr, ok := teamAliases[tok]; ok {
			return abbr
		}
	}
	return strings.ToUpper(cleaned)
}

// TeamsMatch reports whether two team names from different sources
// refer to the same team. Exact match after normalization is preferred;
// the fallback is case-insensitive containment of one name's last token
// in the other, since feeds render the same team as full name, nickname
// or code. Known failure mode: two teams whose last tokens coincide.
func TeamsMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	na, nb := NormalizeTeam(a), NormalizeTeam(b)
	if na == nb {
		return true
	}
	la := strings.ToLower(strings.TrimSpace(a))
	lb := strings.ToLower(strings.TrimSpace(b))
	if la == lb {
		return true
	}
	return strings.Contains(la, lastToken(lb)) || strings.Contains(lb, lastToken(la))
}

// MatchupKey builds the lower-cased "away@home" key used to identify a
// matchup across sources for the duration of a week.
func MatchupKey(away, home string) string {
	return strings.ToLower(NormalizeTeam(away)) + "@" + strings.ToLower(NormalizeTeam(home))
}

func lastToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return s
	}
	return fields[len(fields)-1]
}
