package models

import "fmt"

// MaxBlazinPicks is the per-(week, picker) cap on featured picks
const MaxBlazinPicks = 5

// Outcome represents the resolved result of a single pick
type Outcome string

const (
	OutcomePending Outcome = "pending"
	OutcomeWin     Outcome = "win"
	OutcomeLoss    Outcome = "loss"
	OutcomePush    Outcome = "push"
)

// Pick is one picker's prediction for one contest, keyed externally by
// (week, picker, contest id). Line is the against-the-spread selection,
// Winner the straight-up selection; either may be unset. BlazinTeam is
// a display-only snapshot of the featured team's name and is never
// authoritative for scoring.
type Pick struct {
	Line       Side   `json:"line,omitempty" bson:"line,omitempty"`
	Winner     Side   `json:"winner,omitempty" bson:"winner,omitempty"`
	Blazin     bool   `json:"blazin,omitempty" bson:"blazin,omitempty"`
	BlazinTeam string `json:"blazinTeam,omitempty" bson:"blazinTeam,omitempty"`
}

// IsEmpty reports whether the pick carries no selection at all. An
// empty pick is equivalent to absence and is pruned on write.
func (p Pick) IsEmpty() bool {
	return !p.Line.Valid() && !p.Winner.Valid()
}

// PickerPicks maps contest id to pick for one picker in one week
type PickerPicks map[int]Pick

// CountBlazin returns how many picks carry the featured flag
func (pp PickerPicks) CountBlazin() int {
	n := 0
	for _, p := range pp {
		if p.Blazin {
			n++
		}
	}
	return n
}

// Clone returns a deep copy
func (pp PickerPicks) Clone() PickerPicks {
	out := make(PickerPicks, len(pp))
	for id, p := range pp {
		out[id] = p
	}
	return out
}

// PickTable is the full persisted pick state:
// week -> picker -> contest id -> pick.
type PickTable map[int]map[string]PickerPicks

// Get returns the pick at (week, picker, contest), if present
func (t PickTable) Get(week int, picker string, contestID int) (Pick, bool) {
	if byPicker, ok := t[week]; ok {
		if picks, ok := byPicker[picker]; ok {
			p, ok := picks[contestID]
			return p, ok
		}
	}
	return Pick{}, false
}

// Set stores a pick, creating intermediate maps as needed. Empty picks
// are pruned instead of stored.
func (t PickTable) Set(week int, picker string, contestID int, pick Pick) {
	if pick.IsEmpty() {
		t.Delete(week, picker, contestID)
		return
	}
	byPicker, ok := t[week]
	if !ok {
		byPicker = make(map[string]PickerPicks)
		t[week] = byPicker
	}
	picks, ok := byPicker[picker]
	if !ok {
		picks = make(PickerPicks)
		byPicker[picker] = picks
	}
	picks[contestID] = pick
}

// Delete removes a pick and any emptied intermediate maps
func (t PickTable) Delete(week int, picker string, contestID int) {
	byPicker, ok := t[week]
	if !ok {
		return
	}
	picks, ok := byPicker[picker]
	if !ok {
		return
	}
	delete(picks, contestID)
	if len(picks) == 0 {
		delete(byPicker, picker)
	}
	if len(byPicker) == 0 {
		delete(t, week)
	}
}

// Clone returns a deep copy of the table
func (t PickTable) Clone() PickTable {
	out := make(PickTable, len(t))
	for week, byPicker := range t {
		wc := make(map[string]PickerPicks, len(byPicker))
		for picker, picks := range byPicker {
			wc[picker] = picks.Clone()
		}
		out[week] = wc
	}
	return out
}

// Record is a win-loss-push tally
type Record struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Pushes int `json:"pushes"`
}

// Add folds one outcome into the record; pending outcomes are ignored
func (r *Record) Add(o Outcome) {
	switch o {
	case OutcomeWin:
		r.Wins++
	case OutcomeLoss:
		r.Losses++
	case OutcomePush:
		r.Pushes++
	}
}

// Total returns the number of resolved picks in the record
func (r Record) Total() int {
	return r.Wins + r.Losses + r.Pushes
}

// Margin returns wins minus losses
func (r Record) Margin() int {
	return r.Wins - r.Losses
}

// Pct calculates win percentage; pushes count against volume but not
// as wins, and an empty record is 0.
func (r Record) Pct() float64 {
	total := r.Total()
	if total == 0 {
		return 0
	}
	return float64(r.Wins) / float64(total)
}

// String renders the record in "W-L-P" format
func (r Record) String() string {
	return fmt.Sprintf("%d-%d-%d", r.Wins, r.Losses, r.Pushes)
}
