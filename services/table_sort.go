package services

import "sort"

// SortColumn names a sortable column of the record tables
type SortColumn string

const (
	SortByLabel  SortColumn = "label"
	SortByMargin SortColumn = "margin"
	SortByVolume SortColumn = "volume"
	SortByPct    SortColumn = "pct"
)

// SortState tracks the active column and direction for one record
// table. The label column defaults ascending, every other column
// descending; selecting the active column again flips the direction.
type SortState struct {
	Column     SortColumn `json:"column"`
	Descending bool       `json:"descending"`
}

// Toggle applies a column selection to the state
func (st *SortState) Toggle(column SortColumn) {
	if st.Column == column {
		st.Descending = !st.Descending
		return
	}
	st.Column = column
	st.Descending = column != SortByLabel
}

// SortRecordRows orders record rows per the sort state. Margin ties
// break on raw wins, percentage ties on volume.
func SortRecordRows(rows []TeamRecordRow, st SortState) {
	less := func(a, b TeamRecordRow) bool {
		switch st.Column {
		case SortByMargin:
			am, bm := a.Record.Margin(), b.Record.Margin()
			if am != bm {
				return am < bm
			}
			return a.Record.Wins < b.Record.Wins
		case SortByVolume:
			return a.Record.Total() < b.Record.Total()
		case SortByPct:
			ap, bp := a.Record.Pct(), b.Record.Pct()
			if ap != bp {
				return ap < bp
			}
			return a.Record.Total() < b.Record.Total()
		default:
			return a.Label < b.Label
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if st.Descending {
			return less(rows[j], rows[i])
		}
		return less(rows[i], rows[j])
	})
}
