package database

import (
	"encoding/json"
	"fmt"
	"strconv"

	"pickem-app-go/models"
)

// ParsePickTableBlob decodes a serialized pick table, accepting both
// the current shape (week -> picker -> contest id -> pick) and the
// legacy single-season shape (picker -> contest id -> side string or
// pick object). The two are told apart by whether the top-level keys
// parse as integers. Legacy data is folded into legacyWeek, with bare
// side strings wrapped into {line: side} picks. The second return
// value reports whether a legacy migration took place.
func ParsePickTableBlob(data []byte, legacyWeek int) (models.PickTable, bool, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, false, fmt.Errorf("unparseable pick table blob: %w", err)
	}

	table := make(models.PickTable)
	if len(top) == 0 {
		return table, false, nil
	}

	if isWeekKeyed(top) {
		for weekKey, raw := range top {
			week, err := strconv.Atoi(weekKey)
			if err != nil {
				continue // skip the odd non-integer key, keep the rest
			}
			var byPicker map[string]map[string]json.RawMessage
			if err := json.Unmarshal(raw, &byPicker); err != nil {
				continue
			}
			for picker, picks := range byPicker {
				mergePickerPicks(table, week, picker, picks)
			}
		}
		return table, false, nil
	}

	// Legacy shape: one implied week of picker -> contest -> pick
	for picker, raw := range top {
		var picks map[string]json.RawMessage
		if err := json.Unmarshal(raw, &picks); err != nil {
			continue
		}
		mergePickerPicks(table, legacyWeek, picker, picks)
	}
	return table, true, nil
}

// isWeekKeyed reports whether every top-level key parses as an integer
func isWeekKeyed(top map[string]json.RawMessage) bool {
	for key := range top {
		if _, err := strconv.Atoi(key); err != nil {
			return false
		}
	}
	return true
}

// mergePickerPicks decodes one picker's contest map into the table.
// Each value is either a bare side string (legacy) or a pick object;
// records of neither shape are skipped.
func mergePickerPicks(table models.PickTable, week int, picker string, picks map[string]json.RawMessage) {
	for contestKey, raw := range picks {
		contestID, err := strconv.Atoi(contestKey)
		if err != nil {
			continue
		}

		var side string
		if err := json.Unmarshal(raw, &side); err == nil {
			pick := models.Pick{Line: models.Side(side)}
			if !pick.IsEmpty() {
				table.Set(week, picker, contestID, pick)
			}
			continue
		}

		var pick models.Pick
		if err := json.Unmarshal(raw, &pick); err != nil {
			continue
		}
		if !pick.IsEmpty() {
			table.Set(week, picker, contestID, pick)
		}
	}
}
