package prediction

import "sort"

// ReduceLatest keeps the latest-dated row per device. Rows are ordered by
// (DeviceID, Date) with a stable sort, so among equal dates the row that came
// last in the input wins. The result is ordered by DeviceID.
func ReduceLatest(rows []ScoredRow) []Record {
	if len(rows) == 0 {
		return []Record{}
	}
	ordered := make([]ScoredRow, len(rows))
	copy(ordered, rows)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].DeviceID != ordered[j].DeviceID {
			return ordered[i].DeviceID < ordered[j].DeviceID
		}
		return ordered[i].Date.Before(ordered[j].Date)
	})

	latest := make([]Record, 0, len(ordered))
	for i, row := range ordered {
		if i+1 < len(ordered) && ordered[i+1].DeviceID == row.DeviceID {
			continue
		}
		latest = append(latest, row.Record())
	}
	return latest
}
