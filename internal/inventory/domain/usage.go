package inventory

import (
	"sort"
	"time"
)

// UsageRecord is one device observation from the usage log.
// FailureFlag and Cost are nil when the cell is blank or the column is absent.
type UsageRecord struct {
	DeviceID    string    `json:"device_id"`
	Date        time.Time `json:"date"`
	HoursUsed   float64   `json:"hours_used"`
	FailureFlag *float64  `json:"failure_flag,omitempty"`
	Cost        *float64  `json:"cost,omitempty"`
}

// UsageLog is the append-only usage history plus the optional columns the source carried.
type UsageLog struct {
	Records        []UsageRecord
	HasHoursUsed   bool
	HasFailureFlag bool
	HasCost        bool
}

// Empty reports whether the log has no rows.
func (l UsageLog) Empty() bool { return len(l.Records) == 0 }

// ForDevice returns the device's records ordered by date ascending.
func (l UsageLog) ForDevice(deviceID string) []UsageRecord {
	var out []UsageRecord
	for _, record := range l.Records {
		if record.DeviceID == deviceID {
			out = append(out, record)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
