package reporting

import (
	"sort"

	inventory "maintenance-cloud/internal/inventory/domain"
	prediction "maintenance-cloud/internal/prediction/domain"
)

// DeviceHistoryLimit caps the predictions listed for one device.
const DeviceHistoryLimit = 10

// DeviceDetail is one device's usage and prediction history.
type DeviceDetail struct {
	Device      *inventory.Device       `json:"device"`
	Usage       []inventory.UsageRecord `json:"usage"`
	Predictions []prediction.Record     `json:"predictions"`
}

// BuildDeviceDetail collects usage by date ascending and the latest
// DeviceHistoryLimit predictions by date descending.
func BuildDeviceDetail(deviceID string, inv inventory.Inventory, usage inventory.UsageLog, records []prediction.Record) (DeviceDetail, error) {
	detail := DeviceDetail{
		Usage:       usage.ForDevice(deviceID),
		Predictions: make([]prediction.Record, 0),
	}
	if detail.Usage == nil {
		detail.Usage = make([]inventory.UsageRecord, 0)
	}
	if device, ok := inv.Index()[deviceID]; ok {
		detail.Device = &device
	}
	for _, rec := range records {
		if rec.DeviceID == deviceID {
			detail.Predictions = append(detail.Predictions, rec)
		}
	}
	if detail.Device == nil && len(detail.Usage) == 0 && len(detail.Predictions) == 0 {
		return DeviceDetail{}, ErrDeviceNotFound
	}
	sort.SliceStable(detail.Predictions, func(i, j int) bool {
		return detail.Predictions[i].Date.After(detail.Predictions[j].Date)
	})
	if len(detail.Predictions) > DeviceHistoryLimit {
		detail.Predictions = detail.Predictions[:DeviceHistoryLimit]
	}
	return detail, nil
}

// SortComplaints orders complaints newest first. Complaints without a
// timestamp go last in their original order.
func SortComplaints(complaints []inventory.Complaint) []inventory.Complaint {
	out := append(make([]inventory.Complaint, 0, len(complaints)), complaints...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Datetime, out[j].Datetime
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	return out
}
