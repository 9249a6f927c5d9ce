// Package reporting derives the dashboard views from devices, usage,
// predictions and complaints.
package reporting

import (
	"math"
	"sort"

	inventory "maintenance-cloud/internal/inventory/domain"
	prediction "maintenance-cloud/internal/prediction/domain"
)

const (
	// DefaultThreshold is the high-risk probability cut-off.
	DefaultThreshold = 0.7
	// MediumRiskCeiling bounds the Medium band from above.
	MediumRiskCeiling = 0.99
	// RiskTableLimit caps the risk table length.
	RiskTableLimit = 200
)

// RiskLevel buckets a failure probability.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// ValidateThreshold checks th is a probability.
func ValidateThreshold(th float64) error {
	if math.IsNaN(th) || th < 0 || th > 1 {
		return ErrInvalidThreshold
	}
	return nil
}

// Classify maps p to its band. Bands are right-closed:
// [0, th] Low, (th, 0.99] Medium, (0.99, 1] High. When th is at or above
// 0.99 the Medium band is empty.
func Classify(p, th float64) RiskLevel {
	switch {
	case p <= th:
		return RiskLow
	case p <= MediumRiskCeiling:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// HighRiskCount counts records with pred_prob strictly above th.
func HighRiskCount(records []prediction.Record, th float64) int {
	n := 0
	for _, rec := range records {
		if rec.PredProb > th {
			n++
		}
	}
	return n
}

// RiskRow is one prediction joined with its inventory entry. DeviceType and
// Location are empty when the device is not in the inventory.
type RiskRow struct {
	DeviceID   string    `json:"device_id"`
	DeviceType string    `json:"device_type"`
	Location   string    `json:"location"`
	Date       string    `json:"date"`
	PredProb   float64   `json:"pred_prob"`
	Priority   float64   `json:"priority"`
	RiskLevel  RiskLevel `json:"risk_level"`
}

// RiskTable is the ranked prediction view.
type RiskTable struct {
	Threshold    float64   `json:"threshold"`
	Total        int       `json:"total"`
	Rows         []RiskRow `json:"rows"`
	Distribution Histogram `json:"distribution"`
}

// BuildRiskTable left-joins records with the inventory, ranks them by
// pred_prob descending and keeps the first RiskTableLimit rows. The
// distribution covers every record.
func BuildRiskTable(records []prediction.Record, inv inventory.Inventory, th float64) (RiskTable, error) {
	if err := ValidateThreshold(th); err != nil {
		return RiskTable{}, err
	}
	index := inv.Index()
	rows := make([]RiskRow, 0, len(records))
	probs := make([]float64, 0, len(records))
	for _, rec := range records {
		device := index[rec.DeviceID]
		rows = append(rows, RiskRow{
			DeviceID:   rec.DeviceID,
			DeviceType: device.DeviceType,
			Location:   device.Location,
			Date:       rec.Date.Format("2006-01-02"),
			PredProb:   rec.PredProb,
			Priority:   rec.Priority,
			RiskLevel:  Classify(rec.PredProb, th),
		})
		probs = append(probs, rec.PredProb)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].PredProb > rows[j].PredProb
	})
	total := len(rows)
	if len(rows) > RiskTableLimit {
		rows = rows[:RiskTableLimit]
	}
	return RiskTable{
		Threshold:    th,
		Total:        total,
		Rows:         rows,
		Distribution: ProbabilityHistogram(probs, DefaultBins),
	}, nil
}
