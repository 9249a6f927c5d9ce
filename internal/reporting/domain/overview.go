package reporting

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	inventory "maintenance-cloud/internal/inventory/domain"
	prediction "maintenance-cloud/internal/prediction/domain"
)

// FailurePoint is the failure count of one day.
type FailurePoint struct {
	Date     string  `json:"date"`
	Failures float64 `json:"failures"`
}

// Overview is the headline metrics view. Nil metrics are not computable from
// the available columns.
type Overview struct {
	DevicesAvailable  bool           `json:"devices_available"`
	UsageAvailable    bool           `json:"usage_available"`
	TotalDevices      int            `json:"total_devices"`
	Threshold         float64        `json:"threshold"`
	HighRiskDevices   int            `json:"high_risk_devices"`
	MeanPredProb      *float64       `json:"mean_pred_prob"`
	MTBFHours         *float64       `json:"mtbf_hours"`
	MaintenanceCost   *float64       `json:"maintenance_cost"`
	FailuresOverTime  []FailurePoint `json:"failures_over_time"`
	PredictionsLoaded int            `json:"predictions_loaded"`
}

// OverviewInput carries the datasets behind an Overview. A nil Inventory or
// Usage marks the dataset unavailable.
type OverviewInput struct {
	Inventory   *inventory.Inventory
	Usage       *inventory.UsageLog
	Predictions []prediction.Record
	Threshold   float64
}

// BuildOverview computes the headline metrics.
func BuildOverview(in OverviewInput) (Overview, error) {
	if err := ValidateThreshold(in.Threshold); err != nil {
		return Overview{}, err
	}
	out := Overview{
		Threshold:         in.Threshold,
		HighRiskDevices:   HighRiskCount(in.Predictions, in.Threshold),
		PredictionsLoaded: len(in.Predictions),
	}
	if in.Inventory != nil {
		out.DevicesAvailable = true
		out.TotalDevices = in.Inventory.Len()
	}
	if len(in.Predictions) > 0 {
		probs := make([]float64, len(in.Predictions))
		for i, rec := range in.Predictions {
			probs[i] = rec.PredProb
		}
		mean := stat.Mean(probs, nil)
		out.MeanPredProb = &mean
	}
	if in.Usage != nil {
		out.UsageAvailable = true
		out.MTBFHours = MTBF(*in.Usage)
		out.MaintenanceCost = MaintenanceCost(*in.Usage)
		out.FailuresOverTime = FailuresOverTime(*in.Usage)
	}
	return out, nil
}

// MTBF is total hours used over total failures. It is nil when either column
// is absent or no failure was recorded.
func MTBF(log inventory.UsageLog) *float64 {
	if !log.HasHoursUsed || !log.HasFailureFlag {
		return nil
	}
	hours := make([]float64, 0, len(log.Records))
	failures := make([]float64, 0, len(log.Records))
	for _, rec := range log.Records {
		hours = append(hours, rec.HoursUsed)
		if rec.FailureFlag != nil {
			failures = append(failures, *rec.FailureFlag)
		}
	}
	total := floats.Sum(failures)
	if total <= 0 {
		return nil
	}
	mtbf := floats.Sum(hours) / total
	return &mtbf
}

// MaintenanceCost sums the Cost column, skipping blanks. It is nil when the
// column is absent.
func MaintenanceCost(log inventory.UsageLog) *float64 {
	if !log.HasCost {
		return nil
	}
	costs := make([]float64, 0, len(log.Records))
	for _, rec := range log.Records {
		if rec.Cost != nil {
			costs = append(costs, *rec.Cost)
		}
	}
	sum := floats.Sum(costs)
	return &sum
}

// FailuresOverTime sums FailureFlag per date, ordered by date. It is nil when
// the column is absent.
func FailuresOverTime(log inventory.UsageLog) []FailurePoint {
	if !log.HasFailureFlag {
		return nil
	}
	byDate := make(map[time.Time]float64)
	for _, rec := range log.Records {
		v := 0.0
		if rec.FailureFlag != nil {
			v = *rec.FailureFlag
		}
		byDate[rec.Date] += v
	}
	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	points := make([]FailurePoint, 0, len(dates))
	for _, d := range dates {
		points = append(points, FailurePoint{Date: d.Format("2006-01-02"), Failures: byDate[d]})
	}
	return points
}
