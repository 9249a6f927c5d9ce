package prediction

import (
	"fmt"
	"math"
	"time"
)

// MaintenanceNormalizationDays scales deferred maintenance in the priority heuristic.
const MaintenanceNormalizationDays = 365.0

// ScoredRow is a feature row augmented with the model output.
type ScoredRow struct {
	FeatureRow
	PredProb float64
	Priority float64
}

// Record projects the row onto the persisted snapshot schema.
func (r ScoredRow) Record() Record {
	return Record{
		DeviceID: r.DeviceID,
		Date:     r.Date,
		PredProb: r.PredProb,
		Priority: r.Priority,
	}
}

// Record is one row of the predictions snapshot.
type Record struct {
	DeviceID string    `json:"device_id"`
	Date     time.Time `json:"date"`
	PredProb float64   `json:"pred_prob"`
	Priority float64   `json:"priority"`
}

// Priority amplifies failure probability by how long maintenance has been deferred.
// Negative day counts are used as given.
func Priority(predProb, daysSinceLastMaint float64) float64 {
	return predProb * (1 + daysSinceLastMaint/MaintenanceNormalizationDays)
}

// Score runs the classifier over the feature rows and derives priority.
// The input slice is not modified.
func Score(rows []FeatureRow, classifier Classifier) ([]ScoredRow, error) {
	if classifier == nil {
		return nil, ErrNilClassifier
	}
	if len(rows) == 0 {
		return []ScoredRow{}, nil
	}

	matrix := make([][]float64, len(rows))
	for i, row := range rows {
		matrix[i] = row.Covariates()
	}

	probs, err := classifier.PredictProba(matrix)
	if err != nil {
		return nil, fmt.Errorf("prediction: classify: %w", err)
	}
	if len(probs) != len(rows) {
		return nil, fmt.Errorf("%w: got %d probabilities for %d rows", ErrProbabilityCount, len(probs), len(rows))
	}

	scored := make([]ScoredRow, len(rows))
	for i, row := range rows {
		p := probs[i]
		if math.IsNaN(p) || p < 0 || p > 1 {
			return nil, fmt.Errorf("%w: row %d (%s) = %v", ErrInvalidProbability, i, row.DeviceID, p)
		}
		scored[i] = ScoredRow{
			FeatureRow: row,
			PredProb:   p,
			Priority:   Priority(p, matrix[i][4]),
		}
	}
	return scored, nil
}
