package prediction

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantClassifier(p float64, seen *[][]float64) Classifier {
	return ClassifierFunc(func(rows [][]float64) ([]float64, error) {
		if seen != nil {
			*seen = rows
		}
		out := make([]float64, len(rows))
		for i := range out {
			out[i] = p
		}
		return out, nil
	})
}

func TestScoreExampleRow(t *testing.T) {
	var seen [][]float64
	rows := []FeatureRow{{
		DeviceID:           "D1",
		Date:               time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		HoursUsed:          Float(100),
		Hours7dMean:        Float(90),
		Temperature:        nil,
		Vibration:          Float(0.4),
		DaysSinceLastMaint: Float(40),
	}}

	scored, err := Score(rows, constantClassifier(0.6, &seen))
	require.NoError(t, err)
	require.Len(t, scored, 1)

	assert.Equal(t, 0.6, scored[0].PredProb)
	assert.InDelta(t, 0.6*(1+40/365.0), scored[0].Priority, 1e-12)
	assert.InDelta(t, 0.666, scored[0].Priority, 0.001)
	assert.Equal(t, []float64{100, 90, 0, 0.4, 40}, seen[0], "missing temperature is passed as 0")
}

func TestScoreAllCovariatesMissing(t *testing.T) {
	scored, err := Score([]FeatureRow{{DeviceID: "D9"}}, constantClassifier(0.25, nil))
	require.NoError(t, err)
	assert.Equal(t, 0.25, scored[0].PredProb)
	assert.Equal(t, 0.25, scored[0].Priority)
}

func TestPriorityMonotonicInMaintenanceDeferral(t *testing.T) {
	for _, p := range []float64{0, 0.1, 0.5, 1} {
		prev := math.Inf(-1)
		for days := -30.0; days <= 1000; days += 10 {
			got := Priority(p, days)
			assert.GreaterOrEqual(t, got, prev, "p=%v days=%v", p, days)
			prev = got
		}
	}
}

func TestPriorityNegativeDaysNotClamped(t *testing.T) {
	assert.InDelta(t, 0.5*(1-73/365.0), Priority(0.5, -73), 1e-12)
}

func TestScoreRejectsOutOfRangeProbability(t *testing.T) {
	for _, p := range []float64{-0.01, 1.01, math.NaN()} {
		_, err := Score([]FeatureRow{{DeviceID: "D1"}}, constantClassifier(p, nil))
		assert.True(t, errors.Is(err, ErrInvalidProbability), "p=%v err=%v", p, err)
	}
}

func TestScoreProbabilityCountMismatch(t *testing.T) {
	short := ClassifierFunc(func(rows [][]float64) ([]float64, error) {
		return []float64{0.1}, nil
	})
	_, err := Score([]FeatureRow{{DeviceID: "a"}, {DeviceID: "b"}}, short)
	assert.ErrorIs(t, err, ErrProbabilityCount)
}

func TestScoreNilClassifier(t *testing.T) {
	_, err := Score([]FeatureRow{{DeviceID: "a"}}, nil)
	assert.ErrorIs(t, err, ErrNilClassifier)
}

func TestScoreClassifierError(t *testing.T) {
	boom := errors.New("boom")
	failing := ClassifierFunc(func([][]float64) ([]float64, error) { return nil, boom })
	_, err := Score([]FeatureRow{{DeviceID: "a"}}, failing)
	assert.ErrorIs(t, err, boom)
}

func TestScoreEmptyInput(t *testing.T) {
	scored, err := Score(nil, constantClassifier(0.5, nil))
	require.NoError(t, err)
	assert.Empty(t, scored)
}
