package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	prediction "maintenance-cloud/internal/prediction/domain"
)

// Logistic is a linear model with a sigmoid link.
type Logistic struct {
	weights   *mat.VecDense
	intercept float64
}

// NewLogistic builds a Logistic from per-covariate coefficients.
func NewLogistic(coefficients []float64, intercept float64) (*Logistic, error) {
	if len(coefficients) != len(prediction.CovariateNames) {
		return nil, fmt.Errorf("%w: expected %d coefficients, got %d", ErrInvalidArtifact, len(prediction.CovariateNames), len(coefficients))
	}
	for i, c := range coefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("%w: coefficient %d is not finite", ErrInvalidArtifact, i)
		}
	}
	weights := make([]float64, len(coefficients))
	copy(weights, coefficients)
	return &Logistic{weights: mat.NewVecDense(len(weights), weights), intercept: intercept}, nil
}

// PredictProba implements prediction.Classifier.
func (l *Logistic) PredictProba(rows [][]float64) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, row := range rows {
		if len(row) != l.weights.Len() {
			return nil, fmt.Errorf("model: row %d has %d covariates", i, len(row))
		}
		x := mat.NewVecDense(len(row), append([]float64(nil), row...))
		out[i] = sigmoid(mat.Dot(l.weights, x) + l.intercept)
	}
	return out, nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
