package prediction

// Classifier is a binary classifier that reports the probability of the
// failure class for each covariate row. Rows follow CovariateNames order.
type Classifier interface {
	PredictProba(rows [][]float64) ([]float64, error)
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(rows [][]float64) ([]float64, error)

// PredictProba calls f.
func (f ClassifierFunc) PredictProba(rows [][]float64) ([]float64, error) {
	return f(rows)
}
