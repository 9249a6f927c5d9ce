package prediction

import "errors"

var (
	// ErrNilClassifier is returned when scoring without a model.
	ErrNilClassifier = errors.New("prediction: nil classifier")
	// ErrProbabilityCount is returned when the model output does not match the input rows.
	ErrProbabilityCount = errors.New("prediction: probability count mismatch")
	// ErrInvalidProbability is returned when the model yields a value outside [0,1].
	ErrInvalidProbability = errors.New("prediction: probability out of range")
	// ErrModelUnavailable is returned when the model artifact cannot be loaded.
	ErrModelUnavailable = errors.New("prediction: model unavailable")
	// ErrFeaturesUnavailable is returned when the features file does not exist.
	ErrFeaturesUnavailable = errors.New("prediction: features unavailable")
	// ErrSnapshotNotFound is returned when no snapshot has been persisted.
	ErrSnapshotNotFound = errors.New("prediction: snapshot not found")
)
