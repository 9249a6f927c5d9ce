package prediction

import "context"

// FeatureSource loads the externally produced feature table.
type FeatureSource interface {
	LoadFeatures(ctx context.Context) ([]FeatureRow, error)
}

// SnapshotStore persists and reads the latest-prediction snapshot.
// Save fully replaces any previous snapshot.
type SnapshotStore interface {
	Save(ctx context.Context, records []Record) error
	Load(ctx context.Context) ([]Record, error)
}

// ClassifierLoader loads the serialized model.
type ClassifierLoader interface {
	LoadClassifier(ctx context.Context) (Classifier, error)
}
