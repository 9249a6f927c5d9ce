// Package model loads serialized failure classifiers.
package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	prediction "maintenance-cloud/internal/prediction/domain"
)

// Artifact kinds.
const (
	KindRandomForest = "random_forest"
	KindLogistic     = "logistic"
)

// ErrInvalidArtifact is returned when an artifact decodes but is not usable.
var ErrInvalidArtifact = errors.New("model: invalid artifact")

// Artifact is the on-disk model description.
type Artifact struct {
	Kind         string    `json:"kind"`
	Version      string    `json:"version,omitempty"`
	Features     []string  `json:"features"`
	Trees        []Tree    `json:"trees,omitempty"`
	Coefficients []float64 `json:"coefficients,omitempty"`
	Intercept    float64   `json:"intercept,omitempty"`
}

// Decode reads an artifact and builds its classifier.
func Decode(r io.Reader) (prediction.Classifier, *Artifact, error) {
	var artifact Artifact
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&artifact); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	classifier, err := artifact.Classifier()
	if err != nil {
		return nil, nil, err
	}
	return classifier, &artifact, nil
}

// Classifier validates the artifact and returns the matching implementation.
func (a *Artifact) Classifier() (prediction.Classifier, error) {
	if err := checkFeatures(a.Features); err != nil {
		return nil, err
	}
	switch a.Kind {
	case KindRandomForest:
		return NewForest(a.Trees)
	case KindLogistic:
		return NewLogistic(a.Coefficients, a.Intercept)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidArtifact, a.Kind)
	}
}

func checkFeatures(features []string) error {
	if len(features) != len(prediction.CovariateNames) {
		return fmt.Errorf("%w: expected %d features, got %d", ErrInvalidArtifact, len(prediction.CovariateNames), len(features))
	}
	for i, name := range prediction.CovariateNames {
		if features[i] != name {
			return fmt.Errorf("%w: feature %d is %q, expected %q", ErrInvalidArtifact, i, features[i], name)
		}
	}
	return nil
}

// FileLoader loads the classifier from a path on every call.
type FileLoader struct {
	Path string
}

// NewFileLoader constructs a FileLoader.
func NewFileLoader(path string) (*FileLoader, error) {
	if path == "" {
		return nil, errors.New("model: empty path")
	}
	return &FileLoader{Path: path}, nil
}

// LoadClassifier implements prediction.ClassifierLoader.
func (l *FileLoader) LoadClassifier(ctx context.Context) (prediction.Classifier, error) {
	_ = ctx
	classifier, _, err := Load(l.Path)
	return classifier, err
}

// Load opens and decodes the artifact at path. Any failure wraps
// prediction.ErrModelUnavailable.
func Load(path string) (prediction.Classifier, *Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", prediction.ErrModelUnavailable, err)
	}
	defer f.Close()

	classifier, artifact, err := Decode(f)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", prediction.ErrModelUnavailable, path, err)
	}
	return classifier, artifact, nil
}
