package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"maintenance-cloud/internal/observability/metrics"
	prediction "maintenance-cloud/internal/prediction/domain"
)

// Clock provides time for the engine.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Run triggers.
const (
	TriggerManual   = "manual"
	TriggerFallback = "fallback"
	TriggerCLI      = "cli"
)

// RunResult summarizes one pipeline run.
type RunResult struct {
	RunID       string        `json:"run_id"`
	Trigger     string        `json:"trigger"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
	RowsScored  int           `json:"rows_scored"`
	Devices     int           `json:"devices"`
	SnapshotLoc string        `json:"snapshot"`
}

// Engine scores the feature table and persists the latest prediction per device.
type Engine struct {
	features  prediction.FeatureSource
	models    prediction.ClassifierLoader
	snapshots prediction.SnapshotStore
	location  string
	clock     Clock
	logger    *zap.Logger
}

// Option configures the engine.
type Option func(*Engine)

// WithClock overrides the engine clock.
func WithClock(clock Clock) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithSnapshotLocation sets the snapshot location reported in results.
func WithSnapshotLocation(location string) Option {
	return func(e *Engine) {
		e.location = location
	}
}

// NewEngine constructs an Engine.
func NewEngine(features prediction.FeatureSource, models prediction.ClassifierLoader, snapshots prediction.SnapshotStore, logger *zap.Logger, opts ...Option) (*Engine, error) {
	if features == nil {
		return nil, errors.New("prediction engine: nil feature source")
	}
	if models == nil {
		return nil, errors.New("prediction engine: nil classifier loader")
	}
	if snapshots == nil {
		return nil, errors.New("prediction engine: nil snapshot store")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	engine := &Engine{
		features:  features,
		models:    models,
		snapshots: snapshots,
		clock:     systemClock{},
		logger:    logger,
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine, nil
}

// Run loads features and the model, scores, reduces to the latest row per
// device and overwrites the snapshot. Model load failures are returned as is.
func (e *Engine) Run(ctx context.Context, trigger string) (RunResult, error) {
	started := e.clock.Now()
	result := RunResult{
		RunID:       uuid.NewString(),
		Trigger:     trigger,
		StartedAt:   started,
		SnapshotLoc: e.location,
	}
	logger := e.logger.With(zap.String("run_id", result.RunID), zap.String("trigger", trigger))

	err := e.run(ctx, &result)
	result.Duration = e.clock.Now().Sub(started)
	if err != nil {
		metrics.ObservePipelineRun(trigger, metrics.ResultError, result.Duration)
		logger.Error("prediction run failed", zap.Error(err), zap.Duration("duration", result.Duration))
		return result, err
	}
	metrics.ObservePipelineRun(trigger, metrics.ResultSuccess, result.Duration)
	metrics.ObserveScored(result.RowsScored, result.Devices)
	logger.Info("prediction run completed",
		zap.Int("rows_scored", result.RowsScored),
		zap.Int("devices", result.Devices),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

func (e *Engine) run(ctx context.Context, result *RunResult) error {
	rows, err := e.features.LoadFeatures(ctx)
	if err != nil {
		return err
	}
	classifier, err := e.models.LoadClassifier(ctx)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	scored, err := prediction.Score(rows, classifier)
	if err != nil {
		return err
	}
	latest := prediction.ReduceLatest(scored)
	if err := e.snapshots.Save(ctx, latest); err != nil {
		return fmt.Errorf("prediction engine: save snapshot: %w", err)
	}

	result.RowsScored = len(scored)
	result.Devices = len(latest)
	return nil
}
