// Package resolve picks the source of a logical dataset from an ordered list
// of strategies.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"maintenance-cloud/internal/observability/metrics"
	"maintenance-cloud/internal/storage/table"
)

var (
	// ErrNotApplicable tells the chain to try the next strategy.
	ErrNotApplicable = errors.New("resolve: strategy not applicable")
	// ErrUnresolved is returned when no strategy produced a table.
	ErrUnresolved = errors.New("resolve: no source available")
)

// Strategy produces a table or reports ErrNotApplicable.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context) (*table.Table, error)
}

// Result is the resolved table and the strategy that produced it.
type Result struct {
	Table  *table.Table
	Source string
	Tier   int
}

// Chain tries strategies in order.
type Chain struct {
	dataset    string
	strategies []Strategy
	logger     *zap.Logger
}

// NewChain constructs a Chain.
func NewChain(dataset string, logger *zap.Logger, strategies ...Strategy) (*Chain, error) {
	if dataset == "" {
		return nil, errors.New("resolve: empty dataset name")
	}
	if len(strategies) == 0 {
		return nil, errors.New("resolve: no strategies")
	}
	for i, s := range strategies {
		if s == nil {
			return nil, fmt.Errorf("resolve: nil strategy at %d", i)
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{dataset: dataset, strategies: strategies, logger: logger}, nil
}

// Append adds a strategy after the existing ones.
func (c *Chain) Append(s Strategy) {
	if s != nil {
		c.strategies = append(c.strategies, s)
	}
}

// Strategies returns the strategy names in resolution order.
func (c *Chain) Strategies() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}

// Resolve returns the first table produced. A strategy error other than
// ErrNotApplicable stops the chain.
func (c *Chain) Resolve(ctx context.Context) (Result, error) {
	start := time.Now()
	for i, s := range c.strategies {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		tbl, err := s.Resolve(ctx)
		if errors.Is(err, ErrNotApplicable) {
			c.logger.Debug("dataset source skipped",
				zap.String("dataset", c.dataset),
				zap.String("source", s.Name()),
				zap.Error(err),
			)
			continue
		}
		if err != nil {
			metrics.ObserveDatasetLoad(c.dataset, s.Name(), metrics.ResultError, time.Since(start))
			return Result{}, fmt.Errorf("resolve %s via %s: %w", c.dataset, s.Name(), err)
		}
		metrics.ObserveDatasetLoad(c.dataset, s.Name(), metrics.ResultSuccess, time.Since(start))
		c.logger.Debug("dataset resolved",
			zap.String("dataset", c.dataset),
			zap.String("source", s.Name()),
			zap.Int("rows", tbl.Len()),
		)
		return Result{Table: tbl, Source: s.Name(), Tier: i}, nil
	}
	metrics.ObserveDatasetLoad(c.dataset, "none", metrics.ResultError, time.Since(start))
	return Result{}, fmt.Errorf("%w: %s", ErrUnresolved, c.dataset)
}

// File reads a table from Path when the file exists.
type File struct {
	Path string
	// Read overrides table.ReadFile.
	Read func(path string) (*table.Table, error)
}

// Name implements Strategy.
func (f File) Name() string { return "file:" + f.Path }

// Resolve implements Strategy.
func (f File) Resolve(ctx context.Context) (*table.Table, error) {
	_ = ctx
	if _, err := os.Stat(f.Path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s missing", ErrNotApplicable, f.Path)
		}
		return nil, err
	}
	read := f.Read
	if read == nil {
		read = table.ReadFile
	}
	return read(f.Path)
}

// Func adapts a function to Strategy.
type Func struct {
	Label string
	Fn    func(ctx context.Context) (*table.Table, error)
}

// Name implements Strategy.
func (f Func) Name() string { return f.Label }

// Resolve implements Strategy.
func (f Func) Resolve(ctx context.Context) (*table.Table, error) { return f.Fn(ctx) }

// EmptySchema always yields an empty table with the given columns.
type EmptySchema struct {
	Columns []string
}

// Name implements Strategy.
func (EmptySchema) Name() string { return "empty-schema" }

// Resolve implements Strategy.
func (e EmptySchema) Resolve(ctx context.Context) (*table.Table, error) {
	_ = ctx
	return table.Empty(e.Columns), nil
}
