package dataaccess

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	inventory "maintenance-cloud/internal/inventory/domain"
	predictionapp "maintenance-cloud/internal/prediction/application"
	prediction "maintenance-cloud/internal/prediction/domain"
	"maintenance-cloud/internal/prediction/infrastructure/files"
	"maintenance-cloud/internal/storage/resolve"
	"maintenance-cloud/internal/storage/table"
)

// SnapshotComputer produces a fresh predictions snapshot.
type SnapshotComputer interface {
	Run(ctx context.Context, trigger string) (predictionapp.RunResult, error)
}

// Clock provides time for complaint stamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Store reads every dataset through its resolution chain and appends complaints.
type Store struct {
	paths       Paths
	devices     *resolve.Chain
	usage       *resolve.Chain
	predictions *resolve.Chain
	complaints  *resolve.Chain
	features    *files.FeatureReader
	computer    SnapshotComputer
	clock       Clock
	logger      *zap.Logger
	appendMu    sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithSnapshotComputer enables computing predictions when no snapshot exists.
func WithSnapshotComputer(computer SnapshotComputer) Option {
	return func(s *Store) {
		s.computer = computer
	}
}

// WithClock overrides the complaint clock.
func WithClock(clock Clock) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewStore builds the resolution chain of every dataset.
func NewStore(paths Paths, logger *zap.Logger, opts ...Option) (*Store, error) {
	if len(paths.Devices) == 0 || len(paths.Usage) == 0 {
		return nil, errors.New("dataaccess: devices and usage paths required")
	}
	if paths.Snapshot == "" || paths.Features == "" || paths.Complaints == "" {
		return nil, errors.New("dataaccess: snapshot, features and complaints paths required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	features, err := files.NewFeatureReader(paths.Features)
	if err != nil {
		return nil, err
	}

	s := &Store{
		paths:    paths,
		features: features,
		clock:    systemClock{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.devices, err = resolve.NewChain(DatasetDevices, logger, fileStrategies(paths.Devices)...); err != nil {
		return nil, err
	}
	if s.usage, err = resolve.NewChain(DatasetUsage, logger, fileStrategies(paths.Usage)...); err != nil {
		return nil, err
	}
	if s.predictions, err = resolve.NewChain(DatasetPredictions, logger,
		resolve.File{Path: paths.Snapshot},
		resolve.Func{Label: "compute-from-features", Fn: s.computeSnapshot},
		resolve.EmptySchema{Columns: files.SnapshotColumns},
	); err != nil {
		return nil, err
	}
	if s.complaints, err = resolve.NewChain(DatasetComplaints, logger,
		resolve.Func{Label: "complaints-headered", Fn: s.readComplaintsHeadered},
		resolve.Func{Label: "complaints-headerless", Fn: s.readComplaintsHeaderless},
		resolve.EmptySchema{Columns: inventory.ComplaintColumns},
	); err != nil {
		return nil, err
	}
	return s, nil
}

// Paths returns the configured file layout.
func (s *Store) Paths() Paths { return s.paths }

// FeaturesAvailable reports whether the features file exists.
func (s *Store) FeaturesAvailable() bool { return s.features.Exists() }

// Devices loads the inventory. ErrDatasetUnavailable means no candidate file exists.
func (s *Store) Devices(ctx context.Context) (inventory.Inventory, error) {
	res, err := s.devices.Resolve(ctx)
	if err != nil {
		return inventory.Inventory{}, unavailable(err)
	}
	return parseDevices(res.Table)
}

// Usage loads the usage log. ErrDatasetUnavailable means no candidate file exists.
func (s *Store) Usage(ctx context.Context) (inventory.UsageLog, error) {
	res, err := s.usage.Resolve(ctx)
	if err != nil {
		return inventory.UsageLog{}, unavailable(err)
	}
	log, skipped, err := parseUsage(res.Table)
	if err != nil {
		return inventory.UsageLog{}, err
	}
	if skipped > 0 {
		s.logger.Warn("usage rows skipped",
			zap.String("source", res.Source),
			zap.Int("skipped", skipped),
			zap.Int("kept", len(log.Records)),
		)
	}
	return log, nil
}

// Predictions loads the snapshot, computing it from features when it is
// missing. Without either, the result is empty.
func (s *Store) Predictions(ctx context.Context) ([]prediction.Record, error) {
	res, err := s.predictions.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	records, skipped, err := files.SnapshotRecords(res.Table)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		s.logger.Warn("snapshot rows skipped",
			zap.String("source", res.Source),
			zap.Int("skipped", skipped),
			zap.Int("kept", len(records)),
		)
	}
	return records, nil
}

// Complaints loads the complaint log. Malformed or missing files yield an
// empty log rather than an error.
func (s *Store) Complaints(ctx context.Context) ([]inventory.Complaint, error) {
	res, err := s.complaints.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return parseComplaints(res.Table), nil
}

func (s *Store) computeSnapshot(ctx context.Context) (*table.Table, error) {
	if s.computer == nil {
		return nil, fmt.Errorf("%w: no snapshot computer", resolve.ErrNotApplicable)
	}
	if !s.features.Exists() {
		return nil, fmt.Errorf("%w: %s missing", resolve.ErrNotApplicable, s.paths.Features)
	}
	if _, err := s.computer.Run(ctx, predictionapp.TriggerFallback); err != nil {
		return nil, err
	}
	return table.ReadFile(s.paths.Snapshot)
}

// complaintsFile reports whether the complaints file exists with content.
func (s *Store) complaintsFile() error {
	info, err := os.Stat(s.paths.Complaints)
	if err != nil {
		return fmt.Errorf("%w: %v", resolve.ErrNotApplicable, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: %s is empty", resolve.ErrNotApplicable, s.paths.Complaints)
	}
	return nil
}

func (s *Store) readComplaintsHeadered(ctx context.Context) (*table.Table, error) {
	_ = ctx
	if err := s.complaintsFile(); err != nil {
		return nil, err
	}
	tbl, err := readCSVFile(s.paths.Complaints, table.ReadCSV)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", resolve.ErrNotApplicable, err)
	}
	if !tbl.HasAll(inventory.ComplaintColumns...) {
		return nil, fmt.Errorf("%w: header %v lacks canonical columns", resolve.ErrNotApplicable, tbl.Columns)
	}
	return tbl, nil
}

func (s *Store) readComplaintsHeaderless(ctx context.Context) (*table.Table, error) {
	_ = ctx
	if err := s.complaintsFile(); err != nil {
		return nil, err
	}
	tbl, err := readCSVFile(s.paths.Complaints, table.ReadCSVHeaderless)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", resolve.ErrNotApplicable, err)
	}
	if len(tbl.Columns) != len(inventory.ComplaintColumns) {
		return nil, fmt.Errorf("%w: %d columns, expected %d", resolve.ErrNotApplicable, len(tbl.Columns), len(inventory.ComplaintColumns))
	}
	s.logger.Warn("complaints file has no header, using canonical columns", zap.String("path", s.paths.Complaints))
	return tbl.Rename(inventory.ComplaintColumns)
}

func fileStrategies(paths []string) []resolve.Strategy {
	strategies := make([]resolve.Strategy, 0, len(paths))
	for _, path := range paths {
		strategies = append(strategies, resolve.File{Path: path})
	}
	return strategies
}

func readCSVFile(path string, read func(io.Reader) (*table.Table, error)) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return read(f)
}

func unavailable(err error) error {
	if errors.Is(err, resolve.ErrUnresolved) {
		return fmt.Errorf("%w: %v", inventory.ErrDatasetUnavailable, err)
	}
	return err
}
