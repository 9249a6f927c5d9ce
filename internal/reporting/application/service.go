package application

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"maintenance-cloud/internal/dataaccess"
	inventory "maintenance-cloud/internal/inventory/domain"
	predictionapp "maintenance-cloud/internal/prediction/application"
	prediction "maintenance-cloud/internal/prediction/domain"
	reporting "maintenance-cloud/internal/reporting/domain"
)

// DataSource is the data access surface the reports read from.
type DataSource interface {
	Devices(ctx context.Context) (inventory.Inventory, error)
	Usage(ctx context.Context) (inventory.UsageLog, error)
	Predictions(ctx context.Context) ([]prediction.Record, error)
	Complaints(ctx context.Context) ([]inventory.Complaint, error)
	AppendComplaint(ctx context.Context, deviceID, description, reportedBy string) (inventory.Complaint, error)
	Invalidate(datasets ...string)
}

// Pipeline runs the prediction engine.
type Pipeline interface {
	Run(ctx context.Context, trigger string) (predictionapp.RunResult, error)
}

// ErrPipelineDisabled is returned when no pipeline is configured.
var ErrPipelineDisabled = errors.New("reporting: pipeline not configured")

// Service assembles dashboard views.
type Service struct {
	data     DataSource
	pipeline Pipeline
	logger   *zap.Logger
}

// NewService constructs a Service. pipeline may be nil.
func NewService(data DataSource, pipeline Pipeline, logger *zap.Logger) (*Service, error) {
	if data == nil {
		return nil, errors.New("reporting: nil data source")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{data: data, pipeline: pipeline, logger: logger}, nil
}

// Overview returns the headline metrics. Missing devices or usage files leave
// the dependent metrics empty instead of failing.
func (s *Service) Overview(ctx context.Context, threshold float64) (reporting.Overview, error) {
	if err := reporting.ValidateThreshold(threshold); err != nil {
		return reporting.Overview{}, err
	}
	in := reporting.OverviewInput{Threshold: threshold}

	inv, err := s.data.Devices(ctx)
	switch {
	case err == nil:
		in.Inventory = &inv
	case !errors.Is(err, inventory.ErrDatasetUnavailable):
		return reporting.Overview{}, err
	}
	usage, err := s.data.Usage(ctx)
	switch {
	case err == nil:
		in.Usage = &usage
	case !errors.Is(err, inventory.ErrDatasetUnavailable):
		return reporting.Overview{}, err
	}
	if in.Predictions, err = s.data.Predictions(ctx); err != nil {
		return reporting.Overview{}, err
	}
	return reporting.BuildOverview(in)
}

// RiskTable returns predictions joined with the inventory and ranked.
func (s *Service) RiskTable(ctx context.Context, threshold float64) (reporting.RiskTable, error) {
	if err := reporting.ValidateThreshold(threshold); err != nil {
		return reporting.RiskTable{}, err
	}
	records, err := s.data.Predictions(ctx)
	if err != nil {
		return reporting.RiskTable{}, err
	}
	inv, err := s.optionalDevices(ctx)
	if err != nil {
		return reporting.RiskTable{}, err
	}
	return reporting.BuildRiskTable(records, inv, threshold)
}

// DeviceDetail returns one device's history.
func (s *Service) DeviceDetail(ctx context.Context, deviceID string) (reporting.DeviceDetail, error) {
	inv, err := s.optionalDevices(ctx)
	if err != nil {
		return reporting.DeviceDetail{}, err
	}
	usage, err := s.data.Usage(ctx)
	if err != nil && !errors.Is(err, inventory.ErrDatasetUnavailable) {
		return reporting.DeviceDetail{}, err
	}
	records, err := s.data.Predictions(ctx)
	if err != nil {
		return reporting.DeviceDetail{}, err
	}
	return reporting.BuildDeviceDetail(deviceID, inv, usage, records)
}

// Devices returns the inventory, empty when no inventory file exists.
func (s *Service) Devices(ctx context.Context) (inventory.Inventory, bool, error) {
	inv, err := s.data.Devices(ctx)
	if errors.Is(err, inventory.ErrDatasetUnavailable) {
		return inventory.Inventory{Devices: []inventory.Device{}}, false, nil
	}
	if err != nil {
		return inventory.Inventory{}, false, err
	}
	return inv, true, nil
}

// Complaints returns the complaint log, newest first.
func (s *Service) Complaints(ctx context.Context) ([]inventory.Complaint, error) {
	complaints, err := s.data.Complaints(ctx)
	if err != nil {
		return nil, err
	}
	return reporting.SortComplaints(complaints), nil
}

// SubmitComplaint logs a complaint.
func (s *Service) SubmitComplaint(ctx context.Context, deviceID, description, reportedBy string) (inventory.Complaint, error) {
	return s.data.AppendComplaint(ctx, deviceID, description, reportedBy)
}

// RunPipeline recomputes the snapshot and drops the cached predictions.
func (s *Service) RunPipeline(ctx context.Context) (predictionapp.RunResult, error) {
	if s.pipeline == nil {
		return predictionapp.RunResult{}, ErrPipelineDisabled
	}
	result, err := s.pipeline.Run(ctx, predictionapp.TriggerManual)
	if err != nil {
		return result, err
	}
	s.data.Invalidate(dataaccess.DatasetPredictions)
	s.logger.Info("predictions refreshed",
		zap.String("run_id", result.RunID),
		zap.Int("devices", result.Devices),
	)
	return result, nil
}

// InvalidateCache drops the named datasets, or all when none is given.
func (s *Service) InvalidateCache(datasets ...string) error {
	for _, dataset := range datasets {
		switch dataset {
		case dataaccess.DatasetDevices, dataaccess.DatasetUsage, dataaccess.DatasetPredictions, dataaccess.DatasetComplaints:
		default:
			return errors.New("reporting: unknown dataset " + dataset)
		}
	}
	s.data.Invalidate(datasets...)
	return nil
}

func (s *Service) optionalDevices(ctx context.Context) (inventory.Inventory, error) {
	inv, _, err := s.Devices(ctx)
	return inv, err
}
