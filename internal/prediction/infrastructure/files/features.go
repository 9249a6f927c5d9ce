package files

import (
	"context"
	"errors"
	"fmt"
	"os"

	prediction "maintenance-cloud/internal/prediction/domain"
	"maintenance-cloud/internal/storage/table"
)

// FeatureReader reads the feature table produced by the feature-engineering job.
type FeatureReader struct {
	path string
}

// NewFeatureReader constructs a FeatureReader.
func NewFeatureReader(path string) (*FeatureReader, error) {
	if path == "" {
		return nil, errors.New("files: empty features path")
	}
	return &FeatureReader{path: path}, nil
}

// Path returns the features file location.
func (r *FeatureReader) Path() string { return r.path }

// Exists reports whether the features file is present.
func (r *FeatureReader) Exists() bool {
	_, err := os.Stat(r.path)
	return err == nil
}

// LoadFeatures implements prediction.FeatureSource.
func (r *FeatureReader) LoadFeatures(ctx context.Context) ([]prediction.FeatureRow, error) {
	_ = ctx
	tbl, err := table.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", prediction.ErrFeaturesUnavailable, r.path)
		}
		return nil, fmt.Errorf("files: read features: %w", err)
	}
	return FeatureRows(tbl)
}

// FeatureRows converts a feature table. Absent covariate columns and blank
// cells become missing values; DeviceID and Date are required.
func FeatureRows(tbl *table.Table) ([]prediction.FeatureRow, error) {
	if !tbl.HasAll("DeviceID", "Date") {
		return nil, fmt.Errorf("files: features table needs DeviceID and Date columns, got %v", tbl.Columns)
	}
	rows := make([]prediction.FeatureRow, 0, tbl.Len())
	for i := 0; i < tbl.Len(); i++ {
		date, err := table.ParseTime(tbl.Value(i, "Date"))
		if err != nil {
			return nil, fmt.Errorf("files: features row %d: %w", i+1, err)
		}
		row := prediction.FeatureRow{
			DeviceID: tbl.Value(i, "DeviceID"),
			Date:     date,
		}
		targets := []**float64{&row.HoursUsed, &row.Hours7dMean, &row.Temperature, &row.Vibration, &row.DaysSinceLastMaint}
		for j, name := range prediction.CovariateNames {
			v, err := table.ParseFloat(tbl.Value(i, name))
			if err != nil {
				return nil, fmt.Errorf("files: features row %d column %s: %w", i+1, name, err)
			}
			*targets[j] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}
