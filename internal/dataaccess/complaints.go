package dataaccess

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	inventory "maintenance-cloud/internal/inventory/domain"
	"maintenance-cloud/internal/observability/metrics"
	"maintenance-cloud/internal/storage/table"
)

// AppendComplaint appends one complaint stamped with the current time. The
// row is written with a single append-mode write; a header precedes it when
// the file is new or empty.
func (s *Store) AppendComplaint(ctx context.Context, deviceID, description, reportedBy string) (inventory.Complaint, error) {
	_ = ctx
	complaint, err := inventory.NewComplaint(deviceID, description, reportedBy, s.clock.Now())
	if err != nil {
		metrics.IncComplaintAppend(metrics.ResultError)
		return inventory.Complaint{}, err
	}

	s.appendMu.Lock()
	defer s.appendMu.Unlock()

	if err := s.appendComplaintRow(complaint); err != nil {
		metrics.IncComplaintAppend(metrics.ResultError)
		return inventory.Complaint{}, err
	}
	metrics.IncComplaintAppend(metrics.ResultSuccess)
	s.logger.Info("complaint logged",
		zap.String("device_id", complaint.DeviceID),
		zap.String("reported_by", complaint.ReportedBy),
	)
	return complaint, nil
}

func (s *Store) appendComplaintRow(complaint inventory.Complaint) error {
	path := s.paths.Complaints
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("dataaccess: create complaints dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("dataaccess: open complaints: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("dataaccess: stat complaints: %w", err)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if info.Size() == 0 {
		_ = writer.Write(inventory.ComplaintColumns)
	}
	_ = writer.Write([]string{
		complaint.DeviceID,
		complaint.Description,
		complaint.ReportedBy,
		complaint.Datetime.UTC().Format(table.TimestampLayout),
	})
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("dataaccess: encode complaint: %w", err)
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("dataaccess: append complaint: %w", err)
	}
	return nil
}
