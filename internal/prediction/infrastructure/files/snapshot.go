// Package files stores prediction inputs and outputs as flat files.
package files

import (
	"context"
	"errors"
	"fmt"
	"os"

	prediction "maintenance-cloud/internal/prediction/domain"
	"maintenance-cloud/internal/storage/table"
)

// SnapshotColumns is the predictions snapshot schema.
var SnapshotColumns = []string{"DeviceID", "Date", "pred_prob", "priority"}

// SnapshotStore keeps the latest-prediction snapshot in a CSV file.
type SnapshotStore struct {
	path string
}

// NewSnapshotStore constructs a SnapshotStore.
func NewSnapshotStore(path string) (*SnapshotStore, error) {
	if path == "" {
		return nil, errors.New("files: empty snapshot path")
	}
	return &SnapshotStore{path: path}, nil
}

// Path returns the snapshot location.
func (s *SnapshotStore) Path() string { return s.path }

// Save overwrites the snapshot.
func (s *SnapshotStore) Save(ctx context.Context, records []prediction.Record) error {
	_ = ctx
	return table.WriteFileAtomic(s.path, SnapshotColumns, SnapshotRows(records))
}

// Load reads the snapshot. Unreadable rows are dropped.
func (s *SnapshotStore) Load(ctx context.Context) ([]prediction.Record, error) {
	_ = ctx
	tbl, err := table.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, prediction.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("files: read snapshot: %w", err)
	}
	records, _, err := SnapshotRecords(tbl)
	return records, err
}

// SnapshotRows renders records in SnapshotColumns order.
func SnapshotRows(records []prediction.Record) [][]string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.DeviceID,
			table.FormatDate(rec.Date),
			table.FormatFloat(rec.PredProb),
			table.FormatFloat(rec.Priority),
		})
	}
	return rows
}

// SnapshotRecords parses a snapshot table. Rows with an unparseable date or a
// missing score are skipped and counted.
func SnapshotRecords(tbl *table.Table) ([]prediction.Record, int, error) {
	if !tbl.HasAll(SnapshotColumns...) {
		return nil, 0, fmt.Errorf("files: snapshot needs columns %v, got %v", SnapshotColumns, tbl.Columns)
	}
	records := make([]prediction.Record, 0, tbl.Len())
	skipped := 0
	for i := 0; i < tbl.Len(); i++ {
		date, errDate := table.ParseTime(tbl.Value(i, "Date"))
		prob, errProb := requiredFloat(tbl.Value(i, "pred_prob"))
		priority, errPriority := requiredFloat(tbl.Value(i, "priority"))
		if errDate != nil || errProb != nil || errPriority != nil {
			skipped++
			continue
		}
		records = append(records, prediction.Record{
			DeviceID: tbl.Value(i, "DeviceID"),
			Date:     date,
			PredProb: prob,
			Priority: priority,
		})
	}
	return records, skipped, nil
}

func requiredFloat(s string) (float64, error) {
	v, err := table.ParseFloat(s)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, errors.New("missing value")
	}
	return *v, nil
}
