package files

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	prediction "maintenance-cloud/internal/prediction/domain"
	"maintenance-cloud/internal/storage/table"
)

func TestSnapshotRoundTrip(t *testing.T) {
	store, err := NewSnapshotStore(filepath.Join(t.TempDir(), "staging", "predictions_latest.csv"))
	require.NoError(t, err)

	records := []prediction.Record{
		{DeviceID: "D1", Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), PredProb: 0.6, Priority: prediction.Priority(0.6, 40)},
		{DeviceID: "D2", Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), PredProb: 0, Priority: 0},
		{DeviceID: "D3,annex", Date: time.Date(2024, 1, 2, 6, 30, 0, 0, time.UTC), PredProb: 1, Priority: 1.5},
	}
	require.NoError(t, store.Save(context.Background(), records))

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, len(records))

	want := map[string]prediction.Record{}
	for _, rec := range records {
		want[rec.DeviceID] = rec
	}
	for _, got := range loaded {
		exp, ok := want[got.DeviceID]
		require.True(t, ok, got.DeviceID)
		assert.True(t, exp.Date.Equal(got.Date), got.DeviceID)
		assert.Equal(t, exp.PredProb, got.PredProb)
		assert.Equal(t, exp.Priority, got.Priority)
	}
}

func TestSnapshotRecordsSkipsIncompleteRows(t *testing.T) {
	tbl := table.New(SnapshotColumns, [][]string{
		{"D1", "2024-01-03", "0.6", "0.7"},
		{"D2", "2024-01-02", "", ""},
		{"D3", "2024-01-02", "high", "0.1"},
	})
	records, skipped, err := SnapshotRecords(tbl)
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, records, 1)
	assert.Equal(t, 0.7, records[0].Priority)

	_, _, err = SnapshotRecords(table.New([]string{"DeviceID"}, nil))
	assert.Error(t, err)
}

func TestSnapshotSaveOverwrites(t *testing.T) {
	store, err := NewSnapshotStore(filepath.Join(t.TempDir(), "predictions_latest.csv"))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []prediction.Record{{DeviceID: "A", Date: time.Now().UTC()}, {DeviceID: "B", Date: time.Now().UTC()}}))
	require.NoError(t, store.Save(ctx, []prediction.Record{{DeviceID: "C", Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), PredProb: 0.2, Priority: 0.2}}))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "C", loaded[0].DeviceID)
}

func TestSnapshotLoadMissing(t *testing.T) {
	store, err := NewSnapshotStore(filepath.Join(t.TempDir(), "none.csv"))
	require.NoError(t, err)
	_, err = store.Load(context.Background())
	assert.ErrorIs(t, err, prediction.ErrSnapshotNotFound)
}

func TestFeatureReaderParsesMissingCovariates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features_for_model.csv")
	body := "DeviceID,Date,HoursUsed,Hours_7d_mean,Temperature,Vibration,DaysSinceLastMaint\n" +
		"D1,2024-01-01,100,90,,0.4,40\n" +
		"D2,2024-01-02,5,4.5,NaN,0.1,\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	reader, err := NewFeatureReader(path)
	require.NoError(t, err)
	assert.True(t, reader.Exists())

	rows, err := reader.LoadFeatures(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Nil(t, rows[0].Temperature)
	assert.Equal(t, 40.0, *rows[0].DaysSinceLastMaint)
	assert.Equal(t, []float64{100, 90, 0, 0.4, 40}, rows[0].Covariates())
	assert.Nil(t, rows[1].DaysSinceLastMaint)
}

func TestFeatureReaderAbsentColumnIsMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features_for_model.csv")
	body := "DeviceID,Date,HoursUsed,Hours_7d_mean,Vibration,DaysSinceLastMaint\nD1,2024-01-01,100,90,0.4,40\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	reader, err := NewFeatureReader(path)
	require.NoError(t, err)
	rows, err := reader.LoadFeatures(context.Background())
	require.NoError(t, err)
	assert.Nil(t, rows[0].Temperature)
}

func TestFeatureReaderMissingFile(t *testing.T) {
	reader, err := NewFeatureReader(filepath.Join(t.TempDir(), "features_for_model.csv"))
	require.NoError(t, err)
	assert.False(t, reader.Exists())
	_, err = reader.LoadFeatures(context.Background())
	assert.ErrorIs(t, err, prediction.ErrFeaturesUnavailable)
}

func TestFeatureReaderRejectsBadNumbers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features_for_model.csv")
	body := "DeviceID,Date,HoursUsed\nD1,2024-01-01,lots\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	reader, err := NewFeatureReader(path)
	require.NoError(t, err)
	_, err = reader.LoadFeatures(context.Background())
	assert.Error(t, err)
}
