// Package dataaccess resolves and parses the on-disk datasets behind the
// maintenance dashboard.
package dataaccess

import "path/filepath"

// Dataset keys, also used as cache keys.
const (
	DatasetDevices     = "devices"
	DatasetUsage       = "usage"
	DatasetPredictions = "predictions"
	DatasetComplaints  = "complaints"
)

// Canonical and legacy file names under the staging directory.
const (
	DevicesFile        = "dim_device.csv"
	LegacyDevicesFile  = "hostel_device_inventory_clean.csv"
	UsageFile          = "fact_usage.csv"
	LegacyUsageFile    = "hostel_usage_logs_clean.csv"
	SnapshotFile       = "predictions_latest.csv"
	FeaturesFile       = "features_for_model.csv"
	DefaultComplaints  = "complaints.csv"
	legacyWorkbookExt  = ".xlsx"
	legacyCSVExtension = ".csv"
)

// Paths lists every file the store reads or writes. Devices and Usage are
// ordered candidates; the first existing one wins.
type Paths struct {
	Devices    []string
	Usage      []string
	Snapshot   string
	Features   string
	Complaints string
}

// StagingPaths builds the default layout: canonical CSV, legacy CSV and the
// legacy CSV's workbook export, in that order.
func StagingPaths(stagingDir, complaintsPath string) Paths {
	legacyDevices := filepath.Join(stagingDir, LegacyDevicesFile)
	legacyUsage := filepath.Join(stagingDir, LegacyUsageFile)
	return Paths{
		Devices: []string{
			filepath.Join(stagingDir, DevicesFile),
			legacyDevices,
			workbookOf(legacyDevices),
		},
		Usage: []string{
			filepath.Join(stagingDir, UsageFile),
			legacyUsage,
			workbookOf(legacyUsage),
		},
		Snapshot:   filepath.Join(stagingDir, SnapshotFile),
		Features:   filepath.Join(stagingDir, FeaturesFile),
		Complaints: complaintsPath,
	}
}

// Files returns every path the store may read, keyed to its dataset.
func (p Paths) Files() map[string][]string {
	out := make(map[string][]string)
	for _, path := range p.Devices {
		out[path] = append(out[path], DatasetDevices)
	}
	for _, path := range p.Usage {
		out[path] = append(out[path], DatasetUsage)
	}
	out[p.Snapshot] = append(out[p.Snapshot], DatasetPredictions)
	out[p.Features] = append(out[p.Features], DatasetPredictions)
	out[p.Complaints] = append(out[p.Complaints], DatasetComplaints)
	return out
}

func workbookOf(csvPath string) string {
	return csvPath[:len(csvPath)-len(legacyCSVExtension)] + legacyWorkbookExt
}
