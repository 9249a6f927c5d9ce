package dataaccess

import (
	"fmt"

	inventory "maintenance-cloud/internal/inventory/domain"
	"maintenance-cloud/internal/storage/table"
)

// Column aliases accepted from legacy exports.
var (
	deviceIDColumns   = []string{"DeviceID", "Device_ID", "device_id", "Device ID"}
	deviceTypeColumns = []string{"DeviceType", "Device_Type", "device_type", "Type"}
	locationColumns   = []string{"Location", "location", "Room", "Block"}
	dateColumns       = []string{"Date", "date", "UsageDate"}
	hoursColumns      = []string{"HoursUsed", "Hours_Used", "hours_used"}
	failureColumns    = []string{"FailureFlag", "Failure_Flag", "failure_flag", "Failure"}
	costColumns       = []string{"Cost", "MaintenanceCost", "cost"}
)

func parseDevices(tbl *table.Table) (inventory.Inventory, error) {
	idCol, ok := tbl.Lookup(deviceIDColumns...)
	if !ok {
		return inventory.Inventory{}, fmt.Errorf("dataaccess: devices table has no device id column: %v", tbl.Columns)
	}
	typeCol, _ := tbl.Lookup(deviceTypeColumns...)
	locCol, _ := tbl.Lookup(locationColumns...)

	devices := make([]inventory.Device, 0, tbl.Len())
	for i := 0; i < tbl.Len(); i++ {
		device := inventory.Device{
			DeviceID:   tbl.Value(i, idCol),
			DeviceType: tbl.Value(i, typeCol),
			Location:   tbl.Value(i, locCol),
		}
		if device.Validate() != nil {
			continue
		}
		devices = append(devices, device)
	}
	return inventory.Inventory{Devices: devices}, nil
}

// parseUsage converts the usage table. Rows with an unparseable date or
// number are skipped and counted; the rest of the log is still returned.
func parseUsage(tbl *table.Table) (inventory.UsageLog, int, error) {
	idCol, ok := tbl.Lookup(deviceIDColumns...)
	if !ok {
		return inventory.UsageLog{}, 0, fmt.Errorf("dataaccess: usage table has no device id column: %v", tbl.Columns)
	}
	dateCol, ok := tbl.Lookup(dateColumns...)
	if !ok {
		return inventory.UsageLog{}, 0, fmt.Errorf("dataaccess: usage table has no date column: %v", tbl.Columns)
	}
	hoursCol, hasHours := tbl.Lookup(hoursColumns...)
	failureCol, hasFailure := tbl.Lookup(failureColumns...)
	costCol, hasCost := tbl.Lookup(costColumns...)

	log := inventory.UsageLog{
		Records:        make([]inventory.UsageRecord, 0, tbl.Len()),
		HasHoursUsed:   hasHours,
		HasFailureFlag: hasFailure,
		HasCost:        hasCost,
	}
	skipped := 0
	for i := 0; i < tbl.Len(); i++ {
		date, err := table.ParseTime(tbl.Value(i, dateCol))
		if err != nil {
			skipped++
			continue
		}
		hours, errHours := table.ParseFloat(tbl.Value(i, hoursCol))
		failure, errFailure := table.ParseFloat(tbl.Value(i, failureCol))
		cost, errCost := table.ParseFloat(tbl.Value(i, costCol))
		if errHours != nil || errFailure != nil || errCost != nil {
			skipped++
			continue
		}
		record := inventory.UsageRecord{
			DeviceID:    tbl.Value(i, idCol),
			Date:        date,
			FailureFlag: failure,
			Cost:        cost,
		}
		if hours != nil {
			record.HoursUsed = *hours
		}
		log.Records = append(log.Records, record)
	}
	return log, skipped, nil
}

func parseComplaints(tbl *table.Table) []inventory.Complaint {
	complaints := make([]inventory.Complaint, 0, tbl.Len())
	for i := 0; i < tbl.Len(); i++ {
		complaints = append(complaints, inventory.Complaint{
			DeviceID:    tbl.Value(i, "DeviceID"),
			Description: tbl.Raw(i, "Description"),
			ReportedBy:  tbl.Raw(i, "ReportedBy"),
			Datetime:    table.ParseTimeLenient(tbl.Value(i, "Datetime")),
		})
	}
	return complaints
}
