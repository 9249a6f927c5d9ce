package inventory

import (
	"errors"
	"strings"
	"time"
)

// ComplaintColumns is the canonical complaints file schema.
var ComplaintColumns = []string{"DeviceID", "Description", "ReportedBy", "Datetime"}

// Complaint is a user-submitted fault report. Datetime is nil when the stored
// timestamp could not be parsed.
type Complaint struct {
	DeviceID    string     `json:"device_id"`
	Description string     `json:"description"`
	ReportedBy  string     `json:"reported_by"`
	Datetime    *time.Time `json:"datetime"`
}

// NewComplaint builds a complaint stamped at the given time.
func NewComplaint(deviceID, description, reportedBy string, at time.Time) (Complaint, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return Complaint{}, ErrEmptyComplaintDevice
	}
	if at.IsZero() {
		return Complaint{}, errors.New("complaint: zero timestamp")
	}
	stamped := at
	return Complaint{
		DeviceID:    deviceID,
		Description: description,
		ReportedBy:  reportedBy,
		Datetime:    &stamped,
	}, nil
}
