package inventory

import "errors"

// Device is an inventory entry.
type Device struct {
	DeviceID   string `json:"device_id"`
	DeviceType string `json:"device_type"`
	Location   string `json:"location"`
}

// Validate checks device invariants.
func (d Device) Validate() error {
	if d.DeviceID == "" {
		return errors.New("device: empty id")
	}
	return nil
}

// Inventory is the set of known devices, in file order.
type Inventory struct {
	Devices []Device
}

// Len returns the number of devices.
func (inv Inventory) Len() int { return len(inv.Devices) }

// Empty reports whether no device is known.
func (inv Inventory) Empty() bool { return len(inv.Devices) == 0 }

// Index returns devices keyed by id. The first occurrence wins on duplicates.
func (inv Inventory) Index() map[string]Device {
	index := make(map[string]Device, len(inv.Devices))
	for _, device := range inv.Devices {
		if _, ok := index[device.DeviceID]; ok {
			continue
		}
		index[device.DeviceID] = device
	}
	return index
}

// IDs returns the distinct device ids in first-seen order.
func (inv Inventory) IDs() []string {
	seen := make(map[string]struct{}, len(inv.Devices))
	ids := make([]string, 0, len(inv.Devices))
	for _, device := range inv.Devices {
		if _, ok := seen[device.DeviceID]; ok {
			continue
		}
		seen[device.DeviceID] = struct{}{}
		ids = append(ids, device.DeviceID)
	}
	return ids
}
