package smartthings

// Device is the subset of the SmartThings device record the bridge uses.
type Device struct {
	DeviceID         string `json:"deviceId"`
	Label            string `json:"label"`
	Name             string `json:"name"`
	ManufacturerName string `json:"manufacturerName"`
	DeviceTypeName   string `json:"deviceTypeName"`
	FirmwareVersion  string `json:"firmwareVersion"`
}

// DisplayName returns the best human-readable name for the device:
// label if set, then name, then the device ID.
func (d Device) DisplayName() string {
	if d.Label != "" {
		return d.Label
	}
	if d.Name != "" {
		return d.Name
	}
	return d.DeviceID
}

// deviceList is the wire shape of GET /devices.
type deviceList struct {
	Items []Device `json:"items"`
}

// CommandEnvelope is the wire shape of POST /devices/{id}/commands.
type CommandEnvelope struct {
	Commands []Command `json:"commands"`
}

// Command is a single SmartThings device command.
type Command struct {
	Component  string `json:"component"`
	Capability string `json:"capability"`
	Command    string `json:"command"`
	Arguments  []any  `json:"arguments,omitempty"`
}
