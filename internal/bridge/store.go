package bridge

import (
	"sync"

	"github.com/smartthings-community/smartthings-mqtt-bridge/internal/smartthings"
)

// Store owns the bridge's four caches: known devices, last full-state
// encodings, last per-attribute encodings, and the set of published
// discovery object ids.
//
// Each cache is guarded by its own lock, so a forced refresh triggered by a
// command may interleave with the periodic poll touching the same device.
// The encoded-state comparison is last-writer-wins, which is harmless: the
// worst case is one redundant publish of identical state.
//
// Caches are unbounded and never evicted; the only reset is process restart.
type Store struct {
	devicesMu sync.RWMutex
	devices   map[string]smartthings.Device

	stateMu sync.Mutex
	state   map[string]string

	attrMu sync.Mutex
	attrs  map[string]string

	discoveredMu sync.Mutex
	discovered   map[string]struct{}
}

// NewStore creates an empty state store.
func NewStore() *Store {
	return &Store{
		devices:    make(map[string]smartthings.Device),
		state:      make(map[string]string),
		attrs:      make(map[string]string),
		discovered: make(map[string]struct{}),
	}
}

// UpsertDevice records or refreshes a device's metadata.
func (s *Store) UpsertDevice(device smartthings.Device) {
	s.devicesMu.Lock()
	defer s.devicesMu.Unlock()
	s.devices[device.DeviceID] = device
}

// Device returns a device's cached metadata.
func (s *Store) Device(deviceID string) (smartthings.Device, bool) {
	s.devicesMu.RLock()
	defer s.devicesMu.RUnlock()
	device, ok := s.devices[deviceID]
	return device, ok
}

// DeviceCount returns the number of known devices.
func (s *Store) DeviceCount() int {
	s.devicesMu.RLock()
	defer s.devicesMu.RUnlock()
	return len(s.devices)
}

// LastState returns the last published full-state encoding for a device.
func (s *Store) LastState(deviceID string) (string, bool) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	encoded, ok := s.state[deviceID]
	return encoded, ok
}

// SetLastState records the full-state encoding just published.
func (s *Store) SetLastState(deviceID, encoded string) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.state[deviceID] = encoded
}

// LastAttribute returns the last published encoding for an attribute
// cache key (see attrCacheKey).
func (s *Store) LastAttribute(key string) (string, bool) {
	s.attrMu.Lock()
	defer s.attrMu.Unlock()
	encoded, ok := s.attrs[key]
	return encoded, ok
}

// SetLastAttribute records an attribute encoding just published.
func (s *Store) SetLastAttribute(key, encoded string) {
	s.attrMu.Lock()
	defer s.attrMu.Unlock()
	s.attrs[key] = encoded
}

// MarkDiscovered records a discovery object id and reports whether it was
// newly recorded. Once recorded, an id is never emitted again for the
// lifetime of the process.
func (s *Store) MarkDiscovered(objectID string) bool {
	s.discoveredMu.Lock()
	defer s.discoveredMu.Unlock()
	if _, seen := s.discovered[objectID]; seen {
		return false
	}
	s.discovered[objectID] = struct{}{}
	return true
}

// attrCacheKey builds the per-attribute cache key.
func attrCacheKey(deviceID, component, capability, attribute string) string {
	return deviceID + "|" + component + "|" + capability + "|" + attribute
}
