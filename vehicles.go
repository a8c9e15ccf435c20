package upscale

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Vehicle is the vehicle a person uses for one mode.
type Vehicle struct {
	ID       string `json:"id"`
	PersonID string `json:"person"`
	Mode     string `json:"mode"`
	Type     string `json:"type"`
}

// VehicleID returns the id of the vehicle person uses for mode.
func VehicleID(personID, mode string) string {
	return personID + "_" + mode
}

// VehicleRegistry stores the vehicles of a run. It is shared by every
// person's processing, so implementations must be safe for concurrent use.
// Registering an id twice returns ErrDuplicateVehicle.
type VehicleRegistry interface {
	Register(v Vehicle) error
}

// MemVehicles is an in-memory VehicleRegistry.
type MemVehicles struct {
	mu       sync.Mutex
	vehicles map[string]Vehicle
	order    []string
}

// NewMemVehicles returns an empty MemVehicles.
func NewMemVehicles() *MemVehicles {
	return &MemVehicles{vehicles: make(map[string]Vehicle)}
}

// Register implements VehicleRegistry.
func (m *MemVehicles) Register(v Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.vehicles[v.ID]; ok {
		return ErrDuplicateVehicle
	}
	m.vehicles[v.ID] = v
	m.order = append(m.order, v.ID)
	return nil
}

// Get returns the vehicle with id, if registered.
func (m *MemVehicles) Get(id string) (Vehicle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vehicles[id]
	return v, ok
}

// Vehicles returns all vehicles in registration order.
func (m *MemVehicles) Vehicles() []Vehicle {
	m.mu.Lock()
	defer m.mu.Unlock()
	vs := make([]Vehicle, len(m.order))
	for i, id := range m.order {
		vs[i] = m.vehicles[id]
	}
	return vs
}

// Len returns the number of registered vehicles.
func (m *MemVehicles) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order)
}

// VehicleAssigner gives persons one vehicle per mode which needs one.
type VehicleAssigner struct {
	modes    []string
	registry VehicleRegistry
}

// NewVehicleAssigner returns an assigner for the union of mainModes (the
// modes which are simulated) and networkModes (the modes routed on the
// network). Duplicates are removed and the modes are sorted so that vehicle
// registration order doesn't depend on configuration order.
func NewVehicleAssigner(registry VehicleRegistry, mainModes, networkModes []string) *VehicleAssigner {
	seen := make(map[string]struct{})
	var modes []string
	for _, ms := range [][]string{mainModes, networkModes} {
		for _, m := range ms {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			modes = append(modes, m)
		}
	}
	sort.Strings(modes)
	return &VehicleAssigner{modes: modes, registry: registry}
}

// Modes returns the modes vehicles are created for.
func (va *VehicleAssigner) Modes() []string { return va.modes }

// Assign registers one vehicle per mode for p and records the mode to vehicle
// mapping on p.
func (va *VehicleAssigner) Assign(p *Person) error {
	mode2Vehicle := make(map[string]string, len(va.modes))
	for _, mode := range va.modes {
		v := Vehicle{
			ID:       VehicleID(p.ID, mode),
			PersonID: p.ID,
			Mode:     mode,
			Type:     mode,
		}
		if err := va.registry.Register(v); err != nil {
			return errors.Wrapf(err, "registering vehicle %s", v.ID)
		}
		mode2Vehicle[mode] = v.ID
	}
	p.Vehicles = mode2Vehicle
	return nil
}
