package upscale

import (
	"sync"

	"github.com/paulmach/orb"
)

// Facility is a location activities can take place at. Facilities are
// immutable reference data.
type Facility struct {
	ID     string    `json:"id"`
	Coord  orb.Point `json:"coord"`
	LinkID string    `json:"link"`
}

// FacilityResolver looks facilities up by id. It returns ErrFacilityNotFound
// for unknown ids.
type FacilityResolver interface {
	Facility(id string) (Facility, error)
}

// MapFacilities is an in-memory FacilityResolver. It is safe for concurrent
// use.
type MapFacilities struct {
	mu         sync.RWMutex
	facilities map[string]Facility
}

// NewMapFacilities returns a MapFacilities holding fs.
func NewMapFacilities(fs ...Facility) *MapFacilities {
	m := &MapFacilities{facilities: make(map[string]Facility, len(fs))}
	for _, f := range fs {
		m.facilities[f.ID] = f
	}
	return m
}

// Add adds or replaces a facility.
func (m *MapFacilities) Add(f Facility) {
	m.mu.Lock()
	m.facilities[f.ID] = f
	m.mu.Unlock()
}

// Facility implements FacilityResolver.
func (m *MapFacilities) Facility(id string) (Facility, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.facilities[id]
	if !ok {
		return Facility{}, ErrFacilityNotFound
	}
	return f, nil
}
