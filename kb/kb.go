// Package kb provides the ordered, in-memory catalog of ground users and
// satellites that a single solve operates on. The catalog replaces any
// process-wide registry: each solve builds (or is handed) its own.
package kb

import (
	"errors"
	"fmt"
	"sync"

	"github.com/signalsfoundry/beam-planner/core"
	"github.com/signalsfoundry/beam-planner/model"
)

var (
	// ErrUserExists indicates a user ID was registered twice.
	ErrUserExists = errors.New("user already exists")
	// ErrSatelliteExists indicates a satellite ID was registered twice.
	ErrSatelliteExists = errors.New("satellite already exists")
	// ErrUserNotFound indicates a requested user is not in the catalog.
	ErrUserNotFound = errors.New("user not found")
	// ErrSatelliteNotFound indicates a requested satellite is not in the catalog.
	ErrSatelliteNotFound = errors.New("satellite not found")
)

// Catalog is a thread-safe store of user and satellite positions that
// preserves registration order. Both assignment passes enumerate entities in
// this order, so results are reproducible for the same input order.
type Catalog struct {
	mu sync.RWMutex

	users     map[model.UserID]core.Vec3
	userOrder []model.UserID

	satellites map[model.SatelliteID]core.Vec3
	satOrder   []model.SatelliteID
}

// NewCatalog constructs an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		users:      make(map[model.UserID]core.Vec3),
		satellites: make(map[model.SatelliteID]core.Vec3),
	}
}

// AddUser registers a user position. Duplicate IDs are rejected.
func (c *Catalog) AddUser(id model.UserID, pos core.Vec3) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.users[id]; exists {
		return fmt.Errorf("%w: %q", ErrUserExists, id)
	}
	c.users[id] = pos
	c.userOrder = append(c.userOrder, id)
	return nil
}

// AddSatellite registers a satellite position. Duplicate IDs are rejected.
func (c *Catalog) AddSatellite(id model.SatelliteID, pos core.Vec3) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.satellites[id]; exists {
		return fmt.Errorf("%w: %q", ErrSatelliteExists, id)
	}
	c.satellites[id] = pos
	c.satOrder = append(c.satOrder, id)
	return nil
}

// UserPosition returns the position registered for the user.
func (c *Catalog) UserPosition(id model.UserID) (core.Vec3, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	pos, ok := c.users[id]
	if !ok {
		return core.Vec3{}, fmt.Errorf("%w: %q", ErrUserNotFound, id)
	}
	return pos, nil
}

// SatellitePosition returns the position registered for the satellite.
func (c *Catalog) SatellitePosition(id model.SatelliteID) (core.Vec3, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	pos, ok := c.satellites[id]
	if !ok {
		return core.Vec3{}, fmt.Errorf("%w: %q", ErrSatelliteNotFound, id)
	}
	return pos, nil
}

// Users returns the user IDs in registration order.
func (c *Catalog) Users() []model.UserID {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.UserID, len(c.userOrder))
	copy(out, c.userOrder)
	return out
}

// Satellites returns the satellite IDs in registration order.
func (c *Catalog) Satellites() []model.SatelliteID {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.SatelliteID, len(c.satOrder))
	copy(out, c.satOrder)
	return out
}

// NumUsers returns the number of registered users.
func (c *Catalog) NumUsers() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.userOrder)
}

// NumSatellites returns the number of registered satellites.
func (c *Catalog) NumSatellites() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.satOrder)
}
