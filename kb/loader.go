package kb

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/signalsfoundry/beam-planner/core"
	"github.com/signalsfoundry/beam-planner/model"
)

// Scenario is a small summary of what was loaded from JSON. It's mainly
// useful for logging from main().
type Scenario struct {
	UserIDs      []model.UserID
	SatelliteIDs []model.SatelliteID
	Epoch        time.Time // zero when the file carried none
}

// internal JSON shapes – kept unexported so we're free to evolve them.
//
// Users and satellites are arrays, not objects: the file order is the
// registration order, and registration order drives the solver's
// enumeration, so it has to be explicit.
type scenarioJSON struct {
	Epoch      string          `json:"epoch"`
	Users      []userJSON      `json:"users"`
	Satellites []satelliteJSON `json:"satellites"`
}

type userJSON struct {
	ID       string        `json:"id"`
	Position *positionJSON `json:"position"`
}

type satelliteJSON struct {
	ID       string        `json:"id"`
	Position *positionJSON `json:"position"` // fixed ECEF km, or
	TLE      *tleJSON      `json:"tle"`      // an orbit propagated to the epoch
}

type tleJSON struct {
	Line1 string `json:"line1"`
	Line2 string `json:"line2"`
}

type positionJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// LoadScenario reads a JSON scenario from r and registers its users and
// satellites in the catalog, in file order. Satellites given as TLEs are
// propagated to the scenario epoch (or to epochOverride when non-zero).
//
// It fails on structural problems: malformed JSON, missing IDs or positions,
// a TLE without an epoch, or duplicate IDs.
func LoadScenario(cat *Catalog, r io.Reader, epochOverride time.Time) (*Scenario, error) {
	if cat == nil {
		return nil, fmt.Errorf("LoadScenario: catalog is nil")
	}

	var payload scenarioJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadScenario: decode failed: %w", err)
	}

	epoch := epochOverride
	if epoch.IsZero() && payload.Epoch != "" {
		parsed, err := time.Parse(time.RFC3339, payload.Epoch)
		if err != nil {
			return nil, fmt.Errorf("LoadScenario: bad epoch %q: %w", payload.Epoch, err)
		}
		epoch = parsed
	}

	result := &Scenario{
		UserIDs:      make([]model.UserID, 0, len(payload.Users)),
		SatelliteIDs: make([]model.SatelliteID, 0, len(payload.Satellites)),
		Epoch:        epoch,
	}

	for _, u := range payload.Users {
		if u.ID == "" {
			return nil, fmt.Errorf("LoadScenario: user with empty id")
		}
		if u.Position == nil {
			return nil, fmt.Errorf("LoadScenario: user %q has no position", u.ID)
		}
		id := model.UserID(u.ID)
		if err := cat.AddUser(id, u.Position.vec()); err != nil {
			return nil, fmt.Errorf("LoadScenario: %w", err)
		}
		result.UserIDs = append(result.UserIDs, id)
	}

	for _, s := range payload.Satellites {
		if s.ID == "" {
			return nil, fmt.Errorf("LoadScenario: satellite with empty id")
		}
		pos, err := satellitePosition(s, epoch)
		if err != nil {
			return nil, fmt.Errorf("LoadScenario: satellite %q: %w", s.ID, err)
		}
		id := model.SatelliteID(s.ID)
		if err := cat.AddSatellite(id, pos); err != nil {
			return nil, fmt.Errorf("LoadScenario: %w", err)
		}
		result.SatelliteIDs = append(result.SatelliteIDs, id)
	}

	return result, nil
}

func satellitePosition(s satelliteJSON, epoch time.Time) (core.Vec3, error) {
	switch {
	case s.Position != nil && s.TLE != nil:
		return core.Vec3{}, fmt.Errorf("has both a position and a TLE")
	case s.Position != nil:
		return s.Position.vec(), nil
	case s.TLE != nil:
		if epoch.IsZero() {
			return core.Vec3{}, fmt.Errorf("TLE given but the scenario has no epoch")
		}
		return core.SatellitePositionAt(core.TLE{Line1: s.TLE.Line1, Line2: s.TLE.Line2}, epoch)
	default:
		return core.Vec3{}, fmt.Errorf("has neither a position nor a TLE")
	}
}

func (p *positionJSON) vec() core.Vec3 {
	return core.Vec3{X: p.X, Y: p.Y, Z: p.Z}
}
