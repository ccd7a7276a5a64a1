package plan

import (
	"math"
	"testing"

	"github.com/signalsfoundry/beam-planner/core"
	"github.com/signalsfoundry/beam-planner/kb"
	"github.com/signalsfoundry/beam-planner/model"
)

// testSatPos is a vantage point far enough from the origin that users placed
// with userOffAxis sit well inside its service cone for small off-axis
// angles.
func testSatPos() core.Vec3 {
	return core.Vec3{Z: 20000}
}

// userOffAxis places a user 1000 km from sat, tilted polarDeg off the
// satellite's axis toward the origin, at the given azimuth. Directions from
// the satellite to two such users are separated by exactly the spherical
// angle between (polar, azimuth) pairs, which makes interference geometry
// easy to stage: users whose polar/azimuth angles differ by less than 10°
// interfere, users 10° or more apart do not.
func userOffAxis(sat core.Vec3, polarDeg, azimuthDeg float64) core.Vec3 {
	p := polarDeg * math.Pi / 180.0
	a := azimuthDeg * math.Pi / 180.0
	return core.Vec3{
		X: sat.X + 1000*math.Sin(p)*math.Cos(a),
		Y: sat.Y + 1000*math.Sin(p)*math.Sin(a),
		Z: sat.Z - 1000*math.Cos(p),
	}
}

func mustAddUser(t *testing.T, cat *kb.Catalog, id model.UserID, pos core.Vec3) {
	t.Helper()
	if err := cat.AddUser(id, pos); err != nil {
		t.Fatalf("AddUser(%q): %v", id, err)
	}
}

func mustAddSatellite(t *testing.T, cat *kb.Catalog, id model.SatelliteID, pos core.Vec3) {
	t.Helper()
	if err := cat.AddSatellite(id, pos); err != nil {
		t.Fatalf("AddSatellite(%q): %v", id, err)
	}
}

// verifySolution checks the solution against the planner's hard guarantees:
// capacity, visibility, pairwise separation per channel, and that every
// entry references a known satellite.
func verifySolution(t *testing.T, cat *kb.Catalog, solution model.Solution) {
	t.Helper()

	perSat := make(map[model.SatelliteID]int)
	byBeam := make(map[model.SatelliteID]map[model.Channel][]model.UserID)

	for userID, a := range solution {
		satPos, err := cat.SatellitePosition(a.Satellite)
		if err != nil {
			t.Fatalf("solution references unknown satellite %q: %v", a.Satellite, err)
		}
		userPos, err := cat.UserPosition(userID)
		if err != nil {
			t.Fatalf("solution references unknown user %q: %v", userID, err)
		}
		if !core.Visible(userPos, satPos) {
			t.Errorf("user %q assigned to satellite %q outside its service cone", userID, a.Satellite)
		}

		perSat[a.Satellite]++
		if byBeam[a.Satellite] == nil {
			byBeam[a.Satellite] = make(map[model.Channel][]model.UserID)
		}
		byBeam[a.Satellite][a.Channel] = append(byBeam[a.Satellite][a.Channel], userID)
	}

	for satID, n := range perSat {
		if n > MaxUsersPerSatellite {
			t.Errorf("satellite %q serves %d users, capacity is %d", satID, n, MaxUsersPerSatellite)
		}
	}

	for satID, channels := range byBeam {
		satPos, _ := cat.SatellitePosition(satID)
		for channel, users := range channels {
			for i := 0; i < len(users); i++ {
				for j := i + 1; j < len(users); j++ {
					posA, _ := cat.UserPosition(users[i])
					posB, _ := cat.UserPosition(users[j])
					if core.Interferes(satPos, posA, posB) {
						t.Errorf("users %q and %q interfere on %q/%s", users[i], users[j], satID, channel)
					}
				}
			}
		}
	}
}
