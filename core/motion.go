package core

import (
	"fmt"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

// TLE is a two-line element set describing a satellite orbit.
type TLE struct {
	Line1 string
	Line2 string
}

// SatellitePositionAt propagates the TLE to t using SGP4 and returns the
// satellite's ECEF position in kilometres. Scenario loading uses this for
// satellites given as orbits instead of fixed coordinates; the solver itself
// never looks at time.
func SatellitePositionAt(tle TLE, t time.Time) (Vec3, error) {
	if tle.Line1 == "" || tle.Line2 == "" {
		return Vec3{}, fmt.Errorf("incomplete TLE: both lines are required")
	}

	sat := satellite.TLEToSat(tle.Line1, tle.Line2, satellite.GravityWGS72)

	utc := t.UTC()
	year, month, day := utc.Date()
	hour, min, sec := utc.Clock()

	posECI, _ := satellite.Propagate(sat, year, int(month), day, hour, min, sec)
	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	gmst := satellite.ThetaG_JD(jd)
	posECEF := satellite.ECIToECEF(posECI, gmst)

	pos := Vec3{X: posECEF.X, Y: posECEF.Y, Z: posECEF.Z}
	if pos.Norm() == 0 {
		return Vec3{}, fmt.Errorf("TLE propagation yielded a degenerate position")
	}
	return pos, nil
}
