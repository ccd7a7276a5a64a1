package core

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// EarthRadiusKm is the mean Earth radius used for simple geometry in the
// planner and its scenarios (kilometres).
const EarthRadiusKm = 6371.0

const (
	// VisibilityConeDegrees is the half-angle of the service cone around a
	// user's local zenith within which a serving satellite must lie
	// (inclusive).
	VisibilityConeDegrees = 45.0

	// MinSeparationDegrees is the minimum angular separation, measured at
	// the satellite, between two users sharing a beam channel. Pairs
	// strictly below this separation interfere.
	MinSeparationDegrees = 10.0
)

// cosVisibilityCone is cos(45°); the comparison carries a small tolerance so
// users sitting exactly on the cone boundary count as visible.
const (
	cosVisibilityCone = math.Sqrt2 / 2
	cosTolerance      = 1e-9
)

// Vec3 is an ECEF-style position in kilometres.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) r3() r3.Vec { return r3.Vec{X: v.X, Y: v.Y, Z: v.Z} }

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	d := r3.Sub(v.r3(), other.r3())
	return Vec3{X: d.X, Y: d.Y, Z: d.Z}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(other Vec3) float64 {
	return r3.Dot(v.r3(), other.r3())
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return r3.Norm(v.r3())
}

// AngleBetweenDegrees returns the angle at vantage between the rays toward a
// and b, in degrees in [0, 180]. A zero-length ray yields NaN.
func AngleBetweenDegrees(vantage, a, b Vec3) float64 {
	ra := a.Sub(vantage)
	rb := b.Sub(vantage)
	if ra.Norm() == 0 || rb.Norm() == 0 {
		return math.NaN()
	}
	cos := r3.Cos(ra.r3(), rb.r3())
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos) * 180.0 / math.Pi
}

// Visible reports whether the satellite at satPos lies inside the service
// cone of the user at userPos: the angle between the user's local zenith
// (the ray from the body centre through the user) and the ray from the user
// to the satellite is at most VisibilityConeDegrees. Degenerate zero-length
// rays are never visible.
//
// Note the arguments are not interchangeable; the zenith belongs to userPos.
func Visible(userPos, satPos Vec3) bool {
	zenith := userPos
	toSat := satPos.Sub(userPos)
	if zenith.Norm() == 0 || toSat.Norm() == 0 {
		return false
	}
	return r3.Cos(zenith.r3(), toSat.r3()) >= cosVisibilityCone-cosTolerance
}

// Interferes reports whether the users at userA and userB, as seen from the
// satellite at satPos, are separated by strictly less than
// MinSeparationDegrees. Degenerate zero-length rays cannot interfere.
func Interferes(satPos, userA, userB Vec3) bool {
	angle := AngleBetweenDegrees(satPos, userA, userB)
	if math.IsNaN(angle) {
		return false
	}
	return angle < MinSeparationDegrees
}
