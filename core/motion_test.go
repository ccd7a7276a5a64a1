package core

import (
	"testing"
	"time"
)

// ISS TLE, epoch day 275 of 2021.
const (
	issTLE1 = "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990"
	issTLE2 = "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760"
)

func TestSatellitePositionAt_LEOAltitude(t *testing.T) {
	at := time.Date(2021, time.October, 2, 12, 0, 0, 0, time.UTC)

	pos, err := SatellitePositionAt(TLE{Line1: issTLE1, Line2: issTLE2}, at)
	if err != nil {
		t.Fatalf("SatellitePositionAt: %v", err)
	}

	// Propagated near the TLE epoch the ISS sits in low Earth orbit; the
	// geocentric distance must land between the surface and a loose bound.
	r := pos.Norm()
	if r <= EarthRadiusKm || r >= 8000 {
		t.Errorf("geocentric distance = %v km, want within (%v, 8000)", r, EarthRadiusKm)
	}
}

func TestSatellitePositionAt_IncompleteTLE(t *testing.T) {
	if _, err := SatellitePositionAt(TLE{Line1: issTLE1}, time.Now()); err == nil {
		t.Fatalf("expected error for TLE missing line 2")
	}
	if _, err := SatellitePositionAt(TLE{Line2: issTLE2}, time.Now()); err == nil {
		t.Fatalf("expected error for TLE missing line 1")
	}
}
