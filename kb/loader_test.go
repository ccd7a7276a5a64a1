package kb

import (
	"strings"
	"testing"
	"time"
)

func TestLoadScenario_FixedPositions(t *testing.T) {
	payload := `{
		"users": [
			{"id": "u1", "position": {"x": 6371, "y": 0, "z": 0}},
			{"id": "u2", "position": {"x": 6372, "y": 0, "z": 0}}
		],
		"satellites": [
			{"id": "s1", "position": {"x": 6921, "y": 0, "z": 0}}
		]
	}`

	cat := NewCatalog()
	scn, err := LoadScenario(cat, strings.NewReader(payload), time.Time{})
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}

	if len(scn.UserIDs) != 2 || scn.UserIDs[0] != "u1" || scn.UserIDs[1] != "u2" {
		t.Errorf("UserIDs = %v, want [u1 u2] in file order", scn.UserIDs)
	}
	if len(scn.SatelliteIDs) != 1 || scn.SatelliteIDs[0] != "s1" {
		t.Errorf("SatelliteIDs = %v, want [s1]", scn.SatelliteIDs)
	}

	pos, err := cat.SatellitePosition("s1")
	if err != nil {
		t.Fatalf("SatellitePosition: %v", err)
	}
	if pos.X != 6921 {
		t.Errorf("satellite position X = %v, want 6921", pos.X)
	}
}

func TestLoadScenario_TLESatellite(t *testing.T) {
	payload := `{
		"epoch": "2021-10-02T12:00:00Z",
		"users": [{"id": "u1", "position": {"x": 6371, "y": 0, "z": 0}}],
		"satellites": [{"id": "iss", "tle": {
			"line1": "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990",
			"line2": "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760"
		}}]
	}`

	cat := NewCatalog()
	scn, err := LoadScenario(cat, strings.NewReader(payload), time.Time{})
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	if scn.Epoch.IsZero() {
		t.Errorf("Epoch not parsed from file")
	}

	pos, err := cat.SatellitePosition("iss")
	if err != nil {
		t.Fatalf("SatellitePosition: %v", err)
	}
	if r := pos.Norm(); r <= 6371 || r >= 8000 {
		t.Errorf("propagated geocentric distance = %v km, want LEO range", r)
	}
}

func TestLoadScenario_TLEWithoutEpoch(t *testing.T) {
	payload := `{
		"users": [],
		"satellites": [{"id": "iss", "tle": {"line1": "x", "line2": "y"}}]
	}`

	if _, err := LoadScenario(NewCatalog(), strings.NewReader(payload), time.Time{}); err == nil {
		t.Fatalf("expected error for TLE without an epoch")
	}
}

func TestLoadScenario_StructuralErrors(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"malformed json", `{"users": [`},
		{"user without id", `{"users": [{"position": {"x": 1}}]}`},
		{"user without position", `{"users": [{"id": "u1"}]}`},
		{"satellite without position or tle", `{"satellites": [{"id": "s1"}]}`},
		{"satellite with position and tle", `{"epoch": "2021-10-02T12:00:00Z", "satellites": [{"id": "s1", "position": {"x": 1}, "tle": {"line1": "a", "line2": "b"}}]}`},
		{"duplicate user", `{"users": [{"id": "u1", "position": {"x": 1}}, {"id": "u1", "position": {"x": 2}}]}`},
		{"bad epoch", `{"epoch": "yesterday"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadScenario(NewCatalog(), strings.NewReader(tc.payload), time.Time{}); err == nil {
				t.Fatalf("expected load error")
			}
		})
	}
}

func TestLoadScenario_EpochOverride(t *testing.T) {
	payload := `{"epoch": "2021-10-02T12:00:00Z", "users": [], "satellites": []}`

	override := time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)
	scn, err := LoadScenario(NewCatalog(), strings.NewReader(payload), override)
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	if !scn.Epoch.Equal(override) {
		t.Errorf("Epoch = %v, want override %v", scn.Epoch, override)
	}
}
