package plan

import (
	"context"
	"testing"

	"github.com/signalsfoundry/beam-planner/kb"
	"github.com/signalsfoundry/beam-planner/model"
)

// Six users on one arc. The greedy pass places five (x1..x4 and z) and
// strands u: every channel holds an occupant within 10° of it. Channel A can
// be freed by moving x1 to D, where x4 sits 11° away.
func TestResolverRelocatesSingleConflict(t *testing.T) {
	sat := testSatPos()
	cat := kb.NewCatalog()
	mustAddSatellite(t, cat, "sat1", sat)
	mustAddUser(t, cat, "x1", userOffAxis(sat, -7, 0))
	mustAddUser(t, cat, "x2", userOffAxis(sat, -4, 0))
	mustAddUser(t, cat, "x3", userOffAxis(sat, 0, 0))
	mustAddUser(t, cat, "z", userOffAxis(sat, 8.5, 0))
	mustAddUser(t, cat, "x4", userOffAxis(sat, 4, 0))
	mustAddUser(t, cat, "u", userOffAxis(sat, -2, 0))

	state := NewState(cat)
	if _, err := NewGreedyAssigner(state, nil).Run(context.Background()); err != nil {
		t.Fatalf("greedy pass: %v", err)
	}
	if state.IsAssigned("u") {
		t.Fatal("u placed by the greedy pass; scenario is miswired")
	}

	placed, relocated, err := NewConflictResolver(state, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("conflict pass: %v", err)
	}
	if placed != 1 || relocated != 1 {
		t.Fatalf("conflict pass placed %d, relocated %d; want 1, 1", placed, relocated)
	}

	solution := state.Solution()
	if got := solution["u"]; got.Channel != model.ChannelA {
		t.Errorf("u on channel %q, want A", got.Channel)
	}
	if got := solution["x1"]; got.Channel != model.ChannelD {
		t.Errorf("x1 on channel %q after relocation, want D", got.Channel)
	}
	verifySolution(t, cat, solution)
}

// u sits on the satellite axis between a and b, which share channel A at
// 10.5° separation. Freeing A for u means moving both: a to the channel
// holding q and b to the channel holding p, the only occupants far enough
// from them.
func TestResolverRelocatesMultipleConflicts(t *testing.T) {
	sat := testSatPos()
	cat := kb.NewCatalog()
	mustAddSatellite(t, cat, "sat1", sat)
	mustAddUser(t, cat, "a", userOffAxis(sat, 5.25, 0))
	mustAddUser(t, cat, "b", userOffAxis(sat, 5.25, 180))
	mustAddUser(t, cat, "p", userOffAxis(sat, 8, 60))
	mustAddUser(t, cat, "q", userOffAxis(sat, 8, 120))
	mustAddUser(t, cat, "r", userOffAxis(sat, 4, 90))
	mustAddUser(t, cat, "u", userOffAxis(sat, 0, 0))

	state := NewState(cat)
	if _, err := NewGreedyAssigner(state, nil).Run(context.Background()); err != nil {
		t.Fatalf("greedy pass: %v", err)
	}
	for userID, want := range map[model.UserID]model.Channel{
		"a": model.ChannelA,
		"b": model.ChannelA,
		"p": model.ChannelB,
		"q": model.ChannelC,
		"r": model.ChannelD,
	} {
		if got, _ := state.ChannelOf(userID); got != want {
			t.Fatalf("greedy put %q on %q, want %q; scenario is miswired", userID, got, want)
		}
	}
	if state.IsAssigned("u") {
		t.Fatal("u placed by the greedy pass; scenario is miswired")
	}

	placed, relocated, err := NewConflictResolver(state, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("conflict pass: %v", err)
	}
	if placed != 1 || relocated != 2 {
		t.Fatalf("conflict pass placed %d, relocated %d; want 1, 2", placed, relocated)
	}

	solution := state.Solution()
	if got := solution["u"]; got.Channel != model.ChannelA {
		t.Errorf("u on channel %q, want A", got.Channel)
	}
	if got := solution["a"]; got.Channel != model.ChannelC {
		t.Errorf("a on channel %q after relocation, want C", got.Channel)
	}
	if got := solution["b"]; got.Channel != model.ChannelB {
		t.Errorf("b on channel %q after relocation, want B", got.Channel)
	}
	verifySolution(t, cat, solution)
}

// Five users inside one 10° window exhaust the four channels; no relocation
// can help because every occupant conflicts with every other.
func TestResolverLeavesInfeasibleUserUnplaced(t *testing.T) {
	sat := testSatPos()
	cat := kb.NewCatalog()
	mustAddSatellite(t, cat, "sat1", sat)
	for i, id := range []model.UserID{"u1", "u2", "u3", "u4", "u5"} {
		mustAddUser(t, cat, id, userOffAxis(sat, float64(i), 0))
	}

	state := NewState(cat)
	if _, err := NewGreedyAssigner(state, nil).Run(context.Background()); err != nil {
		t.Fatalf("greedy pass: %v", err)
	}

	placed, relocated, err := NewConflictResolver(state, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("conflict pass: %v", err)
	}
	if placed != 0 || relocated != 0 {
		t.Errorf("conflict pass placed %d, relocated %d; want 0, 0", placed, relocated)
	}
	if state.IsAssigned("u5") {
		t.Error("u5 assigned despite all channels being blocked by mutual conflicts")
	}
	verifySolution(t, cat, state.Solution())
}
