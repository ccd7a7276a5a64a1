// Package plan implements the two-phase user→(satellite, channel)
// assignment: a greedy first-fit pass followed by a single round of
// conflict-driven channel reassignment.
package plan

import (
	"errors"
	"fmt"

	"github.com/signalsfoundry/beam-planner/core"
	"github.com/signalsfoundry/beam-planner/kb"
	"github.com/signalsfoundry/beam-planner/model"
)

// MaxUsersPerSatellite caps the number of simultaneous users one satellite
// can serve, across all channels.
const MaxUsersPerSatellite = 32

// ErrPrecandidateViolation indicates a State mutator was called with its
// preconditions unmet: assigning an already-assigned user, exceeding
// capacity, or unassigning a user from the wrong satellite. The passes never
// trigger it when correct; seeing it in a run means a planner bug, not bad
// input.
var ErrPrecandidateViolation = errors.New("precandidate violation")

type beamEntry struct {
	user    model.UserID
	channel model.Channel
}

// State tracks every user's assignment and each satellite's beam list for a
// single solve. Beam lists keep assignment order, which the conflict pass
// scans in. Only the two passes mutate it; no locking is needed.
type State struct {
	cat   *kb.Catalog
	users map[model.UserID]model.Assignment
	beams map[model.SatelliteID][]beamEntry
}

// NewState prepares empty assignment bookkeeping over a catalog.
func NewState(cat *kb.Catalog) *State {
	return &State{
		cat:   cat,
		users: make(map[model.UserID]model.Assignment),
		beams: make(map[model.SatelliteID][]beamEntry),
	}
}

// IsAssigned reports whether the user has been placed on any satellite.
func (s *State) IsAssigned(user model.UserID) bool {
	_, ok := s.users[user]
	return ok
}

// ChannelOf returns the channel the user is currently served on.
func (s *State) ChannelOf(user model.UserID) (model.Channel, bool) {
	a, ok := s.users[user]
	return a.Channel, ok
}

// AssignedUsers returns the users on (sat, channel) in assignment order.
func (s *State) AssignedUsers(sat model.SatelliteID, channel model.Channel) []model.UserID {
	var out []model.UserID
	for _, b := range s.beams[sat] {
		if b.channel == channel {
			out = append(out, b.user)
		}
	}
	return out
}

// AssignedCount returns the number of users on the satellite, all channels.
func (s *State) AssignedCount(sat model.SatelliteID) int {
	return len(s.beams[sat])
}

// Assign places an unassigned user on (sat, channel). The user must not be
// assigned anywhere and the satellite must be under capacity.
func (s *State) Assign(sat model.SatelliteID, user model.UserID, channel model.Channel) error {
	if _, ok := s.users[user]; ok {
		return fmt.Errorf("%w: user %q is already assigned", ErrPrecandidateViolation, user)
	}
	if len(s.beams[sat]) >= MaxUsersPerSatellite {
		return fmt.Errorf("%w: satellite %q is at capacity", ErrPrecandidateViolation, sat)
	}
	s.users[user] = model.Assignment{Satellite: sat, Channel: channel}
	s.beams[sat] = append(s.beams[sat], beamEntry{user: user, channel: channel})
	return nil
}

// Unassign removes a user currently assigned to sat.
func (s *State) Unassign(sat model.SatelliteID, user model.UserID) error {
	a, ok := s.users[user]
	if !ok || a.Satellite != sat {
		return fmt.Errorf("%w: user %q is not assigned to satellite %q", ErrPrecandidateViolation, user, sat)
	}
	delete(s.users, user)
	list := s.beams[sat]
	for i, b := range list {
		if b.user == user {
			s.beams[sat] = append(list[:i], list[i+1:]...)
			break
		}
	}
	return nil
}

// Reassign moves an assigned user to a different channel on the same
// satellite. The user goes to the end of the satellite's beam list.
func (s *State) Reassign(sat model.SatelliteID, user model.UserID, channel model.Channel) error {
	if err := s.Unassign(sat, user); err != nil {
		return err
	}
	return s.Assign(sat, user, channel)
}

// Available reports whether the user could be placed on (sat, channel) right
// now: the satellite is under capacity and no occupant of that channel is
// within the interference separation of the user.
func (s *State) Available(sat model.SatelliteID, user model.UserID, channel model.Channel) bool {
	if len(s.beams[sat]) >= MaxUsersPerSatellite {
		return false
	}
	satPos, err := s.cat.SatellitePosition(sat)
	if err != nil {
		return false
	}
	userPos, err := s.cat.UserPosition(user)
	if err != nil {
		return false
	}
	for _, b := range s.beams[sat] {
		if b.channel != channel {
			continue
		}
		otherPos, err := s.cat.UserPosition(b.user)
		if err != nil {
			return false
		}
		if core.Interferes(satPos, userPos, otherPos) {
			return false
		}
	}
	return true
}

// Solution returns the user→assignment mapping accumulated so far.
func (s *State) Solution() model.Solution {
	out := make(model.Solution, len(s.users))
	for u, a := range s.users {
		out[u] = a
	}
	return out
}

// viableUsers returns the users, in registration order, that are still
// unassigned and sit inside the satellite's service cone. Both passes
// recompute this per satellite.
func viableUsers(state *State, satID model.SatelliteID) []model.UserID {
	satPos, err := state.cat.SatellitePosition(satID)
	if err != nil {
		return nil
	}
	var viable []model.UserID
	for _, userID := range state.cat.Users() {
		if state.IsAssigned(userID) {
			continue
		}
		userPos, err := state.cat.UserPosition(userID)
		if err != nil {
			continue
		}
		if core.Visible(userPos, satPos) {
			viable = append(viable, userID)
		}
	}
	return viable
}
