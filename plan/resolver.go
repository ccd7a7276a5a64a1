package plan

import (
	"context"
	"fmt"

	"github.com/signalsfoundry/beam-planner/core"
	"github.com/signalsfoundry/beam-planner/internal/logging"
	"github.com/signalsfoundry/beam-planner/model"
)

// ConflictResolver is the second assignment pass. For every satellite it
// revisits the users the greedy pass could not place and tries to free a
// channel for them by relocating the conflicting occupants to alternate
// channels on the same satellite.
//
// The search is one level deep: an occupant that cannot move to a clear
// channel directly sinks the whole attempt for that channel. Relocations are
// never cascaded, so some globally resolvable arrangements are missed; that
// is the intended trade for a fast, predictable heuristic.
type ConflictResolver struct {
	state *State
	log   logging.Logger
}

// NewConflictResolver prepares the pass over the given state.
func NewConflictResolver(state *State, log logging.Logger) *ConflictResolver {
	if log == nil {
		log = logging.Noop()
	}
	return &ConflictResolver{state: state, log: log}
}

type relocation struct {
	user model.UserID
	to   model.Channel
}

// Run executes the pass once. It returns the number of users placed and the
// number of occupants relocated to make room for them.
func (r *ConflictResolver) Run(ctx context.Context) (placed, relocated int, err error) {
	for _, satID := range r.state.cat.Satellites() {
		for _, userID := range viableUsers(r.state, satID) {
			for _, channel := range model.Channels {
				moves, ok := r.planRelocations(satID, userID, channel)
				if !ok {
					continue
				}
				for _, m := range moves {
					if err := r.state.Reassign(satID, m.user, m.to); err != nil {
						return placed, relocated, fmt.Errorf("relocating %q to %q/%s: %w", m.user, satID, m.to, err)
					}
					relocated++
				}
				if err := r.state.Assign(satID, userID, channel); err != nil {
					return placed, relocated, fmt.Errorf("placing %q on %q/%s after relocation: %w", userID, satID, channel, err)
				}
				placed++
				r.log.Debug(ctx, "resolved conflicts for user",
					logging.String("user", string(userID)),
					logging.String("satellite", string(satID)),
					logging.String("channel", string(channel)),
					logging.Int("relocated", len(moves)),
				)
				break
			}
		}
	}
	return placed, relocated, nil
}

// planRelocations decides whether the user can take channel on satID by
// moving every conflicting occupant elsewhere. The attempt is feasible only
// when at least one conflict exists and every conflict has a clear alternate
// channel. Each occupant's check sees the moves planned before it in the
// same attempt, so applying the plan keeps the separation invariant intact.
//
// A channel whose occupants simply fill the satellite to capacity, with no
// direct conflicts, is deliberately not "made room on": the greedy pass
// already tried every conflict-free placement.
func (r *ConflictResolver) planRelocations(satID model.SatelliteID, userID model.UserID, channel model.Channel) ([]relocation, bool) {
	if r.state.AssignedCount(satID) >= MaxUsersPerSatellite {
		return nil, false
	}
	satPos, err := r.state.cat.SatellitePosition(satID)
	if err != nil {
		return nil, false
	}
	userPos, err := r.state.cat.UserPosition(userID)
	if err != nil {
		return nil, false
	}

	conflicts := r.conflicts(satID, satPos, userPos, channel)
	if len(conflicts) == 0 {
		return nil, false
	}

	moves := make([]relocation, 0, len(conflicts))
	for _, conflict := range conflicts {
		to, ok := r.alternateChannel(satID, satPos, conflict, channel, moves)
		if !ok {
			return nil, false
		}
		moves = append(moves, relocation{user: conflict, to: to})
	}
	return moves, true
}

// conflicts lists the occupants of (satID, channel) that interfere with the
// candidate user, in assignment order.
func (r *ConflictResolver) conflicts(satID model.SatelliteID, satPos, userPos core.Vec3, channel model.Channel) []model.UserID {
	var out []model.UserID
	for _, occupant := range r.state.AssignedUsers(satID, channel) {
		pos, err := r.state.cat.UserPosition(occupant)
		if err != nil {
			continue
		}
		if core.Interferes(satPos, userPos, pos) {
			out = append(out, occupant)
		}
	}
	return out
}

// alternateChannel finds the first channel other than blocked on which the
// occupant interferes with nobody, counting the relocations already planned
// in this attempt.
func (r *ConflictResolver) alternateChannel(satID model.SatelliteID, satPos core.Vec3, occupant model.UserID, blocked model.Channel, planned []relocation) (model.Channel, bool) {
	occupantPos, err := r.state.cat.UserPosition(occupant)
	if err != nil {
		return "", false
	}
	for _, channel := range model.Channels {
		if channel == blocked {
			continue
		}
		if r.channelClear(satID, satPos, occupantPos, channel, planned) {
			return channel, true
		}
	}
	return "", false
}

func (r *ConflictResolver) channelClear(satID model.SatelliteID, satPos, occupantPos core.Vec3, channel model.Channel, planned []relocation) bool {
	for _, other := range r.state.AssignedUsers(satID, channel) {
		pos, err := r.state.cat.UserPosition(other)
		if err != nil {
			return false
		}
		if core.Interferes(satPos, occupantPos, pos) {
			return false
		}
	}
	for _, m := range planned {
		if m.to != channel {
			continue
		}
		pos, err := r.state.cat.UserPosition(m.user)
		if err != nil {
			return false
		}
		if core.Interferes(satPos, occupantPos, pos) {
			return false
		}
	}
	return true
}
