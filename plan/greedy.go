package plan

import (
	"context"
	"fmt"

	"github.com/signalsfoundry/beam-planner/internal/logging"
	"github.com/signalsfoundry/beam-planner/model"
)

// GreedyAssigner is the first assignment pass. Each satellite, in
// registration order, walks its viable users and places each on the first
// channel that has capacity and no interfering occupant. Users no satellite
// can take stay unassigned for the conflict pass.
type GreedyAssigner struct {
	state *State
	log   logging.Logger
}

// NewGreedyAssigner prepares the pass over the given state.
func NewGreedyAssigner(state *State, log logging.Logger) *GreedyAssigner {
	if log == nil {
		log = logging.Noop()
	}
	return &GreedyAssigner{state: state, log: log}
}

// Run executes the pass once and returns the number of users placed.
func (g *GreedyAssigner) Run(ctx context.Context) (int, error) {
	placed := 0
	for _, satID := range g.state.cat.Satellites() {
		for _, userID := range viableUsers(g.state, satID) {
			for _, channel := range model.Channels {
				if !g.state.Available(satID, userID, channel) {
					continue
				}
				if err := g.state.Assign(satID, userID, channel); err != nil {
					return placed, fmt.Errorf("greedy placement of %q on %q/%s: %w", userID, satID, channel, err)
				}
				placed++
				break
			}
		}
		g.log.Debug(ctx, "greedy pass scanned satellite",
			logging.String("satellite", string(satID)),
			logging.Int("assigned", g.state.AssignedCount(satID)),
		)
	}
	return placed, nil
}
