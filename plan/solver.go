package plan

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/beam-planner/core"
	"github.com/signalsfoundry/beam-planner/internal/logging"
	"github.com/signalsfoundry/beam-planner/kb"
	"github.com/signalsfoundry/beam-planner/model"
)

// MetricsRecorder receives per-solve counters. The Prometheus collector in
// internal/observability satisfies it.
type MetricsRecorder interface {
	RecordSolve(users, satellites, assigned, relocated int, elapsed time.Duration)
}

// Option customises Solver construction.
type Option func(*Solver)

// WithLogger attaches a structured logger to the solver.
func WithLogger(log logging.Logger) Option {
	return func(s *Solver) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetricsRecorder attaches an optional metrics recorder.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(s *Solver) {
		s.metrics = m
	}
}

// Solver runs the two-phase assignment over a catalog. Solving is a pure,
// terminating computation; a Solver may be reused, and the same catalog
// always yields the same Solution.
type Solver struct {
	cat     *kb.Catalog
	log     logging.Logger
	metrics MetricsRecorder
	tracer  trace.Tracer
}

// New constructs a Solver over the catalog.
func New(cat *kb.Catalog, opts ...Option) *Solver {
	s := &Solver{
		cat:    cat,
		log:    logging.Noop(),
		tracer: otel.Tracer("beam-planner/plan"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Solve runs the greedy pass and then the conflict pass, once each, and
// returns the resulting user→(satellite, channel) mapping. A user that
// cannot be placed is simply absent from the result; the only error paths
// are internal contract violations, which indicate a planner bug.
func (s *Solver) Solve(ctx context.Context) (model.Solution, error) {
	ctx, log := logging.WithRunLogger(ctx, s.log)
	ctx, span := s.tracer.Start(ctx, "plan.Solve", trace.WithAttributes(
		attribute.Int("planner.users", s.cat.NumUsers()),
		attribute.Int("planner.satellites", s.cat.NumSatellites()),
	))
	defer span.End()

	start := time.Now()
	state := NewState(s.cat)

	greedyCtx, greedySpan := s.tracer.Start(ctx, "greedy_pass")
	greedyPlaced, err := NewGreedyAssigner(state, log).Run(greedyCtx)
	greedySpan.End()
	if err != nil {
		return nil, fmt.Errorf("greedy pass: %w", err)
	}

	resolveCtx, resolveSpan := s.tracer.Start(ctx, "conflict_pass")
	resolvedPlaced, relocated, err := NewConflictResolver(state, log).Run(resolveCtx)
	resolveSpan.End()
	if err != nil {
		return nil, fmt.Errorf("conflict pass: %w", err)
	}

	solution := state.Solution()
	elapsed := time.Since(start)
	span.SetAttributes(
		attribute.Int("planner.assigned", len(solution)),
		attribute.Int("planner.relocated", relocated),
	)
	if s.metrics != nil {
		s.metrics.RecordSolve(s.cat.NumUsers(), s.cat.NumSatellites(), len(solution), relocated, elapsed)
	}
	log.Info(ctx, "solve complete",
		logging.Int("users", s.cat.NumUsers()),
		logging.Int("satellites", s.cat.NumSatellites()),
		logging.Int("greedy_placed", greedyPlaced),
		logging.Int("resolved_placed", resolvedPlaced),
		logging.Int("relocated", relocated),
		logging.Int("assigned", len(solution)),
	)
	return solution, nil
}

// UserPosition pairs a user ID with its position. A slice of them is an
// ordered mapping; the slice order is the enumeration order of the solve.
type UserPosition struct {
	ID       model.UserID
	Position core.Vec3
}

// SatellitePosition pairs a satellite ID with its position.
type SatellitePosition struct {
	ID       model.SatelliteID
	Position core.Vec3
}

// Solve is the one-shot entry point: it registers the inputs, in order, in a
// fresh catalog and solves over it. Duplicate IDs are the only input error.
func Solve(ctx context.Context, users []UserPosition, satellites []SatellitePosition, opts ...Option) (model.Solution, error) {
	cat := kb.NewCatalog()
	for _, u := range users {
		if err := cat.AddUser(u.ID, u.Position); err != nil {
			return nil, err
		}
	}
	for _, sat := range satellites {
		if err := cat.AddSatellite(sat.ID, sat.Position); err != nil {
			return nil, err
		}
	}
	return New(cat, opts...).Solve(ctx)
}
