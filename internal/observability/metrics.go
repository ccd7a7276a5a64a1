package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PlannerCollector bundles Prometheus metrics for the beam planner and
// provides a ready-to-serve /metrics handler.
type PlannerCollector struct {
	gatherer prometheus.Gatherer

	SolvesTotal         prometheus.Counter
	SolveDuration       prometheus.Histogram
	ReassignmentsTotal  prometheus.Counter
	UsersAssigned       prometheus.Gauge
	UsersUnassigned     prometheus.Gauge
	ScenarioUsers       prometheus.Gauge
	ScenarioSatellites  prometheus.Gauge
}

// NewPlannerCollector registers planner metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewPlannerCollector(reg prometheus.Registerer) (*PlannerCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	solves, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "planner_solves_total",
		Help: "Total number of completed solve runs.",
	}), "planner_solves_total")
	if err != nil {
		return nil, err
	}

	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "planner_solve_duration_seconds",
		Help:    "Duration of full solve runs (both passes).",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}), "planner_solve_duration_seconds")
	if err != nil {
		return nil, err
	}

	reassignments, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "planner_reassignments_total",
		Help: "Cumulative number of occupants relocated by the conflict pass.",
	}), "planner_reassignments_total")
	if err != nil {
		return nil, err
	}

	assigned, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "planner_users_assigned",
		Help: "Users placed by the most recent solve.",
	}), "planner_users_assigned")
	if err != nil {
		return nil, err
	}
	unassigned, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "planner_users_unassigned",
		Help: "Users left without a beam by the most recent solve.",
	}), "planner_users_unassigned")
	if err != nil {
		return nil, err
	}
	users, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "planner_scenario_users",
		Help: "Users in the most recently solved scenario.",
	}), "planner_scenario_users")
	if err != nil {
		return nil, err
	}
	satellites, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "planner_scenario_satellites",
		Help: "Satellites in the most recently solved scenario.",
	}), "planner_scenario_satellites")
	if err != nil {
		return nil, err
	}

	return &PlannerCollector{
		gatherer:           gatherer,
		SolvesTotal:        solves,
		SolveDuration:      duration,
		ReassignmentsTotal: reassignments,
		UsersAssigned:      assigned,
		UsersUnassigned:    unassigned,
		ScenarioUsers:      users,
		ScenarioSatellites: satellites,
	}, nil
}

// RecordSolve satisfies the plan.MetricsRecorder interface so the solver can
// drive metrics directly.
func (c *PlannerCollector) RecordSolve(users, satellites, assigned, relocated int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.SolvesTotal.Inc()
	c.SolveDuration.Observe(elapsed.Seconds())
	c.ReassignmentsTotal.Add(float64(relocated))
	c.UsersAssigned.Set(float64(assigned))
	c.UsersUnassigned.Set(float64(users - assigned))
	c.ScenarioUsers.Set(float64(users))
	c.ScenarioSatellites.Set(float64(satellites))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *PlannerCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

func registerHistogram(reg prometheus.Registerer, histogram prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(histogram); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return histogram, nil
}
