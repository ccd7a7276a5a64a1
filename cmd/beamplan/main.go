package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/signalsfoundry/beam-planner/internal/logging"
	"github.com/signalsfoundry/beam-planner/internal/observability"
	"github.com/signalsfoundry/beam-planner/kb"
	"github.com/signalsfoundry/beam-planner/model"
	"github.com/signalsfoundry/beam-planner/plan"
)

func main() {
	scenarioPath := flag.String("scenario", "configs/scenario.json", "Path to a JSON scenario file")
	epochRaw := flag.String("epoch", "", "RFC3339 timestamp overriding the scenario epoch for TLE propagation")
	metricsAddr := flag.String("metrics-addr", "", "HTTP address for Prometheus /metrics (empty disables it)")
	watch := flag.Bool("watch", false, "Re-solve whenever the scenario file changes")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	var epochOverride time.Time
	if *epochRaw != "" {
		parsed, err := time.Parse(time.RFC3339, *epochRaw)
		if err != nil {
			log.Error(ctx, "bad -epoch value", logging.String("epoch", *epochRaw), logging.String("error", err.Error()))
			os.Exit(2)
		}
		epochOverride = parsed
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	opts := []plan.Option{plan.WithLogger(log)}
	var metricsSrv *http.Server
	if *metricsAddr != "" {
		collector, err := observability.NewPlannerCollector(nil)
		if err != nil {
			log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
			os.Exit(1)
		}
		opts = append(opts, plan.WithMetricsRecorder(collector))
		metricsSrv = serveMetrics(*metricsAddr, collector, log)
	}

	if err := solveScenario(ctx, *scenarioPath, epochOverride, os.Stdout, log, opts); err != nil {
		log.Error(ctx, "solve failed", logging.String("scenario", *scenarioPath), logging.String("error", err.Error()))
		os.Exit(1)
	}

	if *watch {
		stopCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
		if err := watchScenario(stopCtx, *scenarioPath, epochOverride, log, opts); err != nil {
			log.Error(ctx, "watch failed", logging.String("scenario", *scenarioPath), logging.String("error", err.Error()))
			os.Exit(1)
		}
	}

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
}

// solveScenario loads the scenario into a fresh catalog, runs the solver, and
// writes the resulting assignment JSON to out.
func solveScenario(ctx context.Context, path string, epochOverride time.Time, out io.Writer, log logging.Logger, opts []plan.Option) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cat := kb.NewCatalog()
	scenario, err := kb.LoadScenario(cat, f, epochOverride)
	if err != nil {
		return err
	}
	log.Info(ctx, "scenario loaded",
		logging.String("path", path),
		logging.Int("users", len(scenario.UserIDs)),
		logging.Int("satellites", len(scenario.SatelliteIDs)),
	)

	solution, err := plan.New(cat, opts...).Solve(ctx)
	if err != nil {
		return err
	}
	return writeSolution(out, solution)
}

// writeSolution emits the solution as indented JSON. Map keys marshal in
// sorted order, so the output is stable across runs.
func writeSolution(out io.Writer, solution model.Solution) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(solution)
}

// watchScenario blocks until ctx is done, re-solving every time the scenario
// file is written. The parent directory is watched rather than the file
// itself so editors that replace the file atomically still trigger a run.
func watchScenario(ctx context.Context, path string, epochOverride time.Time, log logging.Logger, opts []plan.Option) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	target := filepath.Clean(path)
	log.Info(ctx, "watching scenario for changes", logging.String("path", target))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := solveScenario(ctx, path, epochOverride, os.Stdout, log, opts); err != nil {
				log.Warn(ctx, "re-solve failed", logging.String("error", err.Error()))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn(ctx, "watcher error", logging.String("error", err.Error()))
		}
	}
}

func serveMetrics(addr string, collector *observability.PlannerCollector, log logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.String("error", err.Error()))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
