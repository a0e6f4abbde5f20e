package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/fittext/internal/config"
	"git.home.luguber.info/inful/fittext/internal/logfields"
	"git.home.luguber.info/inful/fittext/internal/metrics"
	"git.home.luguber.info/inful/fittext/internal/pipeline"
	"git.home.luguber.info/inful/fittext/internal/source"
	"git.home.luguber.info/inful/fittext/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	MetricsListen string `name:"metrics-listen" help:"Serve Prometheus metrics on this address (overrides config)"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig(false)
	if err != nil {
		return err
	}
	if w.MetricsListen != "" {
		cfg.Metrics.Listen = w.MetricsListen
		if cfg.Metrics.Path == "" {
			cfg.Metrics.Path = "/metrics"
		}
	}
	ctx, cancel := signalContext()
	defer cancel()
	return RunWatch(ctx, cfg)
}

// RunWatch generates once, then regenerates on every debounced change until
// ctx is canceled.
func RunWatch(ctx context.Context, cfg *config.Config) error {
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if cfg.Metrics.Listen != "" {
		reg := metrics.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		stop := serveMetrics(cfg.Metrics, reg)
		defer stop()
	}

	gen := pipeline.New(cfg, pipeline.WithRecorder(recorder))
	if _, err := gen.Generate(ctx); err != nil {
		// Keep watching: the developer is expected to fix the call site.
		slog.Error("Initial generate failed", logfields.Error(err))
	}

	filter, err := source.NewFilter(cfg.Sources.Include, cfg.Sources.Exclude)
	if err != nil {
		return err
	}
	watcher, err := watch.New(watch.Config{
		Roots:    cfg.SourceRoots(),
		Filter:   filter,
		Table:    cfg.TablePath(),
		Ignore:   []string{cfg.OutputDirectory(), cfg.ContainerOutputPath()},
		Debounce: cfg.Watch.DebounceDuration(),
	}, func(ctx context.Context) error {
		_, err := gen.Generate(ctx)
		return err
	})
	if err != nil {
		return err
	}
	return watcher.Run(ctx)
}

func serveMetrics(mc config.MetricsConfig, reg *prom.Registry) func() {
	mux := http.NewServeMux()
	mux.Handle(mc.Path, metrics.HTTPHandler(reg))
	srv := &http.Server{Addr: mc.Listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		slog.Info("Serving metrics", slog.String("addr", mc.Listen), logfields.Path(mc.Path))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", logfields.Error(err))
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
