// Command worker runs the background process that consumes the job
// queue and drives the Demo Runner, TTS Render Pipeline, and Unified
// Pipeline (spec.md §5: "the API process never performs pipeline work
// synchronously"). One process, many in-flight jobs bounded by
// MaxConcurrentTasks.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/apresai/narrated-demo/internal/artifactstore"
	"github.com/apresai/narrated-demo/internal/browser"
	"github.com/apresai/narrated-demo/internal/config"
	"github.com/apresai/narrated-demo/internal/demo"
	"github.com/apresai/narrated-demo/internal/mediatool"
	"github.com/apresai/narrated-demo/internal/observability"
	"github.com/apresai/narrated-demo/internal/project"
	"github.com/apresai/narrated-demo/internal/queue"
	"github.com/apresai/narrated-demo/internal/ttscache"
	"github.com/apresai/narrated-demo/internal/ttsrender"
	"github.com/apresai/narrated-demo/internal/unified"
	"github.com/apresai/narrated-demo/internal/worker"
)

func main() {
	log := observability.InitLogger()
	slog.SetDefault(log)

	if err := run(log); err != nil {
		log.Error("worker exited with error", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadSecrets(ctx, cfg); err != nil {
		log.Warn("continuing without AWS-managed secrets", "error", err)
	}

	tp, err := observability.InitTracer(ctx, "narrated-demo-worker", "dev")
	if err != nil {
		log.Warn("tracing disabled: failed to init tracer", "error", err)
	} else {
		defer tp.Shutdown(context.Background())
	}

	store, err := project.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening project store: %w", err)
	}

	backend, err := newQueueBackend(cfg)
	if err != nil {
		return fmt.Errorf("connecting to queue: %w", err)
	}
	defer backend.Close()

	mt := mediatool.NewRunner()

	// No real browser-automation driver ships in this distribution (see
	// DESIGN.md): the demo runner always falls back to its deterministic
	// dry-run path under playwright_optional, and fails fast under
	// playwright_required.
	demoRunner := demo.NewRunner(
		browser.UnavailableProber{},
		func(context.Context) (browser.Session, error) {
			return nil, browser.ErrCapabilityUnavailable
		},
		mt,
	)

	ttsCache, err := ttscache.New(cfg.DataDir + "/cache/tts")
	if err != nil {
		return fmt.Errorf("opening tts cache: %w", err)
	}
	ttsClient := ttsrender.NewClient(os.Getenv("TTS_API_KEY"))
	ttsPipeline := ttsrender.NewPipeline(ttsClient, ttsCache, mt)

	artifacts, err := artifactstore.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing artifact store: %w", err)
	}

	unifiedRunner := &unified.Runner{
		Store:      store,
		DemoRunner: demoRunner,
		TTS:        ttsPipeline,
		MediaTool:  mt,
		Artifacts:  artifacts,
		Config:     cfg,
	}

	dispatcher := worker.NewDispatcher(store, unifiedRunner, demoRunner, ttsPipeline, artifacts, cfg)
	pool := worker.NewPool(backend, dispatcher, cfg.MaxConcurrentTasks, log, context.Background())

	log.Info("worker starting", "queue_url", cfg.QueueURL, "max_concurrent_tasks", cfg.MaxConcurrentTasks, "data_dir", cfg.DataDir)
	pool.Run(ctx)
	log.Info("worker stopped")
	return nil
}

func newQueueBackend(cfg config.Config) (queue.Backend, error) {
	if strings.HasPrefix(cfg.QueueURL, "memory://") {
		return nil, errors.New("QUEUE_URL=memory:// is only usable within a single process; a separate worker cannot see jobs enqueued by cmd/api")
	}
	return queue.NewRedisBackend(cfg.QueueURL, cfg.QueueName)
}
