// Command api runs the HTTP/API Surface (spec.md §6): the stateless
// request process that validates input and dispatches to the Project
// Store, timeline/action validators, TTS profile & cache, and the job
// queue gateway. Render, demo-capture and unified runs happen in
// cmd/worker; this process itself runs only ffprobe (at project creation)
// and single-line TTS preview calls, and never drives a browser.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/apresai/narrated-demo/internal/browser"
	"github.com/apresai/narrated-demo/internal/config"
	"github.com/apresai/narrated-demo/internal/httpapi"
	"github.com/apresai/narrated-demo/internal/mediatool"
	"github.com/apresai/narrated-demo/internal/observability"
	"github.com/apresai/narrated-demo/internal/project"
	"github.com/apresai/narrated-demo/internal/queue"
	"github.com/apresai/narrated-demo/internal/ttscache"
	"github.com/apresai/narrated-demo/internal/ttsrender"
)

func main() {
	log := observability.InitLogger()
	slog.SetDefault(log)

	if err := run(log); err != nil {
		log.Error("api exited with error", "error", err)
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

	tp, err := observability.InitTracer(ctx, "narrated-demo-api", "dev")
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
	gateway := queue.NewGateway(backend)

	ttsCache, err := ttscache.New(cfg.DataDir + "/cache/tts")
	if err != nil {
		return fmt.Errorf("opening tts cache: %w", err)
	}
	ttsPreviewCache, err := ttscache.New(cfg.DataDir + "/cache/tts_preview")
	if err != nil {
		return fmt.Errorf("opening tts preview cache: %w", err)
	}

	server := &httpapi.Server{
		Store:         store,
		Queue:         gateway,
		TTSCache:      ttsCache,
		TTSPreview:    ttsPreviewCache,
		TTSClient:     ttsrender.NewClient(os.Getenv("TTS_API_KEY")),
		MediaTool:     mediatool.NewRunner(),
		BrowserProber: browser.UnavailableProber{},
		Config:        cfg,
		Log:           log,
	}

	router := httpapi.NewRouter(server, httpapi.RateLimitConfig{
		RequestLimit: 120,
		WindowSize:   time.Minute,
	})

	addr := envOr("API_ADDR", ":8080")
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("api listening", "addr", addr, "queue_url", cfg.QueueURL, "data_dir", cfg.DataDir)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// newQueueBackend dials Redis, unless cfg.QueueURL uses the memory://
// scheme — a single-process, non-durable fallback useful for local
// development when a separate worker process shares nothing with the API.
func newQueueBackend(cfg config.Config) (queue.Backend, error) {
	if strings.HasPrefix(cfg.QueueURL, "memory://") {
		return queue.NewMemoryBackend(cfg.QueueName), nil
	}
	return queue.NewRedisBackend(cfg.QueueURL, cfg.QueueName)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
