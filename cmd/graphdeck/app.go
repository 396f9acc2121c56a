package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rmax-ai/graphdeck/pkg/client"
	"github.com/rmax-ai/graphdeck/pkg/designer"
	"github.com/rmax-ai/graphdeck/pkg/flow"
	"github.com/rmax-ai/graphdeck/pkg/i18n"
	"github.com/rmax-ai/graphdeck/pkg/notify"
	"github.com/rmax-ai/graphdeck/pkg/store"
	"github.com/rmax-ai/graphdeck/pkg/store/redis"
)

const toastTTL = 5 * time.Second

// app holds the wired collaborators of a designer session.
type app struct {
	cfg         Config
	log         *slog.Logger
	client      *client.Client
	sess        *designer.Session
	toaster     *notify.Toaster
	journal     *store.Store
	broadcaster *redis.Broadcaster
	metrics     *http.Server
}

func newApp(ctx context.Context, cfg Config, logOut io.Writer) (*app, error) {
	a := &app{
		cfg:     cfg,
		log:     newLogger(cfg.LogLevel, logOut),
		client:  client.NewClient(cfg.Endpoint),
		toaster: notify.NewToaster(toastTTL),
	}

	tr, err := i18n.New(cfg.Locale)
	if err != nil {
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}

	opts := designer.Options{
		Graphs:     a.client,
		Resolver:   flow.NewResolver(a.client),
		Translator: tr,
		Notifier:   notify.Multi{a.toaster, notify.NewLogger(a.log)},
		Logger:     a.log,
	}

	if cfg.JournalPath != "" {
		a.journal, err = store.NewStore(cfg.JournalPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open journal: %w", err)
		}
		opts.Journal = a.journal
	}

	if cfg.RedisAddr != "" {
		a.broadcaster, err = redis.Dial(ctx, cfg.RedisAddr, a.log)
		if err != nil {
			a.Close()
			return nil, err
		}
		opts.Broadcaster = a.broadcaster
	}

	a.sess = designer.NewSession(opts)

	if cfg.MetricsAddr != "" {
		a.serveMetrics(cfg.MetricsAddr)
	}

	a.log.Info("Session started", "session_id", a.sess.ID, "endpoint", cfg.Endpoint)
	return a, nil
}

func (a *app) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	a.metrics = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := a.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("Metrics server failed", "addr", addr, "error", err)
		}
	}()
}

// subscribe returns graph changes published by other sessions, or nil when
// no broadcaster is configured.
func (a *app) subscribe(ctx context.Context) <-chan redis.GraphChange {
	if a.broadcaster == nil {
		return nil
	}
	changes, err := a.broadcaster.Subscribe(ctx)
	if err != nil {
		a.log.Warn("Graph change subscription unavailable", "error", err)
		return nil
	}
	return changes
}

func (a *app) Close() {
	if a.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		a.metrics.Shutdown(ctx)
	}
	if a.broadcaster != nil {
		if err := a.broadcaster.Close(); err != nil {
			a.log.Warn("Failed to close redis", "error", err)
		}
	}
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			a.log.Warn("Failed to close journal", "error", err)
		}
	}
}

// newLogger creates a JSON logger at the given level.
func newLogger(levelStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(outW, &slog.HandlerOptions{Level: level}))
}
