package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Erokopotomus/survivor-fantasy-tracker/internal/adapters/http/api"
	"github.com/Erokopotomus/survivor-fantasy-tracker/internal/adapters/repository"
	"github.com/Erokopotomus/survivor-fantasy-tracker/internal/adapters/suggest"
	service "github.com/Erokopotomus/survivor-fantasy-tracker/internal/app"
	"github.com/Erokopotomus/survivor-fantasy-tracker/internal/config"
	"github.com/Erokopotomus/survivor-fantasy-tracker/pkg/logger"
)

// Timeouts without a config knob.
const (
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
)

func main() {
	// The custom registry carries the service metrics; drop the default
	// collectors to avoid duplicates.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := repository.NewBunStore(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Error(ctx, "failed to connect to database", logger.Error(err))
		return
	}
	if err := store.InitSchema(ctx); err != nil {
		log.Error(ctx, "failed to initialize schema", logger.Error(err))
		return
	}

	svc := service.New(store,
		service.WithLogger(log),
		service.WithMaxLeaderboardLimit(cfg.MaxLeaderboardLimit),
	)

	client := suggest.NewClient(cfg.AnthropicAPIKey,
		suggest.WithModel(cfg.SuggestionModel),
		suggest.WithTimeout(time.Duration(cfg.SuggestionTimeoutSeconds)*time.Second),
	)
	suggester := suggest.NewSuggester(store, client, log.Named("suggest"))
	if !suggester.Enabled() {
		log.Info(ctx, "AI suggestions disabled: no API key configured")
	}

	started := time.Now()
	stats := statsProvider{started: started, suggestions: suggester.Enabled()}

	apiServer := api.NewServer(svc, suggester, stats)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           apiServer.Router(),
		ReadTimeout:       time.Duration(cfg.HTTPReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTPWriteTimeoutSeconds) * time.Second,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
}

// statsProvider serves the /stats document.
type statsProvider struct {
	started     time.Time
	suggestions bool
}

func (s statsProvider) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"status":              "ok",
		"uptime_seconds":      int(time.Since(s.started).Seconds()),
		"suggestions_enabled": s.suggestions,
	}
}
