package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/elocompare/internal/adapters/chart"
	"github.com/okian/elocompare/internal/adapters/eloapi"
	"github.com/okian/elocompare/internal/adapters/http/api"
	"github.com/okian/elocompare/internal/adapters/http/site"
	"github.com/okian/elocompare/internal/adapters/http/swagger"
	"github.com/okian/elocompare/internal/adapters/notify"
	"github.com/okian/elocompare/internal/adapters/selection"
	"github.com/okian/elocompare/internal/app"
	"github.com/okian/elocompare/internal/chartstate"
	"github.com/okian/elocompare/internal/config"
	"github.com/okian/elocompare/internal/domain/compose"
	"github.com/okian/elocompare/internal/domain/model"
	"github.com/okian/elocompare/internal/history"
	"github.com/okian/elocompare/internal/roster"
	"github.com/okian/elocompare/pkg/logger"
	"github.com/okian/elocompare/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

// application holds the wired components of the viewer.
type application struct {
	svc    *app.Service
	inbox  *notify.Inbox
	charts *chartstate.Manager
	mux    *http.ServeMux
}

// newApplication wires every component from cfg. Nothing is started.
func newApplication(ctx context.Context, cfg *config.Config, log logger.Logger) *application {
	client := eloapi.NewClient(cfg.RosterURL, cfg.HistoryURL, eloapi.WithTimeout(cfg.HTTPTimeout()))

	primary := selection.New(model.SlotPrimary.String())
	secondary := selection.New(model.SlotSecondary.String())
	inbox := notify.NewInbox(notify.WithLogger(log.Named("notify")))
	for _, c := range []*selection.Control{primary, secondary} {
		c.Subscribe(func(ctx context.Context, s selection.Snapshot) {
			log.Debug(ctx, "selection changed",
				logger.String("control", s.Name),
				logger.String("value", s.Value),
				logger.Int("options", s.Options),
				logger.Any("version", s.Version))
		})
	}

	loader := roster.NewLoader(client, []roster.Control{primary, secondary}, roster.WithLogger(log.Named("roster")))
	fetcher := history.NewFetcher(client, inbox, history.WithLogger(log.Named("history")))

	factory := chart.NewFactory(chart.WithSize(cfg.ChartWidth, cfg.ChartHeight))
	charts := chartstate.NewManager(chartstate.GoChart(factory), chartstate.WithLogger(log.Named("chart")))

	ctrl := app.NewController(primary, secondary, loader, fetcher, charts, inbox,
		app.WithLogger(log.Named("controller")),
		app.WithComposer(compose.New(compose.WithPalette(cfg.Palette))),
	)
	svc := app.NewService(ctrl,
		app.WithQueueSize(cfg.ActionQueueSize),
		app.WithServiceLogger(log.Named("service")),
	)

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, inbox, charts).Register(ctx, mux)
	site.Register(ctx, mux)

	return &application{svc: svc, inbox: inbox, charts: charts, mux: mux}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logger: " + err.Error() + "\n")
		}
	}()

	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	a := newApplication(ctx, cfg, log)
	if err := a.svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return
	}

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           a.mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("roster_url", cfg.RosterURL),
			logger.String("history_url", cfg.HistoryURL))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}
	if err := a.svc.Stop(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "service stop failed", logger.Error(err))
	}
	a.charts.Clear(shutdownCtx)

	log.Info(shutdownCtx, "server stopped")
}

// startSystemMetricsUpdater updates process metrics until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
