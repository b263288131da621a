package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"MacroDash/internal/cache"
	"MacroDash/internal/collector"
	"MacroDash/internal/config"
	"MacroDash/internal/logging"
	"MacroDash/internal/model"
	"MacroDash/internal/recorder"
	"MacroDash/internal/scheduler"
	"MacroDash/internal/server"
)

func main() {
	boot := logging.New("info")

	// .env first so its values count as environment overrides.
	if err := config.LoadDotEnv(os.Getenv("DOTENV_PATH")); err != nil {
		boot.Fatalf("load .env: %v", err)
	}
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		boot.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		boot.Errorf("config validation: %v", err)
		os.Exit(exitCode(err))
	}

	log := logging.New(cfg.LogLevel)
	if err := run(cfg, log); err != nil {
		log.Error(err)
		os.Exit(exitCode(err))
	}
}

// run wires the service and blocks until a shutdown signal or a server
// error. Components are closed before it returns.
func run(cfg *config.Config, log *logrus.Logger) error {
	log.Info("MacroDash starting...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info("RUN_ON_START enabled, loading dataset now")
		go a.sched.RunRefreshNow()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- a.srv.Start() }()

	log.Info("MacroDash is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	var srvErr error
	select {
	case <-sigCh:
		log.Info("shutdown signal received, stopping...")
	case srvErr = <-errCh:
		if srvErr != nil {
			srvErr = fmt.Errorf("server: %w", srvErr)
		}
	}

	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := a.srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server shutdown: %v", err)
	}
	log.Info("MacroDash stopped")
	return srvErr
}

// app holds the long-lived components; close releases them in reverse
// order of construction.
type app struct {
	log   logrus.FieldLogger
	rec   recorder.Recorder
	sched *scheduler.Scheduler
	srv   *server.Server
}

func newApp(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*app, error) {
	col, err := buildCollector(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("init collector: %w", err)
	}

	rec := openRecorder(cfg, log)

	ttl, _ := cfg.CacheTTL()
	store := buildStore(ctx, cfg, ttl, log)
	memo := cache.NewMemo(store, recorder.Observe(rec, log, col.Collect), ttl, log)
	log.Infof("cache: %s store, ttl %v", store.Name(), ttl)

	sched := scheduler.NewScheduler(ctx, memo, log)
	if err := sched.Register(cfg.RefreshSpec()); err != nil {
		rec.Close()
		return nil, fmt.Errorf("register cron tasks: %w", err)
	}
	sched.Start()

	return &app{
		log:   log,
		rec:   rec,
		sched: sched,
		srv:   server.New(cfg.Server.Addr, memo, rec, log),
	}, nil
}

func (a *app) close() {
	a.sched.Stop()
	if err := a.rec.Close(); err != nil {
		a.log.Warnf("close recorder: %v", err)
	}
}

func buildCollector(cfg *config.Config, log *logrus.Logger) (*collector.Collector, error) {
	if cfg.DataSource == "mock" {
		mock := &collector.MockFetcher{Months: 120}
		log.Warn("using mock data source")
		return collector.NewCollector(mock, mock, log), nil
	}
	prices := collector.NewYahooFetcher(cfg.Yahoo.BaseURL, cfg.Proxy, log)
	macro, err := collector.NewFREDFetcher(cfg.FRED.BaseURL, cfg.FRED.APIKey, cfg.Proxy, log)
	if err != nil {
		return nil, err
	}
	log.Infof("data sources: %s + %s", prices.Name(), macro.Name())
	return collector.NewCollector(prices, macro, log), nil
}

// openRecorder is swapped in tests.
var openRecorder = buildRecorder

func buildRecorder(cfg *config.Config, log *logrus.Logger) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
	if err != nil {
		log.Warnf("init sqlite recorder failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	return sr
}

func buildStore(ctx context.Context, cfg *config.Config, ttl time.Duration, log *logrus.Logger) cache.Store {
	if cfg.Cache.RedisURL == "" {
		return cache.NewMemoryStore()
	}
	client, err := cache.ConnectRedis(ctx, cfg.Cache.RedisURL)
	if err != nil {
		log.Warnf("redis unavailable, using in-process cache: %v", err)
		return cache.NewMemoryStore()
	}
	return cache.NewRedisStore(client, ttl)
}

// exitCode maps startup errors to process exit codes: 2 for configuration
// problems, 1 otherwise.
func exitCode(err error) int {
	if errors.Is(err, model.ErrConfiguration) {
		return 2
	}
	return 1
}
