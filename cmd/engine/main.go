package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"leadgen-engine/internal/config"
	"leadgen-engine/internal/events"
	"leadgen-engine/internal/httpapi"
	"leadgen-engine/internal/logging"
	"leadgen-engine/internal/pipeline"
	"leadgen-engine/internal/scheduler"
	"leadgen-engine/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "engine:", err)
		os.Exit(1)
	}
}

func run() error {
	config.LoadDotEnv()

	// Engine data dir: env if provided, else local folder.
	dataDir := os.Getenv("LEADGEN_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	lock, err := lockDataDir(dataDir)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	userCfgPath, err := config.EnsureUserConfig(dataDir)
	if err != nil {
		return fmt.Errorf("config bootstrap failed: %w", err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(userCfgPath)
		if err != nil {
			return cfg, err
		}
		config.OverlayEnv(&cfg)
		return cfg, nil
	}
	cfg, err := loadCfg()
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", userCfgPath, err)
	}
	cfg, vr := config.NormalizeAndValidate(cfg)
	log := logging.New(cfg.App.Env, cfg.App.LogLevel)
	for _, w := range vr.Warnings {
		log.Warn("config warning", "msg", w)
	}
	if !vr.OK() {
		return fmt.Errorf("invalid config %s: %v", userCfgPath, vr.Errors)
	}
	cfgVal.Store(cfg)

	dbPath := filepath.Join(dataDir, "leads.db")
	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()
	if err := store.Migrate(db.Pool); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := events.NewHub()
	comps := &components{cfgVal: &cfgVal, db: db, hub: hub, log: log}
	pool := pipeline.NewPool(pipeline.PoolOptions{
		Workers:   cfg.Workers.Count,
		QueueSize: cfg.Workers.QueueSize,
		Jobs:      db,
		Runner:    comps.Runner,
		Events:    hub,
		Log:       log.With("component", "pool"),
	})
	pool.Start(ctx)

	go scheduler.Every(ctx, 10*time.Minute, "wal_checkpoint", log, db.Checkpoint)

	deps := httpapi.Deps{
		Store:       db,
		Hub:         hub,
		Pool:        pool,
		Log:         log,
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
	}
	mux := httpapi.NewMux(deps)

	ln, err := net.Listen("tcp", cfg.App.Addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           httpapi.Handler(deps, mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	token, err := randomToken(16)
	if err != nil {
		return err
	}
	tokenPath, err := writeTokenFile(dataDir, token)
	if err != nil {
		return err
	}
	defer os.Remove(tokenPath)
	mux.HandleFunc("/shutdown", shutdownHandler(token, srv, log))

	go func() {
		<-ctx.Done()
		log.Info("shutdown signal received")
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	log.Info("engine listening", "addr", "http://"+ln.Addr().String(), "db", dbPath, "config", userCfgPath)
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	// No new jobs after this; running ones finish.
	hub.Close()
	dctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := pool.Close(dctx); err != nil {
		log.Warn("pool drain", "err", err)
	}
	if err := db.Checkpoint(context.Background()); err != nil {
		log.Warn("final checkpoint", "err", err)
	}
	log.Info("engine stopped")
	return nil
}
