package main

import (
	"log/slog"
	"net"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"leadgen-engine/internal/config"
	"leadgen-engine/internal/emailcheck"
	"leadgen-engine/internal/enrich"
	"leadgen-engine/internal/events"
	"leadgen-engine/internal/hunter"
	"leadgen-engine/internal/pipeline"
	"leadgen-engine/internal/rank"
	"leadgen-engine/internal/scrape"
	"leadgen-engine/internal/scrape/util"
	"leadgen-engine/internal/secrets"
	"leadgen-engine/internal/store"
)

// components rebuilds the pipeline only when the live config changes, so the
// Hunter and per-host limiters are shared by every worker between edits.
type components struct {
	cfgVal *atomic.Value
	db     *store.DB
	hub    *events.Hub
	log    *slog.Logger

	mu     sync.Mutex
	built  config.Config
	runner *pipeline.Runner
}

func (c *components) Runner() *pipeline.Runner {
	cfg := c.cfgVal.Load().(config.Config)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.runner != nil && reflect.DeepEqual(cfg, c.built) {
		return c.runner
	}
	c.runner = buildRunner(cfg, c.db, c.hub, c.log)
	c.built = cfg
	c.log.Debug("pipeline rebuilt from config")
	return c.runner
}

func buildRunner(cfg config.Config, db *store.DB, hub *events.Hub, log *slog.Logger) *pipeline.Runner {
	sec := func(n int) time.Duration { return time.Duration(n) * time.Second }

	lim := util.NewHostLimiter(cfg.Scraper.HostRPS, cfg.Scraper.HostBurst)
	scraper := scrape.New(scrape.Options{
		UserAgent:   cfg.Scraper.UserAgent,
		Timeout:     sec(cfg.Scraper.TimeoutSeconds),
		DemoURLs:    cfg.Scraper.DemoURLs,
		SearchLimit: cfg.Scraper.SearchLimit,
		Heuristics:  cfg.Heuristics,
		Limiter:     lim,
		Log:         log.With("component", "scrape"),
	})

	finder := hunter.New(hunter.Options{
		BaseURL:           cfg.Hunter.BaseURL,
		Timeout:           sec(cfg.Hunter.TimeoutSeconds),
		Limit:             cfg.Hunter.Limit,
		RequestsPerSecond: cfg.Hunter.RequestsPerSecond,
		Burst:             cfg.Hunter.Burst,
		APIKey:            func() string { return secrets.ResolveHunterKey(cfg) },
	})

	enricher := &enrich.Enricher{
		Finder:      finder,
		Checker:     emailcheck.New(cfg.Heuristics, net.DefaultResolver),
		Pages:       scrape.NewFetcher(cfg.Scraper.UserAgent, sec(cfg.Enrichment.TechTimeoutSeconds), lim),
		Whois:       enrich.NewPortWhois(sec(cfg.Enrichment.WhoisTimeoutSeconds)),
		Heuristics:  cfg.Heuristics,
		PhoneRegion: cfg.Enrichment.PhoneRegion,
		Log:         log.With("component", "enrich"),
	}

	return &pipeline.Runner{
		Store:    db,
		Scraper:  scraper,
		Enricher: enricher,
		Scorer:   rank.LeadScorer{W: cfg.Scoring},
		Events:   hub,
		Log:      log.With("component", "pipeline"),
	}
}
