package httpapi

import (
	"context"
	"log/slog"
	"sync/atomic"

	"leadgen-engine/internal/config"
	"leadgen-engine/internal/domain"
	"leadgen-engine/internal/events"
	"leadgen-engine/internal/store"
)

// Submitter queues a scrape; pipeline.Pool in production.
type Submitter interface {
	Submit(ctx context.Context, query string, src domain.SourceType) (domain.ScrapingJob, error)
}

type Deps struct {
	Store *store.DB
	Hub   *events.Hub
	Pool  Submitter
	Log   *slog.Logger

	// Atomic store
	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
}
