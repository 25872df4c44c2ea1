package scheduler

import (
	"context"
	"log/slog"
	"time"

	"leadgen-engine/internal/logging"
)

type Task func(ctx context.Context) error

// Every runs task once immediately and then on each tick until ctx ends.
// Errors are logged; a failing task keeps its schedule.
func Every(ctx context.Context, interval time.Duration, name string, log *slog.Logger, task Task) {
	if log == nil {
		log = logging.Discard()
	}
	log = log.With("task", name)

	run := func() {
		if err := task(ctx); err != nil {
			log.Warn("scheduled task failed", "err", err)
		}
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	run()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run()
		}
	}
}
