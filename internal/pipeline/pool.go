package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"leadgen-engine/internal/domain"
	"leadgen-engine/internal/events"
	"leadgen-engine/internal/logging"
)

var (
	ErrQueueFull = errors.New("scrape queue is full")
	ErrClosed    = errors.New("pipeline is shutting down")
)

type JobStore interface {
	CreateJob(ctx context.Context, query string, src domain.SourceType) (domain.ScrapingJob, error)
	CompleteJob(ctx context.Context, id int64, leadsFound int, errMsg string) error
}

type PoolOptions struct {
	Workers   int
	QueueSize int
	Jobs      JobStore
	// Runner is called once per job so config changes apply to the next job.
	Runner func() *Runner
	Events events.Publisher
	Log    *slog.Logger
}

// Pool is a fixed set of workers draining a bounded job queue.
type Pool struct {
	o     PoolOptions
	queue chan domain.ScrapingJob
	g     errgroup.Group

	mu     sync.RWMutex
	closed bool
}

func NewPool(o PoolOptions) *Pool {
	if o.Workers <= 0 {
		o.Workers = 2
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 64
	}
	if o.Log == nil {
		o.Log = logging.Discard()
	}
	if o.Events == nil {
		o.Events = events.Nop{}
	}
	return &Pool{o: o, queue: make(chan domain.ScrapingJob, o.QueueSize)}
}

// Start launches the workers. Jobs run under a context detached from ctx's
// cancellation: a started job always finishes.
func (p *Pool) Start(ctx context.Context) {
	base := context.WithoutCancel(ctx)
	for i := 0; i < p.o.Workers; i++ {
		worker := i
		p.g.Go(func() error {
			log := p.o.Log.With("worker", worker)
			for job := range p.queue {
				if _, err := p.o.Runner().Process(base, job); err != nil {
					log.Warn("job finished with error", "job_id", job.ID, "err", err)
				}
			}
			return nil
		})
	}
}

// Submit records a pending job and queues it. When the queue is full the job
// row is marked failed and ErrQueueFull is returned alongside it.
func (p *Pool) Submit(ctx context.Context, query string, src domain.SourceType) (domain.ScrapingJob, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return domain.ScrapingJob{}, ErrClosed
	}

	job, err := p.o.Jobs.CreateJob(ctx, query, src)
	if err != nil {
		return domain.ScrapingJob{}, err
	}

	select {
	case p.queue <- job:
		p.o.Events.Publish(events.MakeEvent("", events.JobQueued, 1,
			events.JobData{JobID: job.ID, Query: job.Query, Source: string(job.SourceType)}))
		return job, nil
	default:
	}

	if err := p.o.Jobs.CompleteJob(ctx, job.ID, 0, ErrQueueFull.Error()); err != nil {
		p.o.Log.Error("mark rejected job failed", "job_id", job.ID, "err", err)
	}
	job.Status = domain.JobFailed
	job.ErrorMessage = ErrQueueFull.Error()
	p.o.Events.Publish(events.MakeEvent("", events.JobFailed, 1,
		events.JobData{JobID: job.ID, Query: job.Query, Source: string(job.SourceType), Error: job.ErrorMessage}))
	return job, ErrQueueFull
}

func (p *Pool) Queued() int { return len(p.queue) }

// Close stops accepting jobs and waits for queued and running ones, or for
// ctx to end.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		_ = p.g.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
