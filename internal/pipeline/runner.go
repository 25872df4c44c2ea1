// Package pipeline runs scraping jobs: scrape, enrich, score, persist.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"leadgen-engine/internal/domain"
	"leadgen-engine/internal/enrich"
	"leadgen-engine/internal/events"
	"leadgen-engine/internal/logging"
	"leadgen-engine/internal/rank"
)

// Store is the slice of the persistence layer a job touches.
type Store interface {
	StartJob(ctx context.Context, id int64) error
	CompleteJob(ctx context.Context, id int64, leadsFound int, errMsg string) error
	UpsertLead(ctx context.Context, l domain.Lead) (int64, bool, error)
	LogActivity(ctx context.Context, leadID int64, typ, desc string, meta any) error
	LogEmailValidation(ctx context.Context, v domain.EmailValidation) error
}

type Scraper interface {
	Scrape(ctx context.Context, query string, source domain.SourceType) []domain.Lead
}

type Enricher interface {
	EnrichDetailed(ctx context.Context, lead domain.Lead) (domain.Lead, enrich.Outcome)
}

type Runner struct {
	Store    Store
	Scraper  Scraper
	Enricher Enricher
	Scorer   rank.Scorer
	Events   events.Publisher
	Log      *slog.Logger
}

// Process runs one job to completion and records the outcome on the job
// row. The returned error is the one stored on the job, if any.
func (r *Runner) Process(ctx context.Context, job domain.ScrapingJob) (int, error) {
	log := r.logger().With("job_id", job.ID, "source_type", job.SourceType)
	ctx = logging.WithLogger(ctx, log)

	if err := r.Store.StartJob(ctx, job.ID); err != nil {
		err = fmt.Errorf("start job %d: %w", job.ID, err)
		if cerr := r.Store.CompleteJob(ctx, job.ID, 0, err.Error()); cerr != nil {
			log.Warn("could not record job failure", "err", cerr)
		}
		r.publish(events.JobFailed, events.JobData{JobID: job.ID, Query: job.Query, Source: string(job.SourceType), Error: err.Error()})
		return 0, err
	}
	r.publish(events.JobStarted, events.JobData{JobID: job.ID, Query: job.Query, Source: string(job.SourceType)})
	log.Info("job started", "query", job.Query)

	raw := r.Scraper.Scrape(ctx, job.Query, job.SourceType)

	saved, failed := 0, 0
	var lastErr error
	for _, lead := range raw {
		if err := r.processLead(ctx, job, lead); err != nil {
			failed++
			lastErr = err
			log.Warn("lead skipped", "url", lead.URL, "err", err)
			continue
		}
		saved++
	}

	var errMsg string
	if failed > 0 && saved == 0 {
		errMsg = fmt.Sprintf("all %d leads failed: %v", failed, lastErr)
	}
	if err := r.Store.CompleteJob(ctx, job.ID, saved, errMsg); err != nil {
		log.Error("complete job", "err", err)
		return saved, fmt.Errorf("complete job %d: %w", job.ID, err)
	}

	data := events.JobData{JobID: job.ID, Query: job.Query, Source: string(job.SourceType), LeadsFound: saved}
	if errMsg != "" {
		data.Error = errMsg
		r.publish(events.JobFailed, data)
		log.Error("job failed", "err", errMsg)
		return saved, errors.New(errMsg)
	}
	r.publish(events.JobCompleted, data)
	log.Info("job completed", "leads_found", saved, "skipped", failed)
	return saved, nil
}

func (r *Runner) processLead(ctx context.Context, job domain.ScrapingJob, raw domain.Lead) error {
	log := logging.From(ctx).With("url", raw.URL)
	if raw.Error != "" {
		log.Debug("scrape degraded", "err", raw.Error)
	}

	lead, out := r.Enricher.EnrichDetailed(ctx, raw)
	for step, err := range out.Degraded {
		log.Debug("enrichment degraded", "step", step, "err", err)
	}
	lead.LeadScore = r.Scorer.Score(lead)

	id, created, err := r.Store.UpsertLead(ctx, lead)
	if err != nil {
		return err
	}

	typ := domain.ActivityLeadUpdated
	if created {
		typ = domain.ActivityLeadCreated
	}
	desc := fmt.Sprintf("Lead scraped from %s: %s", job.SourceType, job.Query)
	meta := map[string]string{"source": string(job.SourceType), "query": job.Query}
	if err := r.Store.LogActivity(ctx, id, typ, desc, meta); err != nil {
		log.Warn("activity log", "lead_id", id, "err", err)
	}

	if lead.Email != "" && out.Email != nil {
		v := domain.EmailValidation{
			LeadID:     id,
			Email:      lead.Email,
			Valid:      out.Email.Valid,
			Confidence: out.Email.Confidence,
			Details: map[string]any{
				"provider":   out.Email.Provider,
				"format_ok":  out.Email.FormatOK,
				"disposable": out.Email.Disposable,
				"has_mx":     out.Email.HasMX,
				"suggestion": out.Email.Suggestion,
			},
		}
		if err := r.Store.LogEmailValidation(ctx, v); err != nil {
			log.Warn("email validation log", "lead_id", id, "err", err)
		}
	}

	r.publish(events.LeadSaved, events.LeadData{LeadID: id, URL: lead.URL, Score: lead.LeadScore, Created: created})
	log.Info("lead saved", "lead_id", id, "created", created, "lead_score", lead.LeadScore)
	return nil
}

func (r *Runner) publish(typ string, data any) {
	if r.Events == nil {
		return
	}
	r.Events.Publish(events.MakeEvent("", typ, 1, data))
}

func (r *Runner) logger() *slog.Logger {
	if r.Log == nil {
		return logging.Discard()
	}
	return r.Log
}
