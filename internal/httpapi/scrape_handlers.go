package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"leadgen-engine/internal/domain"
	"leadgen-engine/internal/logging"
	"leadgen-engine/internal/pipeline"
)

type ScrapeHandler struct {
	Pool Submitter
}

// Run queues a scrape and returns the job id straight away.
func (h ScrapeHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req scrapeReq
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(w, r, err)
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_query", "Please provide a URL or search query")
		return
	}
	src := domain.SourceURL
	if req.Type != "" {
		src = domain.SourceType(req.Type)
	}

	job, err := h.Pool.Submit(r.Context(), query, src)
	switch {
	case errors.Is(err, pipeline.ErrQueueFull):
		WriteError(w, r, http.StatusServiceUnavailable, "queue_full", "scrape queue is full, try again shortly")
		return
	case errors.Is(err, pipeline.ErrClosed):
		WriteError(w, r, http.StatusServiceUnavailable, "shutting_down", "engine is shutting down")
		return
	case err != nil:
		logging.From(r.Context()).Error("submit scrape", "err", err)
		WriteError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	logging.From(r.Context()).Info("scrape queued", "job_id", job.ID, "source_type", src)
	writeJSON(w, scrapeResp{Success: true, Message: "Scraping started", JobID: job.ID})
}
