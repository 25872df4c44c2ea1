package httpapi

import (
	"net/http"

	"leadgen-engine/internal/store"
)

type JobsHandler struct {
	Store *store.DB
}

func (h JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_request", "limit must be an integer")
		return
	}
	jobs, err := h.Store.ListJobs(r.Context(), limit)
	if err != nil {
		writeStoreError(w, r, "jobs", err)
		return
	}
	writeJSON(w, map[string]any{"success": true, "jobs": jobs})
}

// GetByPath expects /api/jobs/{id}.
func (h JobsHandler) GetByPath(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r, "/api/jobs/")
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	job, err := h.Store.GetJob(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, "Job", err)
		return
	}
	writeJSON(w, map[string]any{"success": true, "job": job})
}
