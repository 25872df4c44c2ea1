package httpapi

import (
	"context"
	"net/http"
	"time"

	"leadgen-engine/internal/store"
)

type HealthHandler struct {
	Store *store.DB
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	now := time.Now().UTC().Format(time.RFC3339)
	if err := h.Store.Ping(ctx); err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{
			"status":    "unhealthy",
			"error":     err.Error(),
			"timestamp": now,
		})
		return
	}
	writeJSON(w, map[string]any{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": now,
	})
}
