package httpapi

import (
	"net"
	"net/http"

	"leadgen-engine/internal/logging"
	"leadgen-engine/internal/store"
)

type DBHandler struct {
	Store *store.DB
}

// Checkpoint is loopback-only.
func (h DBHandler) Checkpoint(w http.ResponseWriter, r *http.Request) {
	if !isLoopback(r) {
		WriteError(w, r, http.StatusForbidden, "forbidden", "forbidden")
		return
	}
	if err := h.Store.Checkpoint(r.Context()); err != nil {
		logging.From(r.Context()).Error("wal checkpoint", "err", err)
		WriteError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func isLoopback(r *http.Request) bool {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
