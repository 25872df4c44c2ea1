package httpapi

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"leadgen-engine/internal/store"
)

type ReportsHandler struct {
	Store *store.DB
	Now   func() time.Time
}

func (h ReportsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	s, err := h.Store.Stats(r.Context())
	if err != nil {
		writeStoreError(w, r, "stats", err)
		return
	}
	writeJSON(w, map[string]any{"success": true, "stats": s})
}

// Export sends every lead as a CSV attachment, or XLSX with ?format=xlsx.
func (h ReportsHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		WriteError(w, r, http.StatusBadRequest, "invalid_format", "format must be csv or xlsx")
		return
	}

	leads, err := h.Store.AllLeads(r.Context(), 0)
	if err != nil {
		writeStoreError(w, r, "leads", err)
		return
	}
	if len(leads) == 0 {
		WriteError(w, r, http.StatusBadRequest, "no_leads", "No leads to export")
		return
	}

	var buf bytes.Buffer
	ctype := "text/csv"
	if format == "xlsx" {
		ctype = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		err = store.WriteXLSX(&buf, leads)
	} else {
		err = store.WriteCSV(&buf, leads)
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "export_failed", err.Error())
		return
	}

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	name := fmt.Sprintf("leads_%s.%s", now().Format("20060102_150405"), format)
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write(buf.Bytes())
}
