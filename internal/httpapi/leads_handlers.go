package httpapi

import (
	"net/http"

	"leadgen-engine/internal/domain"
	"leadgen-engine/internal/events"
	"leadgen-engine/internal/logging"
	"leadgen-engine/internal/store"
)

type LeadsHandler struct {
	Store *store.DB
	Hub   events.Publisher
}

func (h LeadsHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_request", "page must be an integer")
		return
	}
	perPage, err := queryInt(r, "per_page", 50)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_request", "per_page must be an integer")
		return
	}

	res, err := h.Store.ListLeads(r.Context(), store.ListLeadsOpts{
		Page: page, PerPage: perPage, Sort: r.URL.Query().Get("sort"),
	})
	if err != nil {
		writeStoreError(w, r, "leads", err)
		return
	}
	writeJSON(w, leadsPageResp{
		Success: true,
		Leads:   res.Leads,
		Page:    res.Page,
		PerPage: res.PerPage,
		Total:   res.Total,
	})
}

// Get, Update and Delete expect /api/leads/{id}.
func (h LeadsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r, "/api/leads/")
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	lead, err := h.Store.GetLeadByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, "Lead", err)
		return
	}
	writeJSON(w, map[string]any{"success": true, "lead": lead})
}

func (h LeadsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r, "/api/leads/")
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	var req updateLeadReq
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(w, r, err)
		return
	}
	if req.Status == "" {
		WriteError(w, r, http.StatusBadRequest, "no_updates", "No updates provided")
		return
	}

	status := domain.LeadStatus(req.Status)
	if err := h.Store.UpdateLeadStatus(r.Context(), id, status); err != nil {
		writeStoreError(w, r, "Lead", err)
		return
	}
	if err := h.Store.LogActivity(r.Context(), id, domain.ActivityStatusChanged, "Status changed to "+req.Status, nil); err != nil {
		logging.From(r.Context()).Warn("activity log", "lead_id", id, "err", err)
	}

	h.Hub.Publish(events.MakeEvent(RequestIDFrom(r.Context()), events.LeadUpdated, 1,
		events.LeadData{LeadID: id, Status: req.Status}))
	writeJSON(w, map[string]any{"success": true})
}

func (h LeadsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r, "/api/leads/")
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	if err := h.Store.DeleteLead(r.Context(), id); err != nil {
		writeStoreError(w, r, "Lead", err)
		return
	}
	h.Hub.Publish(events.MakeEvent(RequestIDFrom(r.Context()), events.LeadDeleted, 1, events.LeadData{LeadID: id}))
	writeJSON(w, map[string]any{"success": true})
}

func (h LeadsHandler) Filter(w http.ResponseWriter, r *http.Request) {
	var f store.LeadFilter
	if err := decodeBody(r, &f); err != nil {
		writeValidationError(w, r, err)
		return
	}
	leads, err := h.Store.FilterLeads(r.Context(), f)
	if err != nil {
		writeStoreError(w, r, "leads", err)
		return
	}
	writeJSON(w, map[string]any{"success": true, "leads": leads, "count": len(leads)})
}

// Activities expects /api/activities/{lead_id}. An unknown lead has an
// empty log, not a 404.
func (h LeadsHandler) Activities(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r, "/api/activities/")
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	acts, err := h.Store.ListActivities(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, "activities", err)
		return
	}
	writeJSON(w, map[string]any{"success": true, "activities": acts})
}
