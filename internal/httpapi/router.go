package httpapi

import (
	"net/http"

	"leadgen-engine/internal/events"
)

// NewMux returns the raw mux so main() can still attach /shutdown (needs srv+token).
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	var pub events.Publisher = events.Nop{}
	if d.Hub != nil {
		pub = d.Hub
	}

	// Scrape + jobs
	sch := ScrapeHandler{Pool: d.Pool}
	mux.HandleFunc("/api/scrape", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sch.Run,
	}))
	jh := JobsHandler{Store: d.Store}
	mux.HandleFunc("/api/jobs", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: jh.List,
	}))
	mux.HandleFunc("/api/jobs/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: jh.GetByPath, // expects /api/jobs/{id}
	}))

	// Leads
	lh := LeadsHandler{Store: d.Store, Hub: pub}
	mux.HandleFunc("/api/leads", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: lh.List,
	}))
	mux.HandleFunc("/api/leads/filter", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: lh.Filter,
	}))
	mux.HandleFunc("/api/leads/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:    lh.Get,
		http.MethodPut:    lh.Update,
		http.MethodDelete: lh.Delete,
	}))
	mux.HandleFunc("/api/activities/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: lh.Activities,
	}))

	// Reports
	rh := ReportsHandler{Store: d.Store}
	mux.HandleFunc("/api/stats", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.Stats,
	}))
	mux.HandleFunc("/api/export", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.Export,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
		Hub:         pub,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Secrets (use cfgVal, NOT a snapshot cfg)
	sh := SecretsHandler{CfgVal: d.CfgVal}
	mux.HandleFunc("/api/secrets/hunter", methodMux(map[string]http.HandlerFunc{
		http.MethodPost:   sh.SetHunterKey,
		http.MethodDelete: sh.DeleteHunterKey,
	}))

	// SSE events
	if d.Hub != nil {
		eh := EventsHandler{Hub: d.Hub}
		mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
			http.MethodGet: eh.ServeSSE,
		}))
	}

	hh := HealthHandler{Store: d.Store}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))
	dbh := DBHandler{Store: d.Store}
	mux.HandleFunc("/db/checkpoint", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: dbh.Checkpoint,
	}))

	return mux
}

// Handler wraps the mux with the standard middleware stack.
func Handler(d Deps, mux http.Handler) http.Handler {
	return Chain(mux, RequestID, Logger(d.Log), AccessLog, Recover, Cors)
}
