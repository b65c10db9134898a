package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/spirelore/spirebot/internal/search"
)

type Dependencies struct {
	Index       *search.Index
	Version     string
	Environment string
	Logger      *slog.Logger
}

type router struct {
	deps Dependencies
}

// NewRouter serves the operational surface: liveness, readiness, and a small
// info document describing the loaded content.
func NewRouter(deps Dependencies) http.Handler {
	rt := &router{deps: deps}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.handleHealth)
	mux.HandleFunc("/readyz", rt.handleReady)
	mux.HandleFunc("/api/v1/info", rt.handleInfo)
	return mux
}

func (r *router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (r *router) handleReady(w http.ResponseWriter, req *http.Request) {
	if r.deps.Index == nil || r.deps.Index.Len() == 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not-ready", "error": "content index empty"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (r *router) handleInfo(w http.ResponseWriter, req *http.Request) {
	var records int
	var kinds map[string]int
	if r.deps.Index != nil {
		records = r.deps.Index.Len()
		kinds = r.deps.Index.Kinds()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        "spirebot",
		"version":     r.deps.Version,
		"environment": r.deps.Environment,
		"records":     records,
		"kinds":       kinds,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
