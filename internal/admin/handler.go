// Package admin exposes the pending-approval queue and Prometheus
// metrics over HTTP, for an operator to resolve commit-tier escalations
// and monitor decision throughput without touching the agent's stdio
// stream.
package admin

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/kennwilliamson/cherub/internal/enforce"
)

// Handler serves the admin surface: GET /approvals, POST
// /approvals/{id}/approve, POST /approvals/{id}/deny, and /metrics.
type Handler struct {
	facade *enforce.Facade
	mux    *http.ServeMux
}

// NewHandler builds a Handler backed by facade, serving /metrics via
// metricsHandler (typically promhttp.HandlerFor(reg, ...)).
func NewHandler(facade *enforce.Facade, metricsHandler http.Handler) *Handler {
	h := &Handler{facade: facade, mux: http.NewServeMux()}
	h.mux.HandleFunc("GET /approvals", h.handleList)
	h.mux.HandleFunc("POST /approvals/{id}/approve", h.handleApprove)
	h.mux.HandleFunc("POST /approvals/{id}/deny", h.handleDeny)
	if metricsHandler != nil {
		h.mux.Handle("GET /metrics", metricsHandler)
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

type approvalResponse struct {
	ID        string `json:"id"`
	Tool      string `json:"tool"`
	Action    string `json:"action"`
	Argument  string `json:"argument"`
	CreatedAt string `json:"created_at"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	pending := h.facade.List()
	out := make([]approvalResponse, len(pending))
	for i, p := range pending {
		out[i] = approvalResponse{
			ID:        p.ID,
			Tool:      p.Tool,
			Action:    p.Action,
			Argument:  p.Argument,
			CreatedAt: p.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.facade.Approve, "approved")
}

func (h *Handler) handleDeny(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.facade.Deny, "denied")
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request, action func(string) error, status string) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "approval id is required")
		return
	}
	if err := action(id); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": status, "id": id})
}

func respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, code int, msg string) {
	respondJSON(w, code, map[string]string{"error": msg})
}
