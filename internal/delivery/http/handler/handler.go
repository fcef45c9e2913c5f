package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/user/pane-scraper/internal/delivery/http/response"
	"github.com/user/pane-scraper/internal/entity"
	"github.com/user/pane-scraper/internal/repository"
	"go.uber.org/zap"
)

// Resumer releases a run blocked at the operator gate.
type Resumer interface {
	Resume() bool
}

type Handler struct {
	statusRepo repository.StatusRepository
	resumer    Resumer
	logger     *zap.Logger
}

// NewHandler creates the control handlers. resumer may be nil when the run
// does not use the webhook gate.
func NewHandler(statusRepo repository.StatusRepository, resumer Resumer, logger *zap.Logger) *Handler {
	return &Handler{
		statusRepo: statusRepo,
		resumer:    resumer,
		logger:     logger,
	}
}

// HandleGetRunStatus returns the run named by ?run_id, or the latest run.
func (h *Handler) HandleGetRunStatus(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("run_id")

	status, err := h.lookup(r, runID)
	if err != nil {
		if errors.Is(err, repository.ErrStatusNotFound) {
			h.writeJSONError(w, "Run status not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get run status", zap.String("run_id", runID), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, response.FromRunStatus(status))
}

// HandleResume releases the webhook gate.
func (h *Handler) HandleResume(w http.ResponseWriter, r *http.Request) {
	if h.resumer == nil {
		h.writeJSONError(w, "Webhook gate is not enabled", http.StatusNotFound)
		return
	}
	if !h.resumer.Resume() {
		h.writeJSONError(w, "No run is waiting for the operator", http.StatusConflict)
		return
	}
	h.logger.Info("operator resume received", zap.String("remote_addr", r.RemoteAddr))
	h.writeJSON(w, http.StatusAccepted, response.ResumeResponse{
		Status:  "success",
		Message: "Run resumed",
	})
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) lookup(r *http.Request, runID string) (*entity.RunStatus, error) {
	if runID == "" {
		return h.statusRepo.Latest(r.Context())
	}
	return h.statusRepo.Get(r.Context(), runID)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
