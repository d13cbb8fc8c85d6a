package webclient

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	httputil "msktravels/pkg/http"
	"msktravels/pkg/logger"
)

type HealthResponse struct {
	Status    string `json:"status"`
	TravelAPI string `json:"travel_api,omitempty"`
}

// Probe checks that the travel API answers.
type Probe func(ctx context.Context) error

type HealthHandler struct {
	probe Probe
	log   *logger.Logger
}

func NewHealthHandler(probe Probe, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		probe: probe,
		log:   log,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	httputil.WriteJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
	})
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.probe(ctx); err != nil {
		h.log.Error("Travel API health check failed",
			"error", err,
			"path", r.URL.Path,
		)
		httputil.WriteJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:    "unavailable",
			TravelAPI: "error",
		})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:    "ready",
		TravelAPI: "ok",
	})
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
