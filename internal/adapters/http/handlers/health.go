package handlers

import (
	"net/http"
	"time"
)

var startedAt = time.Now()

const agentVersion = "0.1.0"

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, HealthResponse{
		Status:        "ok",
		Version:       agentVersion,
		UptimeSeconds: int64(time.Since(startedAt).Seconds()),
	}, http.StatusOK)
}
