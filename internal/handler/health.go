package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the banner at / and the health check at /health.
type HealthHandler struct {
	name     string
	version  string
	database string
	pinger   Pinger
	logger   *slog.Logger
	now      func() time.Time
}

func NewHealthHandler(name, version, database string, pinger Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		name:     name,
		version:  version,
		database: database,
		pinger:   pinger,
		logger:   logger,
		now:      time.Now,
	}
}

type bannerResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Version   string `json:"version"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}

type healthResponse struct {
	Success   bool   `json:"success"`
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
	Error     string `json:"error,omitempty"`
}

// HandleRoot serves GET /
func (h *HealthHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, bannerResponse{
		Success:   true,
		Message:   h.name,
		Version:   h.version,
		Database:  h.database,
		Timestamp: h.timestamp(),
	})
}

// HandleHealth serves GET /health. It pings the database with a short
// timeout and answers 503 when the ping fails.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.pinger.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{
			Success:   false,
			Status:    "unhealthy",
			Database:  h.database,
			Timestamp: h.timestamp(),
			Error:     "database unreachable",
		})
		return
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Success:   true,
		Status:    "healthy",
		Database:  h.database,
		Timestamp: h.timestamp(),
	})
}

// HandleNotFound answers unknown routes with a JSON envelope instead of
// the router's plain-text 404.
func HandleNotFound(w http.ResponseWriter, r *http.Request) {
	writeFail(w, http.StatusNotFound, "Route not found")
}

// HandleMethodNotAllowed is the 405 counterpart of HandleNotFound.
func HandleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeFail(w, http.StatusMethodNotAllowed, "Method not allowed")
}

func (h *HealthHandler) timestamp() string {
	return h.now().UTC().Format(time.RFC3339Nano)
}
