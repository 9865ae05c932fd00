package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"sentimentreviews/pkg/logger"
	"sentimentreviews/stats-worker-service/internal/app/stats-worker/repository"
	"sentimentreviews/stats-worker-service/internal/app/stats-worker/service"
)

// DependencyCheck - проверка доступности внешней зависимости
type DependencyCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

type HealthCheckHandler struct {
	checks       []DependencyCheck
	statsSvc     service.StatsServiceInterface
	maxStaleness time.Duration
}

func NewHealthCheckHandler(
	checks []DependencyCheck,
	statsSvc service.StatsServiceInterface,
	maxStaleness time.Duration,
) *HealthCheckHandler {
	return &HealthCheckHandler{
		checks:       checks,
		statsSvc:     statsSvc,
		maxStaleness: maxStaleness,
	}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp time.Time         `json:"timestamp"`
}

func (h *HealthCheckHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string, len(h.checks)+1)
	overallStatus := "healthy"

	for _, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			checks[check.Name] = "unhealthy: " + err.Error()
			overallStatus = "unhealthy"
		} else {
			checks[check.Name] = "healthy"
		}
	}

	// Устаревшая статистика не делает сервис нездоровым
	if err := h.checkStatsFreshness(ctx); err != nil {
		checks["stats_snapshot"] = "warning: " + err.Error()
	} else {
		checks["stats_snapshot"] = "healthy"
	}

	response := HealthResponse{
		Status:    overallStatus,
		Checks:    checks,
		Timestamp: time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")

	if overallStatus != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}

func (h *HealthCheckHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	for _, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			http.Error(w, check.Name+" not ready", http.StatusServiceUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

func (h *HealthCheckHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("alive"))
}

func (h *HealthCheckHandler) checkStatsFreshness(ctx context.Context) error {
	latest, err := h.statsSvc.LatestSnapshot(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrSnapshotNotFound) {
			return errors.New("no snapshot computed yet")
		}
		return err
	}

	age := time.Since(latest.GeneratedAt)
	if h.maxStaleness > 0 && age > h.maxStaleness {
		logger.Warn().Dur("age", age).Msg("Sentiment stats snapshot is outdated")
		return fmt.Errorf("snapshot is outdated (age: %s)", age.Round(time.Second))
	}

	return nil
}

func (h *HealthCheckHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.HealthCheck)
	mux.HandleFunc("/health/readiness", h.Readiness)
	mux.HandleFunc("/health/liveness", h.Liveness)
}
