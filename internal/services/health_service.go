package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"cbpdash/internal/infrastructure"
	"cbpdash/pkg/contracts"
)

// Readiness states reported by ReadinessCheck
const (
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
)

// HealthService provides health check functionality
type HealthService struct {
	version    string
	sourcePath string
	startTime  time.Time
	logger     *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                      `json:"status"`
	Timestamp time.Time                   `json:"timestamp"`
	Version   string                      `json:"version"`
	Runtime   *infrastructure.SystemStats `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth    `json:"services,omitempty"`
}

// ServiceHealth represents individual dependency health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a health service watching the source file.
func NewHealthService(version, sourcePath string, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:    version,
		sourcePath: sourcePath,
		startTime:  time.Now(),
		logger:     logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck reports liveness with runtime stats.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	stats := infrastructure.ReadSystemStats(hs.startTime)
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime:   &stats,
	}
}

// ReadinessCheck reports whether the data source can be opened.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]ServiceHealth{
			"data_source": hs.checkDataSource(),
		},
	}

	for name, svc := range status.Services {
		if svc.Status != StatusReady {
			status.Status = StatusNotReady
			hs.logger.WarnContext(ctx, "readiness check failed",
				slog.String("service", name),
				slog.String("message", svc.Message))
		}
	}
	return status
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	return map[string]interface{}{
		"version":     hs.version,
		"build_time":  contracts.BuildTime,
		"git_commit":  contracts.GitCommit,
		"api_version": contracts.APIVersion,
		"go_version":  runtime.Version(),
		"os":          runtime.GOOS,
		"arch":        runtime.GOARCH,
		"uptime":      time.Since(hs.startTime).Seconds(),
		"start_time":  hs.startTime.Format(time.RFC3339),
	}
}

func (hs *HealthService) checkDataSource() ServiceHealth {
	f, err := os.Open(hs.sourcePath)
	if err != nil {
		return ServiceHealth{
			Status:  StatusNotReady,
			Message: fmt.Sprintf("data source not readable: %v", err),
		}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return ServiceHealth{Status: StatusNotReady, Message: err.Error()}
	}
	if info.IsDir() {
		return ServiceHealth{
			Status:  StatusNotReady,
			Message: fmt.Sprintf("data source %s is a directory", hs.sourcePath),
		}
	}
	return ServiceHealth{
		Status:  StatusReady,
		Message: fmt.Sprintf("%s (%d bytes)", hs.sourcePath, info.Size()),
	}
}
