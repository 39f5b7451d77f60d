package health

import (
	"context"
	"sync"
	"time"

	"github.com/Ayash-Bera/vbm-explorer/internal/database"
	"github.com/Ayash-Bera/vbm-explorer/internal/metrics"
	"github.com/Ayash-Bera/vbm-explorer/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Probe checks one dependency. A failing required probe makes the whole
// service unhealthy; an optional one only degrades it.
type Probe struct {
	Name     string
	Required bool
	Check    func(ctx context.Context) error
}

// ServiceHealth represents the health status of a service
type ServiceHealth struct {
	Name         string `json:"name"`
	Status       string `json:"status"`
	Required     bool   `json:"required"`
	ResponseTime int    `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
	LastChecked  string `json:"last_checked"`
}

// OverallHealth represents the overall system health
type OverallHealth struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
	Uptime   string          `json:"uptime"`
}

// HealthChecker runs probes concurrently and keeps the latest result.
type HealthChecker struct {
	probes     []Probe
	healthRepo models.SystemHealthRepository
	cache      *database.Cache
	logger     *logrus.Logger
	timeout    time.Duration
	started    time.Time

	mu   sync.RWMutex
	last *OverallHealth
}

// NewHealthChecker accepts a nil repository or cache when storage is not configured.
func NewHealthChecker(healthRepo models.SystemHealthRepository, cache *database.Cache, logger *logrus.Logger, probes ...Probe) *HealthChecker {
	return &HealthChecker{
		probes:     probes,
		healthRepo: healthRepo,
		cache:      cache,
		logger:     logger,
		timeout:    5 * time.Second,
		started:    time.Now(),
	}
}

// CheckAll runs every probe in parallel.
func (h *HealthChecker) CheckAll(ctx context.Context) OverallHealth {
	services := make([]ServiceHealth, len(h.probes))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range h.probes {
		i, p := i, p
		g.Go(func() error {
			services[i] = h.run(gctx, p)
			return nil
		})
	}
	_ = g.Wait()

	overallStatus := StatusHealthy
	for _, service := range services {
		if service.Status != StatusUnhealthy {
			continue
		}
		if service.Required {
			overallStatus = StatusUnhealthy
			break
		}
		overallStatus = StatusDegraded
	}

	return OverallHealth{
		Status:   overallStatus,
		Services: services,
		Uptime:   time.Since(h.started).Round(time.Second).String(),
	}
}

func (h *HealthChecker) run(ctx context.Context, p Probe) ServiceHealth {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	err := p.Check(ctx)
	responseTime := int(time.Since(start).Milliseconds())

	status := StatusHealthy
	errorMsg := ""
	up := 1.0
	if err != nil {
		status = StatusUnhealthy
		errorMsg = err.Error()
		up = 0
		h.logger.WithError(err).WithField("service", p.Name).Warn("Health check failed")
	}
	metrics.ServiceUp.WithLabelValues(p.Name).Set(up)

	if h.healthRepo != nil {
		if err := h.healthRepo.UpdateServiceHealth(p.Name, status, responseTime, errorMsg); err != nil {
			h.logger.WithError(err).WithField("service", p.Name).Debug("Failed to record health check")
		}
	}

	return ServiceHealth{
		Name:         p.Name,
		Status:       status,
		Required:     p.Required,
		ResponseTime: responseTime,
		Error:        errorMsg,
		LastChecked:  time.Now().Format(time.RFC3339),
	}
}

// Refresh checks everything and stores the result for Latest. The cron
// scheduler calls it.
func (h *HealthChecker) Refresh(ctx context.Context) OverallHealth {
	result := h.CheckAll(ctx)

	h.mu.Lock()
	h.last = &result
	h.mu.Unlock()

	if h.cache != nil {
		cacheCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := h.cache.CacheSystemHealth(cacheCtx, result, 5*time.Minute); err != nil {
			h.logger.WithError(err).Warn("Failed to cache health status")
		}
		cancel()
	}

	h.logger.WithField("status", result.Status).Debug("Periodic health check completed")
	return result
}

// Latest returns the last refreshed result, then a cached one from another
// instance, and only runs the probes when neither exists.
func (h *HealthChecker) Latest(ctx context.Context) OverallHealth {
	h.mu.RLock()
	last := h.last
	h.mu.RUnlock()
	if last != nil {
		return *last
	}

	if h.cache != nil {
		var cached OverallHealth
		if err := h.cache.GetCachedSystemHealth(ctx, &cached); err == nil {
			return cached
		}
	}
	return h.Refresh(ctx)
}
