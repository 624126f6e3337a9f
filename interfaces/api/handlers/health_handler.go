package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/cjnghn/drone-topview-analysis/domain/models"
	"github.com/cjnghn/drone-topview-analysis/domain/repositories"
	"github.com/cjnghn/drone-topview-analysis/infrastructure/redis"
	"github.com/cjnghn/drone-topview-analysis/pkg/scheduler"
)

// staleJobAfter marks running jobs that have not finished within this window
const staleJobAfter = 30 * time.Minute

// Runner is anything with a running state, such as the ingest worker
type Runner interface {
	IsRunning() bool
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db          *gorm.DB
	redisClient *redis.RedisClient
	jobRepo     repositories.IngestJobRepository
	worker      Runner
	scheduler   scheduler.EventScheduler
}

// NewHealthHandler creates a new health handler; redisClient, worker and sched may be nil
func NewHealthHandler(
	db *gorm.DB,
	redisClient *redis.RedisClient,
	jobRepo repositories.IngestJobRepository,
	worker Runner,
	sched scheduler.EventScheduler,
) *HealthHandler {
	return &HealthHandler{
		db:          db,
		redisClient: redisClient,
		jobRepo:     jobRepo,
		worker:      worker,
		scheduler:   sched,
	}
}

// ComponentHealth represents health status of a component
type ComponentHealth struct {
	Status  string `json:"status"` // "ok", "error", "unavailable"
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// DetailedHealthResponse represents detailed health check response
type DetailedHealthResponse struct {
	Status     string                     `json:"status"` // "healthy", "degraded", "unhealthy"
	Timestamp  time.Time                  `json:"timestamp"`
	Components map[string]ComponentHealth `json:"components"`
	Metrics    *HealthMetrics             `json:"metrics,omitempty"`
	Scheduled  []scheduler.JobInfo        `json:"scheduled,omitempty"`
}

// HealthMetrics counts ingestion jobs by state
type HealthMetrics struct {
	PendingJobs   int64 `json:"pending_jobs"`
	RunningJobs   int64 `json:"running_jobs"`
	StaleJobs     int64 `json:"stale_jobs"`
	FailedJobs    int64 `json:"failed_jobs"`
	CompletedJobs int64 `json:"completed_jobs"`
}

// DetailedHealth godoc
// @Summary Get detailed system health
// @Description Returns detailed health status of all system components
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} DetailedHealthResponse
// @Router /health/detailed [get]
func (h *HealthHandler) DetailedHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 10*time.Second)
	defer cancel()

	response := DetailedHealthResponse{
		Timestamp:  time.Now(),
		Components: make(map[string]ComponentHealth),
	}

	allHealthy := true
	hasCriticalFailure := false

	dbHealth := h.checkDatabase(ctx)
	response.Components["database"] = dbHealth
	if dbHealth.Status != "ok" {
		hasCriticalFailure = true
	}

	// Redis is optional: without it title locks are process-local
	redisHealth := h.checkRedis(ctx)
	response.Components["redis"] = redisHealth
	if redisHealth.Status == "error" {
		allHealthy = false
	}

	workerHealth := runnerHealth(h.worker, "Ingest worker")
	response.Components["ingest_worker"] = workerHealth
	if workerHealth.Status == "error" {
		allHealthy = false
	}

	if h.scheduler != nil {
		response.Components["scheduler"] = runnerHealth(h.scheduler, "Scheduler")
		response.Scheduled = h.scheduler.ListJobs()
	}

	if dbHealth.Status == "ok" {
		metrics := h.getMetrics(ctx)
		response.Metrics = metrics

		if metrics != nil && metrics.StaleJobs > 0 {
			allHealthy = false
		}
	}

	if hasCriticalFailure {
		response.Status = "unhealthy"
	} else if !allHealthy {
		response.Status = "degraded"
	} else {
		response.Status = "healthy"
	}

	statusCode := fiber.StatusOK
	if response.Status == "unhealthy" {
		statusCode = fiber.StatusServiceUnavailable
	}

	return c.Status(statusCode).JSON(response)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) ComponentHealth {
	start := time.Now()

	if h.db == nil {
		return ComponentHealth{
			Status:  "error",
			Message: "Database not configured",
		}
	}

	sqlDB, err := h.db.DB()
	if err != nil {
		return ComponentHealth{
			Status:  "error",
			Message: "Failed to get database connection: " + err.Error(),
		}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return ComponentHealth{
			Status:  "error",
			Message: "Database ping failed: " + err.Error(),
		}
	}

	return ComponentHealth{
		Status:  "ok",
		Message: "Connected",
		Latency: time.Since(start).String(),
	}
}

func (h *HealthHandler) checkRedis(ctx context.Context) ComponentHealth {
	start := time.Now()

	if h.redisClient == nil {
		return ComponentHealth{
			Status:  "unavailable",
			Message: "Redis not configured",
		}
	}

	if err := h.redisClient.Ping(ctx); err != nil {
		return ComponentHealth{
			Status:  "error",
			Message: "Redis ping failed: " + err.Error(),
		}
	}

	return ComponentHealth{
		Status:  "ok",
		Message: "Connected",
		Latency: time.Since(start).String(),
	}
}

func runnerHealth(r Runner, name string) ComponentHealth {
	if r == nil {
		return ComponentHealth{Status: "unavailable", Message: name + " not configured"}
	}
	if !r.IsRunning() {
		return ComponentHealth{Status: "error", Message: name + " is stopped"}
	}
	return ComponentHealth{Status: "ok", Message: "Running"}
}

func (h *HealthHandler) getMetrics(ctx context.Context) *HealthMetrics {
	if h.jobRepo == nil {
		return nil
	}

	counts, err := h.jobRepo.CountByStatus(ctx)
	if err != nil {
		return nil
	}

	metrics := &HealthMetrics{
		PendingJobs:   counts[models.IngestJobStatusPending],
		RunningJobs:   counts[models.IngestJobStatusRunning],
		FailedJobs:    counts[models.IngestJobStatusFailed],
		CompletedJobs: counts[models.IngestJobStatusCompleted],
	}

	if metrics.RunningJobs > 0 {
		if stale, err := h.jobRepo.CountStaleRunning(ctx, time.Now().Add(-staleJobAfter)); err == nil {
			metrics.StaleJobs = stale
		}
	}

	return metrics
}
