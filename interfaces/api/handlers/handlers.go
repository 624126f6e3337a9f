package handlers

import (
	"gorm.io/gorm"

	"github.com/cjnghn/drone-topview-analysis/domain/repositories"
	"github.com/cjnghn/drone-topview-analysis/domain/services"
	"github.com/cjnghn/drone-topview-analysis/infrastructure/redis"
	"github.com/cjnghn/drone-topview-analysis/pkg/config"
	"github.com/cjnghn/drone-topview-analysis/pkg/scheduler"
)

// Services contains all the services needed for handlers
type Services struct {
	VideoService        services.VideoService
	TrackService        services.TrackService
	FrameService        services.FrameService
	IntersectionService services.IntersectionService
	IngestJobService    services.IngestJobService
}

// Infrastructure is what the health endpoints probe; any field may be nil except DB
type Infrastructure struct {
	DB            *gorm.DB
	Redis         *redis.RedisClient
	IngestJobRepo repositories.IngestJobRepository
	Worker        Runner
	Scheduler     scheduler.EventScheduler
}

// Handlers contains all HTTP handlers
type Handlers struct {
	Video        *VideoHandler
	Track        *TrackHandler
	Frame        *FrameHandler
	Intersection *IntersectionHandler
	IngestJob    *IngestJobHandler
	Health       *HealthHandler
	Log          *LogHandler
}

// NewHandlers creates a new instance of Handlers with all dependencies
func NewHandlers(services *Services, infra *Infrastructure, cfg *config.Config) *Handlers {
	return &Handlers{
		Video:        NewVideoHandler(services.VideoService),
		Track:        NewTrackHandler(services.TrackService),
		Frame:        NewFrameHandler(services.FrameService),
		Intersection: NewIntersectionHandler(services.IntersectionService),
		IngestJob:    NewIngestJobHandler(services.IngestJobService),
		Health:       NewHealthHandler(infra.DB, infra.Redis, infra.IngestJobRepo, infra.Worker, infra.Scheduler),
		Log:          NewLogHandler(cfg),
	}
}
