package di

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"gorm.io/gorm"

	"github.com/cjnghn/drone-topview-analysis/application/serviceimpl"
	"github.com/cjnghn/drone-topview-analysis/domain/repositories"
	"github.com/cjnghn/drone-topview-analysis/domain/services"
	"github.com/cjnghn/drone-topview-analysis/infrastructure/database"
	"github.com/cjnghn/drone-topview-analysis/infrastructure/lock"
	"github.com/cjnghn/drone-topview-analysis/infrastructure/redis"
	"github.com/cjnghn/drone-topview-analysis/infrastructure/storage"
	"github.com/cjnghn/drone-topview-analysis/infrastructure/websocket"
	"github.com/cjnghn/drone-topview-analysis/infrastructure/worker"
	"github.com/cjnghn/drone-topview-analysis/interfaces/api/handlers"
	"github.com/cjnghn/drone-topview-analysis/pkg/config"
	"github.com/cjnghn/drone-topview-analysis/pkg/logger"
	"github.com/cjnghn/drone-topview-analysis/pkg/metrics"
	"github.com/cjnghn/drone-topview-analysis/pkg/scheduler"
)

type Container struct {
	// Configuration
	Config *config.Config

	// Infrastructure
	DB             *gorm.DB
	RedisClient    *redis.RedisClient
	FS             afero.Fs
	Storage        services.AssetStorage
	TitleLocker    services.TitleLocker
	Metrics        *metrics.Metrics
	EventScheduler scheduler.EventScheduler

	// Repositories
	VideoRepository        repositories.VideoRepository
	TrackRepository        repositories.TrackRepository
	FrameRepository        repositories.FrameRepository
	DetectionRepository    repositories.DetectionRepository
	IntersectionRepository repositories.IntersectionRepository
	IngestRepository       repositories.IngestRepository
	IngestJobRepository    repositories.IngestJobRepository

	// Services
	VideoService        services.VideoService
	TrackService        services.TrackService
	FrameService        services.FrameService
	IntersectionService services.IntersectionService
	IngestService       services.IngestService
	IngestJobService    services.IngestJobService

	// Workers
	IngestSignal worker.Signal
	IngestWorker *worker.IngestWorker
	InboxScanner *worker.InboxScanner
}

func NewContainer() *Container {
	return &Container{}
}

// Initialize wires everything the HTTP server needs, including background workers
func (c *Container) Initialize() error {
	if err := c.InitializeCore(); err != nil {
		return err
	}

	if err := c.initScheduler(); err != nil {
		return err
	}

	return c.initWorkers()
}

// InitializeCore wires config, storage, repositories and services without starting anything in the background
func (c *Container) InitializeCore() error {
	if err := c.initConfig(); err != nil {
		return err
	}

	if err := c.initInfrastructure(); err != nil {
		return err
	}

	if err := c.initRepositories(); err != nil {
		return err
	}

	return c.initServices()
}

func (c *Container) initConfig() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	c.Config = cfg

	if err := logger.Init(cfg.App.LogDir, true); err != nil {
		fmt.Printf("Warning: Failed to initialize logger: %v\n", err)
	}
	logger.Startup("config_loaded", "Configuration loaded", map[string]interface{}{
		"env":       cfg.App.Env,
		"db_driver": cfg.Database.Driver,
		"log_dir":   cfg.App.LogDir,
	})
	return nil
}

func (c *Container) initInfrastructure() error {
	dbConfig := database.DatabaseConfig{
		Driver:     c.Config.Database.Driver,
		Host:       c.Config.Database.Host,
		Port:       c.Config.Database.Port,
		User:       c.Config.Database.User,
		Password:   c.Config.Database.Password,
		DBName:     c.Config.Database.DBName,
		SSLMode:    c.Config.Database.SSLMode,
		SQLitePath: c.Config.Database.SQLitePath,
	}

	db, err := database.NewDatabase(dbConfig)
	if err != nil {
		return err
	}
	c.DB = db
	logger.Startup("db_connected", "Database connected", map[string]interface{}{"driver": dbConfig.Driver})

	if err := database.Migrate(db); err != nil {
		return err
	}
	logger.Startup("db_migrated", "Database migrated", nil)

	// Redis is optional: title locks fall back to this process when it is unreachable
	redisConfig := redis.RedisConfig{
		Host:     c.Config.Redis.Host,
		Port:     c.Config.Redis.Port,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	}
	redisClient := redis.NewRedisClient(redisConfig)
	if err := redisClient.Ping(context.Background()); err != nil {
		logger.StartupWarn("redis_connection_failed", "Redis connection failed, using in-process title locks", map[string]interface{}{"error": err.Error()})
		_ = redisClient.Close()
		c.TitleLocker = lock.NewLocalTitleLocker()
	} else {
		c.RedisClient = redisClient
		c.TitleLocker = lock.NewRedisTitleLocker(redisClient.Client())
		logger.Startup("redis_connected", "Redis connected", nil)
	}

	c.FS = afero.NewOsFs()
	assets, err := storage.NewLocalStorage(c.FS, c.FS, c.Config.Storage.Root)
	if err != nil {
		return err
	}
	c.Storage = assets
	logger.Startup("storage_initialized", "Asset storage initialized", map[string]interface{}{"root": c.Config.Storage.Root})

	m, err := metrics.NewDefaultMetrics()
	if err != nil {
		return err
	}
	c.Metrics = m

	return nil
}

func (c *Container) initRepositories() error {
	c.VideoRepository = database.NewVideoRepository(c.DB)
	c.TrackRepository = database.NewTrackRepository(c.DB)
	c.FrameRepository = database.NewFrameRepository(c.DB)
	c.DetectionRepository = database.NewDetectionRepository(c.DB)
	c.IntersectionRepository = database.NewIntersectionRepository(c.DB)
	c.IngestRepository = database.NewIngestRepository(c.DB)
	c.IngestJobRepository = database.NewIngestJobRepository(c.DB)
	logger.Startup("repositories_initialized", "Repositories initialized", nil)
	return nil
}

func (c *Container) initServices() error {
	c.VideoService = serviceimpl.NewVideoService(c.VideoRepository, c.TrackRepository, c.Storage)
	c.TrackService = serviceimpl.NewTrackService(c.TrackRepository)
	c.FrameService = serviceimpl.NewFrameService(c.FrameRepository, c.DetectionRepository)
	c.IntersectionService = serviceimpl.NewIntersectionService(c.IntersectionRepository)

	c.IngestService = serviceimpl.NewIngestService(
		c.FS,
		c.IngestRepository,
		c.Storage,
		c.TitleLocker,
		c.Config.Ingest.LockTTL,
		c.Metrics,
	)

	// The worker consumes this signal; without a worker it just fills up and is ignored
	c.IngestSignal = worker.NewSignal()
	c.IngestJobService = serviceimpl.NewIngestJobService(c.FS, c.IngestJobRepository, c.IngestService, c.IngestSignal)

	logger.Startup("services_initialized", "Services initialized", nil)
	return nil
}

func (c *Container) initScheduler() error {
	c.EventScheduler = scheduler.NewEventScheduler()

	if dir := c.Config.Ingest.InboxDir; dir != "" {
		c.InboxScanner = worker.NewInboxScanner(c.FS, dir, c.IngestJobService)
		if err := c.InboxScanner.Register(c.EventScheduler, c.Config.Ingest.InboxCron); err != nil {
			logger.StartupWarn("inbox_schedule_failed", "Failed to schedule inbox scan", map[string]interface{}{"error": err.Error()})
		} else {
			logger.Startup("inbox_scheduled", "Inbox scan scheduled", map[string]interface{}{
				"dir":  dir,
				"cron": c.Config.Ingest.InboxCron,
			})
		}
	}

	c.EventScheduler.Start()
	logger.Startup("scheduler_started", "Event scheduler started", nil)
	return nil
}

func (c *Container) initWorkers() error {
	c.IngestWorker = worker.NewIngestWorker(
		c.IngestJobService,
		c.IngestSignal,
		websocket.Manager,
		c.Metrics,
		c.Config.Ingest.WorkerConcurrency,
	)
	c.IngestWorker.Start()
	return nil
}

func (c *Container) Cleanup() error {
	logger.Startup("cleanup_started", "Starting cleanup...", nil)

	if c.IngestWorker != nil && c.IngestWorker.IsRunning() {
		c.IngestWorker.Stop()
	}

	if c.EventScheduler != nil {
		if c.EventScheduler.IsRunning() {
			c.EventScheduler.Stop()
			logger.Startup("scheduler_stopped", "Event scheduler stopped", nil)
		} else {
			logger.Startup("scheduler_already_stopped", "Event scheduler was already stopped", nil)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			logger.StartupWarn("redis_close_failed", "Failed to close Redis connection", map[string]interface{}{"error": err.Error()})
		} else {
			logger.Startup("redis_closed", "Redis connection closed", nil)
		}
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				logger.StartupWarn("db_close_failed", "Failed to close database connection", map[string]interface{}{"error": err.Error()})
			} else {
				logger.Startup("db_closed", "Database connection closed", nil)
			}
		}
	}

	logger.Startup("cleanup_completed", "Cleanup completed", nil)
	logger.Default().Close()
	return nil
}

func (c *Container) GetConfig() *config.Config {
	return c.Config
}

func (c *Container) GetHandlerServices() *handlers.Services {
	return &handlers.Services{
		VideoService:        c.VideoService,
		TrackService:        c.TrackService,
		FrameService:        c.FrameService,
		IntersectionService: c.IntersectionService,
		IngestJobService:    c.IngestJobService,
	}
}

func (c *Container) GetHandlerInfrastructure() *handlers.Infrastructure {
	infra := &handlers.Infrastructure{
		DB:            c.DB,
		Redis:         c.RedisClient,
		IngestJobRepo: c.IngestJobRepository,
		Scheduler:     c.EventScheduler,
	}
	// Left as a nil interface when the worker was not started
	if c.IngestWorker != nil {
		infra.Worker = c.IngestWorker
	}
	return infra
}
