package worker

import (
	"context"
	"sync"
	"time"

	"github.com/cjnghn/drone-topview-analysis/domain/models"
	"github.com/cjnghn/drone-topview-analysis/domain/services"
	"github.com/cjnghn/drone-topview-analysis/infrastructure/websocket"
	"github.com/cjnghn/drone-topview-analysis/pkg/logger"
	"github.com/cjnghn/drone-topview-analysis/pkg/metrics"
)

// Signal wakes the ingest worker; it is shared by the job service and the worker
type Signal chan struct{}

func NewSignal() Signal {
	return make(Signal, 10)
}

// TriggerIngest never blocks; a full channel already guarantees a pending wake-up
func (s Signal) TriggerIngest() {
	select {
	case s <- struct{}{}:
	default:
	}
}

// Broadcaster delivers job events to websocket rooms
type Broadcaster interface {
	BroadcastToRoom(roomID, messageType string, data map[string]interface{})
}

// IngestWorker executes pending ingest jobs in the background
type IngestWorker struct {
	jobService  services.IngestJobService
	signal      Signal
	broadcaster Broadcaster
	metrics     *metrics.Metrics

	// Worker control
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
	mu        sync.Mutex

	// Configuration
	pollInterval  time.Duration
	maxConcurrent int
}

func NewIngestWorker(
	jobService services.IngestJobService,
	signal Signal,
	broadcaster Broadcaster,
	m *metrics.Metrics,
	maxConcurrent int,
) *IngestWorker {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &IngestWorker{
		jobService:    jobService,
		signal:        signal,
		broadcaster:   broadcaster,
		metrics:       m,
		pollInterval:  time.Minute,
		maxConcurrent: maxConcurrent,
	}
}

func (w *IngestWorker) Start() {
	w.mu.Lock()
	if w.isRunning {
		w.mu.Unlock()
		return
	}
	w.isRunning = true
	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.mu.Unlock()

	w.wg.Add(1)
	go w.run()

	logger.Worker("worker_started", "Ingest worker started", map[string]interface{}{
		"max_concurrent": w.maxConcurrent,
	})
}

// Stop cancels running jobs and waits for them to record their outcome
func (w *IngestWorker) Stop() {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return
	}
	w.isRunning = false
	w.mu.Unlock()

	w.cancel()
	w.wg.Wait()
	logger.Worker("worker_stopped", "Ingest worker stopped", nil)
}

func (w *IngestWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.isRunning
}

func (w *IngestWorker) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	// Jobs queued while the process was down
	w.processPendingJobs()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.signal:
			w.processPendingJobs()
		case <-ticker.C:
			w.processPendingJobs()
		}
	}
}

// processPendingJobs drains the queue in batches of maxConcurrent
func (w *IngestWorker) processPendingJobs() {
	for w.ctx.Err() == nil {
		jobs, err := w.jobService.ClaimPending(w.ctx, w.maxConcurrent)
		if err != nil {
			logger.WorkerError("claim_jobs_failed", "Error claiming pending jobs", err, nil)
		}
		if len(jobs) == 0 {
			return
		}

		logger.Worker("processing_jobs", "Processing ingest jobs", map[string]interface{}{
			"job_count": len(jobs),
		})

		var jobWg sync.WaitGroup
		sem := make(chan struct{}, w.maxConcurrent)
		for _, job := range jobs {
			sem <- struct{}{}
			jobWg.Add(1)

			go func(j models.IngestJob) {
				defer jobWg.Done()
				defer func() { <-sem }()

				w.processJob(j)
			}(job)
		}
		jobWg.Wait()
	}
}

func (w *IngestWorker) processJob(job models.IngestJob) {
	room := job.ID.String()

	w.metrics.JobStarted()
	defer w.metrics.JobFinished()

	logger.Worker("job_started", "Ingest job started", map[string]interface{}{
		"job_id": room,
		"title":  job.Title,
	})
	w.broadcast(room, websocket.EventIngestStarted, map[string]interface{}{
		"jobId":  room,
		"title":  job.Title,
		"status": models.IngestJobStatusRunning,
	})

	result, err := w.jobService.Execute(w.ctx, &job, func(p services.IngestProgress) {
		w.broadcast(room, websocket.EventIngestProgress, map[string]interface{}{
			"jobId":     room,
			"stage":     p.Stage,
			"total":     p.Total,
			"processed": p.Processed,
			"skipped":   p.Skipped,
		})
	})
	if err != nil {
		logger.WorkerError("job_failed", "Ingest job failed", err, map[string]interface{}{
			"job_id": room,
		})
		w.broadcast(room, websocket.EventIngestFailed, map[string]interface{}{
			"jobId":  room,
			"status": models.IngestJobStatusFailed,
			"error":  err.Error(),
		})
		return
	}

	logger.Worker("job_completed", "Ingest job completed", map[string]interface{}{
		"job_id":   room,
		"video_id": result.VideoID.String(),
		"skipped":  result.Skipped(),
	})
	w.broadcast(room, websocket.EventIngestCompleted, map[string]interface{}{
		"jobId":    room,
		"status":   models.IngestJobStatusCompleted,
		"videoId":  result.VideoID.String(),
		"created":  result.VideoCreated,
		"skipped":  result.Skipped(),
		"warnings": len(result.Warnings),
	})
}

func (w *IngestWorker) broadcast(room, messageType string, data map[string]interface{}) {
	if w.broadcaster == nil {
		return
	}
	w.broadcaster.BroadcastToRoom(room, messageType, data)
}
