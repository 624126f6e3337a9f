package worker

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/cjnghn/drone-topview-analysis/domain/models"
	"github.com/cjnghn/drone-topview-analysis/domain/services"
	"github.com/cjnghn/drone-topview-analysis/pkg/logger"
	"github.com/cjnghn/drone-topview-analysis/pkg/scheduler"
)

const InboxJobID = "ingest-inbox"

// VideoExtensions are checked in order for a descriptor's sibling video
var VideoExtensions = []string{".mp4", ".mov", ".avi", ".mkv"}

// InboxScanner enqueues descriptor + video pairs dropped into a directory
type InboxScanner struct {
	fs         afero.Fs
	dir        string
	jobService services.IngestJobService
}

func NewInboxScanner(fs afero.Fs, dir string, jobService services.IngestJobService) *InboxScanner {
	return &InboxScanner{fs: fs, dir: dir, jobService: jobService}
}

// Register schedules Scan on cronExpr
func (s *InboxScanner) Register(sched scheduler.EventScheduler, cronExpr string) error {
	return sched.AddJob(InboxJobID, cronExpr, func() {
		if _, err := s.Scan(context.Background()); err != nil {
			logger.SchedulerError("inbox_scan_failed", "Inbox scan failed", err, map[string]interface{}{
				"dir": s.dir,
			})
		}
	})
}

// Scan enqueues every <name>.json with a sibling video whose descriptor has no live job yet.
// It returns the number of new jobs.
func (s *InboxScanner) Scan(ctx context.Context) (int, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return 0, err
	}

	enqueued := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}

		jsonPath := filepath.Join(s.dir, entry.Name())
		videoPath, ok := s.siblingVideo(jsonPath)
		if !ok {
			logger.SchedulerWarn("inbox_video_missing", "Descriptor has no sibling video yet", map[string]interface{}{
				"json_path": jsonPath,
			})
			continue
		}

		job, created, err := s.jobService.EnqueueUnique(ctx, jsonPath, videoPath, models.IngestSourceInbox)
		if err != nil {
			logger.SchedulerError("inbox_enqueue_failed", "Failed to enqueue inbox descriptor", err, map[string]interface{}{
				"json_path": jsonPath,
			})
			continue
		}
		if created {
			enqueued++
			logger.Scheduler("inbox_enqueued", "Inbox descriptor queued", map[string]interface{}{
				"job_id":    job.ID.String(),
				"json_path": jsonPath,
			})
		}
	}

	return enqueued, nil
}

func (s *InboxScanner) siblingVideo(jsonPath string) (string, bool) {
	base := strings.TrimSuffix(jsonPath, filepath.Ext(jsonPath))
	for _, ext := range VideoExtensions {
		candidate := base + ext
		if ok, err := afero.Exists(s.fs, candidate); err == nil && ok {
			return candidate, true
		}
	}
	return "", false
}
