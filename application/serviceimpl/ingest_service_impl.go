package serviceimpl

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"gorm.io/gorm"

	"github.com/cjnghn/drone-topview-analysis/domain/dto"
	"github.com/cjnghn/drone-topview-analysis/domain/models"
	"github.com/cjnghn/drone-topview-analysis/domain/repositories"
	"github.com/cjnghn/drone-topview-analysis/domain/services"
	"github.com/cjnghn/drone-topview-analysis/pkg/logger"
	"github.com/cjnghn/drone-topview-analysis/pkg/metrics"
)

// Progress stages
const (
	StageTracks        = "tracks"
	StageFrames        = "frames"
	StageIntersections = "intersections"
)

type IngestServiceImpl struct {
	fs         afero.Fs
	ingestRepo repositories.IngestRepository
	storage    services.AssetStorage
	locker     services.TitleLocker
	lockTTL    time.Duration
	validate   *validator.Validate
	metrics    *metrics.Metrics
}

func NewIngestService(
	fs afero.Fs,
	ingestRepo repositories.IngestRepository,
	storage services.AssetStorage,
	locker services.TitleLocker,
	lockTTL time.Duration,
	m *metrics.Metrics,
) services.IngestService {
	return &IngestServiceImpl{
		fs:         fs,
		ingestRepo: ingestRepo,
		storage:    storage,
		locker:     locker,
		lockTTL:    lockTTL,
		validate:   newValidator(),
		metrics:    m,
	}
}

func (s *IngestServiceImpl) Ingest(ctx context.Context, req services.IngestRequest, progress services.ProgressFunc) (*dto.IngestResult, error) {
	start := time.Now()

	logger.Ingest("ingest_start", "Starting ingestion", map[string]interface{}{
		"json_path":  req.JSONPath,
		"video_path": req.VideoPath,
		"source":     req.Source,
	})

	result, err := s.ingest(ctx, req, progress)
	s.metrics.RecordIngestRun(err, time.Since(start))
	if err != nil {
		logger.IngestError("ingest_failed", "Ingestion failed", err, map[string]interface{}{
			"json_path":  req.JSONPath,
			"video_path": req.VideoPath,
		})
		return nil, err
	}

	result.Duration = time.Since(start)
	s.metrics.RecordIngestRecords(dto.EntityTrack, result.Tracks.Created, result.Tracks.Existing, result.Tracks.Skipped)
	s.metrics.RecordIngestRecords(dto.EntityFrame, result.Frames.Created, result.Frames.Existing, result.Frames.Skipped)
	s.metrics.RecordIngestRecords(dto.EntityDetection, result.Detections.Created, result.Detections.Existing, result.Detections.Skipped)
	s.metrics.RecordIngestRecords(dto.EntityIntersection, result.Intersections.Created, result.Intersections.Existing, result.Intersections.Skipped)

	logger.Ingest("ingest_completed", "Data upload complete", map[string]interface{}{
		"video_id":      result.VideoID.String(),
		"title":         result.Title,
		"video_created": result.VideoCreated,
		"tracks":        result.Tracks,
		"frames":        result.Frames,
		"detections":    result.Detections,
		"intersections": result.Intersections,
		"warnings":      len(result.Warnings),
		"duration":      result.Duration.String(),
	})

	return result, nil
}

func (s *IngestServiceImpl) ingest(ctx context.Context, req services.IngestRequest, progress services.ProgressFunc) (*dto.IngestResult, error) {
	// Nothing is touched before both inputs are known to exist
	if err := checkInput(s.fs, req.JSONPath, "JSON"); err != nil {
		return nil, err
	}
	if err := checkInput(s.fs, req.VideoPath, "video"); err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(s.fs, req.JSONPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor: %w", err)
	}

	desc, err := decodeDescriptor(s.validate, data)
	if err != nil {
		return nil, err
	}

	title := filepath.Base(req.VideoPath)

	release, err := s.locker.Acquire(ctx, title, s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", title, err)
	}
	defer release()

	run := &ingestRun{
		desc:     desc,
		progress: progress,
		total:    desc.TotalItems(),
		tracks:   make(map[int]*models.Track, len(desc.Tracking)),
		result: &dto.IngestResult{
			Title:          title,
			DescriptorHash: descriptorHash(data),
			Warnings:       []dto.IngestWarning{},
		},
	}

	var staged string
	err = s.ingestRepo.WithinTransaction(ctx, func(store repositories.IngestStore) error {
		run.store = store

		key, err := s.resolveVideo(ctx, run, req.VideoPath, title)
		staged = key
		if err != nil {
			return err
		}
		if err := run.upsertTracks(ctx); err != nil {
			return err
		}
		if err := run.upsertFrames(ctx); err != nil {
			return err
		}
		return run.upsertIntersections(ctx)
	})
	if err != nil {
		if staged != "" {
			if rmErr := s.storage.Remove(context.Background(), staged); rmErr != nil {
				logger.IngestError("asset_cleanup_failed", "Failed to remove staged asset after rollback", rmErr, map[string]interface{}{
					"key": staged,
				})
			}
		}
		return nil, err
	}

	if staged != "" {
		if err := s.storage.Commit(context.Background(), staged, run.video.FilePath); err != nil {
			logger.IngestError("asset_commit_failed", "Video saved but its asset could not be moved into place", err, map[string]interface{}{
				"video_id": run.video.ID.String(),
				"key":      run.video.FilePath,
				"staged":   staged,
			})
			return nil, err
		}
	}

	return run.result, nil
}

// resolveVideo reuses the video with the same title or stages the asset and creates it.
// The returned staged key is set only when an asset was staged by this call.
func (s *IngestServiceImpl) resolveVideo(ctx context.Context, run *ingestRun, videoPath, title string) (string, error) {
	existing, err := run.store.FindVideoByTitle(ctx, title)
	if err == nil {
		logger.Ingest("video_exists", fmt.Sprintf("Video '%s' already exists, using existing record", title), map[string]interface{}{
			"video_id": existing.ID.String(),
		})
		run.video = existing
		run.result.VideoID = existing.ID
		return "", nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	staged, key, err := s.storage.Stage(ctx, videoPath, title)
	if err != nil {
		return "", fmt.Errorf("failed to store video asset: %w", err)
	}

	desc := run.desc
	video := &models.Video{
		Title:          title,
		FilePath:       key,
		StartTime:      *desc.StartTime,
		EndTime:        *desc.EndTime,
		StartLatitude:  *desc.StartLocation.Latitude,
		StartLongitude: *desc.StartLocation.Longitude,
		EndLatitude:    *desc.EndLocation.Latitude,
		EndLongitude:   *desc.EndLocation.Longitude,
	}
	if err := run.store.CreateVideo(ctx, video); err != nil {
		return staged, err
	}

	logger.Ingest("video_created", fmt.Sprintf("Video '%s' added", title), map[string]interface{}{
		"video_id": video.ID.String(),
		"file":     key,
	})

	run.video = video
	run.result.VideoID = video.ID
	run.result.VideoCreated = true
	return staged, nil
}

// ingestRun carries the state of one ingestion inside its transaction
type ingestRun struct {
	store    repositories.IngestStore
	desc     *dto.IngestDescriptor
	video    *models.Video
	result   *dto.IngestResult
	progress services.ProgressFunc

	// Descriptor track id -> stored track; only tracks listed in this descriptor resolve
	tracks map[int]*models.Track

	total     int
	processed int
	skipped   int
}

func (r *ingestRun) report(stage string, processed int) {
	r.processed += processed
	if r.progress == nil {
		return
	}
	r.progress(services.IngestProgress{
		Stage:     stage,
		Title:     r.result.Title,
		Total:     r.total,
		Processed: r.processed,
		Skipped:   r.skipped,
	})
}

func (r *ingestRun) warn(counts *dto.EntityCounts, w dto.IngestWarning) {
	counts.Skipped++
	r.skipped++
	r.result.Warnings = append(r.result.Warnings, w)

	data := map[string]interface{}{
		"entity": w.Entity,
		"index":  w.Index,
		"title":  r.result.Title,
	}
	if w.Frame != nil {
		data["frame_index"] = *w.Frame
	}
	if w.TrackID != nil {
		data["track_id"] = *w.TrackID
	}
	logger.IngestWarn("record_skipped", w.Message, data)
}

func count(counts *dto.EntityCounts, created bool) {
	if created {
		counts.Created++
	} else {
		counts.Existing++
	}
}

func (r *ingestRun) upsertTracks(ctx context.Context) error {
	for i, td := range r.desc.Tracking {
		trackID := *td.TrackID

		if *td.FrameStart > *td.FrameEnd {
			r.warn(&r.result.Tracks, dto.IngestWarning{
				Entity:  dto.EntityTrack,
				Index:   i,
				TrackID: intPtr(trackID),
				Message: fmt.Sprintf("Skipping track %d: frame_start %d is after frame_end %d", trackID, *td.FrameStart, *td.FrameEnd),
			})
			continue
		}
		if *td.TimestampStart > *td.TimestampEnd {
			r.warn(&r.result.Tracks, dto.IngestWarning{
				Entity:  dto.EntityTrack,
				Index:   i,
				TrackID: intPtr(trackID),
				Message: fmt.Sprintf("Skipping track %d: timestamp_start %v is after timestamp_end %v", trackID, *td.TimestampStart, *td.TimestampEnd),
			})
			continue
		}

		track := &models.Track{
			VideoID:        r.video.ID,
			TrackID:        trackID,
			FrameStart:     *td.FrameStart,
			FrameEnd:       *td.FrameEnd,
			TimestampStart: *td.TimestampStart,
			TimestampEnd:   *td.TimestampEnd,
			StartPoint:     models.Point(td.StartPoint),
			EndPoint:       models.Point(td.EndPoint),
		}
		created, err := r.store.GetOrCreateTrack(ctx, track)
		if err != nil {
			return fmt.Errorf("failed to save track %d: %w", trackID, err)
		}
		count(&r.result.Tracks, created)
		r.tracks[trackID] = track
	}

	r.report(StageTracks, len(r.desc.Tracking))
	return nil
}

func (r *ingestRun) upsertFrames(ctx context.Context) error {
	seen := make(map[int]int, len(r.desc.Frames))
	for i, fd := range r.desc.Frames {
		frameIndex := *fd.FrameIndex

		// A repeated frame_index would merge two observations into one frame
		if first, ok := seen[frameIndex]; ok {
			r.warn(&r.result.Frames, dto.IngestWarning{
				Entity:  dto.EntityFrame,
				Index:   i,
				Frame:   intPtr(frameIndex),
				Message: fmt.Sprintf("Skipping frame %d: frame_index already used by frame record %d, dropping its %d detections", frameIndex, first, len(fd.Detections)),
			})
			r.result.Detections.Skipped += len(fd.Detections)
			r.skipped += len(fd.Detections)
			r.report(StageFrames, 1)
			continue
		}
		seen[frameIndex] = i

		frame := &models.Frame{
			VideoID:    r.video.ID,
			FrameIndex: frameIndex,
			Timestamp:  *fd.Timestamp,
			Latitude:   *fd.DroneState.Latitude,
			Longitude:  *fd.DroneState.Longitude,
			Altitude:   *fd.DroneState.Altitude,
			Heading:    *fd.DroneState.Heading,
		}
		created, err := r.store.GetOrCreateFrame(ctx, frame)
		if err != nil {
			return fmt.Errorf("failed to save frame %d: %w", frameIndex, err)
		}
		count(&r.result.Frames, created)

		for j, dd := range fd.Detections {
			trackID := *dd.TrackID
			track, ok := r.tracks[trackID]
			if !ok {
				r.warn(&r.result.Detections, dto.IngestWarning{
					Entity:  dto.EntityDetection,
					Index:   j,
					Frame:   intPtr(frameIndex),
					TrackID: intPtr(trackID),
					Message: fmt.Sprintf("Skipping detection with missing track_id: %d", trackID),
				})
				continue
			}

			detection := &models.Detection{
				FrameID:    frame.ID,
				TrackingID: track.ID,
				ClassID:    *dd.ClassID,
				BBox:       models.BBox(dd.BBox),
				Confidence: *dd.Confidence,
				WorldSpeed: *dd.WorldSpeed,
				Latitude:   *dd.GPSCoordinates.Latitude,
				Longitude:  *dd.GPSCoordinates.Longitude,
			}
			created, err := r.store.GetOrCreateDetection(ctx, detection)
			if err != nil {
				return fmt.Errorf("failed to save detection of track %d in frame %d: %w", trackID, frameIndex, err)
			}
			count(&r.result.Detections, created)
		}

		r.report(StageFrames, 1)
	}
	return nil
}

func (r *ingestRun) upsertIntersections(ctx context.Context) error {
	for i, in := range r.desc.Intersections {
		trackID1, trackID2 := *in.TrackID1, *in.TrackID2

		track1, ok1 := r.tracks[trackID1]
		track2, ok2 := r.tracks[trackID2]
		if !ok1 || !ok2 {
			missing := trackID1
			if ok1 {
				missing = trackID2
			}
			r.warn(&r.result.Intersections, dto.IngestWarning{
				Entity:  dto.EntityIntersection,
				Index:   i,
				TrackID: intPtr(missing),
				Message: fmt.Sprintf("Skipping intersection with missing track1 or track2: %d, %d", trackID1, trackID2),
			})
			continue
		}
		if track1.ID == track2.ID {
			r.warn(&r.result.Intersections, dto.IngestWarning{
				Entity:  dto.EntityIntersection,
				Index:   i,
				TrackID: intPtr(trackID1),
				Message: fmt.Sprintf("Skipping intersection of track %d with itself", trackID1),
			})
			continue
		}

		intersection := &models.Intersection{
			VideoID:               r.video.ID,
			Track1ID:              track1.ID,
			Track2ID:              track2.ID,
			FrameIndex:            *in.FrameIndex,
			Timestamp:             *in.Timestamp,
			IntersectionPoint:     models.Point(in.IntersectionPoint),
			IntersectionPointType: in.IntersectionPointType,
			Latitude:              *in.GPSCoordinates.Latitude,
			Longitude:             *in.GPSCoordinates.Longitude,
			TimeDifference:        *in.TimeDifference,
		}
		created, err := r.store.GetOrCreateIntersection(ctx, intersection)
		if err != nil {
			return fmt.Errorf("failed to save intersection of tracks %d and %d: %w", trackID1, trackID2, err)
		}
		count(&r.result.Intersections, created)
	}

	r.report(StageIntersections, len(r.desc.Intersections))
	return nil
}

func intPtr(v int) *int {
	return &v
}
