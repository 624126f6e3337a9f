package serviceimpl

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cjnghn/drone-topview-analysis/domain/dto"
	"github.com/cjnghn/drone-topview-analysis/domain/models"
	"github.com/cjnghn/drone-topview-analysis/domain/services"
)

func clipDescriptor() obj {
	return descriptor(
		[]obj{track(5, 0, 2)},
		[]obj{
			frame(0, 0.0, detection(5, 37.51, 127.01, 3.2)),
			frame(1, 0.5, detection(99, 37.52, 127.02, 3.4)),
		},
		nil,
	)
}

func TestIngestClipScenario(t *testing.T) {
	env := newTestEnv(t)
	req := env.ingestFile(t, "clip_A.mp4", clipDescriptor())

	result, err := env.ingest.Ingest(context.Background(), req, nil)
	require.NoError(t, err)

	assert.Equal(t, "clip_A.mp4", result.Title)
	assert.True(t, result.VideoCreated)
	assert.Equal(t, dto.EntityCounts{Created: 1}, result.Tracks)
	assert.Equal(t, dto.EntityCounts{Created: 2}, result.Frames)
	assert.Equal(t, dto.EntityCounts{Created: 1, Skipped: 1}, result.Detections)
	assert.Equal(t, 1, result.Skipped())

	require.Len(t, result.Warnings, 1)
	warning := result.Warnings[0]
	assert.Equal(t, dto.EntityDetection, warning.Entity)
	require.NotNil(t, warning.TrackID)
	assert.Equal(t, 99, *warning.TrackID)
	require.NotNil(t, warning.Frame)
	assert.Equal(t, 1, *warning.Frame)
	assert.Contains(t, warning.Message, "99")

	assert.Equal(t, rowCounts{videos: 1, tracks: 1, frames: 2, detections: 1}, env.counts(t))

	var video models.Video
	require.NoError(t, env.db.First(&video, "id = ?", result.VideoID).Error)
	assert.Equal(t, "videos/clip_A.mp4", video.FilePath)
	assert.Equal(t, 100.0, video.Duration())
	assert.True(t, env.storage.Exists(video.FilePath))
}

func TestIngestIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	desc := descriptor(
		[]obj{track(1, 0, 1), track(2, 0, 1)},
		[]obj{
			frame(0, 0.0, detection(1, 37.5, 127.0, 1), detection(2, 37.5, 127.0, 1)),
			frame(1, 1.0, detection(1, 37.5, 127.0, 1)),
		},
		[]obj{intersection(1, 2, 0, 0.0)},
	)
	req := env.ingestFile(t, "clip_B.mp4", desc)

	first, err := env.ingest.Ingest(context.Background(), req, nil)
	require.NoError(t, err)
	before := env.counts(t)
	assert.Equal(t, rowCounts{videos: 1, tracks: 2, frames: 2, detections: 3, intersections: 1}, before)

	second, err := env.ingest.Ingest(context.Background(), req, nil)
	require.NoError(t, err)

	assert.False(t, second.VideoCreated)
	assert.Equal(t, first.VideoID, second.VideoID)
	assert.Equal(t, dto.EntityCounts{Existing: 2}, second.Tracks)
	assert.Equal(t, dto.EntityCounts{Existing: 2}, second.Frames)
	assert.Equal(t, dto.EntityCounts{Existing: 3}, second.Detections)
	assert.Equal(t, dto.EntityCounts{Existing: 1}, second.Intersections)
	assert.Equal(t, before, env.counts(t))
}

func TestIngestKeepsTrackIDZero(t *testing.T) {
	env := newTestEnv(t)
	desc := descriptor(
		[]obj{track(0, 0, 1), track(1, 0, 1)},
		[]obj{frame(0, 0.0, detection(0, 37.5, 127.0, 1))},
		nil,
	)
	req := env.ingestFile(t, "zero.mp4", desc)

	_, err := env.ingest.Ingest(context.Background(), req, nil)
	require.NoError(t, err)
	again, err := env.ingest.Ingest(context.Background(), req, nil)
	require.NoError(t, err)

	assert.Equal(t, dto.EntityCounts{Existing: 2}, again.Tracks)
	assert.Equal(t, int64(2), env.count(t, &models.Track{}))
}

func TestIngestSkipsIntersectionsWithUnknownTracks(t *testing.T) {
	env := newTestEnv(t)
	desc := descriptor(
		[]obj{track(1, 0, 5), track(2, 0, 5)},
		[]obj{frame(0, 0.0)},
		[]obj{
			intersection(1, 2, 0, 0.0),
			intersection(1, 42, 1, 1.0),
			intersection(42, 2, 2, 2.0),
			intersection(1, 1, 3, 3.0),
		},
	)
	req := env.ingestFile(t, "crossings.mp4", desc)

	result, err := env.ingest.Ingest(context.Background(), req, nil)
	require.NoError(t, err)

	assert.Equal(t, dto.EntityCounts{Created: 1, Skipped: 3}, result.Intersections)
	require.Len(t, result.Warnings, 3)
	for _, w := range result.Warnings {
		assert.Equal(t, dto.EntityIntersection, w.Entity)
		require.NotNil(t, w.TrackID)
	}
	assert.Equal(t, 42, *result.Warnings[0].TrackID)
	assert.Equal(t, 42, *result.Warnings[1].TrackID)
	assert.Contains(t, result.Warnings[2].Message, "itself")
	assert.Equal(t, int64(1), env.count(t, &models.Intersection{}))
}

func TestIngestSkipsInconsistentTracks(t *testing.T) {
	env := newTestEnv(t)
	bad := track(3, 9, 2)
	desc := descriptor(
		[]obj{track(1, 0, 2), bad},
		[]obj{frame(0, 0.0, detection(1, 37.5, 127.0, 1), detection(3, 37.5, 127.0, 1))},
		nil,
	)
	req := env.ingestFile(t, "inconsistent.mp4", desc)

	result, err := env.ingest.Ingest(context.Background(), req, nil)
	require.NoError(t, err)

	assert.Equal(t, dto.EntityCounts{Created: 1, Skipped: 1}, result.Tracks)
	// The detection of the skipped track has nothing to attach to
	assert.Equal(t, dto.EntityCounts{Created: 1, Skipped: 1}, result.Detections)
	assert.Equal(t, int64(1), env.count(t, &models.Track{}))
}

func TestIngestMissingInputs(t *testing.T) {
	env := newTestEnv(t)
	jsonPath, videoPath := env.writeInputs(t, "present.mp4", clipDescriptor())

	tests := []struct {
		name string
		req  services.IngestRequest
	}{
		{"missing json", services.IngestRequest{JSONPath: "/in/absent.json", VideoPath: videoPath}},
		{"missing video", services.IngestRequest{JSONPath: jsonPath, VideoPath: "/in/absent.mp4"}},
		{"video is a directory", services.IngestRequest{JSONPath: jsonPath, VideoPath: "/in"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.ingest.Ingest(context.Background(), tt.req, nil)
			assert.ErrorIs(t, err, services.ErrInputNotFound)
		})
	}

	assert.Equal(t, rowCounts{}, env.counts(t))
}

func TestIngestValidationErrors(t *testing.T) {
	withoutStart := clipDescriptor()
	delete(withoutStart, "start_time")

	backwards := clipDescriptor()
	backwards["start_time"] = 200.0

	shortBBox := clipDescriptor()
	det := detection(5, 37.5, 127.0, 1)
	det["bbox"] = []float64{1, 2, 3}
	shortBBox["frames"] = []obj{frame(0, 0.0, det)}

	noTrackID := clipDescriptor()
	tr := track(5, 0, 2)
	delete(tr, "track_id")
	noTrackID["tracking"] = []obj{tr}

	tests := []struct {
		name    string
		data    []byte
		message string
	}{
		{"malformed json", []byte(`{"start_time": `), ""},
		{"missing start_time", mustJSON(t, withoutStart), "start_time"},
		{"start after end", mustJSON(t, backwards), "start_time"},
		{"bbox of three values", mustJSON(t, shortBBox), "bbox"},
		{"track without id", mustJSON(t, noTrackID), "track_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			jsonPath, videoPath := env.writeRawInputs(t, "invalid.mp4", tt.data)

			_, err := env.ingest.Ingest(context.Background(), services.IngestRequest{JSONPath: jsonPath, VideoPath: videoPath}, nil)
			require.ErrorIs(t, err, services.ErrValidation)
			if tt.message != "" {
				assert.Contains(t, err.Error(), tt.message)
			}

			assert.Equal(t, rowCounts{}, env.counts(t))
			assert.False(t, env.storage.Exists("videos/invalid.mp4"))
		})
	}
}

func TestIngestRollbackRemovesStoredAsset(t *testing.T) {
	env := newTestEnv(t)
	req := env.ingestFile(t, "clip_A.mp4", clipDescriptor())

	// Fails the transaction after the video and its tracks were written
	require.NoError(t, env.db.Migrator().DropTable(&models.Frame{}))

	_, err := env.ingest.Ingest(context.Background(), req, nil)
	require.Error(t, err)

	assert.Equal(t, int64(0), env.count(t, &models.Video{}))
	assert.Equal(t, int64(0), env.count(t, &models.Track{}))
	assert.False(t, env.storage.Exists("videos/clip_A.mp4"))
	staging, err := afero.ReadDir(env.fs, "/media/videos/.staging")
	require.NoError(t, err)
	assert.Empty(t, staging)

	// The source file is left alone
	exists, err := afero.Exists(env.fs, req.VideoPath)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestIngestRollbackKeepsAssetCommittedByAnotherIngestion(t *testing.T) {
	env := newTestEnv(t)
	req := env.ingestFile(t, "race.mp4", clipDescriptor())

	// Another process already committed an asset of the same title
	require.NoError(t, afero.WriteFile(env.fs, env.storage.Path("videos/race.mp4"), []byte("winner"), 0644))
	require.NoError(t, env.db.Migrator().DropTable(&models.Frame{}))

	_, err := env.ingest.Ingest(context.Background(), req, nil)
	require.Error(t, err)

	data, err := afero.ReadFile(env.fs, env.storage.Path("videos/race.mp4"))
	require.NoError(t, err)
	assert.Equal(t, "winner", string(data))
}

func TestIngestSkipsRepeatedFrameIndex(t *testing.T) {
	env := newTestEnv(t)
	req := env.ingestFile(t, "repeat.mp4", descriptor(
		[]obj{track(1, 0, 9), track(2, 0, 9)},
		[]obj{
			frame(0, 0.0, detection(1, 1.0, 1.0, 1)),
			frame(0, 9.0, detection(1, 5.0, 5.0, 1), detection(2, 7.0, 7.0, 1)),
			frame(1, 1.0, detection(2, 3.0, 3.0, 1)),
		},
		nil,
	))

	result, err := env.ingest.Ingest(context.Background(), req, nil)
	require.NoError(t, err)

	assert.Equal(t, dto.EntityCounts{Created: 2, Skipped: 1}, result.Frames)
	assert.Equal(t, dto.EntityCounts{Created: 2, Skipped: 2}, result.Detections)
	require.Len(t, result.Warnings, 1)
	w := result.Warnings[0]
	assert.Equal(t, dto.EntityFrame, w.Entity)
	assert.Equal(t, 1, w.Index)
	require.NotNil(t, w.Frame)
	assert.Equal(t, 0, *w.Frame)
	assert.Contains(t, w.Message, "frame_index")

	var stored models.Frame
	require.NoError(t, env.db.Where("video_id = ? AND frame_index = ?", result.VideoID, 0).First(&stored).Error)
	assert.Equal(t, 0.0, stored.Timestamp)

	// Nothing observed at t=9.0 leaks into earlier positions
	positions, err := env.videos.TrackPositions(context.Background(), result.VideoID, 1.0)
	require.NoError(t, err)
	require.Len(t, positions, 2)
	assert.Equal(t, 1, positions[0].TrackID)
	assert.InDelta(t, 1.0, positions[0].LastLatitude, 1e-9)
	assert.Equal(t, 2, positions[1].TrackID)
	assert.InDelta(t, 3.0, positions[1].LastLatitude, 1e-9)
}

func TestIngestRejectsConcurrentIngestOfSameTitle(t *testing.T) {
	env := newTestEnv(t)
	req := env.ingestFile(t, "clip_A.mp4", clipDescriptor())

	release, err := env.locker.Acquire(context.Background(), "clip_A.mp4", time.Minute)
	require.NoError(t, err)

	_, err = env.ingest.Ingest(context.Background(), req, nil)
	assert.ErrorIs(t, err, services.ErrIngestInProgress)
	assert.Equal(t, rowCounts{}, env.counts(t))

	release()
	_, err = env.ingest.Ingest(context.Background(), req, nil)
	assert.NoError(t, err)
}

func TestIngestReportsProgress(t *testing.T) {
	env := newTestEnv(t)
	desc := descriptor(
		[]obj{track(1, 0, 2), track(2, 0, 2)},
		[]obj{frame(0, 0.0), frame(1, 1.0), frame(2, 2.0)},
		[]obj{intersection(1, 2, 1, 1.0)},
	)
	req := env.ingestFile(t, "progress.mp4", desc)

	var updates []services.IngestProgress
	_, err := env.ingest.Ingest(context.Background(), req, func(p services.IngestProgress) {
		updates = append(updates, p)
	})
	require.NoError(t, err)

	// One update for tracks, one per frame, one for intersections
	require.Len(t, updates, 5)
	assert.Equal(t, StageTracks, updates[0].Stage)
	assert.Equal(t, 2, updates[0].Processed)
	assert.Equal(t, StageFrames, updates[1].Stage)
	last := updates[len(updates)-1]
	assert.Equal(t, StageIntersections, last.Stage)
	assert.Equal(t, 6, last.Total)
	assert.Equal(t, 6, last.Processed)
	for i := 1; i < len(updates); i++ {
		assert.GreaterOrEqual(t, updates[i].Processed, updates[i-1].Processed)
	}
}

func TestIngestResultSerializes(t *testing.T) {
	env := newTestEnv(t)
	req := env.ingestFile(t, "clip_A.mp4", clipDescriptor())

	result, err := env.ingest.Ingest(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Len(t, result.DescriptorHash, 64)

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"warnings":[{"entity":"detection"`)
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}
