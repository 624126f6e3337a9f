package serviceimpl

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cjnghn/drone-topview-analysis/domain/dto"
	"github.com/cjnghn/drone-topview-analysis/domain/models"
	"github.com/cjnghn/drone-topview-analysis/domain/repositories"
	"github.com/cjnghn/drone-topview-analysis/domain/services"
)

func (e *testEnv) mustIngest(t *testing.T, videoName string, desc obj) *dto.IngestResult {
	t.Helper()
	result, err := e.ingest.Ingest(context.Background(), e.ingestFile(t, videoName, desc), nil)
	require.NoError(t, err)
	return result
}

func (e *testEnv) trackByExternalID(t *testing.T, videoID uuid.UUID, trackID int) models.Track {
	t.Helper()
	var tr models.Track
	require.NoError(t, e.db.Where("video_id = ? AND track_id = ?", videoID, trackID).First(&tr).Error)
	return tr
}

// Positions are the AVERAGE of every detection up to the cutoff, not the latest detection
func TestTrackPositionsAveragesAllDetectionsUpToCutoff(t *testing.T) {
	env := newTestEnv(t)
	result := env.mustIngest(t, "positions.mp4", descriptor(
		[]obj{track(7, 0, 2), track(8, 0, 2)},
		[]obj{
			frame(0, 2.0, detection(7, 1.0, 10.0, 4.0)),
			frame(1, 8.0, detection(7, 3.0, 20.0, 6.0), detection(8, 5.0, 5.0, 1.0)),
			frame(2, 12.0, detection(7, 50.0, 50.0, 50.0)),
		},
		nil,
	))

	positions, err := env.videos.TrackPositions(context.Background(), result.VideoID, 10.0)
	require.NoError(t, err)
	require.Len(t, positions, 2)

	assert.Equal(t, 7, positions[0].TrackID)
	assert.InDelta(t, 2.0, positions[0].LastLatitude, 1e-9)
	assert.InDelta(t, 15.0, positions[0].LastLongitude, 1e-9)
	assert.InDelta(t, 5.0, positions[0].LastSpeed, 1e-9)
	assert.Equal(t, env.trackByExternalID(t, result.VideoID, 7).ID, positions[0].TrackingID)

	assert.Equal(t, 8, positions[1].TrackID)
	assert.InDelta(t, 5.0, positions[1].LastLatitude, 1e-9)

	// Cutoff is inclusive
	positions, err = env.videos.TrackPositions(context.Background(), result.VideoID, 2.0)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.InDelta(t, 1.0, positions[0].LastLatitude, 1e-9)

	positions, err = env.videos.TrackPositions(context.Background(), result.VideoID, 0)
	require.NoError(t, err)
	assert.Empty(t, positions)
}

func TestTrackPositionsUnknownVideo(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.videos.TrackPositions(context.Background(), uuid.New(), 10)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestTrajectoryIsOrderedByTimestamp(t *testing.T) {
	env := newTestEnv(t)
	// Frames arrive out of time order
	result := env.mustIngest(t, "trajectory.mp4", descriptor(
		[]obj{track(3, 0, 2)},
		[]obj{
			frame(2, 5.0, detection(3, 37.3, 127.3, 3)),
			frame(0, 1.0, detection(3, 37.1, 127.1, 1)),
			frame(1, 3.0, detection(3, 37.2, 127.2, 2)),
		},
		nil,
	))
	tr := env.trackByExternalID(t, result.VideoID, 3)

	seq, err := env.tracks.Trajectory(context.Background(), tr.ID)
	require.NoError(t, err)

	collect := func() []models.TrajectoryPoint {
		var points []models.TrajectoryPoint
		for p, err := range seq {
			require.NoError(t, err)
			points = append(points, p)
		}
		return points
	}

	points := collect()
	require.Len(t, points, 3)
	assert.Equal(t, []float64{1.0, 3.0, 5.0}, []float64{points[0].Timestamp, points[1].Timestamp, points[2].Timestamp})
	assert.InDelta(t, 37.1, points[0].Latitude, 1e-9)
	assert.InDelta(t, 3.0, points[2].WorldSpeed, 1e-9)

	// The sequence can be ranged over again
	assert.Equal(t, points, collect())

	// Stopping early is allowed
	for range seq {
		break
	}
}

func TestTrajectoryUnknownTrack(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.tracks.Trajectory(context.Background(), uuid.New())
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestTimeRangeIsInclusiveOrderedAndScopedToVideo(t *testing.T) {
	env := newTestEnv(t)
	crossing := func(frameIndex int, ts float64) obj { return intersection(1, 2, frameIndex, ts) }

	a := env.mustIngest(t, "a.mp4", descriptor(
		[]obj{track(1, 0, 9), track(2, 0, 9)},
		nil,
		[]obj{crossing(9, 9.0), crossing(1, 1.0), crossing(5, 5.0)},
	))
	env.mustIngest(t, "b.mp4", descriptor(
		[]obj{track(1, 0, 9), track(2, 0, 9)},
		nil,
		[]obj{crossing(5, 5.0)},
	))

	got, err := env.intersections.TimeRange(context.Background(), a.VideoID, 5.0, 9.0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 5.0, got[0].Timestamp)
	assert.Equal(t, 9.0, got[1].Timestamp)
	for _, in := range got {
		assert.Equal(t, a.VideoID, in.VideoID)
		assert.Equal(t, 1, in.TrackID1)
		assert.Equal(t, 2, in.TrackID2)
	}

	got, err = env.intersections.TimeRange(context.Background(), a.VideoID, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = env.intersections.TimeRange(context.Background(), a.VideoID, 9.0, 5.0)
	assert.ErrorIs(t, err, services.ErrInvalidParameter)
}

func TestListIntersectionsFiltersByTrack(t *testing.T) {
	env := newTestEnv(t)
	result := env.mustIngest(t, "pairs.mp4", descriptor(
		[]obj{track(1, 0, 9), track(2, 0, 9), track(3, 0, 9)},
		nil,
		[]obj{intersection(1, 2, 1, 1.0), intersection(1, 3, 2, 2.0), intersection(2, 3, 3, 3.0)},
	))
	track1 := env.trackByExternalID(t, result.VideoID, 1)

	items, total, err := env.intersections.ListIntersections(context.Background(), repositories.IntersectionFilter{
		VideoID:  &result.VideoID,
		Track1ID: &track1.ID,
	}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].TrackID2)
	assert.Equal(t, 3, items[1].TrackID2)

	got, err := env.intersections.GetIntersection(context.Background(), items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TrackID1)
}

func TestFrameDetectionsOrderedByTrack(t *testing.T) {
	env := newTestEnv(t)
	result := env.mustIngest(t, "frame.mp4", descriptor(
		[]obj{track(1, 0, 0), track(3, 0, 0)},
		[]obj{frame(0, 0.0, detection(3, 37.3, 127.3, 3), detection(1, 37.1, 127.1, 1))},
		nil,
	))

	frames, total, err := env.frames.ListFrames(context.Background(), repositories.FrameFilter{VideoID: &result.VideoID}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, frames, 1)

	dets, err := env.frames.Detections(context.Background(), frames[0].ID)
	require.NoError(t, err)
	require.Len(t, dets, 2)
	assert.Equal(t, 1, dets[0].TrackID)
	assert.Equal(t, 3, dets[1].TrackID)
	assert.Equal(t, models.BBox{10, 20, 30, 40}, dets[0].BBox)

	_, err = env.frames.Detections(context.Background(), uuid.New())
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestListVideosWithCounts(t *testing.T) {
	env := newTestEnv(t)
	env.mustIngest(t, "Clip_A.mp4", clipDescriptor())
	env.mustIngest(t, "other.mp4", descriptor([]obj{track(1, 0, 1)}, nil, nil))

	videos, total, err := env.videos.ListVideos(context.Background(), "clip_a", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, videos, 1)
	assert.Equal(t, "Clip_A.mp4", videos[0].Title)
	assert.Equal(t, int64(1), videos[0].TrackingCount)
	assert.Equal(t, int64(2), videos[0].FrameCount)

	_, total, err = env.videos.ListVideos(context.Background(), "", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	got, err := env.videos.GetVideo(context.Background(), videos[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.FrameCount)

	_, err = env.videos.GetVideo(context.Background(), uuid.New())
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestListVideosSearchMatchesWildcardsLiterally(t *testing.T) {
	env := newTestEnv(t)
	for _, name := range []string{"clip_A.mp4", "clipXA.mp4", "100%_done.mp4", `back\slash.mp4`} {
		env.mustIngest(t, name, descriptor([]obj{track(1, 0, 1)}, nil, nil))
	}

	titles := func(search string) []string {
		videos, total, err := env.videos.ListVideos(context.Background(), search, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(len(videos)), total)
		out := make([]string, 0, len(videos))
		for _, v := range videos {
			out = append(out, v.Title)
		}
		return out
	}

	assert.Equal(t, []string{"clip_A.mp4"}, titles("clip_A"))
	assert.Equal(t, []string{"clip_A.mp4"}, titles("CLIP_a"))
	assert.Equal(t, []string{"100%_done.mp4"}, titles("%"))
	assert.Equal(t, []string{"100%_done.mp4"}, titles("%_d"))
	assert.Equal(t, []string{`back\slash.mp4`}, titles(`\`))
	assert.Empty(t, titles("_X_"))
	assert.Len(t, titles("clip"), 2)
}

func TestDeleteVideoCascades(t *testing.T) {
	env := newTestEnv(t)
	keep := env.mustIngest(t, "keep.mp4", descriptor(
		[]obj{track(1, 0, 1), track(2, 0, 1)},
		[]obj{frame(0, 0.0, detection(1, 1, 1, 1))},
		[]obj{intersection(1, 2, 0, 0.0)},
	))
	gone := env.mustIngest(t, "gone.mp4", descriptor(
		[]obj{track(1, 0, 1), track(2, 0, 1)},
		[]obj{frame(0, 0.0, detection(1, 1, 1, 1), detection(2, 1, 1, 1))},
		[]obj{intersection(1, 2, 0, 0.0)},
	))

	require.NoError(t, env.videos.DeleteVideo(context.Background(), gone.VideoID))

	assert.Equal(t, rowCounts{videos: 1, tracks: 2, frames: 1, detections: 1, intersections: 1}, env.counts(t))
	assert.False(t, env.storage.Exists("videos/gone.mp4"))
	assert.True(t, env.storage.Exists("videos/keep.mp4"))

	_, err := env.videos.GetVideo(context.Background(), gone.VideoID)
	assert.ErrorIs(t, err, services.ErrNotFound)
	_, err = env.videos.GetVideo(context.Background(), keep.VideoID)
	assert.NoError(t, err)

	assert.ErrorIs(t, env.videos.DeleteVideo(context.Background(), gone.VideoID), services.ErrNotFound)
}

func TestDeleteTrackRemovesDetectionsAndIntersections(t *testing.T) {
	env := newTestEnv(t)
	result := env.mustIngest(t, "track.mp4", descriptor(
		[]obj{track(1, 0, 1), track(2, 0, 1)},
		[]obj{frame(0, 0.0, detection(1, 1, 1, 1), detection(2, 1, 1, 1))},
		[]obj{intersection(1, 2, 0, 0.0)},
	))
	tr := env.trackByExternalID(t, result.VideoID, 1)

	require.NoError(t, env.tracks.DeleteTrack(context.Background(), tr.ID))

	assert.Equal(t, rowCounts{videos: 1, tracks: 1, frames: 1, detections: 1}, env.counts(t))
	_, err := env.tracks.GetTrack(context.Background(), tr.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	trackID := 2
	remaining, total, err := env.tracks.ListTracks(context.Background(), repositories.TrackFilter{TrackID: &trackID}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, 2, remaining[0].TrackID)
}

func TestDeleteDetectionAndFrame(t *testing.T) {
	env := newTestEnv(t)
	result := env.mustIngest(t, "frames.mp4", descriptor(
		[]obj{track(1, 0, 1)},
		[]obj{frame(0, 0.0, detection(1, 1, 1, 1)), frame(1, 1.0, detection(1, 1, 1, 1))},
		nil,
	))

	index := 0
	frames, _, err := env.frames.ListFrames(context.Background(), repositories.FrameFilter{VideoID: &result.VideoID, FrameIndex: &index}, 1, 10)
	require.NoError(t, err)
	require.Len(t, frames, 1)

	var det models.Detection
	require.NoError(t, env.db.Where("frame_id = ?", frames[0].ID).First(&det).Error)

	got, err := env.frames.GetDetection(context.Background(), det.ID)
	require.NoError(t, err)
	assert.Equal(t, det.TrackingID, got.TrackingID)

	require.NoError(t, env.frames.DeleteDetection(context.Background(), det.ID))
	assert.ErrorIs(t, env.frames.DeleteDetection(context.Background(), det.ID), services.ErrNotFound)

	require.NoError(t, env.frames.DeleteFrame(context.Background(), frames[0].ID))
	_, err = env.frames.GetFrame(context.Background(), frames[0].ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.Equal(t, rowCounts{videos: 1, tracks: 1, frames: 1, detections: 1}, env.counts(t))
}
