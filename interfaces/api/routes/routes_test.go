package routes

import (
	"context"
	"encoding/json"
	"iter"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cjnghn/drone-topview-analysis/domain/models"
	"github.com/cjnghn/drone-topview-analysis/domain/services"
	"github.com/cjnghn/drone-topview-analysis/interfaces/api/handlers"
	"github.com/cjnghn/drone-topview-analysis/interfaces/api/middleware"
	"github.com/cjnghn/drone-topview-analysis/pkg/config"
	"github.com/cjnghn/drone-topview-analysis/pkg/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Init("", false)
	os.Exit(m.Run())
}

var knownVideo = uuid.MustParse("5f0c7c8e-2d7e-4f53-9d7e-0a4c1f1f0001")

type fakeVideoService struct {
	services.VideoService
	cutoff float64
}

func (f *fakeVideoService) GetVideo(_ context.Context, id uuid.UUID) (*models.VideoStats, error) {
	if id != knownVideo {
		return nil, services.ErrNotFound
	}
	return &models.VideoStats{Video: models.Video{ID: id, Title: "clip_A.mp4"}, TrackingCount: 1, FrameCount: 2}, nil
}

func (f *fakeVideoService) TrackPositions(_ context.Context, id uuid.UUID, cutoff float64) ([]models.TrackPosition, error) {
	f.cutoff = cutoff
	return []models.TrackPosition{{TrackID: 7, LastLatitude: 2.0}}, nil
}

type fakeTrackService struct {
	services.TrackService
}

func (f *fakeTrackService) Trajectory(_ context.Context, id uuid.UUID) (iter.Seq2[models.TrajectoryPoint, error], error) {
	if id != knownVideo {
		return nil, services.ErrNotFound
	}
	return func(yield func(models.TrajectoryPoint, error) bool) {
		for _, ts := range []float64{1, 2} {
			if !yield(models.TrajectoryPoint{Timestamp: ts}, nil) {
				return
			}
		}
	}, nil
}

type fakeIntersectionService struct {
	services.IntersectionService
	start, end float64
}

func (f *fakeIntersectionService) TimeRange(_ context.Context, videoID uuid.UUID, start, end float64) ([]models.IntersectionView, error) {
	if start > end {
		return nil, services.ErrInvalidParameter
	}
	f.start, f.end = start, end
	return []models.IntersectionView{}, nil
}

type fakeJobService struct {
	services.IngestJobService
}

func (f *fakeJobService) Enqueue(_ context.Context, jsonPath, videoPath string, source models.IngestSource) (*models.IngestJob, error) {
	if strings.Contains(videoPath, "missing") {
		return nil, services.ErrInputNotFound
	}
	return &models.IngestJob{
		ID:        uuid.New(),
		Source:    source,
		JSONPath:  jsonPath,
		VideoPath: videoPath,
		Title:     "clip_A.mp4",
		Status:    models.IngestJobStatusPending,
	}, nil
}

type testApp struct {
	app           *fiber.App
	videos        *fakeVideoService
	intersections *fakeIntersectionService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	cfg := &config.Config{
		App:   config.AppConfig{Name: "test"},
		Admin: config.AdminConfig{Token: "secret"},
	}
	ta := &testApp{
		app:           fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()}),
		videos:        &fakeVideoService{},
		intersections: &fakeIntersectionService{},
	}
	h := handlers.NewHandlers(&handlers.Services{
		VideoService:        ta.videos,
		TrackService:        &fakeTrackService{},
		IntersectionService: ta.intersections,
		IngestJobService:    &fakeJobService{},
	}, &handlers.Infrastructure{}, cfg)

	SetupRoutes(ta.app, h, cfg, nil)
	return ta
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (ta *testApp) do(t *testing.T, req *http.Request) (int, envelope) {
	t.Helper()
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func (ta *testApp) get(t *testing.T, target string) (int, envelope) {
	return ta.do(t, httptest.NewRequest(http.MethodGet, target, nil))
}

func TestHealth(t *testing.T) {
	ta := newTestApp(t)
	resp, err := ta.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetVideo(t *testing.T) {
	ta := newTestApp(t)

	status, body := ta.get(t, "/api/v1/videos/"+knownVideo.String())
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, body.Success)
	assert.Contains(t, string(body.Data), `"tracking_count":1`)

	status, body = ta.get(t, "/api/v1/videos/"+uuid.NewString())
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, body.Success)

	status, _ = ta.get(t, "/api/v1/videos/not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestTrackPositionsTimestamp(t *testing.T) {
	ta := newTestApp(t)

	status, body := ta.get(t, "/api/v1/videos/"+knownVideo.String()+"/track-positions?timestamp=10")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 10.0, ta.videos.cutoff)
	assert.Contains(t, string(body.Data), `"last_latitude":2`)

	ta.videos.cutoff = -1
	status, _ = ta.get(t, "/api/v1/videos/"+knownVideo.String()+"/track-positions")
	assert.Equal(t, http.StatusOK, status)
	assert.Zero(t, ta.videos.cutoff)

	for _, bad := range []string{"soon", "NaN", "Inf", "-Inf", "1e400"} {
		status, _ = ta.get(t, "/api/v1/videos/"+knownVideo.String()+"/track-positions?timestamp="+bad)
		assert.Equal(t, http.StatusBadRequest, status, bad)
	}
}

func TestTrajectoryIsCollected(t *testing.T) {
	ta := newTestApp(t)

	status, body := ta.get(t, "/api/v1/tracking/"+knownVideo.String()+"/trajectory")
	require.Equal(t, http.StatusOK, status)

	var points []models.TrajectoryPoint
	require.NoError(t, json.Unmarshal(body.Data, &points))
	require.Len(t, points, 2)
	assert.Equal(t, 2.0, points[1].Timestamp)

	status, _ = ta.get(t, "/api/v1/tracking/"+uuid.NewString()+"/trajectory")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestIntersectionTimeRange(t *testing.T) {
	ta := newTestApp(t)
	base := "/api/v1/intersections/time-range"

	status, _ := ta.get(t, base+"?start_time=1&end_time=2")
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := ta.get(t, base+"?video_id="+knownVideo.String()+"&start_time=1.5&end_time=4")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "[]", string(body.Data))
	assert.Equal(t, 1.5, ta.intersections.start)
	assert.Equal(t, 4.0, ta.intersections.end)

	status, _ = ta.get(t, base+"?video="+knownVideo.String()+"&start_time=5&end_time=1")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = ta.get(t, base+"?video_id="+knownVideo.String()+"&start_time=0&end_time=NaN")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCreateIngestJob(t *testing.T) {
	ta := newTestApp(t)
	post := func(body string) (int, envelope) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest-jobs", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return ta.do(t, req)
	}

	status, _ := post(`{"json_path": "/in/clip_A.json"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = post(`{"json_path": "/in/clip_A.json", "video_path": "/in/missing.mp4"}`)
	assert.Equal(t, http.StatusNotFound, status)

	status, body := post(`{"json_path": "/in/clip_A.json", "video_path": "/in/clip_A.mp4"}`)
	assert.Equal(t, http.StatusCreated, status)
	assert.Contains(t, string(body.Data), `"status":"pending"`)
}

func TestAdminLogsRequireToken(t *testing.T) {
	ta := newTestApp(t)

	status, _ := ta.get(t, "/api/v1/admin/logs")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = ta.get(t, "/api/v1/admin/logs?token=wrong")
	assert.Equal(t, http.StatusUnauthorized, status)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/logs/files", nil)
	req.Header.Set("X-Admin-Token", "secret")
	status, body := ta.do(t, req)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, body.Success)
}

func TestUnknownRoute(t *testing.T) {
	ta := newTestApp(t)
	status, body := ta.get(t, "/api/v1/nope")
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, body.Success)
}
