package worker

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cjnghn/drone-topview-analysis/domain/dto"
	"github.com/cjnghn/drone-topview-analysis/domain/models"
	"github.com/cjnghn/drone-topview-analysis/domain/services"
	"github.com/cjnghn/drone-topview-analysis/infrastructure/websocket"
	"github.com/cjnghn/drone-topview-analysis/pkg/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Init("", false)
	os.Exit(m.Run())
}

// fakeJobService keeps jobs in memory
type fakeJobService struct {
	services.IngestJobService

	mu       sync.Mutex
	pending  []models.IngestJob
	executed []uuid.UUID
	failFor  map[uuid.UUID]bool
	hashes   map[string]bool
	enqueued []string
}

func (f *fakeJobService) ClaimPending(_ context.Context, limit int) ([]models.IngestJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit > len(f.pending) {
		limit = len(f.pending)
	}
	claimed := f.pending[:limit]
	f.pending = f.pending[limit:]
	return claimed, nil
}

func (f *fakeJobService) Execute(_ context.Context, job *models.IngestJob, progress services.ProgressFunc) (*dto.IngestResult, error) {
	f.mu.Lock()
	f.executed = append(f.executed, job.ID)
	fail := f.failFor[job.ID]
	f.mu.Unlock()

	progress(services.IngestProgress{Stage: "tracks", Total: 3, Processed: 1})
	if fail {
		return nil, errors.New("descriptor rejected")
	}
	return &dto.IngestResult{VideoID: uuid.New(), VideoCreated: true}, nil
}

func (f *fakeJobService) EnqueueUnique(_ context.Context, jsonPath, videoPath string, _ models.IngestSource) (*models.IngestJob, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hashes[jsonPath] {
		return &models.IngestJob{ID: uuid.New()}, false, nil
	}
	if f.hashes == nil {
		f.hashes = make(map[string]bool)
	}
	f.hashes[jsonPath] = true
	f.enqueued = append(f.enqueued, jsonPath+"|"+videoPath)
	return &models.IngestJob{ID: uuid.New()}, true, nil
}

func (f *fakeJobService) executedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.executed)
}

type recordedEvent struct {
	room string
	kind string
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (b *fakeBroadcaster) BroadcastToRoom(room, kind string, _ map[string]interface{}) {
	b.mu.Lock()
	b.events = append(b.events, recordedEvent{room: room, kind: kind})
	b.mu.Unlock()
}

func (b *fakeBroadcaster) kinds(room string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, e := range b.events {
		if e.room == room {
			out = append(out, e.kind)
		}
	}
	return out
}

func TestWorkerDrainsQueueAndBroadcasts(t *testing.T) {
	ok1, ok2, bad := uuid.New(), uuid.New(), uuid.New()
	svc := &fakeJobService{
		pending: []models.IngestJob{{ID: ok1}, {ID: ok2}, {ID: bad}},
		failFor: map[uuid.UUID]bool{bad: true},
	}
	events := &fakeBroadcaster{}

	w := NewIngestWorker(svc, NewSignal(), events, nil, 2)
	w.Start()
	defer w.Stop()

	require.Eventually(t, func() bool { return svc.executedCount() == 3 }, 2*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		return len(events.kinds(bad.String())) == 3
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, []string{
		websocket.EventIngestStarted,
		websocket.EventIngestProgress,
		websocket.EventIngestCompleted,
	}, events.kinds(ok1.String()))
	assert.Equal(t, []string{
		websocket.EventIngestStarted,
		websocket.EventIngestProgress,
		websocket.EventIngestFailed,
	}, events.kinds(bad.String()))
}

func TestWorkerWakesOnSignal(t *testing.T) {
	svc := &fakeJobService{}
	signal := NewSignal()

	w := NewIngestWorker(svc, signal, nil, nil, 1)
	w.Start()
	defer w.Stop()

	svc.mu.Lock()
	svc.pending = append(svc.pending, models.IngestJob{ID: uuid.New()})
	svc.mu.Unlock()
	signal.TriggerIngest()

	require.Eventually(t, func() bool { return svc.executedCount() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestWorkerStartStop(t *testing.T) {
	w := NewIngestWorker(&fakeJobService{}, NewSignal(), nil, nil, 0)
	assert.False(t, w.IsRunning())
	w.Start()
	w.Start()
	assert.True(t, w.IsRunning())
	w.Stop()
	w.Stop()
	assert.False(t, w.IsRunning())
}

func TestSignalNeverBlocks(t *testing.T) {
	s := NewSignal()
	for i := 0; i < 100; i++ {
		s.TriggerIngest()
	}
	assert.Len(t, s, cap(s))
}

func TestInboxScanPairsDescriptorsWithVideos(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/inbox/clip_A.json", []byte(`{}`), 0644))
	require.NoError(t, afero.WriteFile(fs, "/inbox/clip_A.mp4", []byte("v"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/inbox/clip_B.json", []byte(`{}`), 0644))
	require.NoError(t, afero.WriteFile(fs, "/inbox/clip_B.mkv", []byte("v"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/inbox/orphan.json", []byte(`{}`), 0644))
	require.NoError(t, afero.WriteFile(fs, "/inbox/notes.txt", []byte("x"), 0644))

	svc := &fakeJobService{}
	scanner := NewInboxScanner(fs, "/inbox", svc)

	n, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.ElementsMatch(t, []string{
		"/inbox/clip_A.json|/inbox/clip_A.mp4",
		"/inbox/clip_B.json|/inbox/clip_B.mkv",
	}, svc.enqueued)

	// a second scan finds the same descriptors already queued
	n, err = scanner.Scan(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInboxScanMissingDirectory(t *testing.T) {
	scanner := NewInboxScanner(afero.NewMemMapFs(), "/nope", &fakeJobService{})
	_, err := scanner.Scan(context.Background())
	assert.Error(t, err)
}
