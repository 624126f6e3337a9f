package serviceimpl

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cjnghn/drone-topview-analysis/domain/dto"
	"github.com/cjnghn/drone-topview-analysis/domain/models"
	"github.com/cjnghn/drone-topview-analysis/domain/services"
)

func TestEnqueueCreatesPendingJob(t *testing.T) {
	env := newTestEnv(t)
	jsonPath, videoPath := env.writeInputs(t, "clip_A.mp4", clipDescriptor())

	job, err := env.jobs.Enqueue(context.Background(), jsonPath, videoPath, models.IngestSourceAPI)
	require.NoError(t, err)

	assert.Equal(t, models.IngestJobStatusPending, job.Status)
	assert.Equal(t, "clip_A.mp4", job.Title)
	assert.Len(t, job.DescriptorHash, 64)
	assert.Equal(t, models.IngestSourceAPI, job.Source)
	assert.Equal(t, 1, env.trigger.calls)

	stored, err := env.jobs.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.DescriptorHash, stored.DescriptorHash)

	// Nothing is ingested until a worker runs the job
	assert.Equal(t, rowCounts{}, env.counts(t))
}

func TestEnqueueMissingInput(t *testing.T) {
	env := newTestEnv(t)
	jsonPath, _ := env.writeInputs(t, "clip_A.mp4", clipDescriptor())

	_, err := env.jobs.Enqueue(context.Background(), jsonPath, "/in/missing.mp4", models.IngestSourceAPI)
	assert.ErrorIs(t, err, services.ErrInputNotFound)

	_, total, err := env.jobs.ListJobs(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Zero(t, env.trigger.calls)
}

func TestEnqueueUniqueSkipsLiveDescriptor(t *testing.T) {
	env := newTestEnv(t)
	jsonPath, videoPath := env.writeInputs(t, "clip_A.mp4", clipDescriptor())

	first, created, err := env.jobs.EnqueueUnique(context.Background(), jsonPath, videoPath, models.IngestSourceInbox)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := env.jobs.EnqueueUnique(context.Background(), jsonPath, videoPath, models.IngestSourceInbox)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, env.trigger.calls)

	// A failed job does not block a retry
	require.NoError(t, env.jobRepo.Fail(context.Background(), first.ID, "boom"))
	third, created, err := env.jobs.EnqueueUnique(context.Background(), jsonPath, videoPath, models.IngestSourceInbox)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, third.ID)
}

func TestRunNowCompletesJob(t *testing.T) {
	env := newTestEnv(t)
	jsonPath, videoPath := env.writeInputs(t, "clip_A.mp4", clipDescriptor())

	var updates int
	job, result, err := env.jobs.RunNow(context.Background(), jsonPath, videoPath, models.IngestSourceCLI, func(services.IngestProgress) {
		updates++
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Positive(t, updates)
	assert.Zero(t, env.trigger.calls)

	assert.Equal(t, models.IngestJobStatusCompleted, job.Status)
	require.NotNil(t, job.VideoID)
	assert.Equal(t, result.VideoID, *job.VideoID)

	stored, err := env.jobs.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.IngestJobStatusCompleted, stored.Status)
	assert.NotNil(t, stored.StartedAt)
	assert.NotNil(t, stored.CompletedAt)
	assert.Equal(t, 1, stored.SkippedItems)
	assert.Equal(t, stored.TotalItems, stored.ProcessedItems)

	var persisted dto.IngestResult
	require.NoError(t, json.Unmarshal([]byte(stored.Result), &persisted))
	assert.Equal(t, result.VideoID, persisted.VideoID)
	assert.Equal(t, 1, persisted.Detections.Created)
}

func TestRunNowRecordsFailure(t *testing.T) {
	env := newTestEnv(t)
	jsonPath, videoPath := env.writeRawInputs(t, "broken.mp4", []byte(`{"start_time": "soon"`))

	job, result, err := env.jobs.RunNow(context.Background(), jsonPath, videoPath, models.IngestSourceCLI, nil)
	assert.ErrorIs(t, err, services.ErrValidation)
	assert.Nil(t, result)
	require.NotNil(t, job)
	assert.Equal(t, models.IngestJobStatusFailed, job.Status)

	stored, err := env.jobs.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.IngestJobStatusFailed, stored.Status)
	assert.NotEmpty(t, stored.LastError)
	assert.Nil(t, stored.VideoID)
}

func TestClaimPendingClaimsOnce(t *testing.T) {
	env := newTestEnv(t)
	jsonA, videoA := env.writeInputs(t, "a.mp4", clipDescriptor())
	jsonB, videoB := env.writeInputs(t, "b.mp4", descriptor([]obj{track(1, 0, 1)}, nil, nil))

	_, err := env.jobs.Enqueue(context.Background(), jsonA, videoA, models.IngestSourceAPI)
	require.NoError(t, err)
	_, err = env.jobs.Enqueue(context.Background(), jsonB, videoB, models.IngestSourceAPI)
	require.NoError(t, err)

	claimed, err := env.jobs.ClaimPending(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, claimed, 2)
	for _, job := range claimed {
		assert.Equal(t, models.IngestJobStatusRunning, job.Status)
		assert.NotNil(t, job.StartedAt)
	}

	again, err := env.jobs.ClaimPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, again)

	result, err := env.jobs.Execute(context.Background(), &claimed[0], nil)
	require.NoError(t, err)
	assert.Equal(t, models.IngestJobStatusCompleted, claimed[0].Status)
	assert.Equal(t, result.VideoID, *claimed[0].VideoID)
}

func TestGetJobNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.jobs.GetJob(context.Background(), uuid.New())
	assert.ErrorIs(t, err, services.ErrNotFound)
}
