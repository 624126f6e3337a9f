package dto

import (
	"encoding/json"

	"github.com/cjnghn/drone-topview-analysis/domain/models"
)

func VideoStatsToResponse(v *models.VideoStats) *VideoResponse {
	if v == nil {
		return nil
	}
	return &VideoResponse{
		ID:             v.ID,
		Title:          v.Title,
		File:           v.FilePath,
		StartTime:      v.StartTime,
		EndTime:        v.EndTime,
		StartLatitude:  v.StartLatitude,
		StartLongitude: v.StartLongitude,
		EndLatitude:    v.EndLatitude,
		EndLongitude:   v.EndLongitude,
		TrackingCount:  v.TrackingCount,
		FrameCount:     v.FrameCount,
		Duration:       v.Duration(),
	}
}

func VideoStatsListToResponse(videos []models.VideoStats) []*VideoResponse {
	result := make([]*VideoResponse, len(videos))
	for i := range videos {
		result[i] = VideoStatsToResponse(&videos[i])
	}
	return result
}

func IngestJobToResponse(job *models.IngestJob) *IngestJobResponse {
	if job == nil {
		return nil
	}
	resp := &IngestJobResponse{
		ID:             job.ID,
		Source:         string(job.Source),
		JSONPath:       job.JSONPath,
		VideoPath:      job.VideoPath,
		Title:          job.Title,
		Status:         string(job.Status),
		TotalItems:     job.TotalItems,
		ProcessedItems: job.ProcessedItems,
		SkippedItems:   job.SkippedItems,
		VideoID:        job.VideoID,
		LastError:      job.LastError,
		StartedAt:      job.StartedAt,
		CompletedAt:    job.CompletedAt,
		CreatedAt:      job.CreatedAt,
	}

	if job.Result != "" {
		var result IngestResult
		if err := json.Unmarshal([]byte(job.Result), &result); err == nil {
			resp.Result = &result
		}
	}

	return resp
}

func IngestJobsToResponse(jobs []models.IngestJob) []*IngestJobResponse {
	result := make([]*IngestJobResponse, len(jobs))
	for i := range jobs {
		result[i] = IngestJobToResponse(&jobs[i])
	}
	return result
}
