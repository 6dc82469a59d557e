package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/borgwatch/internal/api/response"
	"github.com/edvin/borgwatch/internal/model"
)

func newPushHandler(t *testing.T) *Push {
	t.Helper()
	return NewPush(newTestStore(t), newTestAuth())
}

func decodePushResponse(t *testing.T, rec *httptest.ResponseRecorder) response.Push {
	t.Helper()
	var body response.Push
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestPushEvent(t *testing.T) {
	h := newPushHandler(t)
	rec := httptest.NewRecorder()
	r := withAPIKey(newRequest(http.MethodPost, "/api/push/event", map[string]any{
		"job_id":  "job1",
		"type":    "success",
		"message": "backup finished",
		"extra":   map[string]any{"action": "everything"},
	}), testJobKey)

	h.Event(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodePushResponse(t, rec)
	assert.True(t, body.Success)
	assert.Equal(t, "job1", body.JobID)
	assert.False(t, body.Timestamp.IsZero())

	page, err := h.store.ListEvents("job1", 0, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "backup finished", page.Items[0].Message)
}

func TestPushEvent_KeyScopedToOtherJob(t *testing.T) {
	h := newPushHandler(t)
	rec := httptest.NewRecorder()
	r := withAPIKey(newRequest(http.MethodPost, "/api/push/event", map[string]any{
		"job_id":  "job1",
		"type":    "info",
		"message": "hello",
	}), testOtherKey)

	h.Event(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPushEvent_ServerKeyReachesAnyJob(t *testing.T) {
	h := newPushHandler(t)
	rec := httptest.NewRecorder()
	r := withAPIKey(newRequest(http.MethodPost, "/api/push/event", map[string]any{
		"job_id":  "job2",
		"type":    "info",
		"message": "hello",
	}), testServerKey)

	h.Event(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPushEvent_InvalidJobID(t *testing.T) {
	h := newPushHandler(t)
	rec := httptest.NewRecorder()
	r := withAPIKey(newRequest(http.MethodPost, "/api/push/event", map[string]any{
		"job_id":  "../escape",
		"type":    "info",
		"message": "hello",
	}), testServerKey)

	h.Event(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeErrorResponse(rec)["error"], "validation error")
}

func TestPushStatus(t *testing.T) {
	h := newPushHandler(t)
	start := time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Second)

	rec := httptest.NewRecorder()
	r := withAPIKey(newRequest(http.MethodPost, "/api/push/status", map[string]any{
		"job_id":     "job1",
		"run_id":     "run-1",
		"status":     "success",
		"start_time": start.Format(time.RFC3339),
		"end_time":   end.Format(time.RFC3339),
		"log_lines":  []string{"done"},
	}), testJobKey)

	h.Status(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)

	detail, err := h.store.GetRunDetail("job1", "run-1", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusSuccess, detail.Status)
	assert.Equal(t, "90s", detail.Duration)
	assert.Equal(t, []string{"done"}, detail.LogLines)
}

func TestPushStatus_BadStatus(t *testing.T) {
	h := newPushHandler(t)
	rec := httptest.NewRecorder()
	r := withAPIKey(newRequest(http.MethodPost, "/api/push/status", map[string]any{
		"job_id":     "job1",
		"run_id":     "run-1",
		"status":     "exploded",
		"start_time": time.Now().Format(time.RFC3339),
	}), testJobKey)

	h.Status(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPushBorgInfo(t *testing.T) {
	h := newPushHandler(t)
	rec := httptest.NewRecorder()
	r := withAPIKey(newRequest(http.MethodPost, "/api/push/borg/info", map[string]any{
		"job_id": "job2",
		"repository_info": map[string]any{
			"repository": map[string]any{"id": "abc", "location": "/srv/backup"},
			"cache": map[string]any{
				"stats": map[string]any{"total_size": 1000, "total_csize": 250, "unique_size": 800, "unique_csize": 200},
			},
		},
		"archive_list": []map[string]any{
			{"name": "daily-1", "start": "2026-03-01T02:00:00"},
		},
	}), testOtherKey)

	h.BorgInfo(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)

	job, err := h.store.GetJob("job2")
	require.NoError(t, err)
	assert.Equal(t, 1, job.Stats.ArchiveCount)
	assert.Equal(t, "75.0%", job.Stats.CompressionRatio)
	assert.Equal(t, "/srv/backup", job.RepositoryPath)
}

func TestPushBorgmaticInfo_MultiRepoWithoutLabel(t *testing.T) {
	h := newPushHandler(t)
	rec := httptest.NewRecorder()
	r := withAPIKey(newRequest(http.MethodPost, "/api/push/borgmatic/info", map[string]any{
		"job_id": "job1",
		"info_data": []map[string]any{
			{"repository": map[string]any{"label": "onsite"}},
			{"repository": map[string]any{"label": "offsite"}},
		},
	}), testJobKey)

	h.BorgmaticInfo(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeErrorResponse(rec)["error"], "repository_label")
}

func TestPushBorgmaticInfo_UnknownLabel(t *testing.T) {
	h := newPushHandler(t)
	rec := httptest.NewRecorder()
	r := withAPIKey(newRequest(http.MethodPost, "/api/push/borgmatic/info", map[string]any{
		"job_id": "job1",
		"info_data": []map[string]any{
			{"repository": map[string]any{"label": "onsite"}},
			{"repository": map[string]any{"label": "offsite"}},
		},
		"repository_label": "moon-base",
	}), testJobKey)

	h.BorgmaticInfo(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeErrorResponse(rec)["error"], "moon-base")
}

func TestPushBorgmaticRinfo_SingleObjectPayload(t *testing.T) {
	h := newPushHandler(t)
	rec := httptest.NewRecorder()
	r := withAPIKey(newRequestRaw(http.MethodPost, "/api/push/borgmatic/rinfo", `{
		"job_id": "job1",
		"rinfo_data": {
			"repository": {"label": "onsite", "location": "ssh://backup/repo"},
			"archives": [{"name": "daily-1", "start": "2026-03-01T02:00:00"}]
		}
	}`), testJobKey)

	h.BorgmaticRinfo(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)

	job, err := h.store.GetJob("job1")
	require.NoError(t, err)
	assert.Equal(t, 1, job.Stats.ArchiveCount)
	assert.Equal(t, "ssh://backup/repo", job.RepositoryPath)
}

func TestPushGone(t *testing.T) {
	rec := httptest.NewRecorder()
	Gone("/api/push/status")(rec, newRequest(http.MethodPost, "/push/job1/log", nil))

	assert.Equal(t, http.StatusGone, rec.Code)
	assert.Contains(t, decodeErrorResponse(rec)["error"], "/api/push/status")
}
