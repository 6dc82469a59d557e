package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/borgwatch/internal/model"
)

func TestJobsList(t *testing.T) {
	h := NewJobs(newTestStore(t))
	rec := httptest.NewRecorder()

	h.List(rec, newRequest(http.MethodGet, "/api/jobs", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var jobs []model.JobSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &jobs))
	require.Len(t, jobs, 2)
	assert.Equal(t, "Job One", jobs[0].Name)
	assert.Equal(t, "Job Two", jobs[1].Name)
	assert.Equal(t, "no-data", jobs[0].Status)
}

func TestJobsGet_NotConfigured(t *testing.T) {
	h := NewJobs(newTestStore(t))
	rec := httptest.NewRecorder()
	r := withChiURLParams(newRequest(http.MethodGet, "/api/jobs/ghost", nil), map[string]string{"jobID": "ghost"})

	h.Get(rec, r)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "job not found", decodeErrorResponse(rec)["error"])
}

func TestJobsGet_InvalidJobID(t *testing.T) {
	h := NewJobs(newTestStore(t))
	rec := httptest.NewRecorder()
	r := withChiURLParams(newRequest(http.MethodGet, "/api/jobs/x", nil), map[string]string{"jobID": "../etc"})

	h.Get(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJobsGet(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.StoreRun("job1", model.RunPush{
		RunID:     "run-1",
		Status:    model.RunStatusSuccess,
		StartTime: time.Now().Add(-time.Hour),
	}))

	h := NewJobs(st)
	rec := httptest.NewRecorder()
	r := withChiURLParams(newRequest(http.MethodGet, "/api/jobs/job1", nil), map[string]string{"jobID": "job1"})

	h.Get(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	var job model.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, "job1", job.JobID)
	assert.Equal(t, model.RunStatusSuccess, job.Status)
	assert.Equal(t, "24h", job.MaxAge)
}

func TestJobsArchives_BadPagination(t *testing.T) {
	h := NewJobs(newTestStore(t))

	for _, target := range []string{
		"/api/jobs/job1/archives?offset=-1",
		"/api/jobs/job1/archives?limit=0",
		"/api/jobs/job1/archives?limit=101",
		"/api/jobs/job1/archives?sort_by=size",
		"/api/jobs/job1/archives?sort_order=up",
	} {
		rec := httptest.NewRecorder()
		r := withChiURLParams(newRequest(http.MethodGet, target, nil), map[string]string{"jobID": "job1"})
		h.Archives(rec, r)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestJobsArchives_NoData(t *testing.T) {
	h := NewJobs(newTestStore(t))
	rec := httptest.NewRecorder()
	r := withChiURLParams(newRequest(http.MethodGet, "/api/jobs/job1/archives", nil), map[string]string{"jobID": "job1"})

	h.Archives(rec, r)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJobsArchives(t *testing.T) {
	st := newTestStore(t)
	size := int64(1 << 20)
	require.NoError(t, st.StoreArchiveSet("job1", model.RepositoryInfo{}, []model.ArchiveEntry{
		{Name: "alpha", Start: "2026-01-01T10:00:00", OriginalSize: &size},
		{Name: "beta", Start: "2026-01-02T10:00:00", OriginalSize: &size},
	}))

	h := NewJobs(st)
	rec := httptest.NewRecorder()
	r := withChiURLParams(newRequest(http.MethodGet, "/api/jobs/job1/archives?limit=1", nil), map[string]string{"jobID": "job1"})

	h.Archives(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	var page model.ArchivePage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "beta", page.Items[0].Name)
	assert.True(t, page.HasMore)
}

func TestJobsRuns_Empty(t *testing.T) {
	h := NewJobs(newTestStore(t))
	rec := httptest.NewRecorder()
	r := withChiURLParams(newRequest(http.MethodGet, "/api/jobs/job1/runs", nil), map[string]string{"jobID": "job1"})

	h.Runs(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestJobsRunDetail_NotFound(t *testing.T) {
	h := NewJobs(newTestStore(t))
	rec := httptest.NewRecorder()
	r := withChiURLParams(newRequest(http.MethodGet, "/api/jobs/job1/runs/ghost", nil),
		map[string]string{"jobID": "job1", "runID": "ghost"})

	h.RunDetail(rec, r)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "run not found", decodeErrorResponse(rec)["error"])
}

func TestJobsRunDetail(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.StoreRun("job1", model.RunPush{
		RunID:     "run-1",
		Status:    model.RunStatusSuccess,
		StartTime: time.Now().Add(-time.Hour),
		LogLines:  []string{"line 1", "line 2", "line 3"},
	}))

	h := NewJobs(st)
	rec := httptest.NewRecorder()
	r := withChiURLParams(newRequest(http.MethodGet, "/api/jobs/job1/runs/run-1?offset=1&limit=1", nil),
		map[string]string{"jobID": "job1", "runID": "run-1"})

	h.RunDetail(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	var detail model.RunDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, []string{"line 2"}, detail.LogLines)
	assert.Equal(t, 3, detail.TotalLines)
	assert.True(t, detail.HasMore)
}

func TestJobsEvents(t *testing.T) {
	st := newTestStore(t)
	_, err := st.StoreEvent("job1", "info", "backup started", nil, nil)
	require.NoError(t, err)

	h := NewJobs(st)
	rec := httptest.NewRecorder()
	r := withChiURLParams(newRequest(http.MethodGet, "/api/jobs/job1/events", nil), map[string]string{"jobID": "job1"})

	h.Events(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	var page model.EventPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "backup started", page.Items[0].Message)
}

func TestJobsEventInfo_NotFound(t *testing.T) {
	st := newTestStore(t)
	eventID, err := st.StoreEvent("job1", "info", "no details", nil, nil)
	require.NoError(t, err)

	h := NewJobs(st)
	rec := httptest.NewRecorder()
	r := withChiURLParams(newRequest(http.MethodGet, "/api/jobs/job1/events/"+eventID+"/info", nil),
		map[string]string{"jobID": "job1", "eventID": eventID})

	h.EventInfo(rec, r)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
