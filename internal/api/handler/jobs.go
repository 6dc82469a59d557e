package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/edvin/borgwatch/internal/api/request"
	"github.com/edvin/borgwatch/internal/api/response"
	"github.com/edvin/borgwatch/internal/store"
)

// Per-route pagination defaults and ceilings, matching the original API.
const (
	archiveDefaultLimit = 15
	archiveMaxLimit     = 100
	runsDefaultLimit    = 15
	runsMaxLimit        = 50
	logDefaultLimit     = 50
	logMaxLimit         = 200
	eventDefaultLimit   = 15
	eventMaxLimit       = 100
)

type Jobs struct {
	store *store.Store
}

func NewJobs(st *store.Store) *Jobs {
	return &Jobs{store: st}
}

// List returns a summary for every configured job.
func (h *Jobs) List(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, h.store.ListJobs())
}

// Get returns full detail for one job.
func (h *Jobs) Get(w http.ResponseWriter, r *http.Request) {
	jobID, err := request.JobID(chi.URLParam(r, "jobID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := h.store.GetJob(jobID)
	if err != nil {
		h.writeStoreError(w, r, err, "job not found")
		return
	}

	response.WriteJSON(w, http.StatusOK, job)
}

// Archives returns a sorted, paginated window over a job's archives.
func (h *Jobs) Archives(w http.ResponseWriter, r *http.Request) {
	jobID, err := request.JobID(chi.URLParam(r, "jobID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	win, err := request.ParseWindow(r, archiveDefaultLimit, archiveMaxLimit)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	sortParams, err := request.ParseArchiveSort(r)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.store.ListArchives(jobID, win.Offset, win.Limit, sortParams.By, sortParams.Order)
	if err != nil {
		h.writeStoreError(w, r, err, "job not found")
		return
	}

	response.WriteJSON(w, http.StatusOK, page)
}

// Runs returns a job's most recent runs, newest first.
func (h *Jobs) Runs(w http.ResponseWriter, r *http.Request) {
	jobID, err := request.JobID(chi.URLParam(r, "jobID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	win, err := request.ParseWindow(r, runsDefaultLimit, runsMaxLimit)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	runs, err := h.store.ListRuns(jobID, win.Limit)
	if err != nil {
		h.writeStoreError(w, r, err, "job not found")
		return
	}

	response.WriteJSON(w, http.StatusOK, runs)
}

// RunDetail returns one run's metadata plus a paginated log window.
func (h *Jobs) RunDetail(w http.ResponseWriter, r *http.Request) {
	jobID, err := request.JobID(chi.URLParam(r, "jobID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	runID := chi.URLParam(r, "runID")

	win, err := request.ParseWindow(r, logDefaultLimit, logMaxLimit)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	detail, err := h.store.GetRunDetail(jobID, runID, win.Offset, win.Limit)
	if err != nil {
		h.writeStoreError(w, r, err, "run not found")
		return
	}

	response.WriteJSON(w, http.StatusOK, detail)
}

// Events returns a paginated window over a job's events, newest first.
func (h *Jobs) Events(w http.ResponseWriter, r *http.Request) {
	jobID, err := request.JobID(chi.URLParam(r, "jobID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	win, err := request.ParseWindow(r, eventDefaultLimit, eventMaxLimit)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.store.ListEvents(jobID, win.Offset, win.Limit)
	if err != nil {
		h.writeStoreError(w, r, err, "job not found")
		return
	}

	response.WriteJSON(w, http.StatusOK, page)
}

// EventInfo returns a paginated window over an event's info side-file.
func (h *Jobs) EventInfo(w http.ResponseWriter, r *http.Request) {
	jobID, err := request.JobID(chi.URLParam(r, "jobID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	eventID := chi.URLParam(r, "eventID")

	win, err := request.ParseWindow(r, logDefaultLimit, logMaxLimit)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	info, err := h.store.GetEventInfo(jobID, eventID, win.Offset, win.Limit)
	if err != nil {
		h.writeStoreError(w, r, err, "event info not found")
		return
	}

	response.WriteJSON(w, http.StatusOK, info)
}

// writeStoreError maps store errors to responses without leaking paths.
func (h *Jobs) writeStoreError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	if errors.Is(err, store.ErrNotFound) {
		response.WriteError(w, http.StatusNotFound, notFoundMsg)
		return
	}
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("store read failed")
	response.WriteError(w, http.StatusInternalServerError, "internal server error")
}
