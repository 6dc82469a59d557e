package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/edvin/borgwatch/internal/api/middleware"
	"github.com/edvin/borgwatch/internal/api/request"
	"github.com/edvin/borgwatch/internal/api/response"
	"github.com/edvin/borgwatch/internal/auth"
	"github.com/edvin/borgwatch/internal/model"
	"github.com/edvin/borgwatch/internal/store"
)

type Push struct {
	store *store.Store
	auth  *auth.Service
}

func NewPush(st *store.Store, svc *auth.Service) *Push {
	return &Push{store: st, auth: svc}
}

// authorize checks that the request's API key may push to jobID.
func (h *Push) authorize(w http.ResponseWriter, r *http.Request, jobID string) bool {
	if !h.auth.VerifyAPIKeyForJob(middleware.GetAPIKey(r.Context()), jobID) {
		response.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return false
	}
	return true
}

// Event stores a lifecycle event for a job.
func (h *Push) Event(w http.ResponseWriter, r *http.Request) {
	var req request.PushEvent
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !h.authorize(w, r, req.JobID) {
		return
	}

	if _, err := h.store.StoreEvent(req.JobID, req.Type, req.Message, req.Info, req.Extra); err != nil {
		h.writeStoreError(w, r, err, "failed to store event")
		return
	}

	response.WritePush(w, req.JobID, "Event stored successfully")
}

// Status stores a backup run's status and log.
func (h *Push) Status(w http.ResponseWriter, r *http.Request) {
	var req request.PushStatus
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !h.authorize(w, r, req.JobID) {
		return
	}

	if err := h.store.StoreRun(req.JobID, req.Run()); err != nil {
		h.writeStoreError(w, r, err, "failed to store backup status")
		return
	}

	response.WritePush(w, req.JobID, "Status and logs stored successfully")
}

// BorgInfo stores borg repository info and the archive list.
func (h *Push) BorgInfo(w http.ResponseWriter, r *http.Request) {
	var req request.BorgInfo
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !h.authorize(w, r, req.JobID) {
		return
	}

	if err := h.store.StoreArchiveSet(req.JobID, req.RepositoryInfo, req.ArchiveList); err != nil {
		h.writeStoreError(w, r, err, "failed to store Borg info")
		return
	}

	response.WritePush(w, req.JobID, "Borg repository info and archives stored successfully")
}

// BorgmaticInfo stores borgmatic info output for one repository.
func (h *Push) BorgmaticInfo(w http.ResponseWriter, r *http.Request) {
	var req request.BorgmaticInfo
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !h.authorize(w, r, req.JobID) {
		return
	}
	if !h.checkLabel(w, req.InfoData, req.RepositoryLabel) {
		return
	}

	if err := h.store.StoreBorgmaticInfo(req.JobID, req.InfoData, req.RepositoryLabel); err != nil {
		h.writeStoreError(w, r, err, "failed to store Borgmatic info")
		return
	}

	response.WritePush(w, req.JobID, "Borgmatic repository info stored successfully")
}

// BorgmaticRinfo stores borgmatic rinfo output for one repository.
func (h *Push) BorgmaticRinfo(w http.ResponseWriter, r *http.Request) {
	var req request.BorgmaticRinfo
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !h.authorize(w, r, req.JobID) {
		return
	}
	if !h.checkLabel(w, req.RinfoData, req.RepositoryLabel) {
		return
	}

	if err := h.store.StoreBorgmaticRinfo(req.JobID, req.RinfoData, req.RepositoryLabel); err != nil {
		h.writeStoreError(w, r, err, "failed to store Borgmatic rinfo")
		return
	}

	response.WritePush(w, req.JobID, "Borgmatic repository and archive info stored successfully")
}

// checkLabel rejects ambiguous multi-repository payloads and unknown labels
// before they reach the store.
func (h *Push) checkLabel(w http.ResponseWriter, payload model.BorgmaticPayload, label string) bool {
	if len(payload) > 1 && label == "" {
		response.WriteError(w, http.StatusBadRequest,
			"multiple repositories found in borgmatic data, specify repository_label to select one")
		return false
	}
	if label != "" {
		if _, err := store.ResolveEntry(payload, label); err != nil {
			response.WriteError(w, http.StatusBadRequest,
				"repository with label '"+label+"' not found in borgmatic data")
			return false
		}
	}
	return true
}

// Gone rejects retired push endpoints with a pointer at the replacement.
func Gone(replacement string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		response.WriteError(w, http.StatusGone, "this endpoint is deprecated, use "+replacement+" instead")
	}
}

func (h *Push) writeStoreError(w http.ResponseWriter, r *http.Request, err error, message string) {
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("store write failed")
	response.WriteError(w, http.StatusInternalServerError, message)
}
