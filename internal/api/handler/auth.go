package handler

import (
	"net/http"
	"time"

	"github.com/edvin/borgwatch/internal/api/middleware"
	"github.com/edvin/borgwatch/internal/api/request"
	"github.com/edvin/borgwatch/internal/api/response"
	"github.com/edvin/borgwatch/internal/auth"
)

type Auth struct {
	svc *auth.Service
}

func NewAuth(svc *auth.Service) *Auth {
	return &Auth{svc: svc}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Login checks dashboard credentials and returns a bearer token.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !h.svc.VerifyCredentials(req.Username, req.Password) {
		w.Header().Set("WWW-Authenticate", "Bearer")
		response.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, expiresAt, err := h.svc.IssueToken(req.Username)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	response.WriteJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	})
}

// Verify confirms the presented token is valid. Runs behind JWTAuth, so
// reaching it means the token checked out.
func (h *Auth) Verify(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, map[string]any{
		"valid": true,
		"user":  middleware.GetUser(r.Context()),
	})
}
