package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	mw "github.com/edvin/borgwatch/internal/api/middleware"
	"github.com/edvin/borgwatch/internal/auth"
	"github.com/edvin/borgwatch/internal/config"
	"github.com/edvin/borgwatch/internal/jobconfig"
	"github.com/edvin/borgwatch/internal/store"
)

type staticConfigs map[string]jobconfig.JobConfig

func (c staticConfigs) JobConfigs() map[string]jobconfig.JobConfig { return c }

const (
	testJobKey    = "job1-key-0000000000000000000000"
	testOtherKey  = "job2-key-0000000000000000000000"
	testServerKey = "server-key-00000000000000000000"
)

func testConfigs() staticConfigs {
	return staticConfigs{
		"job1": {JobID: "job1", DisplayName: "Job One", BackupType: "borgmatic", MaxAge: "24h", Tags: []string{}, APIKeys: []string{testJobKey}},
		"job2": {JobID: "job2", DisplayName: "Job Two", BackupType: "borg", MaxAge: "24h", Tags: []string{}, APIKeys: []string{testOtherKey}},
	}
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(t.TempDir(), testConfigs(), zerolog.Nop())
}

func newTestAuth() *auth.Service {
	return auth.NewService(config.AuthConfig{
		Username:       "admin",
		Password:       "secret-password",
		JWTSecret:      "test-secret",
		JWTExpireHours: 1,
		APITokens:      []string{testServerKey},
	}, testConfigs())
}

// newRequest creates a new HTTP request with an optional JSON body.
func newRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

// newRequestRaw creates a new HTTP request with a raw string body.
func newRequestRaw(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// withChiURLParams adds chi URL parameters to the request context.
func withChiURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withAPIKey injects an authenticated push key, as APIKeyAuth would.
func withAPIKey(r *http.Request, key string) *http.Request {
	return r.WithContext(mw.WithAPIKey(r.Context(), key))
}

// decodeErrorResponse parses the JSON error response body into a map.
func decodeErrorResponse(rec *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	return body
}
