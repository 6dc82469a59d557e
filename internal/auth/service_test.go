package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/borgwatch/internal/config"
	"github.com/edvin/borgwatch/internal/jobconfig"
)

type staticConfigs map[string]jobconfig.JobConfig

func (c staticConfigs) JobConfigs() map[string]jobconfig.JobConfig { return c }

func newTestService() *Service {
	return NewService(config.AuthConfig{
		Username:       "admin",
		Password:       "hunter2-hunter2",
		JWTSecret:      "test-secret",
		JWTExpireHours: 1,
		APITokens:      []string{"server-token-0000000000000000"},
	}, staticConfigs{
		"job1": {JobID: "job1", APIKeys: []string{"job1-key-aaaaaaaaaaaaaaaaaaaaaa"}},
		"job2": {JobID: "job2", APIKeys: []string{"job2-key-bbbbbbbbbbbbbbbbbbbbbb"}},
	})
}

func TestVerifyCredentials(t *testing.T) {
	s := newTestService()
	assert.True(t, s.VerifyCredentials("admin", "hunter2-hunter2"))
	assert.False(t, s.VerifyCredentials("admin", "wrong"))
	assert.False(t, s.VerifyCredentials("other", "hunter2-hunter2"))
}

func TestJWTRoundTrip(t *testing.T) {
	s := newTestService()

	token, expiresAt, err := s.IssueToken("admin")
	require.NoError(t, err)
	assert.False(t, expiresAt.IsZero())

	sub, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", sub)
}

func TestValidateToken_Tampered(t *testing.T) {
	s := newTestService()

	token, _, err := s.IssueToken("admin")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	badSig := base64.RawURLEncoding.EncodeToString(make([]byte, sha256.Size))
	tampered := parts[0] + "." + parts[1] + "." + badSig
	_, err = s.ValidateToken(tampered)
	assert.Error(t, err)

	_, err = s.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	s := newTestService()
	s.jwtExpiry = -time.Hour

	token, _, err := s.IssueToken("admin")
	require.NoError(t, err)

	_, err = s.ValidateToken(token)
	assert.ErrorContains(t, err, "expired")
}

func TestValidateToken_WrongSecret(t *testing.T) {
	s := newTestService()
	other := NewService(config.AuthConfig{JWTSecret: "different"}, staticConfigs{})

	token, _, err := s.IssueToken("admin")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestVerifyAPIKeyForJob(t *testing.T) {
	s := newTestService()

	assert.True(t, s.VerifyAPIKey("job1-key-aaaaaaaaaaaaaaaaaaaaaa"))
	assert.False(t, s.VerifyAPIKey("unknown"))

	assert.True(t, s.VerifyAPIKeyForJob("job1-key-aaaaaaaaaaaaaaaaaaaaaa", "job1"))
	assert.False(t, s.VerifyAPIKeyForJob("job1-key-aaaaaaaaaaaaaaaaaaaaaa", "job2"), "key scoped to another job")
	assert.True(t, s.VerifyAPIKeyForJob("server-token-0000000000000000", "job1"), "server tokens are wildcard")
	assert.True(t, s.VerifyAPIKeyForJob("server-token-0000000000000000", "job2"))
	assert.False(t, s.VerifyAPIKeyForJob("unknown", "job1"))
}
