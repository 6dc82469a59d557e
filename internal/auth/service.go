// Package auth owns dashboard credential checks, JWT issue/verify, and the
// push API key to job mapping.
package auth

import (
	"crypto/subtle"
	"sync"
	"time"

	"github.com/edvin/borgwatch/internal/config"
	"github.com/edvin/borgwatch/internal/jobconfig"
)

// Wildcard marks a key with access to every job (server-level api_tokens).
const Wildcard = "*"

// ConfigSource resolves the current set of validated job configurations.
type ConfigSource interface {
	JobConfigs() map[string]jobconfig.JobConfig
}

// Service verifies dashboard logins and push API keys. The key-to-job map is
// built once per process; keys are operator-managed and rarely rotated, so a
// restart on rotation is acceptable.
type Service struct {
	username     string
	password     string
	jwtSecret    []byte
	jwtExpiry    time.Duration
	serverTokens []string
	configs      ConfigSource

	once     sync.Once
	keyToJob map[string]string
}

func NewService(cfg config.AuthConfig, configs ConfigSource) *Service {
	expiry := time.Duration(cfg.JWTExpireHours) * time.Hour
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &Service{
		username:     cfg.Username,
		password:     cfg.Password,
		jwtSecret:    []byte(cfg.JWTSecret),
		jwtExpiry:    expiry,
		serverTokens: cfg.APITokens,
		configs:      configs,
	}
}

// VerifyCredentials checks a dashboard login. The configured password may be
// a PHC-format argon2id hash or a plain string; both compare in constant time.
func (s *Service) VerifyCredentials(username, password string) bool {
	if subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) != 1 {
		return false
	}
	if isArgon2Hash(s.password) {
		return verifyArgon2(password, s.password)
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1
}

func (s *Service) keys() map[string]string {
	s.once.Do(func() {
		m := make(map[string]string)
		for _, token := range s.serverTokens {
			m[token] = Wildcard
		}
		for jobID, cfg := range s.configs.JobConfigs() {
			for _, key := range cfg.APIKeys {
				m[key] = jobID
			}
		}
		s.keyToJob = m
	})
	return s.keyToJob
}

// VerifyAPIKey reports whether key is any known push key.
func (s *Service) VerifyAPIKey(key string) bool {
	_, ok := s.keys()[key]
	return ok
}

// VerifyAPIKeyForJob reports whether key may push to jobID.
func (s *Service) VerifyAPIKeyForJob(key, jobID string) bool {
	scope, ok := s.keys()[key]
	if !ok {
		return false
	}
	return scope == Wildcard || scope == jobID
}
