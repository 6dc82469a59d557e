package platform

import (
	"crypto/rand"
	"time"

	"github.com/google/uuid"
)

const apiKeyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// APIKeyLength is the length of generated push API keys.
const APIKeyLength = 32

// eventIDTimeFormat is fixed-width so ids sort lexically by creation time.
const eventIDTimeFormat = "2006-01-02T15:04:05.000000000"

// NewEventID returns a unique event identifier that sorts lexically by
// creation time: a fixed-width timestamp plus a short random suffix.
func NewEventID(now time.Time) string {
	suffix := uuid.New().String()[:8]
	return now.Format(eventIDTimeFormat) + "_" + suffix
}

// NewAPIKey generates a random URL-safe API key.
func NewAPIKey() string {
	b := make([]byte, APIKeyLength)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand: " + err.Error())
	}
	for i := range b {
		b[i] = apiKeyAlphabet[b[i]%byte(len(apiKeyAlphabet))]
	}
	return string(b)
}
