package response

import (
	"encoding/json"
	"net/http"
	"time"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// Push is the standard acknowledgement for all push endpoints.
type Push struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	JobID     string    `json:"job_id"`
	Timestamp time.Time `json:"timestamp"`
}

// WritePush acknowledges a successful push for jobID.
func WritePush(w http.ResponseWriter, jobID, message string) {
	WriteJSON(w, http.StatusOK, Push{
		Success:   true,
		Message:   message,
		JobID:     jobID,
		Timestamp: time.Now(),
	})
}
