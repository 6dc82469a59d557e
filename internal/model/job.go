package model

import "time"

// JobStats holds aggregate archive statistics for a job, pre-formatted for display.
type JobStats struct {
	ArchiveCount     int    `json:"archiveCount"`
	FullSize         string `json:"fullSize"`
	CompressedSize   string `json:"compressedSize"`
	DeduplicatedSize string `json:"deduplicatedSize"`
	CompressionRatio string `json:"compressionRatio"`
}

// DefaultJobStats returns the placeholder stats used for jobs with no stored data.
func DefaultJobStats() JobStats {
	return JobStats{
		FullSize:         "0 B",
		CompressedSize:   "0 B",
		DeduplicatedSize: "0 B",
		CompressionRatio: "0%",
	}
}

// JobSummary is the dashboard list entry for a configured job.
type JobSummary struct {
	JobID                        string     `json:"jobId"`
	Name                         string     `json:"name"`
	Status                       string     `json:"status"`
	ScheduleStatus               string     `json:"scheduleStatus"`
	LastBackup                   *time.Time `json:"lastBackup,omitempty"`
	LastBackupRelative           string     `json:"lastBackupRelative,omitempty"`
	LastSuccessfulBackup         *time.Time `json:"lastSuccessfulBackup,omitempty"`
	LastSuccessfulBackupRelative string     `json:"lastSuccessfulBackupRelative,omitempty"`
	Tags                         []string   `json:"tags"`
	Stats                        JobStats   `json:"stats"`
}

// Job is the detail view: a JobSummary plus static configuration fields.
type Job struct {
	JobSummary
	Description    string `json:"description,omitempty"`
	BackupType     string `json:"backupType"`
	MaxAge         string `json:"maxAge"`
	RepositoryPath string `json:"repositoryPath,omitempty"`
}

const (
	BackupTypeBorg      = "borg"
	BackupTypeBorgmatic = "borgmatic"
)

// Run statuses accepted from push agents.
const (
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
	RunStatusRunning = "running"
	RunStatusWarning = "warning"
)

// Schedule compliance values.
const (
	ScheduleUnknown = "unknown"
	ScheduleOverdue = "overdue"
	ScheduleOnTime  = "on-time"
)

// Archive is one backup snapshot, sizes pre-formatted ("n/a" when the tool
// did not report per-archive statistics).
type Archive struct {
	Name             string    `json:"name"`
	CreatedAt        time.Time `json:"createdAt"`
	OriginalSize     string    `json:"originalSize"`
	CompressedSize   string    `json:"compressedSize"`
	DeduplicatedSize string    `json:"deduplicatedSize"`
}

// BackupRun is one execution attempt of a job's backup.
type BackupRun struct {
	ID                string     `json:"id"`
	Status            string     `json:"status"`
	Timestamp         time.Time  `json:"timestamp"`
	TimestampRelative string     `json:"timestampRelative,omitempty"`
	Duration          string     `json:"duration,omitempty"`
	EndTimestamp      *time.Time `json:"endTimestamp,omitempty"`
}

// RunDetail joins run metadata with a paginated window of its log.
type RunDetail struct {
	ID           string         `json:"id"`
	Status       string         `json:"status"`
	Timestamp    time.Time      `json:"timestamp"`
	Duration     string         `json:"duration,omitempty"`
	EndTimestamp *time.Time     `json:"endTimestamp,omitempty"`
	ErrorMessage string         `json:"errorMessage,omitempty"`
	ExitCode     *int           `json:"exitCode,omitempty"`
	LogLines     []string       `json:"logLines"`
	TotalLines   int            `json:"totalLines"`
	HasMore      bool           `json:"hasMore"`
	NextOffset   *int           `json:"nextOffset,omitempty"`
}

// BackupEvent is one append-only notification emitted during job execution.
type BackupEvent struct {
	ID                string         `json:"id"`
	Type              string         `json:"type"`
	Timestamp         time.Time      `json:"timestamp"`
	TimestampRelative string         `json:"timestampRelative,omitempty"`
	Message           string         `json:"message"`
	HasInfo           bool           `json:"hasInfo"`
	Extra             map[string]any `json:"extra,omitempty"`
}

// EventInfo is a paginated window of an event's info side-file.
type EventInfo struct {
	Lines      []string `json:"lines"`
	TotalLines int      `json:"totalLines"`
	HasMore    bool     `json:"hasMore"`
	NextOffset *int     `json:"nextOffset,omitempty"`
}
