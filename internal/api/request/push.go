package request

import (
	"time"

	"github.com/edvin/borgwatch/internal/model"
)

// PushEvent reports a lifecycle event for a job.
type PushEvent struct {
	JobID   string         `json:"job_id" validate:"required,job_id"`
	Type    string         `json:"type" validate:"required"`
	Message string         `json:"message" validate:"required"`
	Info    *string        `json:"info,omitempty"`
	Extra   map[string]any `json:"extra,omitempty"`
}

// PushStatus reports one backup run's status and log.
type PushStatus struct {
	JobID        string     `json:"job_id" validate:"required,job_id"`
	RunID        string     `json:"run_id" validate:"required"`
	Status       string     `json:"status" validate:"required,oneof=success failed running warning"`
	StartTime    time.Time  `json:"start_time" validate:"required"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	ExitCode     *int       `json:"exit_code,omitempty"`
	LogLines     []string   `json:"log_lines,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
}

// Run converts the request to the store's run representation.
func (p PushStatus) Run() model.RunPush {
	run := model.RunPush{
		RunID:     p.RunID,
		Status:    p.Status,
		StartTime: p.StartTime,
		EndTime:   p.EndTime,
		ExitCode:  p.ExitCode,
		LogLines:  p.LogLines,
	}
	if p.ErrorMessage != nil {
		run.ErrorMessage = *p.ErrorMessage
	}
	return run
}

// BorgInfo carries `borg info` plus `borg list --json` output.
type BorgInfo struct {
	JobID          string               `json:"job_id" validate:"required,job_id"`
	RepositoryInfo model.RepositoryInfo `json:"repository_info" validate:"required"`
	ArchiveList    []model.ArchiveEntry `json:"archive_list"`
}

// BorgmaticInfo carries `borgmatic info --json` output, a single repository
// object or an array of them.
type BorgmaticInfo struct {
	JobID           string                 `json:"job_id" validate:"required,job_id"`
	InfoData        model.BorgmaticPayload `json:"info_data" validate:"required"`
	RepositoryLabel string                 `json:"repository_label,omitempty"`
}

// BorgmaticRinfo carries `borgmatic rinfo --json` output.
type BorgmaticRinfo struct {
	JobID           string                 `json:"job_id" validate:"required,job_id"`
	RinfoData       model.BorgmaticPayload `json:"rinfo_data" validate:"required"`
	RepositoryLabel string                 `json:"repository_label,omitempty"`
}
