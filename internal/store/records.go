package store

import (
	"path/filepath"
	"time"

	"github.com/edvin/borgwatch/internal/model"
)

// On-disk file names within a job directory.
const (
	summaryFile    = "job_summary.json"
	archivesFile   = "archives.json"
	repoInfoFile   = "repository_info.json"
	runsFile       = "runs.json"
	runFilePrefix  = "run_"
	eventPrefix    = "event_"
	maxStoredRuns  = 100
)

// summaryRecord is the derived per-job summary, merged incrementally by every
// ingest path. Fields a given update is not authoritative for are preserved.
type summaryRecord struct {
	JobID                string     `json:"job_id"`
	Status               string     `json:"status,omitempty"`
	ScheduleStatus       string     `json:"schedule_status,omitempty"`
	LastBackup           *time.Time `json:"last_backup,omitempty"`
	LastSuccessfulBackup *time.Time `json:"last_successful_backup,omitempty"`
	ArchiveCount         int        `json:"archive_count"`
	FullSize             string     `json:"full_size,omitempty"`
	CompressedSize       string     `json:"compressed_size,omitempty"`
	DeduplicatedSize     string     `json:"deduplicated_size,omitempty"`
	CompressionRatio     string     `json:"compression_ratio,omitempty"`
	RepositoryPath       string     `json:"repository_path"`
	BackupType           string     `json:"backup_type,omitempty"`
	LastUpdated          time.Time  `json:"last_updated"`
}

// runRecord is one entry in runs.json and the per-run metadata file.
type runRecord struct {
	ID           string     `json:"id"`
	Status       string     `json:"status"`
	Timestamp    time.Time  `json:"timestamp"`
	EndTimestamp *time.Time `json:"end_timestamp,omitempty"`
	ExitCode     *int       `json:"exit_code,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	Duration     string     `json:"duration,omitempty"`
}

type runsRecord struct {
	Runs []runRecord `json:"runs"`
}

// eventRecord is one append-only event_<id>.json file.
type eventRecord struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Message   string         `json:"message"`
	HasInfo   bool           `json:"has_info"`
	Extra     map[string]any `json:"extra"`
}

func (s *Store) summaryPath(jobID string) string {
	return filepath.Join(s.jobDir(jobID), summaryFile)
}

func (s *Store) runPath(jobID, runID string) string {
	return filepath.Join(s.jobDir(jobID), runFilePrefix+runID+".json")
}

func (s *Store) runLogPath(jobID, runID string) string {
	return filepath.Join(s.jobDir(jobID), runFilePrefix+runID+".log")
}

func (s *Store) eventPath(jobID, eventID string) string {
	return filepath.Join(s.jobDir(jobID), eventPrefix+eventID+".json")
}

func (s *Store) eventInfoPath(jobID, eventID string) string {
	return filepath.Join(s.jobDir(jobID), eventPrefix+eventID+".info")
}

// loadSummary reads the current summary record. A missing file is a zero
// record, corrupt JSON is logged and replaced with a fresh record, and any
// other read failure propagates so ingest cannot overwrite a summary it
// could not read.
func (s *Store) loadSummary(jobID string) (summaryRecord, error) {
	var rec summaryRecord
	exists, err := readJSONFile(s.summaryPath(jobID), &rec)
	if err != nil {
		if !exists {
			return summaryRecord{}, err
		}
		s.logger.Error().Err(err).Str("job_id", jobID).Msg("corrupt summary record, starting fresh")
		return summaryRecord{}, nil
	}
	return rec, nil
}

// applySummaryDefaults fills any field still missing after a merge from one
// table of defaults, so no update path can diverge from another.
func applySummaryDefaults(rec *summaryRecord, jobID string) {
	rec.JobID = jobID
	if rec.Status == "" {
		rec.Status = "unknown"
	}
	if rec.ScheduleStatus == "" {
		rec.ScheduleStatus = model.ScheduleUnknown
	}
	if rec.FullSize == "" {
		rec.FullSize = "0 B"
	}
	if rec.CompressedSize == "" {
		rec.CompressedSize = "0 B"
	}
	if rec.DeduplicatedSize == "" {
		rec.DeduplicatedSize = "0 B"
	}
	if rec.CompressionRatio == "" {
		rec.CompressionRatio = "0%"
	}
	if rec.BackupType == "" {
		rec.BackupType = model.BackupTypeBorgmatic
	}
}

func (s *Store) saveSummary(jobID string, rec summaryRecord) error {
	applySummaryDefaults(&rec, jobID)
	rec.LastUpdated = s.now()
	return writeJSONFile(s.summaryPath(jobID), rec)
}
