package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/edvin/borgwatch/internal/model"
	"github.com/edvin/borgwatch/internal/platform"
)

// StoreRun records one backup run report: run metadata keyed by run id
// (create-or-replace), an optional log side-file, the runs list (upserted,
// capped), and the run-derived summary fields. Replaying an identical report
// is idempotent.
func (s *Store) StoreRun(jobID string, run model.RunPush) error {
	if _, err := s.ensureJobDir(jobID); err != nil {
		return err
	}

	rec := runRecord{
		ID:           run.RunID,
		Status:       run.Status,
		Timestamp:    run.StartTime,
		EndTimestamp: run.EndTime,
		ExitCode:     run.ExitCode,
		ErrorMessage: run.ErrorMessage,
	}
	if run.EndTime != nil {
		rec.Duration = fmt.Sprintf("%ds", int(run.EndTime.Sub(run.StartTime).Seconds()))
	}

	l := s.lock(jobID)
	l.Lock()
	defer l.Unlock()

	if err := writeJSONFile(s.runPath(jobID, run.RunID), rec); err != nil {
		return err
	}

	if len(run.LogLines) > 0 {
		logPath := s.runLogPath(jobID, run.RunID)
		content := strings.Join(run.LogLines, "\n") + "\n"
		if err := os.WriteFile(logPath, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write run log: %w", err)
		}
	}

	if err := s.upsertRun(jobID, rec); err != nil {
		return err
	}

	summary, err := s.loadSummary(jobID)
	if err != nil {
		return err
	}
	summary.Status = run.Status
	start := run.StartTime
	summary.LastBackup = &start
	if run.Status == model.RunStatusSuccess {
		summary.LastSuccessfulBackup = &start
	}
	if err := s.saveSummary(jobID, summary); err != nil {
		return err
	}

	s.logger.Info().Str("job_id", jobID).Str("run_id", run.RunID).Str("status", run.Status).Msg("stored backup run")
	return nil
}

// upsertRun replaces or appends the run in runs.json, keeps the list sorted
// newest first, and evicts beyond the cap.
func (s *Store) upsertRun(jobID string, rec runRecord) error {
	path := filepath.Join(s.jobDir(jobID), runsFile)

	var runs runsRecord
	if exists, err := readJSONFile(path, &runs); err != nil {
		if !exists {
			return err
		}
		s.logger.Error().Err(err).Str("job_id", jobID).Msg("corrupt runs file, starting fresh")
		runs = runsRecord{}
	}

	replaced := false
	for i := range runs.Runs {
		if runs.Runs[i].ID == rec.ID {
			runs.Runs[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		runs.Runs = append(runs.Runs, rec)
	}

	sort.SliceStable(runs.Runs, func(i, j int) bool {
		return runs.Runs[i].Timestamp.After(runs.Runs[j].Timestamp)
	})
	if len(runs.Runs) > maxStoredRuns {
		runs.Runs = runs.Runs[:maxStoredRuns]
	}

	return writeJSONFile(path, runs)
}

// StoreArchiveSet replaces the job's entire archive list and repository info
// and recomputes the archive-derived summary fields. Fields owned by other
// ingest paths are never clobbered.
func (s *Store) StoreArchiveSet(jobID string, info model.RepositoryInfo, archives []model.ArchiveEntry) error {
	dir, err := s.ensureJobDir(jobID)
	if err != nil {
		return err
	}

	l := s.lock(jobID)
	l.Lock()
	defer l.Unlock()

	if err := writeJSONFile(filepath.Join(dir, repoInfoFile), info); err != nil {
		return err
	}
	if archives == nil {
		archives = []model.ArchiveEntry{}
	}
	if err := writeJSONFile(filepath.Join(dir, archivesFile), archives); err != nil {
		return err
	}

	summary, err := s.loadSummary(jobID)
	if err != nil {
		return err
	}
	summary.ArchiveCount = len(archives)

	if info.Cache != nil && info.Cache.Stats != nil {
		stats := info.Cache.Stats
		summary.FullSize = platform.FormatSize(stats.TotalSize)
		summary.CompressedSize = platform.FormatSize(stats.TotalCSize)
		summary.DeduplicatedSize = platform.FormatSize(stats.UniqueSize)
		if stats.TotalSize > 0 && stats.TotalCSize > 0 {
			ratio := (1 - float64(stats.TotalCSize)/float64(stats.TotalSize)) * 100
			summary.CompressionRatio = fmt.Sprintf("%.1f%%", ratio)
		} else {
			summary.CompressionRatio = "0%"
		}
	}

	if info.Repository != nil && info.Repository.Location != "" {
		summary.RepositoryPath = info.Repository.Location
	}

	if err := s.saveSummary(jobID, summary); err != nil {
		return err
	}

	s.logger.Info().Str("job_id", jobID).Int("archives", len(archives)).Msg("stored archive set")
	return nil
}

// ResolveEntry selects one repository entry from a borgmatic payload. With a
// label it must match an entry's repository.label; without one it falls back
// to the first entry. Callers enforce the multiple-repositories-need-a-label
// rule before the store is reached; the fallback here is purely defensive.
func ResolveEntry(payload model.BorgmaticPayload, label string) (model.BorgmaticEntry, error) {
	if label == "" {
		if len(payload) == 0 {
			return model.BorgmaticEntry{}, nil
		}
		return payload[0], nil
	}
	for _, entry := range payload {
		if entry.Repository != nil && entry.Repository.Label == label {
			return entry, nil
		}
	}
	return model.BorgmaticEntry{}, fmt.Errorf("%w: %q", ErrRepositoryLabelNotFound, label)
}

// StoreBorgmaticInfo records the output of `borgmatic info --json`.
func (s *Store) StoreBorgmaticInfo(jobID string, payload model.BorgmaticPayload, label string) error {
	return s.storeBorgmaticSnapshot(jobID, payload, label)
}

// StoreBorgmaticRinfo records the output of `borgmatic rinfo --json`.
func (s *Store) StoreBorgmaticRinfo(jobID string, payload model.BorgmaticPayload, label string) error {
	return s.storeBorgmaticSnapshot(jobID, payload, label)
}

func (s *Store) storeBorgmaticSnapshot(jobID string, payload model.BorgmaticPayload, label string) error {
	entry, err := ResolveEntry(payload, label)
	if err != nil {
		return err
	}
	return s.StoreArchiveSet(jobID, entry.Info(), entry.Archives)
}

// StoreEvent appends a new event, writes the optional info side-file, and
// applies the event-gated summary update: only a success/failed event whose
// extra action is "everything" represents the job's overall outcome; sub-step
// events are recorded without moving the dashboard status.
func (s *Store) StoreEvent(jobID, eventType, message string, info *string, extra map[string]any) (string, error) {
	if _, err := s.ensureJobDir(jobID); err != nil {
		return "", err
	}

	now := s.now()
	eventID := platform.NewEventID(now)

	rec := eventRecord{
		ID:        eventID,
		Type:      eventType,
		Timestamp: now,
		Message:   message,
		HasInfo:   info != nil,
		Extra:     extra,
	}
	if rec.Extra == nil {
		rec.Extra = map[string]any{}
	}

	l := s.lock(jobID)
	l.Lock()
	defer l.Unlock()

	if err := writeJSONFile(s.eventPath(jobID, eventID), rec); err != nil {
		return "", err
	}
	if info != nil {
		if err := os.WriteFile(s.eventInfoPath(jobID, eventID), []byte(*info), 0o644); err != nil {
			return "", fmt.Errorf("write event info: %w", err)
		}
	}

	summary, err := s.loadSummary(jobID)
	if err != nil {
		return "", err
	}
	action, _ := rec.Extra["action"].(string)
	if (eventType == model.RunStatusSuccess || eventType == model.RunStatusFailed) && action == "everything" {
		summary.Status = eventType
		ts := now
		summary.LastBackup = &ts
		if eventType == model.RunStatusSuccess {
			summary.LastSuccessfulBackup = &ts
		}
	}
	if err := s.saveSummary(jobID, summary); err != nil {
		return "", err
	}

	s.logger.Info().Str("job_id", jobID).Str("event_id", eventID).Str("type", eventType).Msg("stored event")
	return eventID, nil
}
