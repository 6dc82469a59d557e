package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/edvin/borgwatch/internal/jobconfig"
	"github.com/edvin/borgwatch/internal/model"
	"github.com/edvin/borgwatch/internal/platform"
	"github.com/edvin/borgwatch/internal/schedule"
)

// Archive sort keys accepted by ListArchives.
const (
	SortByDate             = "date"
	SortByName             = "name"
	SortByOriginalSize     = "originalSize"
	SortByCompressedSize   = "compressedSize"
	SortByDeduplicatedSize = "deduplicatedSize"
)

// ListJobs returns a summary for every configured job, sorted by display
// name. Jobs with no stored data render with placeholder stats; stored data
// without a config is invisible.
func (s *Store) ListJobs() []model.JobSummary {
	configs := s.configs.JobConfigs()

	jobs := make([]model.JobSummary, 0, len(configs))
	for jobID, cfg := range configs {
		jobs = append(jobs, s.buildSummary(jobID, cfg))
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	return jobs
}

// GetJob returns the detail view for one configured job. Absence of stored
// data is not a not-found condition; absence of configuration is.
func (s *Store) GetJob(jobID string) (*model.Job, error) {
	cfg, ok := s.configs.JobConfigs()[jobID]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", jobID, ErrNotFound)
	}

	rec, err := s.loadSummary(jobID)
	if err != nil {
		return nil, err
	}
	job := &model.Job{
		JobSummary:     s.buildSummary(jobID, cfg),
		Description:    cfg.Description,
		BackupType:     cfg.BackupType,
		MaxAge:         cfg.MaxAge,
		RepositoryPath: rec.RepositoryPath,
	}
	return job, nil
}

func (s *Store) buildSummary(jobID string, cfg jobconfig.JobConfig) model.JobSummary {
	now := s.now()
	rec, err := s.loadSummary(jobID)
	if err != nil {
		// One unreadable summary must not take down the whole job list;
		// the job renders with placeholder stats instead.
		s.logger.Error().Err(err).Str("job_id", jobID).Msg("unreadable summary record")
		rec = summaryRecord{}
	}

	latestArchive := s.latestArchiveTime(jobID)

	// Schedule compliance prefers the latest archive timestamp over the
	// cached run timestamps.
	basis := latestArchive
	if basis == nil {
		basis = rec.LastSuccessfulBackup
	}
	if basis == nil {
		basis = rec.LastBackup
	}

	lastBackup := latestArchive
	if lastBackup == nil {
		lastBackup = rec.LastBackup
	}

	status := rec.Status
	if status == "" {
		status = "no-data"
	}

	summary := model.JobSummary{
		JobID:                jobID,
		Name:                 cfg.DisplayName,
		Status:               status,
		ScheduleStatus:       schedule.Status(basis, cfg.MaxAge, now),
		LastBackup:           lastBackup,
		LastSuccessfulBackup: rec.LastSuccessfulBackup,
		Tags:                 cfg.Tags,
		Stats:                statsFromRecord(rec),
	}
	if summary.Tags == nil {
		summary.Tags = []string{}
	}
	if lastBackup != nil {
		summary.LastBackupRelative = platform.RelativeTime(*lastBackup, now)
	}
	if rec.LastSuccessfulBackup != nil {
		summary.LastSuccessfulBackupRelative = platform.RelativeTime(*rec.LastSuccessfulBackup, now)
	}
	return summary
}

func statsFromRecord(rec summaryRecord) model.JobStats {
	stats := model.DefaultJobStats()
	stats.ArchiveCount = rec.ArchiveCount
	if rec.FullSize != "" {
		stats.FullSize = rec.FullSize
	}
	if rec.CompressedSize != "" {
		stats.CompressedSize = rec.CompressedSize
	}
	if rec.DeduplicatedSize != "" {
		stats.DeduplicatedSize = rec.DeduplicatedSize
	}
	if rec.CompressionRatio != "" {
		stats.CompressionRatio = rec.CompressionRatio
	}
	return stats
}

// latestArchiveTime scans archives.json for the newest parseable timestamp.
// Unparseable entries are skipped; one bad archive must not hide the rest.
func (s *Store) latestArchiveTime(jobID string) *time.Time {
	var archives []model.ArchiveEntry
	exists, err := readJSONFile(filepath.Join(s.jobDir(jobID), archivesFile), &archives)
	if err != nil {
		s.logger.Error().Err(err).Str("job_id", jobID).Msg("unreadable archives file")
		return nil
	}
	if !exists {
		return nil
	}

	var latest *time.Time
	for _, a := range archives {
		raw := a.Start
		if raw == "" {
			raw = a.Time
		}
		if raw == "" {
			continue
		}
		t, ok := parseArchiveTime(raw)
		if !ok {
			s.logger.Warn().Str("job_id", jobID).Str("archive", a.Name).Str("timestamp", raw).Msg("skipping archive with unparseable timestamp")
			continue
		}
		if latest == nil || t.After(*latest) {
			latest = &t
		}
	}
	return latest
}

type archiveSortEntry struct {
	entry    model.ArchiveEntry
	created  time.Time
	hasTime  bool
	original *int64
	comp     *int64
	dedup    *int64
}

// ListArchives pages through the job's archive list, sorting the full set
// before pagination. Not-found means no archive set was ever pushed.
func (s *Store) ListArchives(jobID string, offset, limit int, sortBy, sortOrder string) (*model.ArchivePage, error) {
	var archives []model.ArchiveEntry
	exists, err := readJSONFile(filepath.Join(s.jobDir(jobID), archivesFile), &archives)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("archives for job %s: %w", jobID, ErrNotFound)
	}

	entries := make([]archiveSortEntry, 0, len(archives))
	for _, a := range archives {
		e := archiveSortEntry{entry: a}
		raw := a.Start
		if raw == "" {
			raw = a.Time
		}
		if raw != "" {
			if t, ok := parseArchiveTime(raw); ok {
				e.created = t
				e.hasTime = true
			} else {
				s.logger.Warn().Str("job_id", jobID).Str("archive", a.Name).Msg("archive has unparseable timestamp")
			}
		}
		e.original = archiveSize(a, func(st *model.ArchiveStats) *int64 { return st.OriginalSize }, a.OriginalSize)
		e.comp = archiveSize(a, func(st *model.ArchiveStats) *int64 { return st.CompressedSize }, a.CompressedSize)
		e.dedup = archiveSize(a, func(st *model.ArchiveStats) *int64 { return st.DeduplicatedSize }, a.DeduplicatedSize)
		entries = append(entries, e)
	}

	less := archiveLess(sortBy)
	sort.SliceStable(entries, func(i, j int) bool {
		if sortOrder == "desc" {
			return less(entries[j], entries[i])
		}
		return less(entries[i], entries[j])
	})

	total := len(entries)
	lo, hi, hasMore, next := pageBounds(total, offset, limit)

	items := make([]model.Archive, 0, hi-lo)
	for _, e := range entries[lo:hi] {
		created := e.created
		if !e.hasTime {
			created = s.now()
		}
		items = append(items, model.Archive{
			Name:             e.entry.Name,
			CreatedAt:        created,
			OriginalSize:     formatOptionalSize(e.original),
			CompressedSize:   formatOptionalSize(e.comp),
			DeduplicatedSize: formatOptionalSize(e.dedup),
		})
	}

	return &model.ArchivePage{Items: items, Total: total, HasMore: hasMore, NextOffset: next}, nil
}

func archiveSize(a model.ArchiveEntry, pick func(*model.ArchiveStats) *int64, direct *int64) *int64 {
	if a.Stats != nil {
		if v := pick(a.Stats); v != nil {
			return v
		}
	}
	return direct
}

func archiveLess(sortBy string) func(a, b archiveSortEntry) bool {
	switch sortBy {
	case SortByName:
		return func(a, b archiveSortEntry) bool {
			return strings.ToLower(a.entry.Name) < strings.ToLower(b.entry.Name)
		}
	case SortByOriginalSize:
		return func(a, b archiveSortEntry) bool { return sizeOrZero(a.original) < sizeOrZero(b.original) }
	case SortByCompressedSize:
		return func(a, b archiveSortEntry) bool { return sizeOrZero(a.comp) < sizeOrZero(b.comp) }
	case SortByDeduplicatedSize:
		return func(a, b archiveSortEntry) bool { return sizeOrZero(a.dedup) < sizeOrZero(b.dedup) }
	default: // SortByDate; missing timestamps sort as the zero time.
		return func(a, b archiveSortEntry) bool { return a.created.Before(b.created) }
	}
}

func sizeOrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

func formatOptionalSize(v *int64) string {
	if v == nil {
		return "n/a"
	}
	return platform.FormatSize(*v)
}

// ListRuns returns the most recent runs, newest first. A job with no run
// file yields an empty list, not an error.
func (s *Store) ListRuns(jobID string, limit int) ([]model.BackupRun, error) {
	var runs runsRecord
	exists, err := readJSONFile(filepath.Join(s.jobDir(jobID), runsFile), &runs)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []model.BackupRun{}, nil
	}

	sort.SliceStable(runs.Runs, func(i, j int) bool {
		return runs.Runs[i].Timestamp.After(runs.Runs[j].Timestamp)
	})
	if limit > 0 && len(runs.Runs) > limit {
		runs.Runs = runs.Runs[:limit]
	}

	now := s.now()
	out := make([]model.BackupRun, 0, len(runs.Runs))
	for _, r := range runs.Runs {
		out = append(out, model.BackupRun{
			ID:                r.ID,
			Status:            r.Status,
			Timestamp:         r.Timestamp,
			TimestampRelative: platform.RelativeTime(r.Timestamp, now),
			Duration:          r.Duration,
			EndTimestamp:      r.EndTimestamp,
		})
	}
	return out, nil
}

// GetRunDetail joins run metadata with a paginated window of its log. The
// run id must exist in runs.json; a missing log file is just zero lines.
func (s *Store) GetRunDetail(jobID, runID string, offset, limit int) (*model.RunDetail, error) {
	var runs runsRecord
	exists, err := readJSONFile(filepath.Join(s.jobDir(jobID), runsFile), &runs)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("run %s/%s: %w", jobID, runID, ErrNotFound)
	}

	var rec *runRecord
	for i := range runs.Runs {
		if runs.Runs[i].ID == runID {
			rec = &runs.Runs[i]
			break
		}
	}
	if rec == nil {
		return nil, fmt.Errorf("run %s/%s: %w", jobID, runID, ErrNotFound)
	}

	lines, err := readLines(s.runLogPath(jobID, runID))
	if err != nil {
		return nil, err
	}

	total := len(lines)
	lo, hi, hasMore, next := pageBounds(total, offset, limit)

	return &model.RunDetail{
		ID:           rec.ID,
		Status:       rec.Status,
		Timestamp:    rec.Timestamp,
		Duration:     rec.Duration,
		EndTimestamp: rec.EndTimestamp,
		ErrorMessage: rec.ErrorMessage,
		ExitCode:     rec.ExitCode,
		LogLines:     lines[lo:hi],
		TotalLines:   total,
		HasMore:      hasMore,
		NextOffset:   next,
	}, nil
}

// ListEvents pages through a job's events, newest first. Ordering follows
// the stored timestamp, not the file name. Unreadable event files are
// logged and skipped.
func (s *Store) ListEvents(jobID string, offset, limit int) (*model.EventPage, error) {
	dir := s.jobDir(jobID)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return &model.EventPage{Items: []model.BackupEvent{}}, nil
	}

	paths, err := filepath.Glob(filepath.Join(dir, eventPrefix+"*.json"))
	if err != nil {
		return nil, fmt.Errorf("scan events: %w", err)
	}

	events := make([]eventRecord, 0, len(paths))
	for _, path := range paths {
		var rec eventRecord
		if _, err := readJSONFile(path, &rec); err != nil {
			s.logger.Error().Err(err).Str("job_id", jobID).Str("file", filepath.Base(path)).Msg("skipping unreadable event file")
			continue
		}
		events = append(events, rec)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})

	total := len(events)
	lo, hi, hasMore, next := pageBounds(total, offset, limit)

	now := s.now()
	items := make([]model.BackupEvent, 0, hi-lo)
	for _, rec := range events[lo:hi] {
		items = append(items, model.BackupEvent{
			ID:                rec.ID,
			Type:              rec.Type,
			Timestamp:         rec.Timestamp,
			TimestampRelative: platform.RelativeTime(rec.Timestamp, now),
			Message:           rec.Message,
			HasInfo:           rec.HasInfo,
			Extra:             rec.Extra,
		})
	}

	return &model.EventPage{Items: items, Total: total, HasMore: hasMore, NextOffset: next}, nil
}

// GetEventInfo pages through an event's info side-file. Not-found means the
// event has no side-file; events announce one via their hasInfo flag.
func (s *Store) GetEventInfo(jobID, eventID string, offset, limit int) (*model.EventInfo, error) {
	path := s.eventInfoPath(jobID, eventID)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("event info %s/%s: %w", jobID, eventID, ErrNotFound)
	}

	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	total := len(lines)
	lo, hi, hasMore, next := pageBounds(total, offset, limit)

	return &model.EventInfo{
		Lines:      lines[lo:hi],
		TotalLines: total,
		HasMore:    hasMore,
		NextOffset: next,
	}, nil
}

// readLines reads a side-file into trimmed lines. A missing file is zero
// lines, not an error.
func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	raw := strings.Split(string(data), "\n")
	// A trailing newline produces one empty trailing element, not a line.
	if len(raw) > 0 && raw[len(raw)-1] == "" {
		raw = raw[:len(raw)-1]
	}
	for i := range raw {
		raw[i] = strings.TrimRight(raw[i], "\r")
	}
	return raw, nil
}

// pageBounds clamps a window into [0,total) and computes page metadata.
// hasMore is offset+limit < total by contract.
func pageBounds(total, offset, limit int) (lo, hi int, hasMore bool, next *int) {
	lo = offset
	if lo < 0 {
		lo = 0
	}
	if lo > total {
		lo = total
	}
	hi = lo
	if limit > 0 {
		hi = lo + limit
	}
	if hi > total {
		hi = total
	}
	hasMore = offset+limit < total
	if hasMore {
		n := offset + limit
		next = &n
	}
	return lo, hi, hasMore, next
}
