// Package store is the file-backed persistence and aggregation layer. Each
// job owns a directory under the data dir holding its archive list,
// repository info, run records, event records, log and info side-files, and
// the derived job_summary.json that every ingest path merges into.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/borgwatch/internal/jobconfig"
)

// ConfigSource resolves the current set of validated job configurations.
// A failed batch load is expected to surface here as an empty map.
type ConfigSource interface {
	JobConfigs() map[string]jobconfig.JobConfig
}

// Store owns all per-job record files. It is the sole writer of the data dir.
type Store struct {
	dataDir string
	configs ConfigSource
	logger  zerolog.Logger
	now     func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(dataDir string, configs ConfigSource, logger zerolog.Logger) *Store {
	return &Store{
		dataDir: dataDir,
		configs: configs,
		logger:  logger,
		now:     time.Now,
		locks:   make(map[string]*sync.Mutex),
	}
}

func (s *Store) jobDir(jobID string) string {
	return filepath.Join(s.dataDir, jobID)
}

func (s *Store) ensureJobDir(jobID string) (string, error) {
	dir := s.jobDir(jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create job dir: %w", err)
	}
	return dir, nil
}

// lock returns the mutex serializing summary read-modify-write for one job.
// Ingest for different jobs never contends.
func (s *Store) lock(jobID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[jobID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[jobID] = l
	}
	return l
}

// readJSONFile loads a JSON record, reporting whether the file existed.
func readJSONFile(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// archiveTimeLayouts covers what borg and borgmatic emit: ISO timestamps with
// or without sub-seconds, with or without a zone.
var archiveTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

func parseArchiveTime(raw string) (time.Time, bool) {
	for _, layout := range archiveTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
