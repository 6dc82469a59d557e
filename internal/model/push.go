package model

import (
	"encoding/json"
	"time"
)

// RunPush carries one backup run status report from a push agent.
type RunPush struct {
	RunID        string
	Status       string
	StartTime    time.Time
	EndTime      *time.Time
	ExitCode     *int
	LogLines     []string
	ErrorMessage string
}

// ArchiveStats holds per-archive size statistics as reported by borgmatic.
type ArchiveStats struct {
	OriginalSize     *int64 `json:"original_size,omitempty"`
	CompressedSize   *int64 `json:"compressed_size,omitempty"`
	DeduplicatedSize *int64 `json:"deduplicated_size,omitempty"`
	NFiles           *int64 `json:"nfiles,omitempty"`
}

// ArchiveEntry is one archive as reported by borg or borgmatic. Timestamps are
// kept as the tool's raw strings; borg emits ISO timestamps without a zone, so
// parsing is deferred to read time and tolerant of both forms.
type ArchiveEntry struct {
	Name    string        `json:"name"`
	ID      string        `json:"id,omitempty"`
	Start   string        `json:"start,omitempty"`
	Time    string        `json:"time,omitempty"`
	End     string        `json:"end,omitempty"`
	Comment string        `json:"comment,omitempty"`
	Stats   *ArchiveStats `json:"stats,omitempty"`

	// Some tool versions report sizes directly on the archive.
	OriginalSize     *int64 `json:"original_size,omitempty"`
	CompressedSize   *int64 `json:"compressed_size,omitempty"`
	DeduplicatedSize *int64 `json:"deduplicated_size,omitempty"`
}

// RepositoryLocation identifies a borg repository.
type RepositoryLocation struct {
	ID       string `json:"id,omitempty"`
	Label    string `json:"label,omitempty"`
	Location string `json:"location,omitempty"`
}

// CacheStats holds repository-wide size statistics from the borg cache.
type CacheStats struct {
	TotalSize         int64 `json:"total_size"`
	TotalCSize        int64 `json:"total_csize"`
	UniqueSize        int64 `json:"unique_size"`
	UniqueCSize       int64 `json:"unique_csize"`
	TotalChunks       int64 `json:"total_chunks,omitempty"`
	TotalUniqueChunks int64 `json:"total_unique_chunks,omitempty"`
}

// RepositoryCache wraps the cache section of borg info output.
type RepositoryCache struct {
	Path  string      `json:"path,omitempty"`
	Stats *CacheStats `json:"stats,omitempty"`
}

// RepositoryInfo is the projection of borg/borgmatic info output the service
// persists: repository, cache, encryption, and security_dir only.
type RepositoryInfo struct {
	Repository  *RepositoryLocation `json:"repository,omitempty"`
	Cache       *RepositoryCache    `json:"cache,omitempty"`
	Encryption  json.RawMessage     `json:"encryption,omitempty"`
	SecurityDir string              `json:"security_dir,omitempty"`
}

// BorgmaticEntry is one repository's payload within borgmatic info/rinfo
// output: the repository-info projection plus that repository's archives.
type BorgmaticEntry struct {
	Repository  *RepositoryLocation `json:"repository,omitempty"`
	Cache       *RepositoryCache    `json:"cache,omitempty"`
	Encryption  json.RawMessage     `json:"encryption,omitempty"`
	SecurityDir string              `json:"security_dir,omitempty"`
	Archives    []ArchiveEntry      `json:"archives,omitempty"`
}

// Info returns the repository-info projection of the entry.
func (e BorgmaticEntry) Info() RepositoryInfo {
	return RepositoryInfo{
		Repository:  e.Repository,
		Cache:       e.Cache,
		Encryption:  e.Encryption,
		SecurityDir: e.SecurityDir,
	}
}

// BorgmaticPayload decodes borgmatic JSON output, which is a single repository
// object or an array of them depending on configuration.
type BorgmaticPayload []BorgmaticEntry

func (p *BorgmaticPayload) UnmarshalJSON(data []byte) error {
	var list []BorgmaticEntry
	if err := json.Unmarshal(data, &list); err == nil {
		*p = list
		return nil
	}
	var single BorgmaticEntry
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*p = BorgmaticPayload{single}
	return nil
}

func (p BorgmaticPayload) MarshalJSON() ([]byte, error) {
	return json.Marshal([]BorgmaticEntry(p))
}
