// Package jobconfig loads, validates, and auto-repairs per-job TOML
// configuration files. Job config files are operator-edited; the service
// repairs what it safely can (weak keys, bad defaults) and persists the fix.
package jobconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/edvin/borgwatch/internal/model"
	"github.com/edvin/borgwatch/internal/platform"
	"github.com/edvin/borgwatch/internal/schedule"
)

// ErrInvalidJobID is returned when a config carries a malformed job_id.
// This is fatal for the file; job ids are not auto-repaired.
var ErrInvalidJobID = errors.New("invalid job_id")

var jobIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MinAPIKeyLength is the minimum accepted length for operator-supplied keys.
const MinAPIKeyLength = 16

// JobConfig is one job's static configuration as stored in its TOML file.
type JobConfig struct {
	JobID       string   `toml:"job_id" json:"job_id"`
	DisplayName string   `toml:"display_name" json:"display_name"`
	BackupType  string   `toml:"backup_type" json:"backup_type"`
	MaxAge      string   `toml:"max_age" json:"max_age"`
	Tags        []string `toml:"tags" json:"tags"`
	Description string   `toml:"description,omitempty" json:"description,omitempty"`
	APIKeys     []string `toml:"api_keys" json:"-"`
}

// ValidationError collects every problem found during a batch load. A batch
// with any error yields zero configs; callers degrade to an empty job set.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "configuration validation failed:\n" + strings.Join(e.Problems, "\n")
}

// ValidJobID reports whether id matches the allowed job id alphabet.
func ValidJobID(id string) bool {
	return jobIDRegex.MatchString(id)
}

// ValidateAndFix normalizes a job config, applying each repair rule
// independently. When any rule fired, the repaired config is written back to
// path so the file converges to a valid state. A malformed job_id is the one
// unrepairable rule and fails the file.
func ValidateAndFix(cfg JobConfig, path string) (JobConfig, bool, error) {
	if !ValidJobID(cfg.JobID) {
		return cfg, false, fmt.Errorf("%w: %q must contain only a-z, A-Z, 0-9, _, -", ErrInvalidJobID, cfg.JobID)
	}

	modified := false

	if cfg.BackupType != model.BackupTypeBorg && cfg.BackupType != model.BackupTypeBorgmatic {
		cfg.BackupType = model.BackupTypeBorgmatic
		modified = true
	}

	if _, err := schedule.ParseMaxAge(cfg.MaxAge); err != nil {
		cfg.MaxAge = "24h"
		modified = true
	}

	if len(cfg.APIKeys) == 0 {
		cfg.APIKeys = []string{platform.NewAPIKey()}
		modified = true
	} else {
		for i, key := range cfg.APIKeys {
			if len(key) < MinAPIKeyLength {
				cfg.APIKeys[i] = platform.NewAPIKey()
				modified = true
			}
		}
	}

	if cfg.DisplayName == "" {
		cfg.DisplayName = displayNameFromID(cfg.JobID)
		modified = true
	}

	if cfg.Tags == nil {
		cfg.Tags = []string{}
		modified = true
	}

	if modified {
		if err := writeConfig(cfg, path); err != nil {
			return cfg, true, fmt.Errorf("persist repaired config %s: %w", filepath.Base(path), err)
		}
	}

	return cfg, modified, nil
}

// LoadAll scans dir for *.toml job configs, validating and repairing each.
// The directory is created when absent. Any per-file failure or duplicate
// job_id fails the whole batch with a ValidationError listing every problem.
func LoadAll(dir string) (map[string]JobConfig, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create config dir: %w", err)
		}
		return map[string]JobConfig{}, nil
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.toml"))
	if err != nil {
		return nil, fmt.Errorf("scan config dir: %w", err)
	}

	configs := make(map[string]JobConfig)
	owners := make(map[string]string)
	var problems []string

	for _, path := range paths {
		name := filepath.Base(path)

		var cfg JobConfig
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			problems = append(problems, fmt.Sprintf("error in %s: %v", name, err))
			continue
		}

		fixed, _, err := ValidateAndFix(cfg, path)
		if err != nil {
			problems = append(problems, fmt.Sprintf("error in %s: %v", name, err))
			continue
		}

		if prev, ok := owners[fixed.JobID]; ok {
			problems = append(problems, fmt.Sprintf("duplicate job_id %q in %s (already defined in %s)", fixed.JobID, name, prev))
			continue
		}
		owners[fixed.JobID] = name
		configs[fixed.JobID] = fixed
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	return configs, nil
}

func writeConfig(cfg JobConfig, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// displayNameFromID derives a human name from a job id: separators become
// spaces and each word is title-cased ("db-nightly" -> "Db Nightly").
func displayNameFromID(id string) string {
	s := strings.NewReplacer("-", " ", "_", " ").Replace(id)
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
