package jobconfig

import (
	"errors"

	"github.com/rs/zerolog"
)

// Loader reads the config directory on every call so operator edits take
// effect without a restart. When the batch fails validation it logs every
// problem and serves an empty job set rather than stale or partial data.
type Loader struct {
	dir    string
	logger zerolog.Logger
}

func NewLoader(dir string, logger zerolog.Logger) *Loader {
	return &Loader{dir: dir, logger: logger}
}

// JobConfigs returns the current validated job set, or an empty map when the
// directory fails to load.
func (l *Loader) JobConfigs() map[string]JobConfig {
	configs, err := LoadAll(l.dir)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			for _, p := range verr.Problems {
				l.logger.Error().Str("dir", l.dir).Msg(p)
			}
		} else {
			l.logger.Error().Err(err).Str("dir", l.dir).Msg("loading job configs")
		}
		return map[string]JobConfig{}
	}
	return configs
}
