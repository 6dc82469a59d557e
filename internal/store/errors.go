package store

import "errors"

// ErrNotFound signals an absent job, run, event, or archive set.
var ErrNotFound = errors.New("not found")

// ErrRepositoryLabelNotFound signals a repository_label selector that matched
// no entry in a multi-repository borgmatic payload.
var ErrRepositoryLabelNotFound = errors.New("repository label not found")
