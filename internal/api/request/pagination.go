package request

import (
	"fmt"
	"net/http"
	"strconv"
)

// Window holds parsed offset/limit query parameters.
type Window struct {
	Offset int
	Limit  int
}

// ParseWindow extracts offset and limit, applying the route's default and
// ceiling. Negative offsets and out-of-range limits are rejected rather than
// clamped, matching the original API contract.
func ParseWindow(r *http.Request, defaultLimit, maxLimit int) (Window, error) {
	w := Window{Limit: defaultLimit}

	if s := r.URL.Query().Get("offset"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return w, fmt.Errorf("offset must be a non-negative integer")
		}
		w.Offset = n
	}

	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxLimit {
			return w, fmt.Errorf("limit must be between 1 and %d", maxLimit)
		}
		w.Limit = n
	}

	return w, nil
}

var archiveSortKeys = map[string]bool{
	"date":             true,
	"name":             true,
	"originalSize":     true,
	"compressedSize":   true,
	"deduplicatedSize": true,
}

// ArchiveSort holds validated archive list sort parameters.
type ArchiveSort struct {
	By    string
	Order string
}

// ParseArchiveSort validates sort_by and sort_order, defaulting to newest
// first.
func ParseArchiveSort(r *http.Request) (ArchiveSort, error) {
	s := ArchiveSort{By: "date", Order: "desc"}

	if v := r.URL.Query().Get("sort_by"); v != "" {
		if !archiveSortKeys[v] {
			return s, fmt.Errorf("sort_by must be one of date, name, originalSize, compressedSize, deduplicatedSize")
		}
		s.By = v
	}

	if v := r.URL.Query().Get("sort_order"); v != "" {
		if v != "asc" && v != "desc" {
			return s, fmt.Errorf("sort_order must be asc or desc")
		}
		s.Order = v
	}

	return s, nil
}
