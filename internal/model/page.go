package model

// ArchivePage is one page of a job's archive listing.
type ArchivePage struct {
	Items      []Archive `json:"items"`
	Total      int       `json:"total"`
	HasMore    bool      `json:"hasMore"`
	NextOffset *int      `json:"nextOffset,omitempty"`
}

// EventPage is one page of a job's event log.
type EventPage struct {
	Items      []BackupEvent `json:"items"`
	Total      int           `json:"total"`
	HasMore    bool          `json:"hasMore"`
	NextOffset *int          `json:"nextOffset,omitempty"`
}
