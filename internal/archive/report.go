package archive

// CreationReport summarizes one archive creation run.
type CreationReport struct {
	FilesAdded       int      `json:"files_added"`
	DirectoriesAdded int      `json:"directories_added"`
	SymlinksStored   int      `json:"symlinks_stored"`
	BytesRead        uint64   `json:"bytes_read"`
	BytesWritten     uint64   `json:"bytes_written"`
	DurationMS       int64    `json:"duration_ms"`
	FilesSkipped     int      `json:"files_skipped"`
	Warnings         []string `json:"warnings,omitempty"`
}

// AddWarning appends a warning message.
func (r *CreationReport) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}
