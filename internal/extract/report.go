package extract

// Report summarizes one extraction run. It is returned on success and on
// failure; after an abort it reflects what was materialized before the
// failing entry.
type Report struct {
	FilesExtracted     int      `json:"files_extracted"`
	DirectoriesCreated int      `json:"directories_created"`
	SymlinksCreated    int      `json:"symlinks_created"`
	HardlinksCreated   int      `json:"hardlinks_created"`
	BytesWritten       uint64   `json:"bytes_written"`
	DurationMS         int64    `json:"duration_ms"`
	FilesSkipped       int      `json:"files_skipped"`
	Warnings           []string `json:"warnings,omitempty"`
}

// AddWarning appends a warning message.
func (r *Report) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// TotalItems returns the number of filesystem objects created.
func (r *Report) TotalItems() int {
	return r.FilesExtracted + r.DirectoriesCreated + r.SymlinksCreated + r.HardlinksCreated
}

// HasWarnings reports whether any warnings were recorded.
func (r *Report) HasWarnings() bool { return len(r.Warnings) > 0 }
