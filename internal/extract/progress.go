package extract

// Progress receives extraction events. Callbacks run synchronously on the
// extraction goroutine between entries and after buffer writes; they must
// not block.
type Progress interface {
	// EntryStart fires before an entry is processed. index is 1-based.
	EntryStart(path string, index int)

	// BytesWritten fires after each buffer lands on disk.
	BytesWritten(n int)

	// EntryDone fires once an entry has been fully materialized.
	EntryDone(path string)

	// Done fires when the archive has been fully processed.
	Done()
}

// NopProgress discards all events.
type NopProgress struct{}

func (NopProgress) EntryStart(string, int) {}
func (NopProgress) BytesWritten(int)       {}
func (NopProgress) EntryDone(string)       {}
func (NopProgress) Done()                  {}
