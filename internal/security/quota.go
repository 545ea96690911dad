package security

// Accountant keeps the running extraction totals and enforces the counting
// quotas. One accountant lives for the duration of one archive.
//
// A file entry passes through three phases: AdmitFile before any byte is
// written (declared sizes), CheckStream after every copied buffer (actual
// bytes), CommitFile once the copy finished.
type Accountant struct {
	cfg        *Config
	filesSeen  int
	bytesTotal uint64
}

// NewAccountant returns an accountant bound to cfg.
func NewAccountant(cfg *Config) *Accountant {
	return &Accountant{cfg: cfg}
}

// FilesSeen returns the number of file entries admitted so far.
func (a *Accountant) FilesSeen() int { return a.filesSeen }

// BytesTotal returns the committed uncompressed byte total across completed
// files.
func (a *Accountant) BytesTotal() uint64 { return a.bytesTotal }

// AdmitFile checks a file entry's declared size against the quotas before
// any byte is written and counts the file. Checks run in a fixed order:
// file count, per-file size, running total. Exactly reaching a limit
// passes; the first entry beyond it fails.
func (a *Accountant) AdmitFile(declaredSize uint64) error {
	if a.cfg.quotasUnlimited() {
		a.filesSeen++
		return nil
	}

	if a.filesSeen+1 > a.cfg.MaxFileCount {
		return &QuotaExceededError{
			Resource: QuotaFiles,
			Current:  uint64(a.filesSeen + 1),
			Max:      uint64(a.cfg.MaxFileCount),
		}
	}
	if declaredSize > a.cfg.MaxFileSize {
		return &QuotaExceededError{
			Resource: QuotaPerFileBytes,
			Current:  declaredSize,
			Max:      a.cfg.MaxFileSize,
		}
	}
	total, overflow := addU64(a.bytesTotal, declaredSize)
	if overflow || total > a.cfg.MaxTotalSize {
		return &QuotaExceededError{
			Resource: QuotaTotalBytes,
			Current:  total,
			Max:      a.cfg.MaxTotalSize,
		}
	}

	a.filesSeen++
	return nil
}

// CheckStream re-validates quotas mid-copy, in the same per-file-size then
// total-size order AdmitFile uses, followed by the compression ratio.
// written is the byte count of the current file so far; compressed is the
// entry's compressed size when the container records one (0 = unknown,
// ratio not checked). Containers that understate entry sizes are caught
// here rather than trusted.
func (a *Accountant) CheckStream(written, compressed uint64) error {
	if !a.cfg.quotasUnlimited() {
		if written > a.cfg.MaxFileSize {
			return &QuotaExceededError{
				Resource: QuotaPerFileBytes,
				Current:  written,
				Max:      a.cfg.MaxFileSize,
			}
		}
		total, overflow := addU64(a.bytesTotal, written)
		if overflow || total > a.cfg.MaxTotalSize {
			return &QuotaExceededError{
				Resource: QuotaTotalBytes,
				Current:  total,
				Max:      a.cfg.MaxTotalSize,
			}
		}
	}
	if compressed > 0 && !a.cfg.ratioUnlimited() {
		ratio := float64(written) / float64(compressed)
		if ratio > a.cfg.MaxCompressionRatio {
			return &ZipBombError{
				Compressed:   compressed,
				Uncompressed: written,
				Ratio:        ratio,
			}
		}
	}
	return nil
}

// CommitFile folds the bytes actually written into the running total.
func (a *Accountant) CommitFile(written uint64) {
	a.bytesTotal += written
}

func addU64(a, b uint64) (sum uint64, overflow bool) {
	sum = a + b
	return sum, sum < a
}
