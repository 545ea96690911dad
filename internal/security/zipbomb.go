package security

// CheckCompressionRatio validates an entry's declared sizes against the
// configured maximum ratio.
//
// A compressed size of zero with a non-zero uncompressed size is invalid
// metadata, not an infinite ratio; rejecting it closes the stored-entry
// bypass. Both sizes zero is an empty file and passes.
func CheckCompressionRatio(compressed, uncompressed uint64, cfg *Config) error {
	if compressed == 0 {
		if uncompressed > 0 {
			return &InvalidArchiveError{
				Reason: "compressed size is 0 but uncompressed size > 0",
			}
		}
		return nil
	}
	if cfg.ratioUnlimited() {
		return nil
	}

	ratio := float64(uncompressed) / float64(compressed)
	if ratio > cfg.MaxCompressionRatio {
		return &ZipBombError{
			Compressed:   compressed,
			Uncompressed: uncompressed,
			Ratio:        ratio,
		}
	}
	return nil
}
