package security

// EntryInfo is the raw, untrusted description of one archive entry as the
// container format reports it.
type EntryInfo struct {
	// Path is the entry path exactly as stored in the archive.
	Path string

	Kind EntryKind

	// Size is the declared uncompressed size in bytes.
	Size uint64

	// CompressedSize is the declared compressed size when the container
	// records one per entry (ZIP; the 7z reader does not set it).
	// HasCompressedSize distinguishes
	// "unknown" from a genuine zero.
	CompressedSize    uint64
	HasCompressedSize bool

	// Mode carries the archive's permission bits when present.
	Mode    uint32
	HasMode bool

	// LinkTarget is the symlink or hardlink target text.
	LinkTarget string
}

// ValidatedEntry is the trustworthy result of validation: a SafePath plus
// the kind-specific evidence the dispatcher needs.
type ValidatedEntry struct {
	Kind EntryKind
	Path *SafePath

	// Mode is the sanitized permission mode; meaningful when HasMode.
	Mode    uint32
	HasMode bool

	// Symlink is set for KindSymlink.
	Symlink *SafeSymlink

	// HardlinkSource is the already-extracted entry a hardlink refers to.
	HardlinkSource *SafePath
}

// EntryValidator turns RawEntry-level data into ValidatedEntries, carrying
// the per-archive state the checks need: the directory cache, the quota
// accountant, the known-hardlink set and the canonicalization fast-path
// context. One validator lives for the duration of one archive.
type EntryValidator struct {
	cfg       *Config
	root      *Root
	dirCache  *DirCache
	quota     *Accountant
	hardlinks *HardlinkSet
	vctx      *validationContext
}

// NewEntryValidator creates a validator for one extraction run.
func NewEntryValidator(cfg *Config, root *Root) *EntryValidator {
	cache := NewDirCache(root)
	return &EntryValidator{
		cfg:       cfg,
		root:      root,
		dirCache:  cache,
		quota:     NewAccountant(cfg),
		hardlinks: NewHardlinkSet(),
		vctx:      newValidationContext(cfg.AllowSymlinks, cache),
	}
}

// DirCache exposes the directory cache for the dispatcher.
func (v *EntryValidator) DirCache() *DirCache { return v.dirCache }

// Quota exposes the accountant for the streaming writer.
func (v *EntryValidator) Quota() *Accountant { return v.quota }

// Root returns the extraction root the validator proves paths against.
func (v *EntryValidator) Root() *Root { return v.root }

// RecordExtracted marks a file as fully written, making it eligible as a
// hardlink source for later entries.
func (v *EntryValidator) RecordExtracted(p *SafePath) {
	v.hardlinks.Record(p)
}

// Validate runs the full check chain for one entry: path normalization,
// SafePath construction, quotas and ratio for files, permission
// sanitization, and link resolution.
func (v *EntryValidator) Validate(info EntryInfo) (*ValidatedEntry, error) {
	if info.Kind == KindUnsupported {
		return nil, &SecurityViolationError{Reason: "unsupported entry type: " + info.Path}
	}

	rel, err := NormalizePath(info.Path, info.Kind, v.cfg)
	if err != nil {
		return nil, err
	}
	safe, err := makeSafePath(rel, v.root, v.vctx)
	if err != nil {
		return nil, err
	}

	out := &ValidatedEntry{Kind: info.Kind, Path: safe}

	switch info.Kind {
	case KindFile:
		if err := v.quota.AdmitFile(info.Size); err != nil {
			return nil, err
		}
		if info.HasCompressedSize {
			if err := CheckCompressionRatio(info.CompressedSize, info.Size, v.cfg); err != nil {
				return nil, err
			}
		}
		if info.HasMode {
			sanitized, err := SanitizeMode(rel, info.Mode, v.cfg)
			if err != nil {
				return nil, err
			}
			out.Mode = sanitized
			out.HasMode = true
		}

	case KindDirectory:
		// Creation goes through the DirCache in the dispatcher.

	case KindSymlink:
		v.vctx.markSymlinkSeen()
		link, err := validateSymlink(safe, info.LinkTarget, v.root, v.cfg)
		if err != nil {
			return nil, err
		}
		out.Symlink = link

	case KindHardlink:
		source, err := validateHardlink(safe, info.LinkTarget, v.hardlinks, v.cfg)
		if err != nil {
			return nil, err
		}
		out.HardlinkSource = source
	}

	return out, nil
}
