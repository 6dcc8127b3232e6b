package mhtml

// Limits bounds how much of an untrusted archive a conversion is willing to
// read. All limits are enforced while opening archives, before any entry
// bytes reach the rewriter or assembler.
type Limits struct {
	MaxNestingDepth int    // nested archives unwrapped before giving up
	MaxEntries      int    // entries per archive level
	MaxEntrySize    uint64 // uncompressed bytes per entry
	MaxArchiveSize  uint64 // compressed bytes per archive level
}

func defaultLimits() Limits {
	return Limits{
		MaxNestingDepth: 10,
		MaxEntries:      10_000,
		MaxEntrySize:    512 << 20, // 512 MiB
		MaxArchiveSize:  1 << 30,   // 1 GiB
	}
}

func (l Limits) withDefaults() Limits {
	d := defaultLimits()
	if l.MaxNestingDepth == 0 {
		l.MaxNestingDepth = d.MaxNestingDepth
	}
	if l.MaxEntries == 0 {
		l.MaxEntries = d.MaxEntries
	}
	if l.MaxEntrySize == 0 {
		l.MaxEntrySize = d.MaxEntrySize
	}
	if l.MaxArchiveSize == 0 {
		l.MaxArchiveSize = d.MaxArchiveSize
	}
	return l
}
