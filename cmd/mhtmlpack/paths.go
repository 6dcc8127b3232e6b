package main

import (
	"github.com/logicossoftware/go-mhtml"
)

// isArchiveName reports whether a directory entry looks like a convertible
// archive.
func isArchiveName(name string) bool {
	return mhtml.ArchiveExt(name) != ""
}

// outputPath derives the MHTML output path for an input archive: same base
// name, .mhtml extension. Multi-part suffixes like .tar.gz are stripped
// whole.
func outputPath(input string) string {
	ext := mhtml.ArchiveExt(input)
	return input[:len(input)-len(ext)] + ".mhtml"
}
