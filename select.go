package mhtml

import (
	"fmt"
	"path"
)

// SelectDocument picks the primary HTML document from a. With an explicit
// path it must match an entry exactly (after path normalization), failing
// with ErrDocumentNotFound otherwise. With no explicit path it returns the
// first .html/.htm entry in stored order, failing with ErrNoHTMLFound when
// none exists.
//
// Stored order is an artifact of whatever tool produced the archive, not a
// semantic guarantee; callers with more than one HTML entry should pass an
// explicit path.
func SelectDocument(a *Archive, explicit string) (Document, error) {
	if explicit != "" {
		if name, ok := normalizeName(explicit); ok {
			if data, found := a.Read(name); found {
				return Document{Path: name, Base: baseDir(name), Data: data}, nil
			}
		}
		return Document{}, fmt.Errorf("%w: %s", ErrDocumentNotFound, explicit)
	}
	for _, name := range a.names {
		if isHTMLName(name) {
			data, _ := a.Read(name)
			return Document{Path: name, Base: baseDir(name), Data: data}, nil
		}
	}
	return Document{}, ErrNoHTMLFound
}

func baseDir(name string) string {
	if d := path.Dir(name); d != "." {
		return d
	}
	return ""
}
