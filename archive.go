package mhtml

import (
	"fmt"
	"path"
	"strings"
)

// Archive is one opened archive level: named entries in stored order, with
// random access by normalized path. It is read-only for the duration of a
// conversion and holds no underlying resource once built.
type Archive struct {
	names   []string
	entries map[string][]byte
}

func newArchive() *Archive {
	return &Archive{entries: make(map[string][]byte)}
}

func (a *Archive) addEntry(name string, data []byte) {
	n, ok := normalizeName(name)
	if !ok {
		return
	}
	if _, seen := a.entries[n]; !seen {
		a.names = append(a.names, n)
	}
	a.entries[n] = data
}

// Names returns the entry paths in stored order.
func (a *Archive) Names() []string {
	out := make([]string, len(a.names))
	copy(out, a.names)
	return out
}

func (a *Archive) Contains(name string) bool {
	_, ok := a.entries[name]
	return ok
}

// Read returns the bytes of the named entry.
func (a *Archive) Read(name string) ([]byte, bool) {
	b, ok := a.entries[name]
	return b, ok
}

func (a *Archive) hasHTML() bool {
	for _, n := range a.names {
		if isHTMLName(n) {
			return true
		}
	}
	return false
}

// nestedArchives returns the entries that look like archives themselves,
// judged by extension or by container signature.
func (a *Archive) nestedArchives() []string {
	var nested []string
	for _, n := range a.names {
		if ArchiveExt(n) != "" || hasArchiveSignature(a.entries[n]) {
			nested = append(nested, n)
		}
	}
	return nested
}

// OpenArchive opens data as an archive and, when a level contains no HTML
// entry but wraps exactly one nested archive, descends into it. The descent
// is an iterative loop with an explicit depth counter so self-referential
// input terminates.
//
// It returns ErrArchiveRead when a level is not a well-formed archive and
// ErrNoHTMLFound when no HTML entry exists anywhere within the nesting
// bound.
func OpenArchive(data []byte, limits Limits) (*Archive, error) {
	limits = limits.withDefaults()
	name := ""
	for depth := 0; depth <= limits.MaxNestingDepth; depth++ {
		a, err := openContainer(data, name, limits)
		if err != nil {
			return nil, err
		}
		if a.hasHTML() {
			return a, nil
		}
		nested := a.nestedArchives()
		if len(nested) != 1 {
			return nil, fmt.Errorf("%w: %d entries, none html, %d nested archives", ErrNoHTMLFound, len(a.names), len(nested))
		}
		name = nested[0]
		data = a.entries[name]
	}
	return nil, fmt.Errorf("%w: nesting deeper than %d archives", ErrNoHTMLFound, limits.MaxNestingDepth)
}

// normalizeName canonicalizes an entry path to a forward-slash relative
// path. Entries that escape the archive root are rejected.
func normalizeName(name string) (string, bool) {
	n := strings.ReplaceAll(name, `\`, "/")
	n = strings.TrimLeft(n, "/")
	n = path.Clean(n)
	if n == "." || n == ".." || strings.HasPrefix(n, "../") {
		return "", false
	}
	return n, true
}
