package mhtml

import "path"

// cidDomain namespaces generated content-ids so they are unlikely to
// collide with cid: references already present in the source document.
const cidDomain = "mhtml.invalid"

// Document is the primary HTML entry selected from an archive.
type Document struct {
	Path string // entry path relative to the archive root
	Base string // directory of Path, "" at the root
	Data []byte // raw, undecoded entry bytes
}

// Resource is an image entry inlined into the output, paired with its
// assigned content-id. Content-ids are unique per conversion and stable
// across repeated conversions of identical input.
type Resource struct {
	Path      string // original entry path, kept as Content-Location
	ContentID string
	MIMEType  string
	Data      []byte
}

// Result reports what a conversion produced.
type Result struct {
	Document string   // selected primary document path
	Charset  string   // detected character encoding of the document
	Inlined  []string // inlined resource paths, first-encounter order
}

// isHTMLName reports whether an entry name qualifies as an HTML document.
func isHTMLName(name string) bool {
	switch lowerASCII(path.Ext(name)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// lowerASCII lower-cases A-Z only. Entry names and URI schemes are matched
// case-insensitively but must not be subject to Unicode case folding.
func lowerASCII(s string) string {
	b := []byte(s)
	changed := false
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
			changed = true
		}
	}
	if !changed {
		return s
	}
	return string(b)
}
