package mhtml

import (
	"bytes"
	"regexp"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// declarationLookahead is how far into the document a charset declaration
// is searched for, enough to cover a typical <head>.
const declarationLookahead = 4096

var (
	charsetDeclPattern = regexp.MustCompile(`(?i)charset\s*=\s*["']?([A-Za-z0-9._-]+)`)
	xmlEncodingPattern = regexp.MustCompile(`(?i)<\?xml[^>]*\bencoding\s*=\s*["']([A-Za-z0-9._-]+)`)
)

// DetectEncoding determines the character encoding of raw and decodes it.
// Precedence: byte-order mark, then a charset/encoding declaration within
// the first few KB, then UTF-8, then Windows-1252. The last step cannot
// fail, so DetectEncoding always produces text.
func DetectEncoding(raw []byte) (charset string, text string) {
	if cs, rest, dec := sniffBOM(raw); dec != nil {
		if out, err := dec.Bytes(rest); err == nil {
			return cs, string(out)
		}
	}
	head := raw
	if len(head) > declarationLookahead {
		head = head[:declarationLookahead]
	}
	if name := declaredCharset(head); name != "" {
		if enc, err := htmlindex.Get(name); err == nil {
			if out, err := enc.NewDecoder().Bytes(raw); err == nil {
				return name, string(out)
			}
		}
		// Unknown or failing named encodings fall through to UTF-8.
	}
	if utf8.Valid(raw) {
		return "utf-8", string(raw)
	}
	out, _ := charmap.Windows1252.NewDecoder().Bytes(raw)
	return "windows-1252", string(out)
}

// sniffBOM matches a leading byte-order mark. UTF-32 comes first: a
// little-endian UTF-32 mark begins with the UTF-16 one.
func sniffBOM(raw []byte) (string, []byte, *encoding.Decoder) {
	switch {
	case len(raw) >= 4 && raw[0] == 0xff && raw[1] == 0xfe && raw[2] == 0x00 && raw[3] == 0x00:
		return "utf-32le", raw[4:], utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM).NewDecoder()
	case len(raw) >= 4 && raw[0] == 0x00 && raw[1] == 0x00 && raw[2] == 0xfe && raw[3] == 0xff:
		return "utf-32be", raw[4:], utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM).NewDecoder()
	case bytes.HasPrefix(raw, []byte{0xef, 0xbb, 0xbf}):
		return "utf-8", raw[3:], unicode.UTF8.NewDecoder()
	case bytes.HasPrefix(raw, []byte{0xff, 0xfe}):
		return "utf-16le", raw[2:], unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	case bytes.HasPrefix(raw, []byte{0xfe, 0xff}):
		return "utf-16be", raw[2:], unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	}
	return "", nil, nil
}

// declaredCharset scans head, read permissively as bytes, for a meta
// charset= declaration (both http-equiv and charset attribute forms carry
// the charset= token) or an XML declaration encoding attribute.
func declaredCharset(head []byte) string {
	if m := charsetDeclPattern.FindSubmatch(head); m != nil {
		return lowerASCII(string(m[1]))
	}
	if m := xmlEncodingPattern.FindSubmatch(head); m != nil {
		return lowerASCII(string(m[1]))
	}
	return ""
}
