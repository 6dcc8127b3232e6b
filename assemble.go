package mhtml

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"path"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/htmlindex"
)

// maxBoundaryAttempts bounds boundary regeneration. A collision requires a
// fresh uuid to occur verbatim inside part content, so even one retry is
// already extraordinary.
const maxBoundaryAttempts = 32

// Function variable for testing injection.
var newBoundary = func() string {
	return "----=_mhtml-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Assemble writes the rewritten document and its inlined resources as one
// multipart/related MIME message suitable for persistence as a .mhtml
// file. The document becomes the root text/html part, quoted-printable
// encoded; each resource becomes a base64 part carrying its content-id and
// original path. The boundary is regenerated if it occurs inside any
// part's encoded content.
func Assemble(w io.Writer, docPath, text, charset string, resources []Resource) error {
	docBytes, charset := encodeDocument(text, charset)
	htmlBody, err := qpEncode(docBytes)
	if err != nil {
		return err
	}

	bodies := make([][]byte, 0, len(resources)+1)
	bodies = append(bodies, htmlBody)
	for _, res := range resources {
		bodies = append(bodies, base64Wrap(res.Data))
	}

	boundary := ""
	for attempt := 0; attempt < maxBoundaryAttempts; attempt++ {
		cand := newBoundary()
		if !collides(cand, bodies) {
			boundary = cand
			break
		}
	}
	if boundary == "" {
		return fmt.Errorf("%w: no collision-free boundary in %d attempts", ErrBoundary, maxBoundaryAttempts)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/related; type=%q; boundary=%q\r\n", "text/html", boundary)
	fmt.Fprintf(&buf, "Content-Location: %s\r\n", docPath)
	fmt.Fprintf(&buf, "\r\n")

	mw := multipart.NewWriter(&buf)
	if err := mw.SetBoundary(boundary); err != nil {
		return fmt.Errorf("%w: %v", ErrBoundary, err)
	}

	htmlHeader := textproto.MIMEHeader{
		"Content-Type":              {fmt.Sprintf("text/html; charset=%s", charset)},
		"Content-Transfer-Encoding": {"quoted-printable"},
		"Content-Location":          {documentLocation(docPath)},
	}
	part, err := mw.CreatePart(htmlHeader)
	if err != nil {
		return err
	}
	if _, err := part.Write(htmlBody); err != nil {
		return err
	}

	for i, res := range resources {
		header := textproto.MIMEHeader{
			"Content-Type":              {res.MIMEType},
			"Content-Transfer-Encoding": {"base64"},
			"Content-ID":                {"<" + res.ContentID + ">"},
			"Content-Location":          {res.Path},
		}
		part, err := mw.CreatePart(header)
		if err != nil {
			return err
		}
		if _, err := part.Write(bodies[i+1]); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}

	_, err = w.Write(buf.Bytes())
	return err
}

// encodeDocument re-encodes text into the detected charset so the output
// part matches the document's own declaration. When the charset is unknown,
// cannot represent the text losslessly, or is not ASCII-compatible, the
// part is normalized to UTF-8. The ASCII check matters because the root
// part is quoted-printable encoded: the encoder reads raw 0x0A/0x0D bytes
// as line breaks, which shifts alignment inside a UTF-16 stream.
func encodeDocument(text, charset string) ([]byte, string) {
	if enc, err := htmlindex.Get(charset); err == nil {
		name, err := htmlindex.Name(enc)
		if err == nil && name != "utf-8" && !strings.HasPrefix(name, "utf-16") {
			if b, err := enc.NewEncoder().Bytes([]byte(text)); err == nil {
				return b, charset
			}
		}
	}
	return []byte(text), "utf-8"
}

func qpEncode(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	qw := quotedprintable.NewWriter(&buf)
	if _, err := qw.Write(b); err != nil {
		qw.Close()
		return nil, err
	}
	if err := qw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// base64Wrap encodes data and folds it into 76-column CRLF lines.
func base64Wrap(data []byte) []byte {
	const lineLen = 76
	s := base64.StdEncoding.EncodeToString(data)
	var buf bytes.Buffer
	buf.Grow(len(s) + 2*(len(s)/lineLen+1))
	for len(s) > lineLen {
		buf.WriteString(s[:lineLen])
		buf.WriteString("\r\n")
		s = s[lineLen:]
	}
	buf.WriteString(s)
	return buf.Bytes()
}

func collides(boundary string, bodies [][]byte) bool {
	b := []byte(boundary)
	for _, body := range bodies {
		if bytes.Contains(body, b) {
			return true
		}
	}
	return false
}

// documentLocation is the root part's Content-Location: the document's
// file name, or index.html when the path has none.
func documentLocation(docPath string) string {
	base := path.Base(docPath)
	if base == "." || base == "/" || base == "" {
		return "index.html"
	}
	return base
}
