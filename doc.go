// Package mhtml converts compressed archives containing an exported HTML
// document and its local image resources into single-file MHTML documents.
//
// MHTML (MIME HTML) is a single-file web-page archive format: one
// multipart/related MIME envelope whose root part is the HTML document and
// whose remaining parts are the resources it references via cid: URIs.
//
// # Conversion Pipeline
//
// A conversion runs five steps over one input archive:
//
//  1. Resolve: open the archive and, when it wraps a single nested archive
//     with no HTML of its own, descend until an archive containing an HTML
//     entry is found (bounded depth).
//  2. Select: pick the primary HTML document, either a caller-specified
//     entry or the first .html/.htm entry in stored order.
//  3. Detect: infer the document's character encoding from a byte-order
//     mark or an in-document charset declaration, and decode it. Detection
//     never fails; unknown encodings fall back to UTF-8, then Windows-1252.
//  4. Rewrite: replace <img src="..."> references that resolve to archive
//     entries with cid: URIs, collecting the referenced bytes. External,
//     data: and cid: references are left untouched, as are references to
//     entries that do not exist.
//  5. Assemble: emit the multipart/related envelope with the rewritten
//     document as the root part and one base64 part per inlined resource.
//
// # Supported Containers
//
// The resolver accepts ZIP archives as well as tar streams compressed with
// gzip, Zstandard, LZ4, or Brotli. Nested archives may use any of these
// formats at each level.
//
// # Basic Usage
//
//	data, _ := os.ReadFile("export.zip")
//	f, _ := os.Create("export.mhtml")
//	defer f.Close()
//	res, err := mhtml.Convert(f, data)
//
// Use ConvertOption values to pick a specific document or tighten limits:
//
//	res, err := mhtml.Convert(f, data,
//		mhtml.WithDocumentPath("pages/index.html"))
//
// # Security Considerations
//
// Archive contents are untrusted. Entry counts, entry sizes, and nested
// archive depth are bounded by configurable [Limits] to prevent resource
// exhaustion from decompression bombs and self-referential archives. Entry
// paths are normalized and references may never escape the archive root.
package mhtml
