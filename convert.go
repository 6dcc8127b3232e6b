package mhtml

import "io"

// Convert runs the full conversion pipeline over one archive: resolve the
// (possibly nested) archive, select the primary HTML document, detect its
// encoding, rewrite local image references to cid: URIs, and write the
// assembled multipart/related message to w.
//
// Conversions are independent: each owns its archive and output writer, so
// a batch caller may run several concurrently without synchronization.
func Convert(w io.Writer, archive []byte, opts ...ConvertOption) (*Result, error) {
	cfg := convertConfig{limits: defaultLimits()}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.limits = cfg.limits.withDefaults()

	a, err := OpenArchive(archive, cfg.limits)
	if err != nil {
		return nil, err
	}
	doc, err := SelectDocument(a, cfg.documentPath)
	if err != nil {
		return nil, err
	}
	charset, text := DetectEncoding(doc.Data)
	rewritten, resources := RewriteImages(text, a, doc.Base)
	if err := Assemble(w, doc.Path, rewritten, charset, resources); err != nil {
		return nil, err
	}

	res := &Result{Document: doc.Path, Charset: charset}
	for _, r := range resources {
		res.Inlined = append(res.Inlined, r.Path)
	}
	return res, nil
}
