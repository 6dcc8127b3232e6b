package mhtml

type convertConfig struct {
	documentPath string
	limits       Limits
}

type ConvertOption func(*convertConfig)

// WithDocumentPath selects an explicit primary document instead of the
// first HTML entry in stored order. The path is relative to the archive
// root. Convert fails with ErrDocumentNotFound if no such entry exists.
func WithDocumentPath(p string) ConvertOption {
	return func(c *convertConfig) { c.documentPath = p }
}

func WithLimits(l Limits) ConvertOption {
	return func(c *convertConfig) { c.limits = l }
}
