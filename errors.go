package mhtml

import "errors"

var (
	ErrArchiveRead      = errors.New("mhtml: unreadable archive")
	ErrNoHTMLFound      = errors.New("mhtml: no html document found")
	ErrDocumentNotFound = errors.New("mhtml: document not found in archive")
	ErrLimitExceeded    = errors.New("mhtml: limit exceeded")
	ErrBoundary         = errors.New("mhtml: boundary generation failed")
)
