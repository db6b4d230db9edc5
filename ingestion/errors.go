package ingestion

import "errors"

var (
	// ErrUnsupportedFormat is returned when no reader is registered for a file extension.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrReaderRequired is returned when a nil reader is registered.
	ErrReaderRequired = errors.New("reader required")

	// ErrDocumentTimeout is returned when reading a document exceeds the document timeout.
	ErrDocumentTimeout = errors.New("document timed out")

	// ErrNoText is returned when a document yields no text on any page.
	ErrNoText = errors.New("document has no extractable text")
)
