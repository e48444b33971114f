package ports

import "context"

// DocumentFetcher downloads the raw bytes behind a document reference.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// TextExtractor turns document bytes into plain text, pages joined by newlines.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}
