package analysis

import "context"

// TextExtractor pulls plain text out of a document.
type TextExtractor interface {
	// Extract returns the full text (page-tagged) and page count.
	Extract(data []byte) (text string, pages int, err error)
}

// ModelClient calls the external inference service. Both methods return the
// raw response body; JSON parsing and repair belong to the caller.
type ModelClient interface {
	// Analyze runs the standard analysis prompt over the document text.
	Analyze(ctx context.Context, text string) (string, error)
	// AnalyzeStrict re-asks with a stricter JSON-only instruction, used for
	// the single repair attempt after a parse failure.
	AnalyzeStrict(ctx context.Context, text string) (string, error)
}

// DocumentArchive stores the raw uploaded document, best-effort.
type DocumentArchive interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (url string, err error)
}
