package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	domain "github.com/compliance-copilot/backend/internal/domain/analysis"
)

// Extractor pulls plain text out of PDF bytes. Pages are tagged with
// "[Page N]" markers so the model can anchor evidence quotes.
type Extractor struct{}

func NewExtractor() *Extractor { return &Extractor{} }

func (e *Extractor) Extract(data []byte) (text string, pages int, err error) {
	// The pdf package panics on some malformed files; treat that as a
	// failed extraction rather than crashing the request.
	defer func() {
		if r := recover(); r != nil {
			text, pages = "", 0
			err = domain.E(domain.CodeExtractionFailed, "could not parse PDF")
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, domain.Wrap(domain.CodeExtractionFailed, "could not open PDF", err)
	}

	pages = reader.NumPage()
	var parts []string
	for i := 1; i <= pages; i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}
		pageText, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("[Page %d]\n%s", i, pageText))
	}

	text = strings.Join(parts, "\n\n")
	if strings.TrimSpace(text) == "" {
		return "", 0, domain.E(domain.CodeExtractionFailed, "could not extract text from PDF")
	}
	return text, pages, nil
}
