package analysis

import (
	"fmt"
	"strings"

	domain "github.com/compliance-copilot/backend/internal/domain/analysis"
)

// ValidateUpload checks the declared filename and buffer size before any work
// is done. Pure: no side effects, fails fast.
func ValidateUpload(filename string, size, maxBytes int64) error {
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return domain.E(domain.CodeInvalidFormat, "only PDF files are accepted")
	}
	if size == 0 {
		return domain.E(domain.CodeInvalidFormat, "empty file")
	}
	if maxBytes > 0 && size > maxBytes {
		return domain.E(domain.CodeTooLarge,
			fmt.Sprintf("file too large, max %d MB", maxBytes/(1024*1024)))
	}
	return nil
}
