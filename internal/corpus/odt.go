package corpus

import (
	"fmt"
	"strings"

	"github.com/lu4p/cat"
)

// extractODT extracts text from .odt or .rtf bytes via lu4p/cat, which
// detects the format from the content itself.
func extractODT(content []byte) (string, error) {
	text, err := cat.FromBytes(content)
	if err != nil {
		return "", fmt.Errorf("extract ODT/RTF: %w", err)
	}
	return strings.TrimSpace(text), nil
}
