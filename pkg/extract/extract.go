package extract

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ErrUnsupportedType carries the rejected extension so the API layer can name
// it in the response.
type ErrUnsupportedType struct {
	Extension string
}

func (e *ErrUnsupportedType) Error() string {
	return fmt.Sprintf("unsupported document type '%s' (supported: .txt, .md)", e.Extension)
}

// Text pulls plain text out of an uploaded document. Only plain-text formats
// are supported; anything else fails fast before chunking or embedding runs.
func Text(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt", ".md", ".markdown":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("document '%s' is not valid UTF-8 text", filename)
		}
		return string(data), nil
	default:
		return "", &ErrUnsupportedType{Extension: ext}
	}
}
