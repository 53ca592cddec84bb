package extract

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// extractText decodes plain text as UTF-8, falling back to Latin-1 for
// legacy exports. Latin-1 decoding cannot fail, so every byte sequence
// yields a scannable string.
func extractText(data []byte) ([]Unit, error) {
	var text string
	if utf8.Valid(data) {
		text = string(data)
	} else {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, &ExtractionError{Format: FormatText, Err: err}
		}
		text = string(decoded)
	}

	return []Unit{{Name: "text", Text: text}}, nil
}
