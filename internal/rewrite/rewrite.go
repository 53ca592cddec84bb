// Package rewrite builds the downloadable masked copy of an upload.
// Word and Excel documents are rewritten in place so the masked file
// keeps its original format; everything else falls back to a plain-text
// file of the masked content.
package rewrite

import (
	"fmt"

	"github.com/raaihank/docmask/internal/extract"
)

// Result is a finished masked file ready to be served.
type Result struct {
	Filename    string
	ContentType string
	Data        []byte
}

// MaskedCopy produces the masked counterpart of the uploaded file.
// maskFn masks one text fragment; maskedText is the already-masked full
// text used for the plain-text fallback.
func MaskedCopy(data []byte, filename string, format extract.Format, maskFn func(string) string, maskedText string) (*Result, error) {
	switch format {
	case extract.FormatDocx:
		out, err := rewriteDocx(data, maskFn)
		if err != nil {
			return nil, fmt.Errorf("failed to rebuild docx: %w", err)
		}
		return &Result{
			Filename:    "masked_" + filename,
			ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			Data:        out,
		}, nil

	case extract.FormatXlsx:
		out, err := rewriteXlsx(data, maskFn)
		if err != nil {
			return nil, fmt.Errorf("failed to rebuild xlsx: %w", err)
		}
		return &Result{
			Filename:    "masked_" + filename,
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        out,
		}, nil

	default:
		// PDF and plain text are served as masked plain text.
		return &Result{
			Filename:    "masked_" + filename + ".txt",
			ContentType: "text/plain; charset=utf-8",
			Data:        []byte(maskedText),
		}, nil
	}
}
