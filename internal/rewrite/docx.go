package rewrite

import (
	"archive/zip"
	"bytes"
	"io"
	"regexp"
	"strings"
)

const docxDocumentPath = "word/document.xml"

// textRunPattern captures the opening tag, content, and closing tag of a
// WordprocessingML text run. Only run content is rewritten; the rest of
// the document XML is copied byte for byte, which keeps styles, tables,
// and revision data intact.
var textRunPattern = regexp.MustCompile(`(?s)(<w:t(?:\s[^>]*)?>)(.*?)(</w:t>)`)

var (
	xmlUnescaper = strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
		"&amp;", "&",
	)
	xmlEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
)

// rewriteDocx rebuilds the archive with every text run in the main
// document part passed through maskFn. Runs are masked individually, so
// a value split across runs by Word's revision tracking is not caught;
// text extracted for scanning has the same granularity, so the findings
// report and the rewritten file stay consistent.
func rewriteDocx(data []byte, maskFn func(string) string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	zw := zip.NewWriter(&out)

	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			zw.Close()
			return nil, err
		}

		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			zw.Close()
			return nil, err
		}

		if f.Name == docxDocumentPath {
			content = maskTextRuns(content, maskFn)
		}

		header := f.FileHeader
		w, err := zw.CreateHeader(&header)
		if err != nil {
			zw.Close()
			return nil, err
		}
		if _, err := w.Write(content); err != nil {
			zw.Close()
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}

// maskTextRuns applies maskFn to the unescaped content of every <w:t>
// run and re-escapes the result.
func maskTextRuns(document []byte, maskFn func(string) string) []byte {
	rewritten := textRunPattern.ReplaceAllStringFunc(string(document), func(run string) string {
		parts := textRunPattern.FindStringSubmatch(run)
		if parts == nil {
			return run
		}
		masked := maskFn(xmlUnescaper.Replace(parts[2]))
		return parts[1] + xmlEscaper.Replace(masked) + parts[3]
	})
	return []byte(rewritten)
}
