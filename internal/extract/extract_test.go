package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

// buildDocx assembles a minimal OOXML word archive with the given
// document body.
func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("Failed to create archive entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("Failed to write document.xml: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close archive: %v", err)
	}

	return buf.Bytes()
}

func buildXlsx(t *testing.T, sheets map[string][][]string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for name, rows := range sheets {
		if name != "Sheet1" {
			if _, err := f.NewSheet(name); err != nil {
				t.Fatalf("Failed to create sheet %s: %v", name, err)
			}
		}
		for ri, row := range rows {
			for ci, cell := range row {
				axis, err := excelize.CoordinatesToCellName(ci+1, ri+1)
				if err != nil {
					t.Fatalf("Failed to build cell name: %v", err)
				}
				if err := f.SetCellStr(name, axis, cell); err != nil {
					t.Fatalf("Failed to set cell %s: %v", axis, err)
				}
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Failed to serialize workbook: %v", err)
	}
	return buf.Bytes()
}

func TestFormatFromFilename(t *testing.T) {
	t.Run("SupportedExtensions", func(t *testing.T) {
		cases := map[string]Format{
			"report.pdf":   FormatPDF,
			"Report.PDF":   FormatPDF,
			"letter.docx":  FormatDocx,
			"budget.xlsx":  FormatXlsx,
			"notes.txt":    FormatText,
			"a.b.c.txt":    FormatText,
			"UPPER.DOCX":   FormatDocx,
			"spaced .xlsx": FormatXlsx,
		}
		for name, want := range cases {
			got, err := FormatFromFilename(name)
			if err != nil {
				t.Errorf("%q: unexpected error: %v", name, err)
				continue
			}
			if got != want {
				t.Errorf("%q: expected %s, got %s", name, want, got)
			}
		}
	})

	t.Run("UnsupportedExtensions", func(t *testing.T) {
		for _, name := range []string{"archive.zip", "script.exe", "noext", "image.png", "old.doc"} {
			_, err := FormatFromFilename(name)
			var ufe *UnsupportedFormatError
			if !errors.As(err, &ufe) {
				t.Errorf("%q: expected UnsupportedFormatError, got %v", name, err)
			}
		}
	})
}

func TestExtractText(t *testing.T) {
	t.Run("UTF8", func(t *testing.T) {
		units, err := Extract([]byte("héllo a@b.co"), FormatText)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(units) != 1 || units[0].Text != "héllo a@b.co" {
			t.Errorf("Unexpected units: %+v", units)
		}
	})

	t.Run("Latin1Fallback", func(t *testing.T) {
		// 0xE9 is é in Latin-1 and invalid standalone UTF-8.
		units, err := Extract([]byte{'c', 'a', 'f', 0xE9}, FormatText)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if units[0].Text != "café" {
			t.Errorf("Expected Latin-1 decode, got %q", units[0].Text)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		units, err := Extract(nil, FormatText)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(units) != 1 || units[0].Text != "" {
			t.Errorf("Unexpected units: %+v", units)
		}
	})
}

func TestExtractDocx(t *testing.T) {
	t.Run("ParagraphsAndRuns", func(t *testing.T) {
		data := buildDocx(t, `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Contact </w:t></w:r><w:r><w:t>a@b.co</w:t></w:r></w:p>
    <w:p><w:r><w:t>SSN 123-45-6789</w:t></w:r></w:p>
  </w:body>
</w:document>`)

		units, err := Extract(data, FormatDocx)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(units) != 1 {
			t.Fatalf("Expected 1 unit, got %d", len(units))
		}
		if units[0].Text != "Contact a@b.co\nSSN 123-45-6789" {
			t.Errorf("Unexpected text: %q", units[0].Text)
		}
	})

	t.Run("TabsAndBreaks", func(t *testing.T) {
		data := buildDocx(t, `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body><w:p><w:r><w:t>a</w:t><w:tab/><w:t>b</w:t><w:br/><w:t>c</w:t></w:r></w:p></w:body>
</w:document>`)

		units, err := Extract(data, FormatDocx)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if units[0].Text != "a\tb\nc" {
			t.Errorf("Unexpected text: %q", units[0].Text)
		}
	})

	t.Run("EntitiesDecoded", func(t *testing.T) {
		data := buildDocx(t, `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body><w:p><w:r><w:t>a &amp; b &lt;c&gt;</w:t></w:r></w:p></w:body>
</w:document>`)

		units, err := Extract(data, FormatDocx)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if units[0].Text != "a & b <c>" {
			t.Errorf("Unexpected text: %q", units[0].Text)
		}
	})

	t.Run("NotAnArchive", func(t *testing.T) {
		_, err := Extract([]byte("plainly not a zip"), FormatDocx)
		var ee *ExtractionError
		if !errors.As(err, &ee) {
			t.Fatalf("Expected ExtractionError, got %v", err)
		}
		if ee.Format != FormatDocx {
			t.Errorf("Expected docx format in error, got %s", ee.Format)
		}
	})

	t.Run("MissingDocumentEntry", func(t *testing.T) {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		w, _ := zw.Create("unrelated.txt")
		_, _ = w.Write([]byte("hello"))
		_ = zw.Close()

		_, err := Extract(buf.Bytes(), FormatDocx)
		var ee *ExtractionError
		if !errors.As(err, &ee) {
			t.Errorf("Expected ExtractionError, got %v", err)
		}
	})
}

func TestExtractXlsx(t *testing.T) {
	t.Run("SingleSheet", func(t *testing.T) {
		data := buildXlsx(t, map[string][][]string{
			"Sheet1": {
				{"Name", "Email"},
				{"Ada", "ada@example.com"},
			},
		})

		units, err := Extract(data, FormatXlsx)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(units) != 1 {
			t.Fatalf("Expected 1 unit, got %d", len(units))
		}
		if units[0].Name != "Sheet1" {
			t.Errorf("Expected sheet name Sheet1, got %q", units[0].Name)
		}
		if units[0].Text != "Name Email\nAda ada@example.com" {
			t.Errorf("Unexpected text: %q", units[0].Text)
		}
	})

	t.Run("MultipleSheets", func(t *testing.T) {
		data := buildXlsx(t, map[string][][]string{
			"Sheet1": {{"first"}},
			"HR":     {{"ssn", "123-45-6789"}},
		})

		units, err := Extract(data, FormatXlsx)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(units) != 2 {
			t.Fatalf("Expected 2 units, got %d", len(units))
		}
		byName := map[string]string{}
		for _, u := range units {
			byName[u.Name] = u.Text
		}
		if byName["HR"] != "ssn 123-45-6789" {
			t.Errorf("Unexpected HR sheet text: %q", byName["HR"])
		}
	})

	t.Run("CorruptWorkbook", func(t *testing.T) {
		_, err := Extract([]byte("not a workbook"), FormatXlsx)
		var ee *ExtractionError
		if !errors.As(err, &ee) {
			t.Fatalf("Expected ExtractionError, got %v", err)
		}
		if ee.Format != FormatXlsx {
			t.Errorf("Expected xlsx format in error, got %s", ee.Format)
		}
	})
}

func TestExtractPDF(t *testing.T) {
	t.Run("CorruptDocument", func(t *testing.T) {
		_, err := Extract([]byte("%PDF-1.7 truncated garbage"), FormatPDF)
		var ee *ExtractionError
		if !errors.As(err, &ee) {
			t.Fatalf("Expected ExtractionError, got %v", err)
		}
		if ee.Format != FormatPDF {
			t.Errorf("Expected pdf format in error, got %s", ee.Format)
		}
	})
}

func TestJoinUnits(t *testing.T) {
	got := JoinUnits([]Unit{
		{Name: "Sheet1", Text: "a"},
		{Name: "Sheet2", Text: "b"},
	})
	if got != "a\nb" {
		t.Errorf("Unexpected joined text: %q", got)
	}

	if JoinUnits(nil) != "" {
		t.Error("Expected empty join for no units")
	}
}
