// Package testutil builds small in-memory resume documents for tests.
package testutil

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
)

// BuildPDF returns a PDF with one page per entry in pages. Lines within a
// page are separated by "\n" and drawn with a standard Helvetica font.
func BuildPDF(pages ...string) []byte {
	n := len(pages)
	// 1 catalog, 2 pages tree, 3 font, then page and content objects per page.
	total := 3 + 2*n
	objects := make([]string, total+1)

	kids := make([]string, n)
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	objects[1] = "<< /Type /Catalog /Pages 2 0 R >>"
	objects[2] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n)
	objects[3] = "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>"

	for i, page := range pages {
		pageObj := 4 + 2*i
		contentObj := pageObj + 1
		stream := pageContent(page)
		objects[pageObj] = fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			contentObj,
		)
		objects[contentObj] = fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, total+1)
	for i := 1; i <= total; i++ {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i, objects[i])
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", total+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= total; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", total+1, xref)

	return buf.Bytes()
}

func pageContent(page string) string {
	if strings.TrimSpace(page) == "" {
		return "q Q"
	}

	var sb strings.Builder
	sb.WriteString("BT\n/F1 12 Tf\n14 TL\n72 720 Td\n")
	for i, line := range strings.Split(page, "\n") {
		if i > 0 {
			sb.WriteString("T*\n")
		}
		fmt.Fprintf(&sb, "(%s) Tj\n", escapePDFString(line))
	}
	sb.WriteString("ET")
	return sb.String()
}

func escapePDFString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`)
	return r.Replace(s)
}

// DocxTable is a table rendered into a DOCX body; each row is a list of cells.
type DocxTable [][]string

// BuildDOCX returns a minimal DOCX package whose body contains the given
// blocks in order. A block is either a string (one paragraph) or a DocxTable.
func BuildDOCX(blocks ...any) []byte {
	var body strings.Builder
	for _, block := range blocks {
		switch b := block.(type) {
		case string:
			body.WriteString(docxParagraph(b))
		case DocxTable:
			body.WriteString("<w:tbl>")
			for _, row := range b {
				body.WriteString("<w:tr>")
				for _, cell := range row {
					body.WriteString("<w:tc>" + docxParagraph(cell) + "</w:tc>")
				}
				body.WriteString("</w:tr>")
			}
			body.WriteString("</w:tbl>")
		}
	}

	document := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body>` + body.String() + `</w:body></w:document>`

	return BuildZip(map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/document.xml":   document,
	})
}

func docxParagraph(text string) string {
	var sb strings.Builder
	sb.WriteString("<w:p>")
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			sb.WriteString("<w:r><w:br/></w:r>")
		}
		sb.WriteString(`<w:r><w:t xml:space="preserve">` + xmlEscape(line) + "</w:t></w:r>")
	}
	sb.WriteString("</w:p>")
	return sb.String()
}

func xmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

// BuildZip writes the given name -> content entries into a zip archive.
func BuildZip(files map[string]string) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			panic(err)
		}
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// SampleResume is long enough to pass the minimum text checks.
const SampleResume = `JANE DOE
Senior Backend Engineer
SKILLS: Go, PostgreSQL, Kubernetes, gRPC
EXPERIENCE: Built payment APIs serving 2M requests per day`
