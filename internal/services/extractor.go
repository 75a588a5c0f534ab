package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"alfredoptarigan/resume-assistant/internal/apperror"
	"alfredoptarigan/resume-assistant/internal/models"
)

const legacyDocGuidance = "DOC files (legacy format) are not directly supported. Please convert your file to DOCX or PDF format."

type TextExtractor interface {
	Extract(doc *models.RawDocument) (*models.ExtractedText, error)
}

type textExtractor struct{}

func NewTextExtractor() TextExtractor {
	return &textExtractor{}
}

func (e *textExtractor) Extract(doc *models.RawDocument) (result *models.ExtractedText, err error) {
	if doc == nil || len(doc.Data) == 0 {
		return nil, apperror.New(apperror.KindExtractionFailed, "document is empty")
	}

	if doc.Format == models.FormatDOC {
		return nil, apperror.New(apperror.KindUnsupportedFormat, legacyDocGuidance)
	}

	// Parsers may panic on malformed input.
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = apperror.Wrap(
				apperror.KindExtractionFailed,
				fmt.Sprintf("failed to parse %s document", doc.Format),
				fmt.Errorf("parser panic: %v", r),
			)
		}
	}()

	var text string
	switch doc.Format {
	case models.FormatPDF:
		text, err = extractPDF(doc.Data)
	case models.FormatDOCX:
		text, err = extractDOCX(doc.Data)
	default:
		return nil, apperror.Newf(apperror.KindUnsupportedFormat, "unsupported file type: %q", doc.Format)
	}
	if err != nil {
		if _, ok := apperror.As(err); ok {
			return nil, err
		}
		return nil, apperror.Wrap(
			apperror.KindExtractionFailed,
			fmt.Sprintf("error extracting text from %s", strings.ToUpper(string(doc.Format))),
			err,
		)
	}

	text = CleanText(text)
	if text == "" {
		return nil, apperror.Newf(apperror.KindExtractionFailed,
			"no extractable text found in %s (scanned or image-only documents are not supported)",
			strings.ToUpper(string(doc.Format)))
	}

	return &models.ExtractedText{
		Text:      text,
		Format:    doc.Format,
		CharCount: utf8.RuneCountInString(text),
	}, nil
}

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", pageIndex, err)
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX: %w", err)
	}

	var body *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			body = f
			break
		}
	}
	if body == nil {
		return "", errors.New("invalid DOCX: missing word/document.xml")
	}

	rc, err := body.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open document body: %w", err)
	}
	defer rc.Close()

	return readWordprocessingML(rc)
}

// readWordprocessingML emits one line per w:p, which covers both body
// paragraphs and table cells in document order.
func readWordprocessingML(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		sb     strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("malformed document body: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return sb.String(), nil
}

// CleanText trims trailing whitespace from every line and collapses runs of
// blank lines to a single blank line.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	cleaned := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t ")
		if strings.TrimSpace(line) == "" {
			if !blank && len(cleaned) > 0 {
				cleaned = append(cleaned, "")
			}
			blank = true
			continue
		}
		blank = false
		cleaned = append(cleaned, line)
	}

	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}
