package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-assistant/internal/apperror"
	"alfredoptarigan/resume-assistant/internal/models"
	"alfredoptarigan/resume-assistant/internal/testutil"
)

func assertInOrder(t *testing.T, text string, markers ...string) {
	t.Helper()
	pos := 0
	for _, marker := range markers {
		idx := strings.Index(text[pos:], marker)
		require.GreaterOrEqualf(t, idx, 0, "marker %q missing or out of order in %q", marker, text)
		pos += idx + len(marker)
	}
}

func TestExtract_PDFPreservesMarkerOrder(t *testing.T) {
	data := testutil.BuildPDF(
		"MARKERALPHA Summary\nMARKERBRAVO Experience",
		"MARKERCHARLIE Education\nMARKERDELTA Skills",
	)

	got, err := NewTextExtractor().Extract(&models.RawDocument{Format: models.FormatPDF, Data: data})

	require.NoError(t, err)
	assert.Equal(t, models.FormatPDF, got.Format)
	assertInOrder(t, got.Text, "MARKERALPHA", "MARKERBRAVO", "MARKERCHARLIE", "MARKERDELTA")
	assert.Equal(t, len([]rune(got.Text)), got.CharCount)
}

func TestExtract_PDFWithoutTextFails(t *testing.T) {
	data := testutil.BuildPDF("", "")

	_, err := NewTextExtractor().Extract(&models.RawDocument{Format: models.FormatPDF, Data: data})

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindExtractionFailed))
}

func TestExtract_CorruptPDFFails(t *testing.T) {
	_, err := NewTextExtractor().Extract(&models.RawDocument{
		Format: models.FormatPDF,
		Data:   []byte("%PDF-1.4 this is not really a pdf"),
	})

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindExtractionFailed))
}

func TestExtract_DOCXParagraphsAndTables(t *testing.T) {
	data := testutil.BuildDOCX(
		"MARKERONE Jane Doe",
		testutil.DocxTable{
			{"MARKERTWO Go", "MARKERTHREE PostgreSQL"},
			{"MARKERFOUR Kubernetes", "MARKERFIVE gRPC"},
		},
		"MARKERSIX References & more",
	)

	got, err := NewTextExtractor().Extract(&models.RawDocument{Format: models.FormatDOCX, Data: data})

	require.NoError(t, err)
	assert.Equal(t, models.FormatDOCX, got.Format)
	assertInOrder(t, got.Text, "MARKERONE", "MARKERTWO", "MARKERTHREE", "MARKERFOUR", "MARKERFIVE", "MARKERSIX")
	assert.Contains(t, got.Text, "References & more")
	assert.Contains(t, got.Text, "MARKERTWO Go\nMARKERTHREE PostgreSQL")
}

func TestExtract_DOCXLineBreaks(t *testing.T) {
	data := testutil.BuildDOCX("first line\nsecond line")

	got, err := NewTextExtractor().Extract(&models.RawDocument{Format: models.FormatDOCX, Data: data})

	require.NoError(t, err)
	assert.Equal(t, "first line\nsecond line", got.Text)
}

func TestExtract_DOCXMissingBody(t *testing.T) {
	data := testutil.BuildZip(map[string]string{"word/styles.xml": "<styles/>"})

	_, err := NewTextExtractor().Extract(&models.RawDocument{Format: models.FormatDOCX, Data: data})

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindExtractionFailed))
}

func TestExtract_DOCXNotAZip(t *testing.T) {
	_, err := NewTextExtractor().Extract(&models.RawDocument{Format: models.FormatDOCX, Data: []byte("plain text")})

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindExtractionFailed))
}

func TestExtract_EmptyDOCXFails(t *testing.T) {
	_, err := NewTextExtractor().Extract(&models.RawDocument{Format: models.FormatDOCX, Data: testutil.BuildDOCX("", " ")})

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindExtractionFailed))
}

func TestExtract_LegacyDOCAlwaysFails(t *testing.T) {
	inputs := [][]byte{
		{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1},
		[]byte("some perfectly readable text"),
		testutil.BuildDOCX("even a real docx body"),
	}

	for _, data := range inputs {
		got, err := NewTextExtractor().Extract(&models.RawDocument{Format: models.FormatDOC, Data: data})

		assert.Nil(t, got)
		require.Error(t, err)
		assert.True(t, apperror.Is(err, apperror.KindUnsupportedFormat))
		assert.Contains(t, err.Error(), "convert your file to DOCX or PDF")
	}
}

func TestCleanText(t *testing.T) {
	in := "  Title  \r\n\n\n\nLine one \t\nLine two\n\n"

	assert.Equal(t, "Title\n\nLine one\nLine two", CleanText(in))
}
