package models

import (
	"io"
	"path"
	"strings"
)

type FileFormat string

const (
	FormatPDF  FileFormat = "pdf"
	FormatDOCX FileFormat = "docx"
	FormatDOC  FileFormat = "doc"
)

// SupportedExtensions lists the extensions accepted at resolution time.
var SupportedExtensions = []string{".pdf", ".docx", ".doc"}

// FormatFromFilename infers the format from a filename or URL path extension.
func FormatFromFilename(name string) (FileFormat, bool) {
	switch strings.ToLower(path.Ext(name)) {
	case ".pdf":
		return FormatPDF, true
	case ".docx":
		return FormatDOCX, true
	case ".doc":
		return FormatDOC, true
	default:
		return "", false
	}
}

// FormatFromContentType maps a response media type to a format.
func FormatFromContentType(contentType string) (FileFormat, bool) {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "application/pdf"):
		return FormatPDF, true
	case strings.Contains(ct, "wordprocessingml"):
		return FormatDOCX, true
	case strings.Contains(ct, "application/msword"):
		return FormatDOC, true
	default:
		return "", false
	}
}

// DocumentSource is either an UploadedFile or a RemoteURL.
type DocumentSource interface {
	isDocumentSource()
}

type UploadedFile struct {
	Filename string
	Content  io.Reader
}

type RemoteURL struct {
	URL string
}

func (UploadedFile) isDocumentSource() {}
func (RemoteURL) isDocumentSource()    {}

type RawDocument struct {
	Filename  string
	Format    FileFormat
	Data      []byte
	SizeBytes int64
}

type ExtractedText struct {
	Text      string
	Format    FileFormat
	CharCount int
}
