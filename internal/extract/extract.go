package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Supported media types.
const (
	MimePDF  = "application/pdf"
	MimeCSV  = "text/csv"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// ErrUnsupportedType indicates no extractor exists for the media type.
var ErrUnsupportedType = errors.New("unsupported file type")

// Extractor converts a raw uploaded payload into plain text.
type Extractor interface {
	Extract(data []byte) (string, error)
}

// For returns the extractor registered for the given media type.
func For(mimeType string, fileName string, data []byte) (Extractor, error) {
	switch Normalize(mimeType, fileName, data) {
	case MimePDF:
		return pdfExtractor{}, nil
	case MimeCSV:
		return csvExtractor{}, nil
	case MimeDOCX:
		return docxExtractor{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}
}

// Text extracts plain text from an in-memory payload.
func Text(data []byte, mimeType string, fileName string) (string, error) {
	ex, err := For(mimeType, fileName, data)
	if err != nil {
		return "", err
	}
	return ex.Extract(data)
}

// Supported reports whether the declared media type has an extractor.
func Supported(mimeType string, fileName string, data []byte) bool {
	_, err := For(mimeType, fileName, data)
	return err == nil
}

// Normalize lowercases the media type, strips parameters, and maps generic
// zip payloads to DOCX when the archive carries word/document.xml.
func Normalize(mimeType string, fileName string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	if clean != "application/zip" {
		return clean
	}

	if zipIsDocx(data) {
		return MimeDOCX
	}
	if strings.ToLower(filepath.Ext(fileName)) == ".docx" {
		return MimeDOCX
	}
	return clean
}

func zipIsDocx(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			return true
		}
	}
	return false
}
