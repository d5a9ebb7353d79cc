package extract

import (
	"bytes"
	"io"

	"github.com/ledongthuc/pdf"
)

type pdfExtractor struct{}

// Extract pulls plain text from a PDF payload.
func (pdfExtractor) Extract(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}
