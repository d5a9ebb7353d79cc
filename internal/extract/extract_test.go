package extract

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// Word writes document.xml unindented; keep the fixture on one line too.
const docxDocumentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
	`<w:body>` +
	`<w:p><w:r><w:t>Hello from the document.</w:t></w:r></w:p>` +
	`<w:p><w:r><w:t>Second paragraph here.</w:t></w:r></w:p>` +
	`</w:body></w:document>`

func buildDocx(t *testing.T) []byte {
	t.Helper()
	return buildZip(t, map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?><Types/>`,
		"word/document.xml":   docxDocumentXML,
	})
}

func TestTextCSV(t *testing.T) {
	data := []byte("name,role\nalice,engineer\nbob,designer\n")

	text, err := Text(data, MimeCSV, "people.csv")
	require.NoError(t, err)
	assert.Equal(t, "name, role\nalice, engineer\nbob, designer", text)
}

func TestTextCSVRaggedRows(t *testing.T) {
	data := []byte("a,b,c\nd\ne,f\n")

	text, err := Text(data, MimeCSV, "ragged.csv")
	require.NoError(t, err)
	assert.Equal(t, "a, b, c\nd\ne, f", text)
}

func TestTextDOCX(t *testing.T) {
	text, err := Text(buildDocx(t), MimeDOCX, "note.docx")
	require.NoError(t, err)
	assert.Equal(t, "Hello from the document.\nSecond paragraph here.", text)
}

func TestTextDOCXMissingDocumentXML(t *testing.T) {
	data := buildZip(t, map[string]string{"other.txt": "nope"})

	_, err := Text(data, MimeDOCX, "note.docx")
	assert.ErrorContains(t, err, "document.xml")
}

func TestTextUnsupportedType(t *testing.T) {
	_, err := Text([]byte("plain"), "text/plain", "note.txt")
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = Text([]byte("{}"), "application/json", "data.json")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported(MimePDF, "cv.pdf", nil))
	assert.True(t, Supported(MimeCSV, "data.csv", nil))
	assert.True(t, Supported(MimeDOCX, "doc.docx", nil))
	assert.False(t, Supported("image/png", "pic.png", nil))
}

func TestNormalizeStripsParameters(t *testing.T) {
	assert.Equal(t, MimeCSV, Normalize("text/csv; charset=utf-8", "data.csv", nil))
	assert.Equal(t, MimePDF, Normalize("Application/PDF", "cv.pdf", nil))
}

func TestNormalizeZipCarryingDocx(t *testing.T) {
	docx := buildDocx(t)
	assert.Equal(t, MimeDOCX, Normalize("application/zip", "upload.bin", docx))
}

func TestNormalizeZipByExtension(t *testing.T) {
	plain := buildZip(t, map[string]string{"readme.txt": "hi"})
	assert.Equal(t, MimeDOCX, Normalize("application/zip", "report.DOCX", plain))
	assert.Equal(t, "application/zip", Normalize("application/zip", "archive.zip", plain))
}

func TestStripDocxXMLLineBreaks(t *testing.T) {
	raw := `<w:p xmlns:w="x"><w:r><w:t>line one</w:t></w:r><w:br/><w:r><w:t>line two</w:t></w:r></w:p>`
	assert.Equal(t, "line one\nline two", stripDocxXML(raw))
}
