package services

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOCR struct {
	text string
	err  error
}

func (f *fakeOCR) ExtractImageText(_ context.Context, _ []byte, _ string) (string, error) {
	return f.text, f.err
}

func TestExtract_PlainText(t *testing.T) {
	svc := NewFileExtractService(nil)

	text, ok := svc.Extract(context.Background(), []byte("Hello world.\r\n\r\n\r\nSecond paragraph."), "notes.txt")

	require.True(t, ok)
	assert.Equal(t, "Hello world.\n\nSecond paragraph.", text)
}

func TestExtract_EmptyPlainText(t *testing.T) {
	svc := NewFileExtractService(nil)

	text, ok := svc.Extract(context.Background(), []byte("   \n\n  "), "empty.txt")

	assert.False(t, ok)
	assert.Contains(t, text, "empty.txt")
}

func TestExtract_UnsupportedExtension(t *testing.T) {
	svc := NewFileExtractService(nil)

	text, ok := svc.Extract(context.Background(), []byte("binary"), "archive.zip")

	assert.False(t, ok)
	assert.Contains(t, text, "unsupported file type")
}

func TestExtract_LegacyDocDiagnostic(t *testing.T) {
	svc := NewFileExtractService(nil)

	text, ok := svc.Extract(context.Background(), []byte("old format"), "report.doc")

	assert.False(t, ok)
	assert.Contains(t, text, "convert to .docx")
}

func TestExtract_DOCX(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<w:document><w:body><w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Second &amp; third.</w:t></w:r></w:p></w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	svc := NewFileExtractService(nil)
	text, ok := svc.Extract(context.Background(), buf.Bytes(), "doc.docx")

	require.True(t, ok)
	assert.Contains(t, text, "First paragraph.")
	assert.Contains(t, text, "Second & third.")
}

func TestExtract_CorruptDOCX(t *testing.T) {
	svc := NewFileExtractService(nil)

	text, ok := svc.Extract(context.Background(), []byte("not a zip archive"), "doc.docx")

	assert.False(t, ok)
	assert.Contains(t, text, ".docx archive")
}

func TestExtract_CorruptPDF(t *testing.T) {
	svc := NewFileExtractService(nil)

	text, ok := svc.Extract(context.Background(), []byte("not a pdf"), "slides.pdf")

	assert.False(t, ok)
	assert.Contains(t, text, "PDF")
}

func TestExtract_ImageWithoutOCR(t *testing.T) {
	svc := NewFileExtractService(nil)

	text, ok := svc.Extract(context.Background(), []byte{0xFF, 0xD8}, "scan.jpg")

	assert.False(t, ok)
	assert.Contains(t, text, "recognition is disabled")
}

func TestExtract_ImageWithOCR(t *testing.T) {
	svc := NewFileExtractService(&fakeOCR{text: "Recognized sentence from slide."})

	text, ok := svc.Extract(context.Background(), []byte{0xFF, 0xD8}, "scan.jpg")

	require.True(t, ok)
	assert.Equal(t, "Recognized sentence from slide.", text)
}

func TestExtract_ImageOCRFailure(t *testing.T) {
	svc := NewFileExtractService(&fakeOCR{err: errors.New("model unavailable")})

	text, ok := svc.Extract(context.Background(), []byte{0xFF, 0xD8}, "scan.png")

	assert.False(t, ok)
	assert.Contains(t, text, "recognition failed")
}
