package services

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// ImageTextExtractor reads the text visible in an image. Implemented by
// GeminiClient; nil when OCR is disabled.
type ImageTextExtractor interface {
	ExtractImageText(ctx context.Context, image []byte, mimeType string) (string, error)
}

var imageMIMETypes = map[string]string{
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".png":  "png",
	".bmp":  "bmp",
	".tiff": "tiff",
}

// FileExtractService pulls plain text out of uploaded files. Extraction
// failures surface as human-readable diagnostics rather than errors so a
// batch can succeed on whatever files did extract.
type FileExtractService struct {
	ocr ImageTextExtractor
}

func NewFileExtractService(ocr ImageTextExtractor) *FileExtractService {
	return &FileExtractService{ocr: ocr}
}

// Extract returns the text content of one uploaded file. The boolean
// reports whether the text is usable source material; when false the
// string is a diagnostic describing why extraction failed.
func (s *FileExtractService) Extract(ctx context.Context, data []byte, filename string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".txt", ".md", ".csv":
		return s.extractPlain(data, filename)
	case ".pdf":
		return s.extractPDF(data, filename)
	case ".docx":
		return s.extractDOCX(data, filename)
	case ".doc":
		return diagnostic(filename, "legacy .doc format is not supported, convert to .docx"), false
	default:
		if format, ok := imageMIMETypes[ext]; ok {
			return s.extractImage(ctx, data, filename, format)
		}
		return diagnostic(filename, fmt.Sprintf("unsupported file type %s", ext)), false
	}
}

func (s *FileExtractService) extractPlain(data []byte, filename string) (string, bool) {
	if !utf8.Valid(data) {
		return diagnostic(filename, "file is not valid UTF-8 text"), false
	}
	text := normalizeExtractedText(string(data))
	if text == "" {
		return diagnostic(filename, "file is empty"), false
	}
	return text, true
}

func (s *FileExtractService) extractPDF(data []byte, filename string) (string, bool) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return diagnostic(filename, "file could not be read as a PDF"), false
	}

	var b strings.Builder
	totalPage := reader.NumPage()
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}

	text := normalizeExtractedText(b.String())
	if text == "" {
		return diagnostic(filename, "no text layer found, the PDF may be scanned"), false
	}
	return text, true
}

func (s *FileExtractService) extractDOCX(data []byte, filename string) (string, bool) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return diagnostic(filename, "file could not be read as a .docx archive"), false
	}

	var documentXML []byte
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				return diagnostic(filename, "document body could not be opened"), false
			}
			documentXML, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return diagnostic(filename, "document body could not be read"), false
			}
			break
		}
	}

	if len(documentXML) == 0 {
		return diagnostic(filename, "document.xml not found in archive"), false
	}

	text := normalizeExtractedText(stripDOCXML(documentXML))
	if text == "" {
		return diagnostic(filename, "no extractable text found"), false
	}
	return text, true
}

func (s *FileExtractService) extractImage(ctx context.Context, data []byte, filename, format string) (string, bool) {
	if s.ocr == nil {
		return diagnostic(filename, "image text recognition is disabled"), false
	}

	text, err := s.ocr.ExtractImageText(ctx, data, format)
	if err != nil {
		log.Printf("WARNING: OCR failed for %s: %v", filename, err)
		return diagnostic(filename, "text recognition failed"), false
	}

	text = normalizeExtractedText(text)
	if text == "" {
		return diagnostic(filename, "no readable text found in image"), false
	}
	return text, true
}

func diagnostic(filename, reason string) string {
	return fmt.Sprintf("Could not extract text from %s: %s.", filename, reason)
}

var xmlTagPattern = regexp.MustCompile(`<[^>]+>`)

func stripDOCXML(src []byte) string {
	s := string(src)

	// DOCX paragraphs and line breaks
	s = strings.ReplaceAll(s, "</w:p>", "\n")
	s = strings.ReplaceAll(s, "<w:br/>", "\n")
	s = strings.ReplaceAll(s, "<w:br />", "\n")
	s = strings.ReplaceAll(s, "<w:tab/>", "\t")

	// Remove all xml tags
	s = xmlTagPattern.ReplaceAllString(s, "")

	// Basic XML entities
	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
	)
	s = replacer.Replace(s)

	return s
}

func normalizeExtractedText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	buf := bytes.Buffer{}

	emptyCount := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			emptyCount++
			if emptyCount > 1 {
				continue
			}
			buf.WriteString("\n")
			continue
		}
		emptyCount = 0
		buf.WriteString(trimmed)
		buf.WriteString("\n")
	}

	return strings.TrimSpace(buf.String())
}
