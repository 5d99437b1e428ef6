package extract

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Format tags the declared encoding of an uploaded document.
type Format string

const (
	FormatPDF   Format = "pdf"
	FormatDOCX  Format = "docx"
	FormatTXT   Format = "txt"
	FormatPlain Format = "plain"
)

// RawDocument owns the raw payload of a single upload. It is created at the
// upload boundary and discarded after extraction.
type RawDocument struct {
	Data   []byte
	Format Format
	Name   string
}

var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrCorruptDocument   = errors.New("corrupt document")
	ErrEmptyDocument     = errors.New("empty document")
)

var whitespaceRuns = regexp.MustCompile(`\s{3,}`)

// Extract converts a RawDocument into normalized text. PDF pages and DOCX
// paragraphs are concatenated in document order with single newlines; no
// layout or table structure is preserved.
func Extract(doc RawDocument) (string, error) {
	var (
		text string
		err  error
	)
	switch doc.Format {
	case FormatPDF:
		text, err = extractPDF(doc.Data)
	case FormatDOCX:
		text, err = extractDOCX(doc.Data)
	case FormatTXT, FormatPlain:
		text = string(doc.Data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, doc.Format)
	}
	if err != nil {
		return "", fmt.Errorf("extract %s %q: %w", doc.Format, doc.Name, err)
	}

	text = Normalize(text)
	if text == "" {
		return "", fmt.Errorf("extract %s %q: %w", doc.Format, doc.Name, ErrEmptyDocument)
	}
	return text, nil
}

// Normalize trims the text and collapses internal whitespace runs longer
// than two characters to a single newline.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = whitespaceRuns.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}

// FormatFor maps an upload's content type and file name to a format tag.
// The boolean reports whether the combination is recognized.
func FormatFor(contentType, fileName string) (Format, bool) {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	switch clean {
	case "application/pdf":
		return FormatPDF, true
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return FormatDOCX, true
	case "text/plain":
		return FormatTXT, true
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return FormatPDF, true
	case ".docx":
		return FormatDOCX, true
	case ".txt":
		return FormatTXT, true
	}
	return "", false
}

func extractPDF(data []byte) (text string, err error) {
	// The pdf package panics on some malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrCorruptDocument, rec)
		}
	}()

	reader, rerr := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if rerr != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptDocument, rerr)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, perr := page.GetPlainText(nil)
		if perr != nil {
			return "", fmt.Errorf("%w: page %d: %v", ErrCorruptDocument, i, perr)
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(pageText)
	}
	return b.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyDocument
	}
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}
	defer doc.Close()

	return stripDocxXML(doc.Editable().GetContent()), nil
}

// stripDocxXML flattens word/document.xml content to plain text with one
// newline per paragraph or line break.
func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var b strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.WriteString(string(t))
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if b.Len() > 0 {
					b.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(b.String())
}
