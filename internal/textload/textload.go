// Package textload turns uploaded .txt and .pdf files into plain text.
package textload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

const (
	TypeText = "text/plain"
	TypePDF  = "application/pdf"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type (only PDF and TXT allowed)")
	ErrTooLarge        = errors.New("file too large")
	ErrInvalidEncoding = errors.New("text is not valid UTF-8")
)

// DetectType resolves the content type of an upload. A missing Content-Type falls
// back to the file extension.
func DetectType(filename, contentType string) (string, error) {
	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
		}
		switch mediaType {
		case TypeText, TypePDF:
			return mediaType, nil
		}
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mediaType)
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return TypeText, nil
	case ".pdf":
		return TypePDF, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedType, filename)
}

// Read reads at most limit bytes from r and extracts its text according to
// contentType. limit <= 0 means no limit.
func Read(r io.Reader, contentType string, limit int64) (string, error) {
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if limit > 0 && int64(len(content)) > limit {
		return "", fmt.Errorf("%w (max %d bytes)", ErrTooLarge, limit)
	}
	return Extract(content, contentType)
}

// Extract converts raw file content to text.
func Extract(content []byte, contentType string) (string, error) {
	switch contentType {
	case TypePDF:
		return extractPDF(content)
	case TypeText:
		// Windows line endings would put a stray \r at the end of every line.
		text := strings.ReplaceAll(string(content), "\r\n", "\n")
		text = strings.TrimPrefix(text, "\ufeff")
		if !utf8.ValidString(text) {
			return "", ErrInvalidEncoding
		}
		return text, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
}

func extractPDF(content []byte) (string, error) {
	reader := bytes.NewReader(content)
	pdfReader, err := pdf.NewReader(reader, int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var textBuilder strings.Builder
	numPages := pdfReader.NumPage()

	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page := pdfReader.Page(pageNum)
		if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages that fail to extract
			continue
		}
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}

	return textBuilder.String(), nil
}
