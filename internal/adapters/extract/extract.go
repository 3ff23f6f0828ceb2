package extract

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/autou/mail-triage/internal/core"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

// Extractor turns uploaded files into plain text for classification
type Extractor struct {
	maxFileSize int64
	allowedExts map[string]bool
	logger      *zap.Logger
}

// New creates an extractor. allowedExts entries are lowercase with the
// leading dot (".txt", ".pdf").
func New(maxFileSize int64, allowedExts []string, logger *zap.Logger) *Extractor {
	exts := make(map[string]bool, len(allowedExts))
	for _, ext := range allowedExts {
		exts[strings.ToLower(ext)] = true
	}

	return &Extractor{
		maxFileSize: maxFileSize,
		allowedExts: exts,
		logger:      logger,
	}
}

// Text extracts plain text from an uploaded file. The whole file is
// already in memory, bounded by the size check.
func (e *Extractor) Text(filename string, size int64, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !e.allowedExts[ext] {
		return "", fmt.Errorf("%w: %q", core.ErrUnsupportedFileType, ext)
	}

	if e.maxFileSize > 0 && size > e.maxFileSize {
		return "", fmt.Errorf("%w: %d bytes (limit %d)", core.ErrFileTooLarge, size, e.maxFileSize)
	}

	body := r
	if e.maxFileSize > 0 {
		body = io.LimitReader(r, e.maxFileSize+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrUnreadableFile, err)
	}
	if e.maxFileSize > 0 && int64(len(data)) > e.maxFileSize {
		return "", fmt.Errorf("%w: %d bytes (limit %d)", core.ErrFileTooLarge, len(data), e.maxFileSize)
	}

	switch ext {
	case ".pdf":
		return e.pdfText(data)
	default:
		return e.plainText(data)
	}
}

// plainText decodes a text file, falling back to Latin-1 when the bytes
// are not valid UTF-8
func (e *Extractor) plainText(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrUnreadableFile, err)
	}

	e.logger.Debug("Text file decoded as Latin-1", zap.Int("size", len(data)))
	return string(decoded), nil
}

// pdfText extracts the plain text stream from a PDF
func (e *Extractor) pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrUnreadableFile, err)
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrUnreadableFile, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(textReader); err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrUnreadableFile, err)
	}

	return buf.String(), nil
}
