package extract

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/autou/mail-triage/internal/core"
	"go.uber.org/zap"
)

func newTestExtractor() *Extractor {
	return New(1024, []string{".txt", ".pdf"}, zap.NewNop())
}

func TestTextPlainUTF8(t *testing.T) {
	e := newTestExtractor()

	content := "Preciso de ajuda com o relatório de vendas."
	got, err := e.Text("email.txt", int64(len(content)), strings.NewReader(content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != content {
		t.Errorf("extracted %q, want %q", got, content)
	}
}

func TestTextLatin1Fallback(t *testing.T) {
	e := newTestExtractor()

	// "relatório" encoded as Latin-1: ó is a single 0xF3 byte
	data := []byte("relat\xf3rio de vendas")
	got, err := e.Text("legacy.txt", int64(len(data)), bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "relatório de vendas" {
		t.Errorf("extracted %q, want %q", got, "relatório de vendas")
	}
}

func TestTextUnsupportedExtension(t *testing.T) {
	e := newTestExtractor()

	for _, name := range []string{"email.docx", "email.exe", "email", "EMAIL.DOC"} {
		_, err := e.Text(name, 10, strings.NewReader("irrelevant"))
		if !errors.Is(err, core.ErrUnsupportedFileType) {
			t.Errorf("Text(%q): error = %v, want ErrUnsupportedFileType", name, err)
		}
		if !errors.Is(err, core.ErrInvalidInput) {
			t.Errorf("Text(%q): error should wrap ErrInvalidInput", name)
		}
	}
}

func TestTextExtensionCaseInsensitive(t *testing.T) {
	e := newTestExtractor()

	if _, err := e.Text("EMAIL.TXT", 5, strings.NewReader("hello")); err != nil {
		t.Errorf("uppercase extension rejected: %v", err)
	}
}

func TestTextFileTooLarge(t *testing.T) {
	e := newTestExtractor()

	_, err := e.Text("big.txt", 2048, strings.NewReader("x"))
	if !errors.Is(err, core.ErrFileTooLarge) {
		t.Errorf("error = %v, want ErrFileTooLarge", err)
	}

	// A liar header with an oversized body is still rejected
	body := strings.Repeat("x", 2048)
	_, err = e.Text("big.txt", 10, strings.NewReader(body))
	if !errors.Is(err, core.ErrFileTooLarge) {
		t.Errorf("error = %v, want ErrFileTooLarge for oversized body", err)
	}
}

func TestTextNoSizeLimit(t *testing.T) {
	e := New(0, []string{".txt"}, zap.NewNop())

	content := strings.Repeat("relatório de vendas. ", 200)
	got, err := e.Text("big.txt", int64(len(content)), strings.NewReader(content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != content {
		t.Errorf("extracted %d bytes, want %d", len(got), len(content))
	}
}

func TestTextBrokenPDF(t *testing.T) {
	e := newTestExtractor()

	_, err := e.Text("broken.pdf", 20, strings.NewReader("this is not a pdf"))
	if !errors.Is(err, core.ErrUnreadableFile) {
		t.Errorf("error = %v, want ErrUnreadableFile", err)
	}
}
