package textract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contractops/contracts-tracker/constants"
)

type stubRunner struct {
	stdout []byte
	stderr []byte
	err    error
	calls  [][]string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, append([]string{name}, args...))
	return s.stdout, s.stderr, s.err
}

type funcRunner func(ctx context.Context, name string, args ...string) ([]byte, []byte, error)

func (f funcRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	return f(ctx, name, args...)
}

// writeOnePagePDF assembles a minimal valid single-page PDF whose page
// carries the given content stream, with a correct xref table.
func writeOnePagePDF(t *testing.T, content string) string {
	t.Helper()

	var buf bytes.Buffer
	offsets := make([]int, 6)
	buf.WriteString("%PDF-1.4\n")
	addObj := func(n int, body string) {
		offsets[n] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", n, body)
	}
	addObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	addObj(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	addObj(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
		"/Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>")
	addObj(4, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	addObj(5, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))

	xref := buf.Len()
	buf.WriteString("xref\n0 6\n0000000000 65535 f \n")
	for n := 1; n <= 5; n++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[n])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size 6 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xref)

	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func writeTempFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestExtractMissingFile(t *testing.T) {
	e := NewExtractor(Config{}, nil)

	res, err := e.Extract(context.Background(), "/no/such/file.pdf", constants.PDF)
	require.NoError(t, err)
	assert.Equal(t, StatusError, res.Status)
	assert.Equal(t, "Archivo no encontrado", res.Message)
}

func TestExtractUnsupportedFormat(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	path := writeTempFile(t, "doc.pdf", []byte("x"))

	_, err := e.Extract(context.Background(), path, constants.FileFormat("DOCX"))
	assert.Error(t, err)
}

func TestExtractImageOK(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	runner := &stubRunner{stdout: []byte("  CONTRATO NÚMERO 641234567  \n")}
	e.runner = runner
	path := writeTempFile(t, "scan.png", []byte("not really a png"))

	res, err := e.Extract(context.Background(), path, constants.IMAGE)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, res.Status)
	assert.Equal(t, "CONTRATO NÚMERO 641234567", res.Text)
	assert.Equal(t, 1, res.Pages)
	assert.Equal(t, "image-ocr", res.Method)

	require.Len(t, runner.calls, 1)
	call := strings.Join(runner.calls[0], " ")
	assert.Contains(t, call, "tesseract")
	assert.Contains(t, call, "-l spa")
	assert.Contains(t, call, "tessedit_char_whitelist=")
}

func TestExtractImageEmptyIsInfo(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	e.runner = &stubRunner{stdout: []byte("   \n  ")}
	path := writeTempFile(t, "blank.png", []byte("x"))

	res, err := e.Extract(context.Background(), path, constants.IMAGE)
	require.NoError(t, err)
	assert.Equal(t, StatusInfo, res.Status)
	assert.Equal(t, "Imagen sin texto detectable", res.Message)
}

func TestExtractImageEngineFailure(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	e.runner = &stubRunner{stderr: []byte("boom"), err: errors.New("exit status 1")}
	path := writeTempFile(t, "broken.png", []byte("x"))

	res, err := e.Extract(context.Background(), path, constants.IMAGE)
	require.NoError(t, err)
	assert.Equal(t, StatusError, res.Status)
	assert.Contains(t, res.Message, "Procesando imagen")
}

func TestExtractPDFTextLayer(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	runner := &stubRunner{}
	e.runner = runner
	path := writeOnePagePDF(t, "BT /F1 12 Tf 72 720 Td (CONTRATO NUMERO 641234567) Tj ET")

	res, err := e.Extract(context.Background(), path, constants.PDF)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, res.Status)
	assert.Equal(t, "pdf-text", res.Method)
	assert.Equal(t, 1, res.Pages)
	assert.True(t, strings.HasPrefix(res.Text, "--- Página 1 ---\n"), "page block label missing: %q", res.Text)
	assert.Contains(t, res.Text, "CONTRATO NUMERO 641234567")
	assert.Empty(t, runner.calls, "a usable text layer must not trigger OCR")

	legacy := res.Legacy()
	assert.Equal(t, res.Text, legacy)
	assert.False(t, strings.HasPrefix(legacy, "[ERROR]"))
	assert.False(t, strings.HasPrefix(legacy, "[INFO]"))
}

func TestExtractPDFOCRFallback(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	e.runner = funcRunner(func(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
		if name == "pdftoppm" {
			prefix := args[len(args)-1]
			return nil, nil, os.WriteFile(prefix+"-1.png", []byte("png"), 0o644)
		}
		return []byte("TEXTO ESCANEADO DEL CONTRATO\n"), nil, nil
	})
	path := writeOnePagePDF(t, "")

	res, err := e.Extract(context.Background(), path, constants.PDF)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, res.Status)
	assert.Equal(t, "pdf-ocr", res.Method)
	assert.True(t, strings.HasPrefix(res.Text, "--- Página 1 (OCR) ---\n"), "OCR block label missing: %q", res.Text)
	assert.Contains(t, res.Text, "TEXTO ESCANEADO DEL CONTRATO")
}

func TestExtractPDFNoExtractableText(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	e.runner = &stubRunner{err: errors.New("exit status 1")}
	path := writeOnePagePDF(t, "")

	res, err := e.Extract(context.Background(), path, constants.PDF)
	require.NoError(t, err)
	assert.Equal(t, StatusInfo, res.Status)
	assert.Equal(t, "PDF sin texto extraíble", res.Message)
	assert.True(t, strings.HasPrefix(res.Legacy(), "[INFO]"))
}

func TestExtractCorruptPDF(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	path := writeTempFile(t, "garbage.pdf", []byte("this is not a pdf"))

	res, err := e.Extract(context.Background(), path, constants.PDF)
	require.NoError(t, err)
	assert.Equal(t, StatusError, res.Status)
	assert.Contains(t, res.Message, "Procesando PDF")
}

func TestExtractAutoRejectsUnknownExtension(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	_, err := e.ExtractAuto(context.Background(), "/tmp/archivo.docx")
	assert.Error(t, err)
}

func TestConfigDefaults(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	assert.Equal(t, "pdftoppm", e.cfg.Pdftoppm)
	assert.Equal(t, "tesseract", e.cfg.Tesseract)
	assert.Equal(t, "spa", e.cfg.Lang)
	assert.Equal(t, 300, e.cfg.DPI)
	assert.Equal(t, DefaultWhitelist, e.cfg.Whitelist)
}
