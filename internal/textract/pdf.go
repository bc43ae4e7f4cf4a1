package textract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// extractPDF walks the document page by page: pages with a usable text
// layer are read directly, pages without one are rasterized and OCR'd.
// Blocks are labeled by page number and joined with blank lines.
func (e *Extractor) extractPDF(ctx context.Context, path string) Result {
	pageCount, err := pdfPageCount(path)
	if err != nil {
		e.logger.Warn("pdf validation failed", "path", path, "error", err)
		return errorResult(fmt.Sprintf("Procesando PDF: %v", err))
	}
	if pageCount == 0 {
		return infoResult("PDF sin texto extraíble", 0)
	}
	if e.cfg.MaxPages > 0 && pageCount > e.cfg.MaxPages {
		pageCount = e.cfg.MaxPages
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		e.logger.Warn("pdf open failed", "path", path, "error", err)
		return errorResult(fmt.Sprintf("Procesando PDF: %v", err))
	}
	defer f.Close()

	var blocks []string
	ocrPages := 0
	for n := 1; n <= pageCount; n++ {
		text := strings.TrimSpace(pageText(reader, n))
		if text != "" {
			blocks = append(blocks, fmt.Sprintf("--- Página %d ---\n%s", n, text))
			continue
		}
		ocrText, err := e.ocrPDFPage(ctx, path, n)
		if err != nil {
			e.logger.Warn("page ocr failed", "path", path, "page", n, "error", err)
			continue
		}
		if ocrText = strings.TrimSpace(ocrText); ocrText != "" {
			blocks = append(blocks, fmt.Sprintf("--- Página %d (OCR) ---\n%s", n, ocrText))
			ocrPages++
		}
	}

	if len(blocks) == 0 {
		return infoResult("PDF sin texto extraíble", pageCount)
	}

	method := "pdf-text"
	switch {
	case ocrPages == len(blocks):
		method = "pdf-ocr"
	case ocrPages > 0:
		method = "pdf-mixed"
	}
	e.logger.Debug("pdf extracted", "path", path, "pages", pageCount, "ocr_pages", ocrPages, "method", method)
	return okResult(strings.Join(blocks, "\n\n"), pageCount, method)
}

// pdfPageCount validates the document structure and returns its page
// count without loading page content.
func pdfPageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return api.PageCount(f, nil)
}

// pageText reads the text layer of one page. ledongthuc/pdf panics on
// some malformed content streams; a panic counts as an empty page so
// the OCR fallback gets its turn.
func pageText(reader *pdf.Reader, n int) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()
	page := reader.Page(n)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}

// ocrPDFPage rasterizes a single page at the configured DPI and runs
// tesseract over it. The page image is removed before returning.
func (e *Extractor) ocrPDFPage(ctx context.Context, path string, page int) (string, error) {
	tmpDir, err := os.MkdirTemp("", "ct-page-*")
	if err != nil {
		return "", err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			e.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", err)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -f N -l N -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm,
		"-f", fmt.Sprintf("%d", page), "-l", fmt.Sprintf("%d", page),
		"-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return "", fmt.Errorf("pdftoppm: %w (%s)", err, strings.TrimSpace(string(errb)))
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return "", fmt.Errorf("pdftoppm produced no image for page %d", page)
	}

	// tesseract <img> stdout -l spa --oem 3 --psm 6
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract,
		matches[0], "stdout", "-l", e.cfg.Lang, "--oem", "3", "--psm", "6")
	if err != nil {
		return "", fmt.Errorf("tesseract: %w (%s)", err, strings.TrimSpace(string(errb)))
	}
	return string(out), nil
}
