package textract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/contractops/contracts-tracker/constants"
)

// Config for the text-acquisition stage. Zero values fall back to the
// defaults the contracts corpus was tuned for (Spanish model, 300 DPI).
type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Lang     string // default "spa"
	DPI      int    // rasterization DPI for scanned pages, default 300
	MaxPages int    // 0 = no limit

	// Whitelist restricts the character set for whole-image OCR.
	// Empty selects the default alphanumeric + Spanish punctuation set.
	Whitelist string
}

// DefaultWhitelist is the tesseract character whitelist for image OCR:
// alphanumerics plus accented Spanish letters and common currency and
// clause punctuation.
const DefaultWhitelist = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyzÁÉÍÓÚáéíóúÑñ.,;:()$-/ "

// Extractor turns a document on disk into text, preferring the PDF text
// layer and falling back to OCR page by page.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "spa"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.Whitelist == "" {
		cfg.Whitelist = DefaultWhitelist
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Extract acquires text from path according to the declared format.
// Expected failure modes (missing file, corrupt document, OCR engine
// failure) come back as an Error-status Result with a nil error; the
// returned error is reserved for programmer mistakes such as an
// unsupported format value.
func (e *Extractor) Extract(ctx context.Context, path string, format constants.FileFormat) (Result, error) {
	if _, err := os.Stat(path); err != nil {
		e.logger.Warn("document not found", "path", path, "error", err)
		return errorResult("Archivo no encontrado"), nil
	}

	switch format {
	case constants.PDF:
		return e.extractPDF(ctx, path), nil
	case constants.IMAGE:
		return e.extractImage(ctx, path), nil
	default:
		return Result{}, fmt.Errorf("unsupported format: %q", format)
	}
}

// ExtractAuto picks the format from the file extension.
func (e *Extractor) ExtractAuto(ctx context.Context, path string) (Result, error) {
	format := constants.MapExtToFormat(filepath.Ext(path))
	if format == "" {
		return Result{}, fmt.Errorf("unsupported extension: %q", filepath.Ext(path))
	}
	return e.Extract(ctx, path, format)
}
