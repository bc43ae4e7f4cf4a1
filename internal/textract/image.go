package textract

import (
	"context"
	"fmt"
	"strings"
)

// extractImage runs OCR over the whole image with the restricted
// character whitelist. Empty output is an Info result, not an error.
func (e *Extractor) extractImage(ctx context.Context, path string) Result {
	// tesseract <file> stdout -l spa --oem 3 --psm 6 -c tessedit_char_whitelist=...
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract,
		path, "stdout", "-l", e.cfg.Lang, "--oem", "3", "--psm", "6",
		"-c", "tessedit_char_whitelist="+e.cfg.Whitelist)
	if err != nil {
		e.logger.Warn("image ocr failed", "path", path, "error", err)
		return errorResult(fmt.Sprintf("Procesando imagen: %v (%s)", err, strings.TrimSpace(string(errb))))
	}

	text := strings.TrimSpace(string(out))
	if text == "" {
		return infoResult("Imagen sin texto detectable", 1)
	}
	return okResult(text, 1, "image-ocr")
}
