package textract

// Status tags an extraction result. The legacy caller protocol encodes
// the same three cases as string prefixes; Legacy() renders them.
type Status int

const (
	// StatusOK means Text holds usable document text.
	StatusOK Status = iota
	// StatusInfo means the document was readable but yielded no text
	// (scanned pages with nothing detectable, zero-page PDF). Callers
	// may proceed with manual entry.
	StatusInfo
	// StatusError means acquisition failed for this document. Terminal,
	// no retry.
	StatusError
)

// Result is the outcome of one text-acquisition call.
type Result struct {
	Status  Status
	Text    string
	Pages   int
	Method  string // "pdf-text" | "pdf-mixed" | "pdf-ocr" | "image-ocr"
	Message string // detail for Info/Error results
}

// Legacy renders the historical string contract: plain text on success,
// "[INFO] ..." for empty-but-valid documents, "[ERROR] ..." on failure.
func (r Result) Legacy() string {
	switch r.Status {
	case StatusInfo:
		return "[INFO] " + r.Message
	case StatusError:
		return "[ERROR] " + r.Message
	default:
		return r.Text
	}
}

func okResult(text string, pages int, method string) Result {
	return Result{Status: StatusOK, Text: text, Pages: pages, Method: method}
}

func infoResult(message string, pages int) Result {
	return Result{Status: StatusInfo, Pages: pages, Message: message}
}

func errorResult(message string) Result {
	return Result{Status: StatusError, Message: message}
}
