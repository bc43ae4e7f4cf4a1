package textract

import (
	"regexp"
	"strings"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n`)
	reSpaceRuns  = regexp.MustCompile(`[ \t]+`)
	reBlankLines = regexp.MustCompile(`\n{3,}`)
)

// Normalize collapses noisy whitespace before parsing: CRLF pairs to
// LF (a lone CR is left alone), space/tab runs to a single space,
// three or more newlines to exactly two, and trims the ends.
// Idempotent.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reSpaceRuns.ReplaceAllString(s, " ")
	s = reBlankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
