package parse

import "strings"

var (
	// Numbered section heading ("4. ... OBJETO") up to end of that line.
	reObjectNumberedHead = compile(`(?is)(?:\n|^)\s*4\.\s*.*?OBJETO[^\n]*\n`)
	reObjectNumberedEnd  = compile(`(?i)\n\s*\d+\.|\n\s*MONTO|\n\s*CL[AÁ]USULA|\n{2,}`)

	// Keyword fallback: "OBJETO [DEL CONTRATO]" anywhere.
	reObjectKeywordHead = compile(`(?i)OBJETO(?:\s+DEL\s+CONTRATO)?[^\n]*[:\-]?\s*`)
	reObjectKeywordEnd  = compile(`(?i)\n\s*\d+\.|\n{2,}|MONTO|PLAZO`)

	reQuoted     = compile(`[“"«]([^”"»]+)[”"»]`)
	reWhitespace = compile(`\s+`)
)

// Object extracts the contract's object/description section. Quoted
// material inside the captured block wins over the raw block.
func Object(text string) string {
	return firstMatch(text,
		func(t string) (string, bool) {
			if block, ok := boundedCapture(t, reObjectNumberedHead, reObjectNumberedEnd); ok {
				return cleanObject(block), true
			}
			return "", false
		},
		func(t string) (string, bool) {
			if block, ok := boundedCapture(t, reObjectKeywordHead, reObjectKeywordEnd); ok {
				return cleanObject(block), true
			}
			return "", false
		},
	)
}

func cleanObject(block string) string {
	block = strings.TrimSpace(block)
	if reQuoted != nil {
		if m := reQuoted.FindStringSubmatch(block); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	if reWhitespace != nil {
		block = reWhitespace.ReplaceAllString(block, " ")
	}
	return strings.TrimSpace(block)
}
