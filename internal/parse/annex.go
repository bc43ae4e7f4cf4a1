package parse

import (
	"regexp"
	"sort"
	"strings"

	"github.com/contractops/contracts-tracker/internal/vocab"
)

// All detection runs over the uppercased text; quote-like delimiters
// accepted around codes include curly quotes and acute accents, which
// OCR frequently substitutes for straight quotes.
var (
	// 1. quoted: ANEXO "CODE"
	reAnnexQuoted = compile("ANEXO\\s+[“”\"'´`]+\\s*([A-Z0-9\\-]+)\\s*[“”\"'´`]+")

	// 2. bare: ANEXO XX or ANEXO XX-YY with a clean terminator
	reAnnexBare = compile(`ANEXO\s+([A-Z]{1,3}(?:-[A-Z0-9]{1,3})?)(?:[\s.,:]|$)`)

	// code shape accepted without vocabulary support
	reAnnexShape = compile(`^[A-Z]{1,3}(?:-[A-Z0-9]{1,3})?$`)

	// 3. contract-integrity section, numbered and unnumbered variants
	reIntegrityHead    = compile(`2\.\s*INTEGRIDAD\s+DEL\s+CONTRATO`)
	reIntegrityEnd     = compile(`\n\s*\d+\.`)
	reIntegrityAltHead = compile(`INTEGRIDAD\s+DEL\s+CONTRATO`)
	reIntegrityAltEnd  = compile(`\n{2,}|\n\s*\d+\.`)

	// within the integrity block: ANEXO/ANEXOS-anchored codes plus any
	// quoted code token (the block enumerates the contract's annexes,
	// so the comma-separated form `ANEXOS "A", "B-1" Y "C"` must yield
	// every code)
	reIntegrityAnchored = compile("ANEXOS?\\s*[“”\"'\\s]*([A-Z0-9\\-]+)[“”\"'\\s]*")
	reIntegrityQuoted   = compile("[“\"'«]([A-Z0-9\\-]+)[”\"'»]")
)

// DetectAnnexes runs every strategy, unions the results, and returns
// the deduplicated ascending-sorted list of annex codes. Newly seen
// codes are added to the vocabulary store before returning, so every
// returned code is a member of the vocabulary afterward.
func DetectAnnexes(text string, store vocab.Store) []string {
	upper := strings.ToUpper(text)
	found := make(map[string]struct{})

	collect := func(codes []string) {
		for _, c := range codes {
			if c = strings.TrimSpace(c); c != "" {
				found[c] = struct{}{}
			}
		}
	}

	collect(annexQuoted(upper))
	collect(annexBare(upper, store))
	collect(annexIntegritySection(upper))
	collect(annexVocabularySweep(upper, store))

	out := make([]string, 0, len(found))
	for c := range found {
		out = append(out, c)
	}
	sort.Strings(out)

	if len(out) > 0 {
		store.Add(out...)
	}
	return out
}

func annexQuoted(upper string) []string {
	return captureAll(reAnnexQuoted, upper)
}

// annexBare accepts a bare-format match only when the code is already
// in the vocabulary or fits the short alphanumeric code shape, guarding
// against arbitrary words following "ANEXO".
func annexBare(upper string, store vocab.Store) []string {
	if reAnnexBare == nil {
		return nil
	}
	var out []string
	for _, m := range reAnnexBare.FindAllStringSubmatch(upper, -1) {
		code := strings.TrimSpace(m[1])
		if code == "" {
			continue
		}
		if store.Contains(code) || (reAnnexShape != nil && reAnnexShape.MatchString(code)) {
			out = append(out, code)
		}
	}
	return out
}

// annexIntegritySection narrows the search to the "INTEGRIDAD DEL
// CONTRATO" block, the section that enumerates the contract's
// constituent annexes.
func annexIntegritySection(upper string) []string {
	block, ok := boundedCapture(upper, reIntegrityHead, reIntegrityEnd)
	if !ok {
		block, ok = boundedCapture(upper, reIntegrityAltHead, reIntegrityAltEnd)
	}
	if !ok {
		return nil
	}
	return append(captureAll(reIntegrityAnchored, block), captureAll(reIntegrityQuoted, block)...)
}

// annexVocabularySweep recovers known codes whose formatting escapes
// the other strategies: any "ANEXO <code>" occurrence, with optional
// quote-like characters around the code, counts.
func annexVocabularySweep(upper string, store vocab.Store) []string {
	var out []string
	for _, code := range store.Snapshot() {
		re, err := regexp.Compile("ANEXO\\s+[“”\"'´`]*\\s*" + regexp.QuoteMeta(code) + "[“”\"'´`]*(?:[\\s.,:]|$)")
		if err != nil {
			continue
		}
		if re.MatchString(upper) {
			out = append(out, code)
		}
	}
	return out
}

func captureAll(re *regexp.Regexp, s string) []string {
	if re == nil {
		return nil
	}
	var out []string
	for _, m := range re.FindAllStringSubmatch(s, -1) {
		out = append(out, m[1])
	}
	return out
}
