package parse

import (
	"regexp"
	"strings"
)

var (
	// PEMEX-style numbering: digit sequence starting with 64, 8-9 digits.
	reBareNumber = compile(`\b(64\d{6,7})\b`)

	// Labeled pair: "Contrato Número/N./NO./N <digits> <contractor>"
	// terminated by a page marker.
	reLabeledPair = compile(`(?i)Contrato\s*(?:N(?:ú|u)mero|N\.|NO\.|N)\s*[:\-]?\s*(64\d{6,7}|\d{6,10})\s+([A-ZÁÉÍÓÚÑ0-9.,\s&\-]{5,200}?)\s+(?:Hoja|Página|DE\b)`)

	// Explicit label fallback for the contractor.
	reContractorLabel = compile(`(?i)(?:PROVEEDOR|RAZ[ÓO]N\s+SOCIAL|CONTRATISTA)\s*[:\-]\s*([^\n]{5,200})`)
)

// ContractAndContractor extracts the contract number and the contractor
// name. The two resolve independently: a strategy succeeding for the
// number does not stop a later strategy from supplying the contractor.
func ContractAndContractor(text string) (number, contractor string) {
	if reBareNumber != nil {
		if m := reBareNumber.FindStringSubmatch(text); m != nil {
			number = m[1]
		}
	}

	if reLabeledPair != nil {
		if m := reLabeledPair.FindStringSubmatch(text); m != nil {
			if number == "" {
				number = strings.TrimSpace(m[1])
			}
			contractor = strings.TrimSpace(m[2])
		}
	}

	// Contextual window: the line right after the number's location.
	if contractor == "" && number != "" {
		contractor = contractorNearNumber(text, number)
	}

	if contractor == "" && reContractorLabel != nil {
		if m := reContractorLabel.FindStringSubmatch(text); m != nil {
			contractor = strings.TrimSpace(m[1])
		}
	}

	return number, contractor
}

// contractorNearNumber looks at the line following the first occurrence
// of the contract number and takes it as the contractor when it is long
// enough, clipped at a "Hoja" page marker.
func contractorNearNumber(text, number string) string {
	re, err := regexp.Compile(`(?i).{0,80}` + regexp.QuoteMeta(number) + `[^\n]*\n([^\n]{5,200})`)
	if err != nil {
		return ""
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	candidate := strings.TrimSpace(m[1])
	if len(candidate) <= 4 {
		return ""
	}
	if i := strings.Index(candidate, "Hoja"); i >= 0 {
		candidate = candidate[:i]
	}
	return strings.TrimSpace(candidate)
}
