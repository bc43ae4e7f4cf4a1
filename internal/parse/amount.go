package parse

import "strings"

var (
	// $-prefixed token with thousands separators, optional M.N. suffix.
	reAmountDollar = compile(`(?i)\$\s*([\d{1,3}.,]+\d{0,2})(?:\s*M\.?N\.?)?`)

	// Label-anchored fallback.
	reAmountLabel = compile(`(?i)(?:MONTO|IMPORTE|VALOR)[^\d]*(\$?\s*[\d,]+\.?\d*)`)
)

// Amount extracts the contract amount as display text, preserving the
// source formatting (e.g. "$1,500,000.00").
func Amount(text string) string {
	return firstMatch(text,
		func(t string) (string, bool) {
			if reAmountDollar == nil {
				return "", false
			}
			m := reAmountDollar.FindStringSubmatch(t)
			if m == nil {
				return "", false
			}
			val := strings.ReplaceAll(strings.TrimSpace(m[1]), " ", "")
			return "$" + val, true
		},
		func(t string) (string, bool) {
			if reAmountLabel == nil {
				return "", false
			}
			m := reAmountLabel.FindStringSubmatch(t)
			if m == nil {
				return "", false
			}
			return strings.TrimSpace(m[1]), true
		},
	)
}
