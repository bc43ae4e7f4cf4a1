package parse

var (
	// Anchored to the "11. PLAZO" section, same line.
	reTermSection = compile(`(?i)11\.\s*PLAZO[^\n]*?(?:es\s+de\s+)?\s*(\d{1,4})\s*D[IÍ]AS`)

	// Any "<number> DÍAS" occurrence.
	reTermAnywhere = compile(`(?i)(\d{1,4})\s*D[IÍ]AS`)

	// "plazo de <number> día" phrasing.
	reTermPhrase = compile(`(?i)plazo\s*(?:de\s+)?(\d{1,4})\s*d[ií]a`)
)

// TermDays extracts the contract term in days as numeric text. The
// first successful pattern wins; later fallbacks are not attempted.
func TermDays(text string) string {
	return firstMatch(text,
		matchGroup(reTermSection),
		matchGroup(reTermAnywhere),
		matchGroup(reTermPhrase),
	)
}
