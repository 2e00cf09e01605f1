package service

import (
	"regexp"
	"strings"
)

var (
	reCitationBlock = regexp.MustCompile(`(?is)<details\b.*?</details>`)
	reLineBreakTag  = regexp.MustCompile(`(?i)<br\s*/?\s*>`)
	reMarkupTag     = regexp.MustCompile(`<[^<>]+>`)
	reBlankRun      = regexp.MustCompile(`\n{3,}`)
)

// CleanResponse elimina artefactele providerului din textul generat:
// blocurile de citari <details>, tagurile <br> si orice markup ramas, apoi
// comprima rulajele de linii goale. Functie totala si idempotenta; input gol
// sau malformat produce sir gol dupa curatarea best-effort.
func CleanResponse(raw string) string {
	s := strings.TrimPrefix(raw, "\uFEFF")

	s = reCitationBlock.ReplaceAllString(s, "")
	s = reLineBreakTag.ReplaceAllString(s, "\n")
	s = reMarkupTag.ReplaceAllString(s, "")
	s = reBlankRun.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}
