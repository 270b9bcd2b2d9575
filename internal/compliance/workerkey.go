package compliance

import (
	"regexp"
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonKeyChars = regexp.MustCompile(`[^a-z0-9]+`)

	// U+0300..U+036F - комбинируемые диакритические знаки
	combiningMarks = runes.Predicate(func(r rune) bool { return r >= 0x300 && r <= 0x36f })
)

// NormalizeWorkerKey строит ключ работника из имени:
// "  José  Pérez-Díaz " -> "jose_perez_diaz"
func NormalizeWorkerKey(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))

	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(combiningMarks)), s)
	if err == nil {
		s = stripped
	}

	s = nonKeyChars.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}
