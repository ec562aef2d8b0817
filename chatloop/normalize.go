package chatloop

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// MaxMessageLength is the longest message, in characters, that will be sent.
const MaxMessageLength = 500

var stripControl = runes.Remove(runes.Predicate(unicode.IsControl))

// NormalizeMessage turns raw user text into a single line of at most
// MaxMessageLength characters. Line breaks become spaces, other control
// characters are dropped and surrounding whitespace is trimmed.
//
// NormalizeMessage(NormalizeMessage(s)) == NormalizeMessage(s) for any s.
func NormalizeMessage(raw string) string {
	if raw == "" {
		return ""
	}
	s := strings.ToValidUTF8(raw, "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if strings.Contains(s, "\n") {
		s = strings.ReplaceAll(s, "\n", " ")
	}
	s = strings.ReplaceAll(s, "\t", " ")
	if out, _, err := transform.String(stripControl, s); err == nil {
		s = out
	}
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > MaxMessageLength {
		s = truncateRunes(s, MaxMessageLength)
		s = strings.TrimRightFunc(s, unicode.IsSpace)
	}
	return s
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
