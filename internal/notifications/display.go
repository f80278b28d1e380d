package notifications

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DisplayName converts a filename-safe user identifier into a readable name.
// Separator runs collapse to single spaces and each word is title-cased, so
// "dave_smith" renders as "Dave Smith". Returns "" when nothing printable
// remains.
func DisplayName(userID string) string {
	if userID == "" {
		return ""
	}
	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range userID {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	name := strings.TrimSpace(cleaned.String())
	if name == "" {
		return ""
	}
	return cases.Title(language.Und).String(name)
}
