package pkg

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ToTitleCase upper-cases the first letter of every space separated word
// and lower-cases the rest, e.g. "bench PRESS" -> "Bench Press".
func ToTitleCase(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		first, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(first)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}
