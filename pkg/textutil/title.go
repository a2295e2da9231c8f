// Package textutil provides display helpers for field and resource names.
package textutil

import (
	"strings"
	"unicode"
)

// Title splits camelCase words and title-cases the result.
//
// A space is inserted before an uppercase run when the preceding rune is
// neither uppercase nor whitespace. Every letter that follows a non-letter
// is upper-cased and every other letter lower-cased.
//
//   - "messageCount" -> "Message Count"
//   - "scheduledViews" -> "Scheduled Views"
//   - "search/jobs" -> "Search/Jobs"
func Title(phrase string) string {
	runes := []rune(phrase)

	var spaced []rune
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			if !unicode.IsUpper(prev) && !unicode.IsSpace(prev) {
				spaced = append(spaced, ' ')
			}
		}
		spaced = append(spaced, r)
	}

	out := make([]rune, len(spaced))
	prevLetter := false
	for i, r := range spaced {
		if unicode.IsLetter(r) {
			if prevLetter {
				out[i] = unicode.ToLower(r)
			} else {
				out[i] = unicode.ToUpper(r)
			}
			prevLetter = true
			continue
		}
		out[i] = r
		prevLetter = false
	}
	return string(out)
}

// BeautifyHeader turns a result column name into a table header.
// The first underscore is dropped and any others become spaces.
func BeautifyHeader(column string) string {
	s := strings.Replace(column, "_", "", 1)
	s = strings.ReplaceAll(s, "_", " ")
	return Title(s)
}

// BeautifyHeaders applies BeautifyHeader to each column.
func BeautifyHeaders(columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = BeautifyHeader(c)
	}
	return out
}
