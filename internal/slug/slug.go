// Package slug derives URL-safe identifiers from titles.
package slug

import (
	"fmt"
	"strings"
)

// Fixed Cyrillic to Latin transliteration table. Soft and hard signs map
// to nothing.
var translit = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "yo",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "j", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "c", 'ч': "ch", 'ш': "sh", 'щ': "shch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
}

// Make turns arbitrary text into a slug: lowercase, transliterated,
// with whitespace runs collapsed into single hyphens. Characters outside
// the transliteration table that are not ASCII alphanumerics, spaces or
// hyphens are dropped.
func Make(text string) string {
	var b strings.Builder
	for _, ch := range strings.ToLower(text) {
		if lat, ok := translit[ch]; ok {
			b.WriteString(lat)
			continue
		}
		switch {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9':
			b.WriteRune(ch)
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			b.WriteByte(' ')
		case ch == '-':
			b.WriteByte('-')
		}
	}
	s := strings.Join(strings.Fields(b.String()), "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}

// EnsureUnique returns candidate if no other member of taken uses it,
// otherwise the first "candidate-N" (N >= 2) that is free. exclude, when
// non-empty, names the slug of the record being edited so it can keep its
// own slug.
func EnsureUnique(candidate string, taken []string, exclude string) string {
	used := make(map[string]bool, len(taken))
	excluded := false
	for _, t := range taken {
		// Skip exactly one occurrence of the excluded slug.
		if t == exclude && !excluded {
			excluded = true
			continue
		}
		used[t] = true
	}
	if !used[candidate] {
		return candidate
	}
	for n := 2; ; n++ {
		s := fmt.Sprintf("%s-%d", candidate, n)
		if !used[s] {
			return s
		}
	}
}
