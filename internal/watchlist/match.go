package watchlist

import (
	"strings"
	"unicode"

	"github.com/hbollon/go-edlib"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fuzzyThreshold is the Jaro-Winkler score a title must reach to match a
// query it doesn't literally contain.
const fuzzyThreshold = 0.88

// titleScore rates how well a title matches a search query, from 0 to 1.
// Substring matches of the cleaned strings score 1. Otherwise the query is
// compared by Jaro-Winkler against the whole title and every run of title
// words the same length as the query, which tolerates typos like
// "godfater" or "shawshank redemtion".
func titleScore(query, title string) float64 {
	q := cleanTitle(query)
	t := cleanTitle(title)
	if q == "" {
		return 1
	}
	if strings.Contains(t, q) {
		return 1
	}

	best := float64(edlib.JaroWinklerSimilarity(q, t))

	qWords := len(strings.Fields(q))
	tWords := strings.Fields(t)
	for i := 0; i+qWords <= len(tWords); i++ {
		window := strings.Join(tWords[i:i+qWords], " ")
		if score := float64(edlib.JaroWinklerSimilarity(q, window)); score > best {
			best = score
		}
	}
	return best
}

func matchesTitle(query, title string) bool {
	return titleScore(query, title) >= fuzzyThreshold
}

// cleanTitle normalizes a title for matching: lowercase, accents and
// punctuation removed, leading article dropped, whitespace collapsed.
func cleanTitle(title string) string {
	s := strings.ToLower(title)
	s = removeAccents(s)

	s = strings.ReplaceAll(s, "&", " and ")
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, ".", " ")
	s = strings.ReplaceAll(s, ":", " ")

	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	s = strings.Join(strings.Fields(b.String()), " ")
	for _, art := range []string{"the ", "a ", "an "} {
		if strings.HasPrefix(s, art) {
			return strings.TrimPrefix(s, art)
		}
	}
	return s
}

func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}
