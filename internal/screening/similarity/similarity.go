// Package similarity computes the displayed match rate: a case-insensitive
// Dice coefficient over character bigrams, taken as the maximum across an
// entity's whole name set. Sources populate names inconsistently, so scoring
// every known variant avoids penalizing entities whose canonical name differs
// from the query's preferred spelling.
package similarity

import (
	"math"
	"strings"
)

// Score returns the best bigram similarity between query and any candidate
// name, as a percentage rounded to two decimals. An empty name set scores 0.
func Score(names []string, query string) float64 {
	max := 0.0
	for _, name := range names {
		if s := compare(strings.ToUpper(name), strings.ToUpper(query)); s > max {
			max = s
		}
	}
	return math.Round(max*100*100) / 100
}

// compare is the Dice coefficient on bigrams of the two strings with
// whitespace removed. Identical strings score 1; strings too short to form a
// bigram score 0.
func compare(first, second string) float64 {
	a := []rune(stripSpace(first))
	b := []rune(stripSpace(second))

	if string(a) == string(b) {
		return 1
	}
	if len(a) < 2 || len(b) < 2 {
		return 0
	}

	bigrams := make(map[string]int, len(a)-1)
	for i := 0; i < len(a)-1; i++ {
		bigrams[string(a[i:i+2])]++
	}

	intersection := 0
	for i := 0; i < len(b)-1; i++ {
		gram := string(b[i : i+2])
		if bigrams[gram] > 0 {
			bigrams[gram]--
			intersection++
		}
	}

	return 2 * float64(intersection) / float64(len(a)+len(b)-2)
}

func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
