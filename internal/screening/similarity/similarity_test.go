package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreExactMatch(t *testing.T) {
	assert.Equal(t, 100.0, Score([]string{"Vladimir Petrov"}, "Vladimir Petrov"))
}

func TestScoreCaseInsensitive(t *testing.T) {
	assert.Equal(t, 100.0, Score([]string{"vladimir petrov"}, "VLADIMIR PETROV"))
}

func TestScoreEmptyNames(t *testing.T) {
	assert.Equal(t, 0.0, Score(nil, "anything"))
	assert.Equal(t, 0.0, Score([]string{}, "anything"))
}

func TestScoreKnownBigramOverlap(t *testing.T) {
	// "night" vs "nacht": one shared bigram (HT) out of eight total.
	assert.Equal(t, 25.0, Score([]string{"night"}, "nacht"))
}

func TestScoreDeterministic(t *testing.T) {
	names := []string{"Abu Hafs", "Mahmoud Atta"}
	first := Score(names, "mahmud atta")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(names, "mahmud atta"))
	}
}

func TestScoreTakesMaxAcrossNameSet(t *testing.T) {
	weak := Score([]string{"Ibrahim Al-Masri"}, "John Smith")
	strong := Score([]string{"Ibrahim Al-Masri", "John Smith"}, "John Smith")
	assert.Less(t, weak, 100.0)
	assert.Equal(t, 100.0, strong)
}

func TestScoreShortStrings(t *testing.T) {
	// Too short to form a bigram and not identical.
	assert.Equal(t, 0.0, Score([]string{"a"}, "b"))
	// Identical single runes still count as an exact match.
	assert.Equal(t, 100.0, Score([]string{"a"}, "A"))
}

func TestScoreIgnoresWhitespace(t *testing.T) {
	assert.Equal(t, 100.0, Score([]string{"Jean  Claude"}, "Jean Claude"))
}

func TestScoreTwoDecimals(t *testing.T) {
	// "france" vs "franc": 4 shared bigrams of 9 -> 0.888... -> 88.89.
	assert.Equal(t, 88.89, Score([]string{"france"}, "franc"))
}
