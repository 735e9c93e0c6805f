package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywordsSplitsCompounds(t *testing.T) {
	keywords := ExtractKeywords("초음파유량계 구매 설치")
	assert.Contains(t, keywords, "초음파")
	assert.Contains(t, keywords, "유량계")
	assert.NotContains(t, keywords, "구매")
	assert.NotContains(t, keywords, "설치")
}

func TestExtractKeywordsLatinTokens(t *testing.T) {
	keywords := ExtractKeywords("Ultrasonic Flowmeter DN200 공급")
	assert.Contains(t, keywords, "ultrasonic")
	assert.Contains(t, keywords, "flowmeter")
}

func TestExtractKeywordsDeterministicOrder(t *testing.T) {
	a := ExtractKeywords("초음파유량계 전자유량계 수질측정 설비")
	b := ExtractKeywords("초음파유량계 전자유량계 수질측정 설비")
	assert.Equal(t, a, b)
}

func TestKeywordsMatchSynonyms(t *testing.T) {
	assert.True(t, keywordsMatch("유량계", "flowmeter"))
	assert.True(t, keywordsMatch("초음파", "ultrasonic"))
	assert.True(t, keywordsMatch("유량계", "유량계"))
	assert.False(t, keywordsMatch("유량계", "펌프"))
}

func TestMatchRatio(t *testing.T) {
	bid := []string{"초음파", "유량계"}
	assert.Equal(t, 1.0, matchRatio(bid, []string{"초음파", "유량계", "납품"}))
	assert.Equal(t, 0.5, matchRatio(bid, []string{"유량계"}))
	assert.Equal(t, 0.0, matchRatio(bid, []string{"펌프"}))
	assert.Equal(t, 0.0, matchRatio(nil, []string{"유량계"}))
}
