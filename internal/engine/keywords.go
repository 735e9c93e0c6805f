package engine

import (
	"strings"
	"unicode"

	prose "github.com/jdkato/prose/v2"
)

// Stop words common in tender titles that carry no product signal.
var keywordStopWords = map[string]struct{}{
	"구매": {}, "설치": {}, "공급": {}, "납품": {}, "교체": {}, "유지": {},
	"보수": {}, "운영": {}, "관리": {}, "시공": {}, "제작": {}, "용역": {},
	"사업": {}, "추진": {}, "개발": {},
	"년": {}, "월": {}, "일": {}, "분기": {}, "반기": {}, "상반기": {}, "하반기": {},
	"외": {}, "및": {}, "등": {}, "건": {}, "차": {}, "차분": {}, "물량": {},
	"일괄": {}, "일체": {}, "단가": {}, "계약": {}, "입찰": {}, "조달": {},
	"긴급": {}, "추가": {}, "신규": {},
}

// Compound product terms split into their match-relevant parts.
var compoundTerms = map[string][]string{
	"초음파유량계": {"초음파", "유량계"},
	"전자유량계":  {"전자", "유량계"},
	"전자식유량계": {"전자식", "유량계"},
	"비만관유량계": {"비만관", "유량계"},
	"수질측정":   {"수질", "측정"},
	"레벨센서":   {"레벨", "센서"},
}

var keywordSynonyms = [][]string{
	{"유량계", "flow meter", "flowmeter"},
	{"초음파", "ultrasonic", "ultra sonic"},
	{"전자", "electromagnetic", "mag"},
	{"열량계", "heat meter", "btu meter"},
	{"수도", "상수도", "water supply"},
}

// ExtractKeywords pulls product keywords from a tender title or product name:
// Hangul runs of two or more characters (compounds split first), and Latin
// tokens of three or more letters. Order is first-appearance, duplicates
// removed, so extraction is deterministic.
func ExtractKeywords(text string) []string {
	var keywords []string
	seen := make(map[string]struct{})
	add := func(k string) {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			return
		}
		if _, dup := seen[k]; dup {
			return
		}
		if _, stop := keywordStopWords[k]; stop {
			return
		}
		seen[k] = struct{}{}
		keywords = append(keywords, k)
	}

	processed := text
	for _, compound := range compoundKeys {
		if strings.Contains(processed, compound) {
			for _, part := range compoundTerms[compound] {
				add(part)
			}
			processed = strings.ReplaceAll(processed, compound, " ")
		}
	}

	for _, run := range hangulRuns(processed) {
		if len([]rune(run)) >= 2 {
			add(run)
		}
	}

	for _, tok := range latinTokens(processed) {
		if len(tok) >= 3 {
			add(tok)
		}
	}

	return keywords
}

// compoundKeys fixes the iteration order over compoundTerms; map order would
// make extraction nondeterministic.
var compoundKeys = []string{
	"초음파유량계", "전자식유량계", "전자유량계", "비만관유량계", "수질측정", "레벨센서",
}

// hangulRuns returns maximal runs of Hangul characters.
func hangulRuns(text string) []string {
	var runs []string
	var current []rune
	for _, r := range text {
		if unicode.Is(unicode.Hangul, r) {
			current = append(current, r)
			continue
		}
		if len(current) > 0 {
			runs = append(runs, string(current))
			current = nil
		}
	}
	if len(current) > 0 {
		runs = append(runs, string(current))
	}
	return runs
}

// latinTokens tokenizes the non-Hangul remainder with the prose tokenizer and
// keeps alphabetic tokens.
func latinTokens(text string) []string {
	var latin strings.Builder
	for _, r := range text {
		if unicode.Is(unicode.Hangul, r) {
			latin.WriteRune(' ')
			continue
		}
		latin.WriteRune(r)
	}

	doc, err := prose.NewDocument(latin.String(),
		prose.WithSegmentation(false),
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return strings.FieldsFunc(latin.String(), func(r rune) bool {
			return !unicode.IsLetter(r)
		})
	}

	var tokens []string
	for _, tok := range doc.Tokens() {
		if isAlphabetic(tok.Text) {
			tokens = append(tokens, tok.Text)
		}
	}
	return tokens
}

func isAlphabetic(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func normalizeKeyword(keyword string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(keyword) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// keywordsMatch reports whether two keywords refer to the same product term,
// directly, by containment, or through a synonym group.
func keywordsMatch(a, b string) bool {
	na := normalizeKeyword(a)
	nb := normalizeKeyword(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb || strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}

	for _, group := range keywordSynonyms {
		aIn, bIn := false, false
		for _, syn := range group {
			n := normalizeKeyword(syn)
			if strings.Contains(na, n) {
				aIn = true
			}
			if strings.Contains(nb, n) {
				bIn = true
			}
		}
		if aIn && bIn {
			return true
		}
	}
	return false
}

// matchRatio is the fraction of bid keywords covered by the record keywords.
func matchRatio(bidKeywords, recordKeywords []string) float64 {
	if len(bidKeywords) == 0 {
		return 0
	}
	matched := 0
	for _, bk := range bidKeywords {
		for _, rk := range recordKeywords {
			if keywordsMatch(bk, rk) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(bidKeywords))
}
