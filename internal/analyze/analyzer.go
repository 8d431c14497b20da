// Package analyze computes per-page content metrics: Flesch reading ease,
// keyword frequency, and spelling/grammar issue counts. Everything here is
// a pure function of the page text, so identical input always produces
// identical output.
package analyze

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

const defaultKeywordCount = 10

var (
	sentencePattern  = regexp.MustCompile(`[.!?]+`)
	wordPattern      = regexp.MustCompile(`[a-zA-Z']+`)
	spaceBeforePunct = regexp.MustCompile(`\s+[,.;:!?]`)
	repeatedPunct    = regexp.MustCompile(`[,;:]{2,}|[.]{4,}|[!?]{3,}`)
)

// Result holds the analysis output for one page.
type Result struct {
	FleschScore      float64
	TopKeywords      []string
	SpellingIssues   int
	GrammarIssues    int
	SpellingExamples []string
	GrammarExamples  []string
}

// Analyzer runs content analysis with a bounded number of stored example
// snippets per issue kind.
type Analyzer struct {
	snippetLimit int
	keywordCount int
}

// New creates an analyzer. snippetLimit caps the example snippets recorded
// per issue kind so pathological pages cannot grow storage without bound.
func New(snippetLimit int) *Analyzer {
	return &Analyzer{
		snippetLimit: snippetLimit,
		keywordCount: defaultKeywordCount,
	}
}

// Analyze computes all metrics for the given visible text.
func (a *Analyzer) Analyze(text string) *Result {
	words := wordPattern.FindAllString(text, -1)

	result := &Result{
		FleschScore: fleschScore(text, words),
		TopKeywords: topKeywords(words, a.keywordCount),
	}

	a.checkSpelling(words, result)
	a.checkGrammar(text, words, result)

	return result
}

// fleschScore computes the Flesch reading-ease score:
// 206.835 - 1.015*(words/sentences) - 84.6*(syllables/words).
func fleschScore(text string, words []string) float64 {
	if len(words) == 0 {
		return 0
	}

	sentences := countSentences(text)
	syllables := 0
	for _, w := range words {
		syllables += countSyllables(w)
	}

	score := 206.835 -
		1.015*(float64(len(words))/float64(sentences)) -
		84.6*(float64(syllables)/float64(len(words)))

	return math.Round(score*100) / 100
}

// countSentences counts terminator runs, treating unterminated trailing
// text as one sentence.
func countSentences(text string) int {
	count := 0
	for _, segment := range sentencePattern.Split(text, -1) {
		if strings.TrimSpace(segment) != "" {
			count++
		}
	}
	if count == 0 {
		count = 1
	}
	return count
}

// countSyllables estimates syllables by counting vowel groups, dropping a
// silent trailing e, with a floor of one.
func countSyllables(word string) int {
	word = strings.ToLower(strings.Trim(word, "'"))
	if word == "" {
		return 1
	}

	count := 0
	prevVowel := false
	for _, r := range word {
		vowel := strings.ContainsRune("aeiouy", r)
		if vowel && !prevVowel {
			count++
		}
		prevVowel = vowel
	}

	if strings.HasSuffix(word, "e") && !strings.HasSuffix(word, "le") && count > 1 {
		count--
	}
	if count == 0 {
		count = 1
	}
	return count
}

// topKeywords returns the n most frequent non-stopword words of length >= 3,
// ordered by descending frequency with alphabetical tie-breaking so the
// output is deterministic.
func topKeywords(words []string, n int) []string {
	freq := make(map[string]int)
	for _, w := range words {
		w = strings.ToLower(strings.Trim(w, "'"))
		if len(w) < 3 || stopwords[w] {
			continue
		}
		freq[w]++
	}

	keywords := make([]string, 0, len(freq))
	for w := range freq {
		keywords = append(keywords, w)
	}
	sort.Slice(keywords, func(i, j int) bool {
		if freq[keywords[i]] != freq[keywords[j]] {
			return freq[keywords[i]] > freq[keywords[j]]
		}
		return keywords[i] < keywords[j]
	})

	if len(keywords) > n {
		keywords = keywords[:n]
	}
	return keywords
}

// checkSpelling flags known misspellings and implausible letter runs.
func (a *Analyzer) checkSpelling(words []string, result *Result) {
	for i, raw := range words {
		w := strings.ToLower(strings.Trim(raw, "'"))
		if w == "" {
			continue
		}

		flagged := false
		if _, known := misspellings[w]; known {
			flagged = true
		} else if hasTripleLetterRun(w) {
			flagged = true
		}

		if !flagged {
			continue
		}

		result.SpellingIssues++
		if len(result.SpellingExamples) < a.snippetLimit {
			result.SpellingExamples = append(result.SpellingExamples, snippet(words, i))
		}
	}
}

// checkGrammar applies heuristic checks: doubled words, lowercase sentence
// starts, whitespace before punctuation and repeated punctuation.
func (a *Analyzer) checkGrammar(text string, words []string, result *Result) {
	record := func(example string) {
		result.GrammarIssues++
		if len(result.GrammarExamples) < a.snippetLimit {
			result.GrammarExamples = append(result.GrammarExamples, example)
		}
	}

	for i := 0; i+1 < len(words); i++ {
		if strings.EqualFold(words[i], words[i+1]) {
			record(snippet(words, i))
		}
	}

	for _, segment := range sentencePattern.Split(text, -1) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		first := rune(segment[0])
		if first >= 'a' && first <= 'z' {
			record(truncate(segment, 60))
		}
	}

	for _, match := range spaceBeforePunct.FindAllString(text, -1) {
		record(strings.TrimSpace(match))
	}

	for _, match := range repeatedPunct.FindAllString(text, -1) {
		record(match)
	}
}

// hasTripleLetterRun reports whether a lowercased word contains the same
// letter three or more times in a row, which no English word does.
func hasTripleLetterRun(word string) bool {
	var prev rune
	run := 0
	for _, r := range word {
		if r < 'a' || r > 'z' {
			prev, run = 0, 0
			continue
		}
		if r == prev {
			run++
			if run >= 3 {
				return true
			}
		} else {
			prev, run = r, 1
		}
	}
	return false
}

// snippet returns the word at index i with up to three words of context on
// each side.
func snippet(words []string, i int) string {
	lo := i - 3
	if lo < 0 {
		lo = 0
	}
	hi := i + 4
	if hi > len(words) {
		hi = len(words)
	}
	return strings.Join(words[lo:hi], " ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
