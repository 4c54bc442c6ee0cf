package tone

import (
	"encoding/json"
	"errors"
	"strings"
	"unicode"
)

var errNoJSON = errors.New("no JSON object in model answer")

// Word lists for the formality estimate. Matches are counted per token after
// lowercasing and punctuation stripping.
var (
	formalMarkers = map[string]struct{}{
		"therefore": {}, "however": {}, "moreover": {}, "consequently": {},
		"furthermore": {}, "nevertheless": {}, "accordingly": {}, "thus": {},
		"regarding": {}, "whereas": {}, "hereby": {}, "notwithstanding": {},
		"pursuant": {}, "shall": {}, "demonstrate": {}, "facilitate": {},
		"utilize": {}, "subsequently": {},
	}
	informalMarkers = map[string]struct{}{
		"gonna": {}, "wanna": {}, "gotta": {}, "kinda": {}, "sorta": {},
		"yeah": {}, "nope": {}, "ok": {}, "okay": {}, "cool": {}, "awesome": {},
		"stuff": {}, "things": {}, "guys": {}, "super": {}, "really": {},
		"pretty": {}, "basically": {}, "literally": {}, "hey": {},
	}
)

type heuristicResult struct {
	Analyzer            string   `json:"analyzer"`
	Formality           float64  `json:"formality"`
	Complexity          float64  `json:"complexity"`
	PrimarySentenceType string   `json:"primary_sentence_type"`
	VocabularyLevel     string   `json:"vocabulary_level"`
	AvgWordLength       float64  `json:"avg_word_length"`
	AvgSentenceLength   float64  `json:"avg_sentence_length"`
	WordCount           int      `json:"word_count"`
	NotablePatterns     []string `json:"notable_patterns,omitempty"`
}

// heuristicProfile derives a profile from surface statistics: marker words,
// average word and sentence length, and sentence-ending punctuation.
func heuristicProfile(text string) (json.RawMessage, error) {
	words := strings.Fields(text)
	wordCount := len(words)
	if wordCount == 0 {
		return nil, errors.New("empty text")
	}

	formalHits, informalHits := 0, 0
	totalRunes := 0
	longWords := 0
	for _, word := range words {
		token := strings.ToLower(strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		}))
		runes := len([]rune(token))
		totalRunes += runes
		if runes >= 7 {
			longWords++
		}
		if _, ok := formalMarkers[token]; ok {
			formalHits++
		}
		if _, ok := informalMarkers[token]; ok {
			informalHits++
		}
	}
	avgWordLength := float64(totalRunes) / float64(wordCount)

	declarative, interrogative, exclamatory := 0, 0, 0
	sentences := 0
	for _, r := range text {
		switch r {
		case '.':
			declarative++
			sentences++
		case '?':
			interrogative++
			sentences++
		case '!':
			exclamatory++
			sentences++
		}
	}
	if sentences == 0 {
		sentences = 1
		declarative = 1
	}
	avgSentenceLength := float64(wordCount) / float64(sentences)

	// Formality: neutral midpoint, pushed by marker balance and word length.
	formality := 0.5
	formality += 0.05 * float64(formalHits-informalHits)
	formality += (avgWordLength - 4.5) * 0.05
	formality = clamp01(formality)

	// Complexity: long words plus long sentences.
	complexity := clamp01(float64(longWords)/float64(wordCount)*2 + (avgSentenceLength-12)/40)

	primary := "declarative"
	if interrogative > declarative && interrogative >= exclamatory {
		primary = "interrogative"
	} else if exclamatory > declarative && exclamatory > interrogative {
		primary = "exclamatory"
	}

	vocabulary := "conversational"
	switch {
	case formality >= 0.75:
		vocabulary = "academic"
	case formality >= 0.55:
		vocabulary = "professional"
	case formality < 0.35:
		vocabulary = "casual"
	}

	var patterns []string
	if avgSentenceLength > 25 {
		patterns = append(patterns, "long sentences")
	}
	if exclamatory > sentences/4 {
		patterns = append(patterns, "frequent exclamations")
	}
	if interrogative > sentences/4 {
		patterns = append(patterns, "frequent rhetorical questions")
	}

	return json.Marshal(heuristicResult{
		Analyzer:            "heuristic",
		Formality:           round2(formality),
		Complexity:          round2(complexity),
		PrimarySentenceType: primary,
		VocabularyLevel:     vocabulary,
		AvgWordLength:       round2(avgWordLength),
		AvgSentenceLength:   round2(avgSentenceLength),
		WordCount:           wordCount,
		NotablePatterns:     patterns,
	})
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
