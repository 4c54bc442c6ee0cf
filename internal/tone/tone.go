// Package tone builds a voice profile from reference text. The primary path
// asks the LLM provider for a structured analysis; when that fails the local
// heuristic analyzer takes over and marks itself in the profile.
package tone

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/tmc/langchaingo/prompts"

	"github.com/socialme/contentflow/internal/common"
	"github.com/socialme/contentflow/internal/llm"
)

var analysisPrompt = prompts.NewPromptTemplate(
	`Analyze the writing voice of the following text and respond with a single JSON object, no prose.
The object must contain: "formality" (0.0-1.0), "complexity" (0.0-1.0),
"primary_sentence_type" (declarative, interrogative, or exclamatory),
"vocabulary_level" (casual, conversational, professional, or academic),
and "notable_patterns" (array of short strings).

Text:
{{.text}}`,
	[]string{"text"},
)

// Analyzer produces tone profiles.
type Analyzer struct {
	provider llm.Provider
}

func New(provider llm.Provider) *Analyzer {
	return &Analyzer{provider: provider}
}

// Analyze returns the voice profile as a JSON document. The "analyzer"
// field records which path produced it: "llm" or "heuristic".
func (a *Analyzer) Analyze(ctx context.Context, text string) (json.RawMessage, error) {
	logger := common.Logger()
	if a.provider != nil {
		if profile, err := a.analyzeWithProvider(ctx, text); err == nil {
			return profile, nil
		} else {
			logger.Warn("tone: provider analysis failed, using heuristic", "error", err)
		}
	}
	return heuristicProfile(text)
}

func (a *Analyzer) analyzeWithProvider(ctx context.Context, text string) (json.RawMessage, error) {
	prompt, err := analysisPrompt.Format(map[string]any{"text": text})
	if err != nil {
		return nil, err
	}
	answer, err := a.provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: "You are a writing-style analyst. Respond only with valid JSON."},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return nil, err
	}
	payload, err := extractJSONObject(answer)
	if err != nil {
		return nil, err
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, err
	}
	fields["analyzer"] = "llm"
	fields["word_count"] = len(strings.Fields(text))
	return json.Marshal(fields)
}

// extractJSONObject pulls the outermost {...} out of a model answer that may
// be wrapped in prose or a code fence.
func extractJSONObject(answer string) (json.RawMessage, error) {
	start := strings.Index(answer, "{")
	end := strings.LastIndex(answer, "}")
	if start == -1 || end <= start {
		return nil, errNoJSON
	}
	candidate := json.RawMessage(answer[start : end+1])
	if !json.Valid(candidate) {
		return nil, errNoJSON
	}
	return candidate, nil
}
