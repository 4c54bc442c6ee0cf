package tone

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/socialme/contentflow/internal/llm"
)

type scriptedProvider struct {
	answer string
	err    error
}

func (p *scriptedProvider) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	return p.answer, p.err
}

func (p *scriptedProvider) Name() string { return "scripted" }

func decodeProfile(t *testing.T, raw json.RawMessage) map[string]interface{} {
	t.Helper()
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("profile not valid JSON: %v\n%s", err, raw)
	}
	return fields
}

func TestAnalyzeUsesProviderJSON(t *testing.T) {
	provider := &scriptedProvider{
		answer: "Here is the analysis:\n{\"formality\": 0.8, \"complexity\": 0.6, \"primary_sentence_type\": \"declarative\"}",
	}
	analyzer := New(provider)
	profile, err := analyzer.Analyze(context.Background(), strings.Repeat("formal prose ", 60))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	fields := decodeProfile(t, profile)
	if fields["analyzer"] != "llm" {
		t.Fatalf("expected llm analyzer marker, got %v", fields["analyzer"])
	}
	if fields["formality"] != 0.8 {
		t.Fatalf("provider fields lost: %v", fields)
	}
	if fields["word_count"] == nil {
		t.Fatalf("expected word_count in profile")
	}
}

func TestAnalyzeFallsBackToHeuristicOnProviderError(t *testing.T) {
	analyzer := New(&scriptedProvider{err: errors.New("model offline")})
	profile, err := analyzer.Analyze(context.Background(), strings.Repeat("some reference text here. ", 40))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	fields := decodeProfile(t, profile)
	if fields["analyzer"] != "heuristic" {
		t.Fatalf("fallback must mark itself, got %v", fields["analyzer"])
	}
}

func TestAnalyzeFallsBackOnUnparseableAnswer(t *testing.T) {
	analyzer := New(&scriptedProvider{answer: "I cannot produce JSON, sorry."})
	profile, err := analyzer.Analyze(context.Background(), strings.Repeat("plain words ", 60))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	fields := decodeProfile(t, profile)
	if fields["analyzer"] != "heuristic" {
		t.Fatalf("expected heuristic fallback, got %v", fields["analyzer"])
	}
}

func TestHeuristicDistinguishesRegisters(t *testing.T) {
	formal := strings.Repeat("Consequently, the committee shall demonstrate that the proposed methodology will facilitate substantially improved outcomes. ", 12)
	informal := strings.Repeat("Yeah this stuff is super cool and you guys are gonna love it, okay! ", 12)

	formalRaw, err := heuristicProfile(formal)
	if err != nil {
		t.Fatalf("formal: %v", err)
	}
	informalRaw, err := heuristicProfile(informal)
	if err != nil {
		t.Fatalf("informal: %v", err)
	}
	formalFields := decodeProfile(t, formalRaw)
	informalFields := decodeProfile(t, informalRaw)

	if formalFields["formality"].(float64) <= informalFields["formality"].(float64) {
		t.Fatalf("formal text scored %v, informal %v", formalFields["formality"], informalFields["formality"])
	}
	if informalFields["primary_sentence_type"] != "exclamatory" {
		t.Fatalf("expected exclamatory, got %v", informalFields["primary_sentence_type"])
	}
	if formalFields["primary_sentence_type"] != "declarative" {
		t.Fatalf("expected declarative, got %v", formalFields["primary_sentence_type"])
	}
}

func TestHeuristicRejectsEmptyText(t *testing.T) {
	if _, err := heuristicProfile("   "); err == nil {
		t.Fatalf("expected error for empty text")
	}
}
