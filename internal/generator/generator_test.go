package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/socialme/contentflow/internal/llm"
	"github.com/socialme/contentflow/internal/workflow"
)

// pipelineProvider answers each stage by recognizing its prompt shape.
type pipelineProvider struct {
	prompts []string
	fail    string
}

func (p *pipelineProvider) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	prompt := messages[len(messages)-1].Content
	p.prompts = append(p.prompts, prompt)
	if p.fail != "" && strings.Contains(prompt, p.fail) {
		return "", errors.New("stage failure")
	}
	switch {
	case strings.Contains(prompt, "Propose between 3 and 6 section headings"):
		return "- Origins\n- Techniques\n- Modern Practice", nil
	case strings.Contains(prompt, "Write the \""):
		return "Generated prose for the requested section, grounded in the reference material.", nil
	case strings.Contains(prompt, "Suggest one compelling"):
		return "The Enduring Craft", nil
	case strings.Contains(prompt, "Write variation"):
		return "A fresh passage in the sampled voice.", nil
	default:
		return "", errors.New("unrecognized prompt: " + prompt)
	}
}

func (p *pipelineProvider) Name() string { return "pipeline-test" }

func TestGenerateArticleRunsAllStages(t *testing.T) {
	provider := &pipelineProvider{}
	gen := New(provider)
	article, err := gen.GenerateArticle(context.Background(), workflow.ArticleInput{
		Topic: workflow.Topic{Primary: "Pottery", Secondary: []string{"glazing"}},
		Sources: []workflow.Source{
			{Reference: "https://example.com/clay", ExtractedText: "clay preparation notes", WordCount: 3},
		},
		ToneProfile: []byte(`{"formality":0.6}`),
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if article.Title != "The Enduring Craft" {
		t.Fatalf("title stage ignored: %q", article.Title)
	}
	for _, heading := range []string{"## Origins", "## Techniques", "## Modern Practice"} {
		if !strings.Contains(article.Content, heading) {
			t.Fatalf("missing section %q in:\n%s", heading, article.Content)
		}
	}
	if article.WordCount == 0 {
		t.Fatalf("expected word count")
	}
	sections, ok := article.Metadata["sections"].([]string)
	if !ok || len(sections) != 3 {
		t.Fatalf("metadata sections wrong: %v", article.Metadata["sections"])
	}
	// outline + 3 sections + title
	if len(provider.prompts) != 5 {
		t.Fatalf("expected 5 provider calls, got %d", len(provider.prompts))
	}
	var sectionPromptSeen bool
	for _, prompt := range provider.prompts {
		if strings.Contains(prompt, `"formality":0.6`) && strings.Contains(prompt, "clay preparation notes") {
			sectionPromptSeen = true
		}
	}
	if !sectionPromptSeen {
		t.Fatalf("tone profile and sources never reached a section prompt")
	}
}

func TestGenerateArticleStageFailurePropagates(t *testing.T) {
	provider := &pipelineProvider{fail: "Write the \"Origins\""}
	gen := New(provider)
	_, err := gen.GenerateArticle(context.Background(), workflow.ArticleInput{
		Topic: workflow.Topic{Primary: "Pottery"},
	})
	if err == nil || !strings.Contains(err.Error(), "Origins") {
		t.Fatalf("expected section failure, got %v", err)
	}
}

func TestGenerateArticleFallsBackToDefaultOutline(t *testing.T) {
	provider := &outlinelessProvider{}
	gen := New(provider)
	article, err := gen.GenerateArticle(context.Background(), workflow.ArticleInput{
		Topic: workflow.Topic{Primary: "Pottery"},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, heading := range defaultSections {
		if !strings.Contains(article.Content, "## "+heading) {
			t.Fatalf("default section %q missing:\n%s", heading, article.Content)
		}
	}
}

// outlinelessProvider never produces parseable outline lines.
type outlinelessProvider struct{}

func (p *outlinelessProvider) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	return "Here is a single flowing paragraph with no list structure at all about Pottery.", nil
}

func (p *outlinelessProvider) Name() string { return "outlineless" }

func TestGenerateStyleSamplesIncludesFeedback(t *testing.T) {
	provider := &pipelineProvider{}
	gen := New(provider)
	samples, err := gen.GenerateStyleSamples(context.Background(), workflow.SampleInput{
		SampleText:   "my reference voice",
		Count:        2,
		TargetLength: 120,
		ToneProfile:  []byte(`{"formality":0.3}`),
		Feedback: []workflow.SampleFeedback{
			{Rating: "downvote", Comments: "too formal"},
		},
	})
	if err != nil {
		t.Fatalf("samples: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	for _, prompt := range provider.prompts {
		if !strings.Contains(prompt, "downvote: too formal") {
			t.Fatalf("feedback missing from prompt:\n%s", prompt)
		}
		if !strings.Contains(prompt, "120") {
			t.Fatalf("target length missing from prompt:\n%s", prompt)
		}
		if !strings.Contains(prompt, `{"formality":0.3}`) {
			t.Fatalf("tone profile missing from prompt:\n%s", prompt)
		}
	}
}

func TestParseOutlineVariants(t *testing.T) {
	cases := []struct {
		answer string
		want   int
	}{
		{"- One\n- Two\n- Three", 3},
		{"1. One\n2. Two", 2},
		{"* One\n* Two\n\nnotes trailing", 2},
		{"no structure here", 0},
	}
	for _, tc := range cases {
		got := parseOutline(tc.answer)
		if len(got) != tc.want {
			t.Fatalf("parseOutline(%q) = %v, want %d entries", tc.answer, got, tc.want)
		}
	}
}
