// Package generator turns a workflow's topic, sources, and tone profile
// into an article through a staged pipeline: outline, per-section drafting,
// assembly, and title/metadata enhancement.
package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/socialme/contentflow/internal/common"
	"github.com/socialme/contentflow/internal/llm"
	"github.com/socialme/contentflow/internal/workflow"
)

const (
	maxSourceDigestWords = 200
	maxStyleSamples      = 3
)

// defaultSections keep the pipeline moving when the outline stage returns
// nothing parseable.
var defaultSections = []string{"Introduction", "Key Insights", "Practical Guidance", "Conclusion"}

type Generator struct {
	provider llm.Provider
}

func New(provider llm.Provider) *Generator {
	return &Generator{provider: provider}
}

// GenerateArticle runs the four stages and returns the assembled draft.
// Failures surface as errors; there is no substitute content.
func (g *Generator) GenerateArticle(ctx context.Context, input workflow.ArticleInput) (*workflow.Article, error) {
	logger := common.Logger()
	topic := strings.TrimSpace(input.Topic.Primary)
	if topic == "" {
		return nil, fmt.Errorf("topic required")
	}
	sources := sourceDigest(input.Sources)
	toneBlock := toneInstruction(input.ToneProfile)
	styleBlock := styleInstruction(input.StyleSamples)

	sections, err := g.outline(ctx, input.Topic, sources)
	if err != nil {
		return nil, fmt.Errorf("outline stage: %w", err)
	}
	logger.Debug("generator: outline ready", "topic", topic, "sections", len(sections))

	var body strings.Builder
	for _, section := range sections {
		text, err := g.section(ctx, topic, section, toneBlock, styleBlock, sources)
		if err != nil {
			return nil, fmt.Errorf("section %q: %w", section, err)
		}
		fmt.Fprintf(&body, "## %s\n\n%s\n\n", section, strings.TrimSpace(text))
	}
	content := strings.TrimRight(body.String(), "\n") + "\n"

	title, err := g.title(ctx, topic, content)
	if err != nil {
		return nil, fmt.Errorf("title stage: %w", err)
	}

	article := &workflow.Article{
		Title:     title,
		Content:   content,
		WordCount: workflow.CountWords(content),
		Metadata: map[string]interface{}{
			"provider":     g.provider.Name(),
			"generated_at": time.Now().UTC().Format(time.RFC3339),
			"sections":     sections,
			"source_count": len(input.Sources),
		},
	}
	logger.Info("generator: article assembled", "topic", topic, "sections", len(sections), "words", article.WordCount)
	return article, nil
}

// GenerateStyleSamples writes count variations in the voice of the supplied
// sample, steering away from patterns the feedback has downvoted.
func (g *Generator) GenerateStyleSamples(ctx context.Context, input workflow.SampleInput) ([]string, error) {
	count := input.Count
	if count < 1 {
		count = 1
	}
	feedback := feedbackInstruction(input.Feedback)
	samples := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		prompt, err := samplePrompt.Format(map[string]any{
			"sample":    input.SampleText,
			"tone":      toneInstruction(input.ToneProfile),
			"variation": i,
			"count":     count,
			"length":    input.TargetLength,
			"topic":     "",
			"feedback":  feedback,
		})
		if err != nil {
			return nil, err
		}
		answer, err := g.chat(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		samples = append(samples, strings.TrimSpace(answer))
	}
	return samples, nil
}

func (g *Generator) outline(ctx context.Context, topic workflow.Topic, sources string) ([]string, error) {
	secondary := ""
	if len(topic.Secondary) > 0 {
		secondary = " Also touch on: " + strings.Join(topic.Secondary, ", ") + "."
	}
	prompt, err := outlinePrompt.Format(map[string]any{
		"topic":     topic.Primary,
		"secondary": secondary,
		"sources":   sources,
	})
	if err != nil {
		return nil, err
	}
	answer, err := g.chat(ctx, prompt)
	if err != nil {
		return nil, err
	}
	sections := parseOutline(answer)
	if len(sections) == 0 {
		sections = defaultSections
	}
	return sections, nil
}

func (g *Generator) section(ctx context.Context, topic, section, tone, style, sources string) (string, error) {
	prompt, err := sectionPrompt.Format(map[string]any{
		"section": section,
		"topic":   topic,
		"tone":    tone,
		"style":   style,
		"sources": sources,
	})
	if err != nil {
		return "", err
	}
	return g.chat(ctx, prompt)
}

func (g *Generator) title(ctx context.Context, topic, content string) (string, error) {
	prompt, err := titlePrompt.Format(map[string]any{
		"topic":   topic,
		"article": content,
	})
	if err != nil {
		return "", err
	}
	answer, err := g.chat(ctx, prompt)
	if err != nil {
		return "", err
	}
	title := firstLine(answer)
	if title == "" {
		return "", fmt.Errorf("empty title from provider")
	}
	return title, nil
}

func (g *Generator) chat(ctx context.Context, prompt string) (string, error) {
	return g.provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	})
}

// parseOutline accepts "- Heading", "* Heading", or "1. Heading" lines.
func parseOutline(answer string) []string {
	var sections []string
	for _, line := range strings.Split(answer, "\n") {
		trimmed := strings.TrimSpace(line)
		trimmed = strings.TrimPrefix(trimmed, "- ")
		trimmed = strings.TrimPrefix(trimmed, "* ")
		if idx := strings.Index(trimmed, ". "); idx > 0 && idx <= 2 {
			if isDigits(trimmed[:idx]) {
				trimmed = trimmed[idx+2:]
			}
		}
		trimmed = strings.Trim(strings.TrimSpace(trimmed), `"`)
		if trimmed == line || trimmed == "" {
			continue
		}
		sections = append(sections, trimmed)
		if len(sections) == 6 {
			break
		}
	}
	return sections
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func firstLine(answer string) string {
	for _, line := range strings.Split(answer, "\n") {
		trimmed := strings.Trim(strings.TrimSpace(line), `"`)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// sourceDigest condenses collected sources into a bounded prompt block.
func sourceDigest(sources []workflow.Source) string {
	if len(sources) == 0 {
		return "(no reference material provided)"
	}
	var parts []string
	for _, src := range sources {
		words := strings.Fields(src.ExtractedText)
		if len(words) > maxSourceDigestWords {
			words = words[:maxSourceDigestWords]
		}
		parts = append(parts, fmt.Sprintf("[%s] %s", src.Reference, strings.Join(words, " ")))
	}
	return strings.Join(parts, "\n\n")
}

func toneInstruction(profile []byte) string {
	if len(profile) == 0 {
		return ""
	}
	return "\nMatch this voice profile (JSON): " + string(profile) + "\n"
}

func styleInstruction(samples []workflow.StyleSample) string {
	if len(samples) == 0 {
		return ""
	}
	var approved []string
	for _, s := range samples {
		if s.Feedback != nil && s.Feedback.Rating == "upvote" {
			approved = append(approved, s.Text)
		}
	}
	if len(approved) == 0 {
		for _, s := range samples {
			approved = append(approved, s.Text)
		}
	}
	if len(approved) > maxStyleSamples {
		approved = approved[:maxStyleSamples]
	}
	return "\nImitate the voice of these samples:\n" + strings.Join(approved, "\n---\n") + "\n"
}

func feedbackInstruction(feedback []workflow.SampleFeedback) string {
	if len(feedback) == 0 {
		return ""
	}
	var notes []string
	for _, fb := range feedback {
		note := fb.Rating
		if fb.Comments != "" {
			note += ": " + fb.Comments
		}
		notes = append(notes, note)
	}
	return "\nReader feedback on earlier variations: " + strings.Join(notes, "; ") + "."
}
