package workflow

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/socialme/contentflow/internal/common"
)

const (
	minToneWords = 100

	defaultSampleCount  = 3
	maxSampleCount      = 5
	defaultSampleLength = 250
	minSampleLength     = 50
	maxSampleLength     = 500
)

// Extraction is what the collector recovered from a URL.
type Extraction struct {
	Title      string
	Text       string
	WordCount  int
	Confidence float64
	Method     string
}

// Collector fetches and extracts readable text from a URL.
type Collector interface {
	Extract(ctx context.Context, rawURL, topic string) (*Extraction, error)
}

// ToneProfiler analyzes voice-reference text into an opaque JSON profile.
type ToneProfiler interface {
	Analyze(ctx context.Context, text string) (json.RawMessage, error)
}

// ArticleInput is everything the generator may draw on for a draft.
type ArticleInput struct {
	Topic        Topic
	Sources      []Source
	ToneProfile  json.RawMessage
	StyleSamples []StyleSample
}

// SampleInput drives style sample generation and regeneration.
type SampleInput struct {
	SampleText   string
	Count        int
	TargetLength int
	ToneProfile  json.RawMessage
	Feedback     []SampleFeedback
}

// StyleSamplesResult carries the updated record plus the voice analysis of
// the submitted sample text.
type StyleSamplesResult struct {
	Record   *Record
	Analysis json.RawMessage
}

// Generator produces article drafts and style samples.
type Generator interface {
	GenerateArticle(ctx context.Context, input ArticleInput) (*Article, error)
	GenerateStyleSamples(ctx context.Context, input SampleInput) ([]string, error)
}

// Sanitizer strips unsafe markup from user-supplied text before it is
// stored. bluemonday's strict policy satisfies this.
type Sanitizer interface {
	Sanitize(string) string
}

// Config controls manager-level knobs.
type Config struct {
	UploadRoot  string
	CallTimeout time.Duration
}

// DefaultConfig returns the standard manager configuration.
func DefaultConfig() Config {
	return Config{
		UploadRoot:  filepath.Join(os.TempDir(), "contentflow_uploads"),
		CallTimeout: 90 * time.Second,
	}
}

// Merge overlays non-zero overrides onto the base configuration.
func (c Config) Merge(override Config) Config {
	result := c
	if strings.TrimSpace(override.UploadRoot) != "" {
		result.UploadRoot = strings.TrimSpace(override.UploadRoot)
	}
	if override.CallTimeout > 0 {
		result.CallTimeout = override.CallTimeout
	}
	return result
}

// Manager drives the workflow steps. Every step reads the current record
// through the store, performs adapter calls without holding any record lock,
// and lands its changes in one atomic Update.
type Manager struct {
	store     Store
	collector Collector
	profiler  ToneProfiler
	generator Generator
	sanitizer Sanitizer
	cfg       Config
}

func NewManager(store Store, collector Collector, profiler ToneProfiler, generator Generator, sanitizer Sanitizer, cfg *Config) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("store required")
	}
	configuration := DefaultConfig()
	if cfg != nil {
		configuration = configuration.Merge(*cfg)
	}
	if err := os.MkdirAll(configuration.UploadRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create upload root: %w", err)
	}
	return &Manager{
		store:     store,
		collector: collector,
		profiler:  profiler,
		generator: generator,
		sanitizer: sanitizer,
		cfg:       configuration,
	}, nil
}

// Defaults reports the request-validation defaults surfaced to clients on
// session start.
func Defaults() map[string]int {
	return map[string]int{
		"num_samples":    defaultSampleCount,
		"target_length":  defaultSampleLength,
		"min_tone_words": minToneWords,
	}
}

// Start creates a new workflow session.
func (m *Manager) Start(ctx context.Context) (*Record, error) {
	rec, err := m.store.Create(ctx)
	if err != nil {
		return nil, fmt.Errorf("create workflow: %w", err)
	}
	common.Logger().Info("workflow: session started", "workflow", rec.ID)
	return rec, nil
}

// Status returns the current record.
func (m *Manager) Status(ctx context.Context, id string) (*Record, error) {
	return m.store.Get(ctx, id)
}

// List summarizes all stored sessions.
func (m *Manager) List(ctx context.Context) ([]Info, error) {
	return m.store.List(ctx)
}

// SetTopic stores the article subject. Resubmitting replaces the topic
// without touching any other field.
func (m *Manager) SetTopic(ctx context.Context, id string, req TopicRequest) (*Record, error) {
	primary := strings.TrimSpace(req.PrimaryTopic)
	if primary == "" {
		return nil, validationErr("primary_topic", "required")
	}
	secondary := make([]string, 0, len(req.SecondaryTopics))
	for _, s := range req.SecondaryTopics {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			secondary = append(secondary, trimmed)
		}
	}
	if len(secondary) == 0 {
		secondary = nil
	}
	return m.store.Update(ctx, id, func(rec *Record) error {
		rec.Topic = &Topic{Primary: primary, Secondary: secondary}
		rec.Advance(StatusTopicSet)
		return nil
	})
}

// SetAvatar attaches a persona image by URL or by uploaded file content.
func (m *Manager) SetAvatar(ctx context.Context, id string, req AvatarRequest) (*Record, error) {
	avatarURL := strings.TrimSpace(req.AvatarURL)
	avatarFile := strings.TrimSpace(req.AvatarFile)
	switch {
	case avatarURL == "" && avatarFile == "":
		return nil, validationErr("avatar", "avatar_url or avatar_file required")
	case avatarURL != "" && avatarFile != "":
		return nil, validationErr("avatar", "provide avatar_url or avatar_file, not both")
	}
	avatar := &Avatar{}
	if avatarURL != "" {
		parsed, err := url.Parse(avatarURL)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return nil, validationErr("avatar_url", "must be an absolute http(s) URL")
		}
		avatar.URL = avatarURL
	} else {
		ref, err := m.saveAvatarFile(id, req.FileName, avatarFile)
		if err != nil {
			return nil, err
		}
		avatar.FileRef = ref
	}
	return m.store.Update(ctx, id, func(rec *Record) error {
		rec.Avatar = avatar
		return nil
	})
}

// saveAvatarFile decodes the base64 payload and lands it under the upload
// root. File names are cleaned and must stay inside the root.
func (m *Manager) saveAvatarFile(id, name, payload string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", validationErr("avatar_file", "invalid base64 payload")
	}
	if len(data) == 0 {
		return "", validationErr("avatar_file", "empty payload")
	}
	cleaned := filepath.Clean(strings.TrimSpace(name))
	if cleaned == "." || cleaned == "" {
		cleaned = "avatar.png"
	}
	if filepath.IsAbs(cleaned) || strings.Contains(cleaned, "..") || strings.ContainsRune(cleaned, filepath.Separator) {
		return "", validationErr("file_name", "invalid file name: %s", name)
	}
	dest := filepath.Join(m.cfg.UploadRoot, fmt.Sprintf("%s_%s", id, cleaned))
	rel, err := filepath.Rel(m.cfg.UploadRoot, dest)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", validationErr("file_name", "invalid file name: %s", name)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("write avatar file: %w", err)
	}
	return dest, nil
}

// AddSources collects reference material. URLs are crawled one at a time; a
// failing URL produces a per-source detail instead of failing the batch.
// Successful sources merge into the record keyed by URL.
func (m *Manager) AddSources(ctx context.Context, id string, req SourcesRequest) (*SourcesResult, error) {
	logger := common.Logger()
	if len(req.URLs) == 0 && len(req.Documents) == 0 && strings.TrimSpace(req.TextInput) == "" {
		return nil, validationErr("sources", "at least one of urls, documents, or text_input required")
	}
	// Verify the session exists before spending time on crawls.
	rec, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	topic := ""
	if rec.Topic != nil {
		topic = rec.Topic.Primary
	}

	now := time.Now().UTC()
	var collected []Source
	var details []SourceDetail

	for _, raw := range req.URLs {
		target := strings.TrimSpace(raw)
		if target == "" {
			continue
		}
		detail := SourceDetail{Reference: target, Origin: "url"}
		extraction, err := m.extractURL(ctx, target, topic)
		if err != nil {
			detail.Error = err.Error()
			logger.Warn("workflow: source extraction failed", "workflow", id, "url", target, "error", err)
		} else {
			detail.OK = true
			detail.WordCount = extraction.WordCount
			detail.Confidence = extraction.Confidence
			detail.Method = extraction.Method
			collected = append(collected, Source{
				Origin:        "url",
				Reference:     target,
				ExtractedText: extraction.Text,
				WordCount:     extraction.WordCount,
				Confidence:    extraction.Confidence,
				Method:        extraction.Method,
				AddedAt:       now,
			})
		}
		details = append(details, detail)
	}

	for _, doc := range req.Documents {
		name := strings.TrimSpace(doc.Name)
		if name == "" {
			name = "document"
		}
		detail := SourceDetail{Reference: name, Origin: "document"}
		text := m.sanitize(doc.Content)
		if strings.TrimSpace(text) == "" {
			detail.Error = "document content empty"
		} else {
			words := CountWords(text)
			detail.OK = true
			detail.WordCount = words
			collected = append(collected, Source{
				Origin:        "document",
				Reference:     name,
				ExtractedText: text,
				WordCount:     words,
				AddedAt:       now,
			})
		}
		details = append(details, detail)
	}

	if text := m.sanitize(req.TextInput); strings.TrimSpace(text) != "" {
		words := CountWords(text)
		details = append(details, SourceDetail{Reference: "text_input", Origin: "text", OK: true, WordCount: words})
		collected = append(collected, Source{
			Origin:        "text",
			Reference:     "text_input",
			ExtractedText: text,
			WordCount:     words,
			AddedAt:       now,
		})
	}

	result := &SourcesResult{Details: details, SourcesProcessed: len(collected)}
	if len(collected) == 0 {
		// Nothing succeeded; the record stays as it was.
		result.Record = rec
		result.TotalWordCount = rec.TotalSourceWords()
		return result, nil
	}
	updated, err := m.store.Update(ctx, id, func(rec *Record) error {
		for _, src := range collected {
			rec.UpsertSource(src)
		}
		rec.Advance(StatusSourcesAdded)
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Record = updated
	result.TotalWordCount = updated.TotalSourceWords()
	logger.Info("workflow: sources added", "workflow", id, "processed", len(collected), "total_words", result.TotalWordCount)
	return result, nil
}

// AnalyzeTone gathers the provided voice-reference parts, concatenates them,
// and analyzes the combined text once. The resulting profile is stored
// verbatim.
func (m *Manager) AnalyzeTone(ctx context.Context, id string, req ToneRequest) (*ToneResult, error) {
	sourceType := strings.ToLower(strings.TrimSpace(req.SourceType))
	switch sourceType {
	case "text":
		if strings.TrimSpace(req.SampleText) == "" {
			return nil, validationErr("sample_text", "required for source_type text")
		}
	case "url":
		if strings.TrimSpace(req.URL) == "" {
			return nil, validationErr("url", "required for source_type url")
		}
	case "document":
		if strings.TrimSpace(req.DocumentContent) == "" {
			return nil, validationErr("document_content", "required for source_type document")
		}
	default:
		return nil, validationErr("source_type", "must be text, url, or document")
	}
	if _, err := m.store.Get(ctx, id); err != nil {
		return nil, err
	}

	var parts []string
	var sources []string
	if text := m.sanitize(req.SampleText); strings.TrimSpace(text) != "" {
		parts = append(parts, text)
		sources = append(sources, "sample_text")
	}
	if text := m.sanitize(req.DocumentContent); strings.TrimSpace(text) != "" {
		parts = append(parts, text)
		sources = append(sources, "document")
	}
	if target := strings.TrimSpace(req.URL); target != "" {
		extraction, err := m.extractURL(ctx, target, "")
		if err != nil {
			return nil, fmt.Errorf("extract tone source %s: %w", target, err)
		}
		parts = append(parts, extraction.Text)
		sources = append(sources, target)
	}

	combined := strings.Join(parts, "\n\n")
	words := CountWords(combined)
	if words < minToneWords {
		return nil, validationErr("content", "need at least %d words for tone analysis, got %d", minToneWords, words)
	}

	callCtx, cancel := context.WithTimeout(ctx, m.cfg.CallTimeout)
	defer cancel()
	profile, err := m.profiler.Analyze(callCtx, combined)
	if err != nil {
		return nil, fmt.Errorf("%w: tone analysis: %v", ErrProvider, err)
	}

	updated, err := m.store.Update(ctx, id, func(rec *Record) error {
		rec.ToneProfile = profile
		rec.ToneWordCount = words
		rec.ToneSources = sources
		rec.Advance(StatusToneSet)
		return nil
	})
	if err != nil {
		return nil, err
	}
	common.Logger().Info("workflow: tone analyzed", "workflow", id, "words", words, "sources", len(sources))
	return &ToneResult{Record: updated, Profile: profile, WordCount: words, Sources: sources}, nil
}

// GenerateStyleSamples analyzes the supplied reference text, produces
// voice-matching drafts from it, and appends them with fresh ids. The
// analysis of the sample text is returned alongside the samples.
func (m *Manager) GenerateStyleSamples(ctx context.Context, id string, req StyleSamplesRequest) (*StyleSamplesResult, error) {
	sampleText := strings.TrimSpace(req.SampleText)
	if sampleText == "" {
		return nil, validationErr("sample_text", "required")
	}
	count, err := sampleCount(req.NumSamples)
	if err != nil {
		return nil, err
	}
	length, err := sampleLength(req.TargetLength)
	if err != nil {
		return nil, err
	}
	rec, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	topicLabel := ""
	if rec.Topic != nil {
		topicLabel = rec.Topic.Primary
	}

	analysis := m.analyzeSampleText(ctx, id, sampleText)

	callCtx, cancel := context.WithTimeout(ctx, m.cfg.CallTimeout)
	defer cancel()
	texts, err := m.generator.GenerateStyleSamples(callCtx, SampleInput{
		SampleText:   sampleText,
		Count:        count,
		TargetLength: length,
		ToneProfile:  rec.ToneProfile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: style samples: %v", ErrProvider, err)
	}

	updated, err := m.store.Update(ctx, id, func(rec *Record) error {
		for _, text := range texts {
			rec.StyleSamples = append(rec.StyleSamples, StyleSample{
				ID:         rec.TakeSampleID(),
				Text:       text,
				TopicLabel: topicLabel,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &StyleSamplesResult{Record: updated, Analysis: analysis}, nil
}

// analyzeSampleText profiles the sample's voice. An analysis failure never
// blocks sample generation; the result is simply omitted.
func (m *Manager) analyzeSampleText(ctx context.Context, id, sampleText string) json.RawMessage {
	if m.profiler == nil {
		return nil
	}
	callCtx, cancel := context.WithTimeout(ctx, m.cfg.CallTimeout)
	defer cancel()
	analysis, err := m.profiler.Analyze(callCtx, sampleText)
	if err != nil {
		common.Logger().Warn("workflow: sample text analysis failed", "workflow", id, "error", err)
		return nil
	}
	return analysis
}

// ApplyStyleFeedback records a rating against an existing sample and, when
// asked, regenerates a new batch informed by all feedback so far. New
// samples always get new ids.
func (m *Manager) ApplyStyleFeedback(ctx context.Context, id string, req FeedbackRequest) (*Record, error) {
	rating := strings.ToLower(strings.TrimSpace(req.Rating))
	switch rating {
	case "upvote", "downvote", "neutral":
	default:
		return nil, validationErr("rating", "must be upvote, downvote, or neutral")
	}
	rec, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sample := rec.FindSample(req.SampleID)
	if sample == nil {
		return nil, fmt.Errorf("%w: id %d", ErrSampleNotFound, req.SampleID)
	}
	feedback := SampleFeedback{Rating: rating, Comments: strings.TrimSpace(req.Comments)}

	var regenerated []string
	if req.Regenerate {
		count, err := sampleCount(req.NumSamples)
		if err != nil {
			return nil, err
		}
		accumulated := []SampleFeedback{feedback}
		for _, s := range rec.StyleSamples {
			if s.Feedback != nil && s.ID != req.SampleID {
				accumulated = append(accumulated, *s.Feedback)
			}
		}
		callCtx, cancel := context.WithTimeout(ctx, m.cfg.CallTimeout)
		defer cancel()
		regenerated, err = m.generator.GenerateStyleSamples(callCtx, SampleInput{
			SampleText:   sample.Text,
			Count:        count,
			TargetLength: defaultSampleLength,
			ToneProfile:  rec.ToneProfile,
			Feedback:     accumulated,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: sample regeneration: %v", ErrProvider, err)
		}
	}

	topicLabel := ""
	if rec.Topic != nil {
		topicLabel = rec.Topic.Primary
	}
	return m.store.Update(ctx, id, func(rec *Record) error {
		target := rec.FindSample(req.SampleID)
		if target == nil {
			return fmt.Errorf("%w: id %d", ErrSampleNotFound, req.SampleID)
		}
		fb := feedback
		target.Feedback = &fb
		for _, text := range regenerated {
			rec.StyleSamples = append(rec.StyleSamples, StyleSample{
				ID:         rec.TakeSampleID(),
				Text:       text,
				TopicLabel: topicLabel,
			})
		}
		return nil
	})
}

// GenerateArticle drafts the article from the stored topic, sources, tone
// profile, and style samples. A session without a topic is rejected; the
// generator is never handed a substitute subject.
func (m *Manager) GenerateArticle(ctx context.Context, id string) (*Record, error) {
	rec, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Topic == nil || strings.TrimSpace(rec.Topic.Primary) == "" {
		return nil, validationErr("topic", "set a topic before generating an article")
	}

	callCtx, cancel := context.WithTimeout(ctx, m.cfg.CallTimeout)
	defer cancel()
	article, err := m.generator.GenerateArticle(callCtx, ArticleInput{
		Topic:        *rec.Topic,
		Sources:      rec.Sources,
		ToneProfile:  rec.ToneProfile,
		StyleSamples: rec.StyleSamples,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: article generation: %v", ErrProvider, err)
	}
	article.Status = ArticleDraft
	if article.WordCount == 0 {
		article.WordCount = CountWords(article.Content)
	}

	updated, err := m.store.Update(ctx, id, func(rec *Record) error {
		if rec.Topic == nil || strings.TrimSpace(rec.Topic.Primary) == "" {
			return validationErr("topic", "set a topic before generating an article")
		}
		rec.Article = article
		rec.Advance(StatusArticleGenerated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	common.Logger().Info("workflow: article generated", "workflow", id, "title", article.Title, "words", article.WordCount)
	return updated, nil
}

// GetArticle returns the generated article or ErrNoArticle.
func (m *Manager) GetArticle(ctx context.Context, id string) (*Article, error) {
	rec, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Article == nil {
		return nil, ErrNoArticle
	}
	return rec.Article, nil
}

// ValidateArticle snapshots the current content into the version history,
// then applies the requested edits. The snapshot always precedes the edit,
// so every version holds the content as it was before that validate call.
func (m *Manager) ValidateArticle(ctx context.Context, id string, req EditRequest) (*Record, error) {
	return m.store.Update(ctx, id, func(rec *Record) error {
		if rec.Article == nil {
			return ErrNoArticle
		}
		now := time.Now().UTC()
		label := strings.TrimSpace(req.Edits.Label)
		if label == "" {
			label = "Edit " + now.Format(time.RFC3339)
		}
		rec.Versions = append(rec.Versions, Version{
			ID:              uuid.NewString(),
			Timestamp:       now,
			Label:           label,
			ContentSnapshot: rec.Article.Content,
		})

		if title := strings.TrimSpace(req.Edits.Title); title != "" {
			rec.Article.Title = title
		}
		if content := req.Edits.Content; strings.TrimSpace(content) != "" {
			rec.Article.Content = content
		}
		if len(req.Edits.Sections) > 0 {
			rec.Article.Content = applySectionEdits(rec.Article.Content, req.Edits.Sections)
		}
		rec.Article.WordCount = CountWords(rec.Article.Content)
		rec.Article.Status = ArticleValidated
		rec.SetStatus(StatusValidated)
		return nil
	})
}

// ApproveArticle signs off on the article, or sends it back to validated on
// rejection. Version history is untouched either way.
func (m *Manager) ApproveArticle(ctx context.Context, id string, req ApprovalRequest) (*Record, error) {
	return m.store.Update(ctx, id, func(rec *Record) error {
		if rec.Article == nil {
			return ErrNoArticle
		}
		if comments := strings.TrimSpace(req.Comments); comments != "" {
			if rec.Article.Metadata == nil {
				rec.Article.Metadata = make(map[string]interface{})
			}
			rec.Article.Metadata["approval_comments"] = comments
		}
		if req.Approved {
			rec.Article.Status = ArticleApproved
			rec.SetStatus(StatusApproved)
		} else {
			rec.Article.Status = ArticleValidated
			rec.SetStatus(StatusValidated)
		}
		return nil
	})
}

func (m *Manager) extractURL(ctx context.Context, target, topic string) (*Extraction, error) {
	if m.collector == nil {
		return nil, fmt.Errorf("no collector configured")
	}
	callCtx, cancel := context.WithTimeout(ctx, m.cfg.CallTimeout)
	defer cancel()
	return m.collector.Extract(callCtx, target, topic)
}

func (m *Manager) sanitize(text string) string {
	if m.sanitizer == nil {
		return text
	}
	return m.sanitizer.Sanitize(text)
}

func sampleCount(n int) (int, error) {
	if n == 0 {
		return defaultSampleCount, nil
	}
	if n < 1 || n > maxSampleCount {
		return 0, validationErr("num_samples", "must be between 1 and %d", maxSampleCount)
	}
	return n, nil
}

func sampleLength(n int) (int, error) {
	if n == 0 {
		return defaultSampleLength, nil
	}
	if n < minSampleLength || n > maxSampleLength {
		return 0, validationErr("target_length", "must be between %d and %d", minSampleLength, maxSampleLength)
	}
	return n, nil
}

// applySectionEdits replaces the body of each "## <name>" block. A section
// that does not exist yet is appended at the end.
func applySectionEdits(content string, sections map[string]string) string {
	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		content = replaceSection(content, name, sections[name])
	}
	return content
}

func replaceSection(content, name, body string) string {
	lines := strings.Split(content, "\n")
	start := -1
	for i, line := range lines {
		if isSectionHeading(line, name) {
			start = i
			break
		}
	}
	body = strings.TrimSpace(body)
	if start == -1 {
		trimmed := strings.TrimRight(content, "\n")
		if trimmed == "" {
			return fmt.Sprintf("## %s\n\n%s\n", name, body)
		}
		return fmt.Sprintf("%s\n\n## %s\n\n%s\n", trimmed, name, body)
	}
	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if strings.HasPrefix(lines[i], "## ") {
			end = i
			break
		}
	}
	replacement := []string{lines[start], "", body, ""}
	out := make([]string, 0, len(lines))
	out = append(out, lines[:start]...)
	out = append(out, replacement...)
	out = append(out, lines[end:]...)
	return strings.Join(out, "\n")
}

func isSectionHeading(line, name string) bool {
	if !strings.HasPrefix(line, "## ") {
		return false
	}
	heading := strings.TrimSpace(strings.TrimPrefix(line, "## "))
	return strings.EqualFold(heading, strings.TrimSpace(name))
}
