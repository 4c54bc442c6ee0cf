package workflow

import "encoding/json"

// TopicRequest sets the article subject for a session.
type TopicRequest struct {
	PrimaryTopic    string   `json:"primary_topic"`
	SecondaryTopics []string `json:"secondary_topics,omitempty"`
}

// AvatarRequest attaches a persona image, either by URL or as a base64
// upload. Exactly one of the two must be provided.
type AvatarRequest struct {
	AvatarURL  string `json:"avatar_url,omitempty"`
	AvatarFile string `json:"avatar_file,omitempty"`
	FileName   string `json:"file_name,omitempty"`
}

// DocumentInput is a named document body submitted as a source.
type DocumentInput struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// SourcesRequest adds reference material: URLs to crawl, inline documents,
// and free text. Any combination is allowed as long as one is present.
type SourcesRequest struct {
	URLs      []string        `json:"urls,omitempty"`
	Documents []DocumentInput `json:"documents,omitempty"`
	TextInput string          `json:"text_input,omitempty"`
}

// SourceDetail reports the outcome of processing one submitted source.
// A failed source carries Error and never fails the batch.
type SourceDetail struct {
	Reference  string  `json:"reference"`
	Origin     string  `json:"origin"`
	OK         bool    `json:"ok"`
	WordCount  int     `json:"word_count,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Method     string  `json:"method,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// SourcesResult summarizes a sources step.
type SourcesResult struct {
	Record           *Record        `json:"-"`
	SourcesProcessed int            `json:"sources_processed"`
	TotalWordCount   int            `json:"total_word_count"`
	Details          []SourceDetail `json:"details"`
}

// ToneRequest supplies voice-reference material for analysis.
type ToneRequest struct {
	SourceType      string `json:"source_type"` // text, url, or document
	SampleText      string `json:"sample_text,omitempty"`
	URL             string `json:"url,omitempty"`
	DocumentContent string `json:"document_content,omitempty"`
}

// ToneResult carries the stored profile plus a summary of what was analyzed.
type ToneResult struct {
	Record    *Record         `json:"-"`
	Profile   json.RawMessage `json:"tone_profile"`
	WordCount int             `json:"word_count"`
	Sources   []string        `json:"sources"`
}

// StyleSamplesRequest asks for voice-matching sample drafts.
type StyleSamplesRequest struct {
	SampleText   string `json:"sample_text"`
	NumSamples   int    `json:"num_samples,omitempty"`
	TargetLength int    `json:"target_length,omitempty"`
}

// FeedbackRequest rates a style sample and optionally asks for a new batch
// informed by the accumulated feedback.
type FeedbackRequest struct {
	SampleID   int    `json:"sample_id"`
	Rating     string `json:"rating"`
	Comments   string `json:"comments,omitempty"`
	Regenerate bool   `json:"regenerate,omitempty"`
	NumSamples int    `json:"num_samples,omitempty"`
}

// ArticleEdits describes a validation pass over the draft. Sections maps a
// "## heading" name to its replacement body.
type ArticleEdits struct {
	Title    string            `json:"title,omitempty"`
	Content  string            `json:"content,omitempty"`
	Sections map[string]string `json:"sections,omitempty"`
	Label    string            `json:"label,omitempty"`
}

// EditRequest wraps the edits applied by a validate call.
type EditRequest struct {
	Edits ArticleEdits `json:"edits"`
}

// ApprovalRequest signs off on (or rejects) the validated article.
type ApprovalRequest struct {
	Approved bool   `json:"approved"`
	Comments string `json:"comments,omitempty"`
}
