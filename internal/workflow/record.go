package workflow

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status tracks how far a workflow session has progressed. Transitions only
// move forward; re-running an earlier step never demotes the status.
type Status string

const (
	StatusCreated          Status = "created"
	StatusTopicSet         Status = "topic_set"
	StatusSourcesAdded     Status = "sources_added"
	StatusToneSet          Status = "tone_set"
	StatusArticleGenerated Status = "article_generated"
	StatusValidated        Status = "validated"
	StatusApproved         Status = "approved"
)

var statusRank = map[Status]int{
	StatusCreated:          0,
	StatusTopicSet:         1,
	StatusSourcesAdded:     2,
	StatusToneSet:          3,
	StatusArticleGenerated: 4,
	StatusValidated:        5,
	StatusApproved:         6,
}

// Topic is the subject the article is written about.
type Topic struct {
	Primary   string   `json:"primary"`
	Secondary []string `json:"secondary,omitempty"`
}

// Avatar identifies the persona image attached to the session. At most one
// of URL and FileRef is populated.
type Avatar struct {
	URL     string `json:"url,omitempty"`
	FileRef string `json:"file_ref,omitempty"`
}

// Source is one piece of reference material collected for the session.
type Source struct {
	Origin        string    `json:"origin"` // url, document, or text
	Reference     string    `json:"reference"`
	ExtractedText string    `json:"extracted_text,omitempty"`
	WordCount     int       `json:"word_count"`
	Confidence    float64   `json:"confidence,omitempty"`
	Method        string    `json:"method,omitempty"`
	AddedAt       time.Time `json:"added_at"`
}

// SampleFeedback records a reader rating against a style sample.
type SampleFeedback struct {
	Rating   string `json:"rating"` // upvote, downvote, or neutral
	Comments string `json:"comments,omitempty"`
}

// StyleSample is a short voice-matching draft produced from the user's
// reference text.
type StyleSample struct {
	ID         int             `json:"id"`
	Text       string          `json:"text"`
	TopicLabel string          `json:"topic_label,omitempty"`
	Feedback   *SampleFeedback `json:"feedback,omitempty"`
}

// Article statuses mirror the workflow tail: draft after generation,
// validated after edits, approved or rejected at sign-off.
const (
	ArticleDraft     = "draft"
	ArticleValidated = "validated"
	ArticleApproved  = "approved"
)

// Article is the generated draft plus its lifecycle state.
type Article struct {
	Title     string                 `json:"title"`
	Content   string                 `json:"content"`
	WordCount int                    `json:"word_count"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Status    string                 `json:"status"`
}

// Version is an immutable snapshot of the article content taken before an
// edit was applied. The slice on the record is append-only.
type Version struct {
	ID              string    `json:"id"`
	Timestamp       time.Time `json:"timestamp"`
	Label           string    `json:"label"`
	ContentSnapshot string    `json:"content_snapshot"`
}

// Record is the full durable state of one workflow session. Everything a
// step needs is re-derivable from this struct; nothing lives only in memory.
type Record struct {
	ID            string          `json:"id"`
	Status        Status          `json:"status"`
	Topic         *Topic          `json:"topic,omitempty"`
	Avatar        *Avatar         `json:"avatar,omitempty"`
	Sources       []Source        `json:"sources,omitempty"`
	ToneProfile   json.RawMessage `json:"tone_profile,omitempty"`
	ToneWordCount int             `json:"tone_word_count,omitempty"`
	ToneSources   []string        `json:"tone_sources,omitempty"`
	StyleSamples  []StyleSample   `json:"style_samples,omitempty"`
	NextSampleID  int             `json:"next_sample_id"`
	Article       *Article        `json:"article,omitempty"`
	Versions      []Version       `json:"versions,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewRecord returns a freshly-created session record.
func NewRecord() *Record {
	now := time.Now().UTC()
	return &Record{
		ID:           uuid.NewString(),
		Status:       StatusCreated,
		NextSampleID: 1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Touch bumps the modification timestamp.
func (r *Record) Touch() {
	r.UpdatedAt = time.Now().UTC()
}

// Advance ratchets the status forward. Replaying an earlier step keeps the
// furthest status already reached.
func (r *Record) Advance(next Status) {
	if statusRank[next] > statusRank[r.Status] {
		r.Status = next
	}
}

// SetStatus forces the status, used by validate/approve which may move the
// tail states explicitly.
func (r *Record) SetStatus(next Status) {
	r.Status = next
}

// TakeSampleID hands out the next style sample id. Ids are monotonically
// increasing for the life of the record and never reused.
func (r *Record) TakeSampleID() int {
	if r.NextSampleID < 1 {
		r.NextSampleID = 1
	}
	id := r.NextSampleID
	r.NextSampleID++
	return id
}

// FindSample returns the style sample with the given id.
func (r *Record) FindSample(id int) *StyleSample {
	for i := range r.StyleSamples {
		if r.StyleSamples[i].ID == id {
			return &r.StyleSamples[i]
		}
	}
	return nil
}

// UpsertSource merges a source into the record. URL sources are keyed by
// their reference: a re-crawl overwrites the prior entry in place instead of
// appending a duplicate. Document and text sources always append.
func (r *Record) UpsertSource(src Source) {
	if src.Origin == "url" {
		for i := range r.Sources {
			if r.Sources[i].Origin == "url" && sameURL(r.Sources[i].Reference, src.Reference) {
				r.Sources[i] = src
				return
			}
		}
	}
	r.Sources = append(r.Sources, src)
}

// TotalSourceWords sums the word counts over all collected sources.
func (r *Record) TotalSourceWords() int {
	total := 0
	for _, src := range r.Sources {
		total += src.WordCount
	}
	return total
}

func sameURL(a, b string) bool {
	norm := func(u string) string {
		u = strings.TrimSpace(strings.ToLower(u))
		u = strings.TrimPrefix(u, "http://")
		u = strings.TrimPrefix(u, "https://")
		return strings.TrimSuffix(u, "/")
	}
	return norm(a) == norm(b)
}

// CountWords counts whitespace-separated tokens; the shared word metric for
// sources, tone input, and articles.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
