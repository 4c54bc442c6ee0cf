// Package crawler fetches and extracts readable article text from URLs on
// behalf of the workflow sources and tone steps.
package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/doyensec/safeurl"
	"golang.org/x/time/rate"

	"github.com/socialme/contentflow/internal/common"
	"github.com/socialme/contentflow/internal/workflow"
)

const (
	defaultTimeout  = 30 * time.Second
	maxBodyBytes    = 4 << 20 // 4 MiB per fetch
	minUsableWords  = 50
	waybackEndpoint = "https://web.archive.org/web/"
	userAgent       = "contentflow/1.0 (+https://github.com/socialme/contentflow)"
)

// ExtractionError reports why a URL could not be turned into usable text.
type ExtractionError struct {
	URL   string
	Stage string // fetch, parse, or content
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %s: %v", e.URL, e.Stage, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Crawler pulls pages through an SSRF-guarded client with a politeness rate
// limit shared across all requests.
type Crawler struct {
	client  *http.Client
	limiter *rate.Limiter
	// wayback is the archive prefix for the fallback fetch. Empty disables
	// the fallback.
	wayback string
}

// New returns a crawler whose HTTP client refuses private, loopback,
// link-local, and metadata addresses, including after DNS resolution.
func New(timeout time.Duration) *Crawler {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes("http", "https").
		SetAllowedPorts(80, 443).
		Build()
	return NewWithClient(safeurl.Client(config).Client)
}

// NewWithClient builds a crawler around a caller-supplied HTTP client.
func NewWithClient(client *http.Client) *Crawler {
	return &Crawler{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 2),
		wayback: waybackEndpoint,
	}
}

// Extract fetches the URL and pulls out the main readable text. A failed or
// thin direct fetch gets one Wayback Machine retry before the typed failure
// is returned.
func (c *Crawler) Extract(ctx context.Context, rawURL, topic string) (*workflow.Extraction, error) {
	logger := common.Logger()
	target := strings.TrimSpace(rawURL)
	if target == "" {
		return nil, &ExtractionError{URL: rawURL, Stage: "fetch", Err: fmt.Errorf("empty url")}
	}
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = "https://" + target
	}

	extraction, directErr := c.fetchAndParse(ctx, target)
	if directErr == nil && extraction.WordCount >= minUsableWords {
		extraction.Method = "direct"
		logger.Debug("crawler: direct extraction succeeded", "url", target, "words", extraction.WordCount)
		return extraction, nil
	}
	if directErr != nil {
		logger.Warn("crawler: direct fetch failed", "url", target, "error", directErr)
	} else {
		logger.Warn("crawler: direct fetch too thin", "url", target, "words", extraction.WordCount)
	}

	if c.wayback != "" {
		archived, waybackErr := c.fetchAndParse(ctx, c.wayback+target)
		if waybackErr == nil && archived.WordCount >= minUsableWords {
			archived.Method = "wayback"
			// Archived snapshots carry extra chrome; scale the score down.
			archived.Confidence *= 0.8
			logger.Info("crawler: wayback extraction succeeded", "url", target, "words", archived.WordCount)
			return archived, nil
		}
	}

	if directErr != nil {
		return nil, &ExtractionError{URL: target, Stage: "fetch", Err: directErr}
	}
	return nil, &ExtractionError{URL: target, Stage: "content", Err: fmt.Errorf("only %d words extracted (need %d)", extraction.WordCount, minUsableWords)}
}

func (c *Crawler) fetchAndParse(ctx context.Context, target string) (*workflow.Extraction, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return extractReadable(doc), nil
}

// candidateSelectors are tried in order; the first one yielding enough text
// wins. Body is the catch-all.
var candidateSelectors = []string{"article", "main", "[role=main]", "#content", ".content", ".post", "body"}

func extractReadable(doc *goquery.Document) *workflow.Extraction {
	doc.Find("script, style, nav, header, footer, aside, form, noscript, iframe").Remove()

	totalWords := workflow.CountWords(doc.Find("body").Text())

	var text string
	var matched string
	for _, selector := range candidateSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		candidate := normalizeWhitespace(sel.Text())
		if workflow.CountWords(candidate) >= minUsableWords || selector == "body" {
			text = candidate
			matched = selector
			break
		}
	}

	words := workflow.CountWords(text)
	confidence := 0.0
	if totalWords > 0 {
		confidence = float64(words) / float64(totalWords)
		if confidence > 1 {
			confidence = 1
		}
	}
	// A semantic container is a stronger signal than a bare body match.
	if matched == "article" || matched == "main" {
		confidence = confidence*0.5 + 0.5
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok && strings.TrimSpace(og) != "" {
		title = strings.TrimSpace(og)
	}

	return &workflow.Extraction{
		Title:      title,
		Text:       text,
		WordCount:  words,
		Confidence: confidence,
	}
}

func normalizeWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var kept []string
	for _, line := range lines {
		trimmed := strings.Join(strings.Fields(line), " ")
		if trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, "\n")
}
