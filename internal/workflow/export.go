package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Export is a rendered article ready for download.
type Export struct {
	Body        []byte
	ContentType string
	Filename    string
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// ExportArticle renders the article in the requested format: markdown,
// html, text, or json.
func (m *Manager) ExportArticle(ctx context.Context, id, format string) (*Export, error) {
	article, err := m.GetArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	name := exportBaseName(article.Title)
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "markdown", "md":
		body := fmt.Sprintf("# %s\n\n%s\n", article.Title, strings.TrimRight(article.Content, "\n"))
		return &Export{Body: []byte(body), ContentType: "text/markdown; charset=utf-8", Filename: name + ".md"}, nil
	case "html":
		var buf bytes.Buffer
		source := fmt.Sprintf("# %s\n\n%s", article.Title, article.Content)
		if err := markdown.Convert([]byte(source), &buf); err != nil {
			return nil, fmt.Errorf("render html: %w", err)
		}
		return &Export{Body: buf.Bytes(), ContentType: "text/html; charset=utf-8", Filename: name + ".html"}, nil
	case "text", "txt":
		body := article.Title + "\n\n" + stripMarkdown(article.Content)
		return &Export{Body: []byte(body), ContentType: "text/plain; charset=utf-8", Filename: name + ".txt"}, nil
	case "json":
		data, err := json.MarshalIndent(article, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode article: %w", err)
		}
		return &Export{Body: data, ContentType: "application/json", Filename: name + ".json"}, nil
	default:
		return nil, validationErr("format", "unsupported format %q (markdown, html, text, json)", format)
	}
}

var (
	headingMarks  = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	emphasisMarks = regexp.MustCompile(`[*_]{1,3}([^*_]+)[*_]{1,3}`)
	linkMarks     = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	unsafeChars   = regexp.MustCompile(`[^a-z0-9]+`)
)

func stripMarkdown(content string) string {
	out := headingMarks.ReplaceAllString(content, "")
	out = emphasisMarks.ReplaceAllString(out, "$1")
	out = linkMarks.ReplaceAllString(out, "$1")
	return out
}

func exportBaseName(title string) string {
	slug := unsafeChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(title)), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "article"
	}
	return slug
}
