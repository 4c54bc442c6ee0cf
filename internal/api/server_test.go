package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/socialme/contentflow/internal/metrics"
	"github.com/socialme/contentflow/internal/workflow"
)

type fakeCollector struct{}

func (fakeCollector) Extract(ctx context.Context, rawURL, topic string) (*workflow.Extraction, error) {
	if strings.Contains(rawURL, "broken") {
		return nil, fmt.Errorf("connection refused")
	}
	return &workflow.Extraction{
		Title:      "Fetched Page",
		Text:       strings.Repeat("useful reference text ", 40),
		WordCount:  120,
		Confidence: 0.85,
		Method:     "direct",
	}, nil
}

type fakeProfiler struct{}

func (fakeProfiler) Analyze(ctx context.Context, text string) (json.RawMessage, error) {
	return json.RawMessage(`{"analyzer":"llm","formality":0.65}`), nil
}

type fakeGenerator struct{}

func (fakeGenerator) GenerateArticle(ctx context.Context, input workflow.ArticleInput) (*workflow.Article, error) {
	return &workflow.Article{
		Title:   "A Field Guide to " + input.Topic.Primary,
		Content: fmt.Sprintf("## Overview\n\nAll about %s.\n\n## Details\n\nMore on %s.\n", input.Topic.Primary, input.Topic.Primary),
	}, nil
}

func (fakeGenerator) GenerateStyleSamples(ctx context.Context, input workflow.SampleInput) ([]string, error) {
	out := make([]string, input.Count)
	for i := range out {
		out[i] = fmt.Sprintf("sample passage %d", i+1)
	}
	return out, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := workflow.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	cfg := workflow.Config{UploadRoot: t.TempDir(), CallTimeout: 5 * time.Second}
	manager, err := workflow.NewManager(store, fakeCollector{}, fakeProfiler{}, fakeGenerator{}, nil, &cfg)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	server, err := NewServer(manager, metrics.New())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	srv := httptest.NewServer(server)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	payload := map[string]interface{}{}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &payload); err != nil {
			t.Fatalf("decode body %q: %v", data, err)
		}
	}
	return resp, payload
}

func startSession(t *testing.T, base string) string {
	t.Helper()
	resp, payload := doJSON(t, http.MethodPost, base+"/v1/workflow/start", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start returned %d: %v", resp.StatusCode, payload)
	}
	id, _ := payload["id"].(string)
	if id == "" {
		t.Fatalf("start response missing id: %v", payload)
	}
	return id
}

func TestWorkflowEndToEnd(t *testing.T) {
	srv := newTestServer(t)
	id := startSession(t, srv.URL)
	base := srv.URL + "/v1/workflow/" + id

	resp, payload := doJSON(t, http.MethodPost, base+"/topic", map[string]interface{}{
		"primary_topic":    "Pottery",
		"secondary_topics": []string{"glazing"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("topic returned %d: %v", resp.StatusCode, payload)
	}
	if payload["status"] != "topic_set" {
		t.Fatalf("expected topic_set, got %v", payload["status"])
	}

	resp, payload = doJSON(t, http.MethodPost, base+"/sources", map[string]interface{}{
		"urls":       []string{"https://good.example.com/clay", "https://broken.example.com"},
		"text_input": "pasted notes about kilns",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sources returned %d: %v", resp.StatusCode, payload)
	}
	if payload["sources_processed"].(float64) != 2 {
		t.Fatalf("expected 2 processed sources, got %v", payload["sources_processed"])
	}
	details := payload["details"].([]interface{})
	if len(details) != 3 {
		t.Fatalf("expected 3 details, got %d", len(details))
	}

	resp, payload = doJSON(t, http.MethodPost, base+"/tone", map[string]interface{}{
		"source_type": "text",
		"sample_text": strings.Repeat("a deliberate confident writing voice ", 30),
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("tone returned %d: %v", resp.StatusCode, payload)
	}
	profile := payload["tone_profile"].(map[string]interface{})
	if profile["analyzer"] != "llm" {
		t.Fatalf("unexpected tone profile: %v", profile)
	}

	resp, payload = doJSON(t, http.MethodPost, base+"/style-samples", map[string]interface{}{
		"sample_text": "my writing voice",
		"num_samples": 2,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("style samples returned %d: %v", resp.StatusCode, payload)
	}
	samples := payload["samples"].([]interface{})
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	analysis, ok := payload["style_analysis"].(map[string]interface{})
	if !ok || analysis["analyzer"] != "llm" {
		t.Fatalf("expected style analysis alongside samples, got %v", payload["style_analysis"])
	}

	resp, payload = doJSON(t, http.MethodPost, base+"/generate-article", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("generate returned %d: %v", resp.StatusCode, payload)
	}
	article := payload["article"].(map[string]interface{})
	title := article["title"].(string)
	if !strings.Contains(title, "Pottery") {
		t.Fatalf("title must reference the submitted topic, got %q", title)
	}
	if payload["status"] != "article_generated" {
		t.Fatalf("expected article_generated, got %v", payload["status"])
	}

	resp, payload = doJSON(t, http.MethodPost, base+"/validate-article", map[string]interface{}{
		"edits": map[string]interface{}{
			"sections": map[string]string{"Details": "Corrected details."},
			"label":    "editorial pass",
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("validate returned %d: %v", resp.StatusCode, payload)
	}
	versions := payload["versions"].([]interface{})
	if len(versions) != 1 {
		t.Fatalf("expected 1 version, got %d", len(versions))
	}

	resp, payload = doJSON(t, http.MethodPost, base+"/approve-article", map[string]interface{}{
		"approved": true,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("approve returned %d: %v", resp.StatusCode, payload)
	}
	if payload["status"] != "approved" {
		t.Fatalf("expected approved, got %v", payload["status"])
	}

	statusResp, statusPayload := doJSON(t, http.MethodGet, base+"/status", nil)
	if statusResp.StatusCode != http.StatusOK {
		t.Fatalf("status returned %d", statusResp.StatusCode)
	}
	if statusPayload["status"] != "approved" {
		t.Fatalf("status endpoint disagrees: %v", statusPayload["status"])
	}
}

func TestGenerateWithoutTopicIsRejected(t *testing.T) {
	srv := newTestServer(t)
	id := startSession(t, srv.URL)

	resp, payload := doJSON(t, http.MethodPost, srv.URL+"/v1/workflow/"+id+"/generate-article", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %v", resp.StatusCode, payload)
	}
	if msg, _ := payload["error"].(string); !strings.Contains(msg, "topic") {
		t.Fatalf("error should name the topic requirement: %v", payload)
	}
}

func TestUnknownWorkflowReturns404(t *testing.T) {
	srv := newTestServer(t)
	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/v1/workflow/nope/status", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/v1/workflow/nope/topic", map[string]interface{}{"primary_topic": "x"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for topic on unknown id, got %d", resp.StatusCode)
	}
}

func TestUnknownFieldsRejected(t *testing.T) {
	srv := newTestServer(t)
	id := startSession(t, srv.URL)

	resp, payload := doJSON(t, http.MethodPost, srv.URL+"/v1/workflow/"+id+"/topic", map[string]interface{}{
		"topic": "wrong field name",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d: %v", resp.StatusCode, payload)
	}
}

func TestArticleEndpointsBeforeGeneration(t *testing.T) {
	srv := newTestServer(t)
	id := startSession(t, srv.URL)
	base := srv.URL + "/v1/workflow/" + id

	resp, _ := doJSON(t, http.MethodGet, base+"/article", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 before generation, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodPost, base+"/validate-article", map[string]interface{}{"edits": map[string]interface{}{}})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for validate, got %d", resp.StatusCode)
	}
}

func TestArticleDownloadFormats(t *testing.T) {
	srv := newTestServer(t)
	id := startSession(t, srv.URL)
	base := srv.URL + "/v1/workflow/" + id

	if resp, payload := doJSON(t, http.MethodPost, base+"/topic", map[string]interface{}{"primary_topic": "Pottery"}); resp.StatusCode != http.StatusOK {
		t.Fatalf("topic: %d %v", resp.StatusCode, payload)
	}
	if resp, payload := doJSON(t, http.MethodPost, base+"/generate-article", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("generate: %d %v", resp.StatusCode, payload)
	}

	resp, err := http.Get(base + "/article/download?format=html")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("download returned %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "<h2>") {
		t.Fatalf("html export missing rendered headings: %q", body)
	}

	badResp, badPayload := doJSON(t, http.MethodGet, base+"/article/download?format=docx", nil)
	if badResp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown format, got %d: %v", badResp.StatusCode, badPayload)
	}
}

func TestHealthLogsAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	resp, payload := doJSON(t, http.MethodGet, srv.URL+"/health", nil)
	if resp.StatusCode != http.StatusOK || payload["status"] != "ok" {
		t.Fatalf("health failed: %d %v", resp.StatusCode, payload)
	}
	if payload["version"] != Version {
		t.Fatalf("expected version %q, got %v", Version, payload["version"])
	}

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/v1/logs", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logs returned %d", resp.StatusCode)
	}

	metricsResp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer metricsResp.Body.Close()
	body, _ := io.ReadAll(metricsResp.Body)
	if !strings.Contains(string(body), "contentflow_http_requests_total") {
		t.Fatalf("metrics exposition missing request counter:\n%s", body)
	}
}
