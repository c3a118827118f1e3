package genai_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"

	genai "github.com/google-gemini/genai-go"
	"github.com/google-gemini/genai-go/auth"
	"github.com/google-gemini/genai-go/genaitest"
)

func newMockClient(t *testing.T, transport *genaitest.MockTransport) *genai.Client {
	t.Helper()
	c, err := genai.NewClient(genai.ClientConfig{
		Dialect:    genai.GeminiAPI,
		Credential: &auth.APIKey{Key: "test-key"},
		BaseURL:    "http://mock",
		APIVersion: "v1beta",
		HTTPClient: transport.HTTPClient(),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func newVertexMockClient(t *testing.T, transport *genaitest.MockTransport) *genai.Client {
	t.Helper()
	c, err := genai.NewClient(genai.ClientConfig{
		Dialect:    genai.Vertex,
		Credential: &auth.ADC{Fetch: func(_ context.Context) (http.Header, error) { return http.Header{}, nil }},
		Project:    "my-project",
		Location:   "us-central1",
		BaseURL:    "http://mock",
		APIVersion: "v1beta1",
		HTTPClient: transport.HTTPClient(),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

// Unary generate against the Gemini-API dialect.
func TestGenerateUnaryGeminiAPI(t *testing.T) {
	transport := genaitest.NewMockTransport()
	transport.EnqueueJSON(200, []byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Hi"}]}}]}`))

	client := newMockClient(t, transport)

	resp, err := client.Generate(context.Background(), &genai.GenerateRequest{
		Model:    "gemini-2.0-flash",
		Contents: []genai.Content{genai.NewUserText("hello")},
	}, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got := resp.Text(); got != "Hi" {
		t.Errorf("response.Text() = %q, want %q", got, "Hi")
	}

	reqs := transport.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	wantURL := "http://mock/v1beta/models/gemini-2.0-flash:generateContent"
	if reqs[0].URL != wantURL {
		t.Errorf("request URL = %q, want %q", reqs[0].URL, wantURL)
	}
	if reqs[0].Header.Get("x-goog-api-key") != "test-key" {
		t.Errorf("missing api key header, got %v", reqs[0].Header)
	}
}

func TestGenerateZeroCandidatesIsParseError(t *testing.T) {
	transport := genaitest.NewMockTransport()
	transport.EnqueueJSON(200, []byte(`{"candidates":[]}`))
	client := newMockClient(t, transport)

	_, err := client.Generate(context.Background(), &genai.GenerateRequest{
		Model:    "gemini-2.0-flash",
		Contents: []genai.Content{genai.NewUserText("hello")},
	}, nil)
	var gerr *genai.Error
	if err == nil {
		t.Fatal("expected error for zero candidates")
	}
	if !asGenaiError(err, &gerr) || gerr.Kind != genai.KindParse {
		t.Errorf("expected Parse error, got %v", err)
	}
}

func TestGenerateNon2xxIsAPIError(t *testing.T) {
	transport := genaitest.NewMockTransport()
	transport.Enqueue(genaitest.Response{StatusCode: 400, Body: []byte(`{"error":"bad request"}`)})
	client := newMockClient(t, transport)

	_, err := client.Generate(context.Background(), &genai.GenerateRequest{
		Model:    "gemini-2.0-flash",
		Contents: []genai.Content{genai.NewUserText("hello")},
	}, nil)
	var gerr *genai.Error
	if !asGenaiError(err, &gerr) || gerr.Kind != genai.KindAPIError || gerr.Status != 400 {
		t.Errorf("expected api error status 400, got %v", err)
	}
}

// Streaming generate decodes each SSE frame in order.
func TestGenerateStreamSSE(t *testing.T) {
	transport := genaitest.NewMockTransport()
	transport.EnqueueSSE("data: {\"candidates\":[{\"content\":{\"role\":\"model\",\"parts\":[{\"text\":\"Hello\"}]}}]}\n\n" +
		"data: {\"candidates\":[{\"content\":{\"role\":\"model\",\"parts\":[{\"text\":\"World\"}]}}]}\n\n" +
		"data: [DONE]\n\n")
	client := newMockClient(t, transport)

	s, err := client.GenerateStream(context.Background(), &genai.GenerateRequest{
		Model:    "gemini-2.0-flash",
		Contents: []genai.Content{genai.NewUserText("hello")},
	}, nil)
	if err != nil {
		t.Fatalf("GenerateStream: %v", err)
	}

	var texts []string
	for s.Next() {
		texts = append(texts, s.Current().Text())
	}
	if err := s.Err(); err != nil {
		t.Fatalf("stream error: %v", err)
	}
	if diff := cmp.Diff([]string{"Hello", "World"}, texts); diff != "" {
		t.Fatalf("stream texts mismatch (-want +got):\n%s", diff)
	}

	reqs := transport.Requests()
	wantURL := "http://mock/v1beta/models/gemini-2.0-flash:streamGenerateContent?alt=sse"
	if reqs[0].URL != wantURL {
		t.Errorf("stream URL = %q, want %q", reqs[0].URL, wantURL)
	}
}

// SSE input containing only [DONE] yields zero frames and a
// clean end.
func TestGenerateStreamDoneOnly(t *testing.T) {
	transport := genaitest.NewMockTransport()
	transport.EnqueueSSE("data: [DONE]\n\n")
	client := newMockClient(t, transport)

	s, err := client.GenerateStream(context.Background(), &genai.GenerateRequest{
		Model:    "gemini-2.0-flash",
		Contents: []genai.Content{genai.NewUserText("hello")},
	}, nil)
	if err != nil {
		t.Fatalf("GenerateStream: %v", err)
	}
	count := 0
	for s.Next() {
		count++
	}
	if err := s.Err(); err != nil {
		t.Fatalf("unexpected stream error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected zero frames, got %d", count)
	}
}

func asGenaiError(err error, out **genai.Error) bool {
	gerr, ok := err.(*genai.Error)
	if !ok {
		return false
	}
	*out = gerr
	return true
}
