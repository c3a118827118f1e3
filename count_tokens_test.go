package genai_test

import (
	"context"
	"net/http"
	"testing"

	genai "github.com/google-gemini/genai-go"
	"github.com/google-gemini/genai-go/auth"
	"github.com/google-gemini/genai-go/genaitest"
)

type fixedEstimator struct{ n int }

func (f fixedEstimator) EstimateTokens(_ []genai.Content) int { return f.n }

// A caller-supplied estimator short-circuits the network entirely.
func TestCountTokensEstimatorShortCircuitsNetwork(t *testing.T) {
	transport := genaitest.NewMockTransport()
	client := newMockClient(t, transport)

	resp, err := client.CountTokens(context.Background(), "gemini-2.0-flash", []genai.Content{genai.NewUserText("hi")}, genai.CountTokensConfig{}, fixedEstimator{n: 42})
	if err != nil {
		t.Fatalf("CountTokens: %v", err)
	}
	if resp.TotalTokens != 42 {
		t.Errorf("TotalTokens = %d, want 42", resp.TotalTokens)
	}
	if len(transport.Requests()) != 0 {
		t.Errorf("expected no network calls when an estimator is supplied, got %d", len(transport.Requests()))
	}
}

func TestCountTokensWithoutEstimatorCallsNetwork(t *testing.T) {
	transport := genaitest.NewMockTransport()
	transport.EnqueueJSON(200, []byte(`{"totalTokens":7}`))
	client := newMockClient(t, transport)

	resp, err := client.CountTokens(context.Background(), "gemini-2.0-flash", []genai.Content{genai.NewUserText("hi")}, genai.CountTokensConfig{}, nil)
	if err != nil {
		t.Fatalf("CountTokens: %v", err)
	}
	if resp.TotalTokens != 7 {
		t.Errorf("TotalTokens = %d, want 7", resp.TotalTokens)
	}
	if len(transport.Requests()) != 1 {
		t.Errorf("expected exactly 1 network call, got %d", len(transport.Requests()))
	}
}

// ComputeTokens is Vertex-only.
func TestComputeTokensRejectedOnGeminiAPI(t *testing.T) {
	transport := genaitest.NewMockTransport()
	client := newMockClient(t, transport)

	_, err := client.ComputeTokens(context.Background(), "gemini-2.0-flash", []genai.Content{genai.NewUserText("hi")})
	var gerr *genai.Error
	if !asGenaiError(err, &gerr) || gerr.Kind != genai.KindInvalidConfig {
		t.Fatalf("expected InvalidConfig, got %v", err)
	}
}

func TestComputeTokensOnVertex(t *testing.T) {
	transport := genaitest.NewMockTransport()
	transport.EnqueueJSON(200, []byte(`{"tokensInfo":[{"role":"user","tokenIds":[1,2,3],"tokens":["aGk="]}]}`))

	cred := &auth.ADC{Fetch: func(_ context.Context) (http.Header, error) { return http.Header{}, nil }}
	client, err := genai.NewClient(genai.ClientConfig{
		Dialect:    genai.Vertex,
		Credential: cred,
		Project:    "my-project",
		Location:   "us-central1",
		BaseURL:    "http://mock",
		APIVersion: "v1beta1",
		HTTPClient: transport.HTTPClient(),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	resp, err := client.ComputeTokens(context.Background(), "gemini-2.0-flash", []genai.Content{genai.NewUserText("hi")})
	if err != nil {
		t.Fatalf("ComputeTokens: %v", err)
	}
	if len(resp.TokensInfo) != 1 || resp.TokensInfo[0].Role != "user" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if string(resp.TokensInfo[0].Tokens[0]) != "hi" {
		t.Errorf("decoded token = %q, want hi", resp.TokensInfo[0].Tokens[0])
	}
}
