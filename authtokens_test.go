package genai_test

import (
	"context"
	"strings"
	"testing"

	genai "github.com/google-gemini/genai-go"
	"github.com/google-gemini/genai-go/genaitest"
	"github.com/google-gemini/genai-go/internal/ptr"
)

func TestCreateAuthTokenBuildsAlphabeticalFieldMask(t *testing.T) {
	transport := genaitest.NewMockTransport()
	transport.EnqueueJSON(200, []byte(`{"name":"authTokens/abc","expireTime":"2026-08-01T00:00:00Z"}`))
	client := newMockClient(t, transport)

	token, err := client.CreateAuthToken(context.Background(), genai.CreateAuthTokenConfig{
		Uses: ptr.To(1),
		Constraints: &genai.LiveConnectConstraints{
			Model:            "gemini-2.0-flash",
			SystemInstruction: map[string]any{"parts": "ignore cats"},
			GenerationConfig: map[string]any{"temperature": 0.2},
		},
	})
	if err != nil {
		t.Fatalf("CreateAuthToken: %v", err)
	}
	if token.Name != "authTokens/abc" {
		t.Errorf("Name = %q, want authTokens/abc", token.Name)
	}

	reqs := transport.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	// v1alpha is forced for ephemeral-token issuance regardless of the
	// client's configured API version.
	if !strings.Contains(reqs[0].URL, "/v1alpha/") {
		t.Errorf("request URL = %q, want v1alpha", reqs[0].URL)
	}
	body := string(reqs[0].Body)
	wantMask := "bidiGenerateContentSetup.generationConfig.temperature,bidiGenerateContentSetup.model,bidiGenerateContentSetup.systemInstruction.parts"
	if !strings.Contains(body, wantMask) {
		t.Errorf("body field mask = %s, want it to contain %q", body, wantMask)
	}
}

func TestCreateAuthTokenWithoutConstraintsOmitsFieldMask(t *testing.T) {
	transport := genaitest.NewMockTransport()
	transport.EnqueueJSON(200, []byte(`{"name":"authTokens/abc"}`))
	client := newMockClient(t, transport)

	_, err := client.CreateAuthToken(context.Background(), genai.CreateAuthTokenConfig{ExpireTime: "2026-08-01T00:00:00Z"})
	if err != nil {
		t.Fatalf("CreateAuthToken: %v", err)
	}
	if strings.Contains(string(transport.Requests()[0].Body), "fieldMask") {
		t.Errorf("expected no fieldMask in body, got %s", transport.Requests()[0].Body)
	}
}

// Ephemeral-token creation is Gemini-API-only.
func TestCreateAuthTokenRejectedOnVertex(t *testing.T) {
	transport := genaitest.NewMockTransport()
	client := newVertexMockClient(t, transport)

	_, err := client.CreateAuthToken(context.Background(), genai.CreateAuthTokenConfig{})
	var gerr *genai.Error
	if !asGenaiError(err, &gerr) || gerr.Kind != genai.KindInvalidConfig {
		t.Fatalf("expected InvalidConfig, got %v", err)
	}
	if len(transport.Requests()) != 0 {
		t.Errorf("expected no network calls, got %d", len(transport.Requests()))
	}
}
