package auth_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/google-gemini/genai-go/auth"
)

func TestAPIKeyHeaders(t *testing.T) {
	a := &auth.APIKey{Key: "secret-key"}
	h, err := a.Headers(context.Background())
	if err != nil {
		t.Fatalf("Headers: %v", err)
	}
	if got := h.Get("x-goog-api-key"); got != "secret-key" {
		t.Errorf("x-goog-api-key = %q, want secret-key", got)
	}
	if !a.IsAPIKey() {
		t.Error("IsAPIKey() should be true for APIKey")
	}
}

// ADC caches the result of its first Fetch and never calls it again.
func TestADCFetchesOnce(t *testing.T) {
	calls := 0
	a := &auth.ADC{Fetch: func(_ context.Context) (http.Header, error) {
		calls++
		h := http.Header{}
		h.Set("authorization", "Bearer token")
		return h, nil
	}}

	for i := 0; i < 3; i++ {
		h, err := a.Headers(context.Background())
		if err != nil {
			t.Fatalf("Headers: %v", err)
		}
		if got := h.Get("authorization"); got != "Bearer token" {
			t.Errorf("call %d: authorization = %q", i, got)
		}
	}
	if calls != 1 {
		t.Errorf("Fetch called %d times, want 1", calls)
	}
	if a.IsAPIKey() {
		t.Error("IsAPIKey() should be false for ADC")
	}
}

// Headers returns a defensive copy so a caller mutating the result can't
// corrupt the cached value for subsequent calls.
func TestADCHeadersReturnsIndependentCopy(t *testing.T) {
	a := &auth.ADC{Fetch: func(_ context.Context) (http.Header, error) {
		h := http.Header{}
		h.Set("authorization", "Bearer token")
		return h, nil
	}}

	first, err := a.Headers(context.Background())
	if err != nil {
		t.Fatalf("Headers: %v", err)
	}
	first.Set("authorization", "corrupted")

	second, err := a.Headers(context.Background())
	if err != nil {
		t.Fatalf("Headers: %v", err)
	}
	if got := second.Get("authorization"); got != "Bearer token" {
		t.Errorf("second call's header was corrupted by the first: %q", got)
	}
}
