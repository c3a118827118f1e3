package live

import "testing"

func TestBuildWebSocketURLCoercesSchemeAndPath(t *testing.T) {
	got, err := buildWebSocketURL(Config{
		BaseURL:    "https://generativelanguage.googleapis.com",
		APIVersion: "v1beta",
		Method:     MethodBidiGenerateContent,
	})
	if err != nil {
		t.Fatalf("buildWebSocketURL: %v", err)
	}
	want := "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBuildWebSocketURLCoercesHTTPToWS(t *testing.T) {
	got, err := buildWebSocketURL(Config{
		BaseURL: "http://localhost:8080",
		Method:  MethodBidiGenerateMusic,
	})
	if err != nil {
		t.Fatalf("buildWebSocketURL: %v", err)
	}
	want := "ws://localhost:8080/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateMusic"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// The Constrained method is always issued under v1alpha regardless
// of the configured API version.
func TestBuildWebSocketURLForcesV1AlphaForConstrained(t *testing.T) {
	got, err := buildWebSocketURL(Config{
		BaseURL:    "https://generativelanguage.googleapis.com",
		APIVersion: "v1beta",
		Method:     MethodBidiGenerateContentConstrained,
	})
	if err != nil {
		t.Fatalf("buildWebSocketURL: %v", err)
	}
	want := "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1alpha.GenerativeService.BidiGenerateContentConstrained"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// ResumptionState.update is monotonic: a later update with an empty
// handle does not erase a previously observed one, and resumable/lastIdx
// only change when the new update actually carries them.
func TestResumptionStateUpdateIsMonotonic(t *testing.T) {
	var r ResumptionState

	trueVal := true
	idx1 := int64(5)
	r.update(&resumptionUpdate{NewHandle: "handle-1", Resumable: &trueVal, LastConsumedClientMessageIndex: &idx1})
	if r.Handle() != "handle-1" {
		t.Fatalf("Handle() = %q, want handle-1", r.Handle())
	}

	// An update with an empty handle must not clear the prior one.
	r.update(&resumptionUpdate{})
	if r.Handle() != "handle-1" {
		t.Errorf("Handle() = %q, want handle-1 to survive an empty update", r.Handle())
	}

	idx2 := int64(9)
	r.update(&resumptionUpdate{NewHandle: "handle-2", LastConsumedClientMessageIndex: &idx2})
	_, resumable, lastIdx := r.snapshot()
	if r.Handle() != "handle-2" {
		t.Errorf("Handle() = %q, want handle-2", r.Handle())
	}
	if resumable == nil || *resumable != true {
		t.Errorf("resumable should still carry the earlier true value, got %v", resumable)
	}
	if lastIdx == nil || *lastIdx != 9 {
		t.Errorf("lastIdx = %v, want 9", lastIdx)
	}
}

func TestGoAwayStateUpdate(t *testing.T) {
	var g GoAwayState
	if g.TimeLeft() != "" {
		t.Fatalf("expected zero-value TimeLeft, got %q", g.TimeLeft())
	}
	g.update(&goAway{TimeLeft: "30s"})
	if g.TimeLeft() != "30s" {
		t.Errorf("TimeLeft() = %q, want 30s", g.TimeLeft())
	}
}
