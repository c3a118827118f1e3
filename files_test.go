package genai_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	genai "github.com/google-gemini/genai-go"
	"github.com/google-gemini/genai-go/genaitest"
)

// FileState accepts both the canonical name and the STATE_-prefixed alias.
func TestFileStateUnmarshalAcceptsAliases(t *testing.T) {
	cases := map[string]genai.FileState{
		`"ACTIVE"`:       genai.FileStateActive,
		`"STATE_ACTIVE"`: genai.FileStateActive,
		`"PROCESSING"`:   genai.FileStateProcessing,
		`"STATE_FAILED"`: genai.FileStateFailed,
	}
	for raw, want := range cases {
		var s genai.FileState
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			t.Fatalf("Unmarshal(%s): %v", raw, err)
		}
		if s != want {
			t.Errorf("Unmarshal(%s) = %v, want %v", raw, s, want)
		}
	}
}

func TestUploadFileDrivesResumableUpload(t *testing.T) {
	transport := genaitest.NewMockTransport()
	transport.EnqueueUploadStart("http://mock/upload/session-1")
	transport.EnqueueUploadChunk("final", []byte(`{"name":"files/abc-123","mimeType":"text/plain","state":"ACTIVE"}`))
	client := newMockClient(t, transport)

	file, err := client.UploadFile(context.Background(), []byte("hello"), "text/plain")
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if file.Name != "files/abc-123" || file.State != genai.FileStateActive {
		t.Errorf("unexpected file: %+v", file)
	}
}

func TestUploadFileRejectedOnVertex(t *testing.T) {
	transport := genaitest.NewMockTransport()
	client := newVertexMockClient(t, transport)

	_, err := client.UploadFile(context.Background(), []byte("hello"), "text/plain")
	var gerr *genai.Error
	if !asGenaiError(err, &gerr) || gerr.Kind != genai.KindInvalidConfig {
		t.Fatalf("expected InvalidConfig (files is Gemini-API only), got %v", err)
	}
	if len(transport.Requests()) != 0 {
		t.Errorf("expected no network calls, got %d", len(transport.Requests()))
	}
}

func TestWaitForActiveReturnsOnceActive(t *testing.T) {
	transport := genaitest.NewMockTransport()
	transport.EnqueueJSON(200, []byte(`{"name":"files/abc","state":"PROCESSING"}`))
	transport.EnqueueJSON(200, []byte(`{"name":"files/abc","state":"ACTIVE"}`))
	client := newMockClient(t, transport)

	file, err := client.WaitForActive(context.Background(), "files/abc", genai.WaitForFileConfig{PollInterval: 5 * time.Millisecond})
	if err != nil {
		t.Fatalf("WaitForActive: %v", err)
	}
	if file.State != genai.FileStateActive {
		t.Errorf("state = %v, want ACTIVE", file.State)
	}
}

func TestWaitForActiveFailsFastOnFAILED(t *testing.T) {
	transport := genaitest.NewMockTransport()
	transport.EnqueueJSON(200, []byte(`{"name":"files/abc","state":"FAILED"}`))
	client := newMockClient(t, transport)

	_, err := client.WaitForActive(context.Background(), "files/abc", genai.WaitForFileConfig{PollInterval: 5 * time.Millisecond})
	var gerr *genai.Error
	if !asGenaiError(err, &gerr) || gerr.Kind != genai.KindAPIError {
		t.Fatalf("expected APIError, got %v", err)
	}
}

func TestWaitForActiveTimesOut(t *testing.T) {
	transport := genaitest.NewMockTransport()
	for i := 0; i < 50; i++ {
		transport.EnqueueJSON(200, []byte(`{"name":"files/abc","state":"PROCESSING"}`))
	}
	client := newMockClient(t, transport)

	timeout := 20 * time.Millisecond
	_, err := client.WaitForActive(context.Background(), "files/abc", genai.WaitForFileConfig{
		PollInterval: 5 * time.Millisecond,
		Timeout:      &timeout,
	})
	var gerr *genai.Error
	if !asGenaiError(err, &gerr) || gerr.Kind != genai.KindTimeout {
		t.Fatalf("expected Timeout, got %v", err)
	}
}
