package upload_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/google-gemini/genai-go/genaitest"
	"github.com/google-gemini/genai-go/upload"
)

func marshalJSON(v any) ([]byte, error) { return json.Marshal(v) }

func noopParseErr(status int, body string) error {
	return &testErr{status: status, body: body}
}

type testErr struct {
	status int
	body   string
}

func (e *testErr) Error() string { return e.body }

// An 8 MiB + 1 byte payload uploads as exactly two chunk
// POSTs, at offsets 0 and 8388608, the second marked "upload, finalize".
func TestRunChunksLargePayload(t *testing.T) {
	transport := genaitest.NewMockTransport()
	transport.EnqueueUploadStart("http://mock/upload/session-1")
	transport.EnqueueUploadChunk(string(upload.StatusActive), nil)
	transport.EnqueueUploadChunk(string(upload.StatusFinal), []byte(`{"name":"operations/final"}`))

	data := bytes.Repeat([]byte{1}, upload.DefaultFilesChunkSize+1)

	body, err := upload.Run(context.Background(), transport.HTTPClient(), marshalJSON, upload.StartRequest{
		URL: "http://mock/upload/start",
	}, data, upload.DefaultFilesChunkSize, noopParseErr)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if string(body) != `{"name":"operations/final"}` {
		t.Errorf("final body = %s", body)
	}

	reqs := transport.Requests()
	if len(reqs) != 3 {
		t.Fatalf("expected 3 requests (start + 2 chunks), got %d", len(reqs))
	}

	chunk1, chunk2 := reqs[1], reqs[2]
	if got := chunk1.Header.Get("X-Goog-Upload-Offset"); got != "0" {
		t.Errorf("chunk1 offset = %q, want 0", got)
	}
	if got := chunk1.Header.Get("X-Goog-Upload-Command"); got != "upload" {
		t.Errorf("chunk1 command = %q, want upload", got)
	}
	if len(chunk1.Body) != upload.DefaultFilesChunkSize {
		t.Errorf("chunk1 body length = %d, want %d", len(chunk1.Body), upload.DefaultFilesChunkSize)
	}

	wantOffset := "8388608"
	if got := chunk2.Header.Get("X-Goog-Upload-Offset"); got != wantOffset {
		t.Errorf("chunk2 offset = %q, want %q", got, wantOffset)
	}
	if got := chunk2.Header.Get("X-Goog-Upload-Command"); got != "upload, finalize" {
		t.Errorf("chunk2 command = %q, want \"upload, finalize\"", got)
	}
	if len(chunk2.Body) != 1 {
		t.Errorf("chunk2 body length = %d, want 1", len(chunk2.Body))
	}
}

// An empty upload sends exactly one finalize chunk POST
// carrying zero bytes.
func TestRunEmptyPayloadSendsSingleFinalizeChunk(t *testing.T) {
	transport := genaitest.NewMockTransport()
	transport.EnqueueUploadStart("http://mock/upload/session-2")
	transport.EnqueueUploadChunk(string(upload.StatusFinal), []byte(`{"name":"operations/final"}`))

	_, err := upload.Run(context.Background(), transport.HTTPClient(), marshalJSON, upload.StartRequest{
		URL: "http://mock/upload/start",
	}, nil, upload.DefaultFilesChunkSize, noopParseErr)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	reqs := transport.Requests()
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requests (start + 1 finalize chunk), got %d", len(reqs))
	}
	chunk := reqs[1]
	if got := chunk.Header.Get("X-Goog-Upload-Command"); got != "upload, finalize" {
		t.Errorf("command = %q, want \"upload, finalize\"", got)
	}
	if got := chunk.Header.Get("X-Goog-Upload-Offset"); got != "0" {
		t.Errorf("offset = %q, want 0", got)
	}
	if len(chunk.Body) != 0 {
		t.Errorf("expected zero-length body, got %d bytes", len(chunk.Body))
	}
}

// Start requires the x-goog-upload-url response header.
func TestStartMissingUploadURLHeaderErrors(t *testing.T) {
	transport := genaitest.NewMockTransport()
	transport.EnqueueJSON(200, nil) // no x-goog-upload-url header set

	_, err := upload.Start(context.Background(), transport.HTTPClient(), marshalJSON, upload.StartRequest{
		URL: "http://mock/upload/start",
	}, noopParseErr)
	if err == nil {
		t.Fatal("expected error for missing x-goog-upload-url header")
	}
}

// UploadChunk rejects a status header that doesn't match the expected
// active/final phase.
func TestUploadChunkStatusMismatchErrors(t *testing.T) {
	transport := genaitest.NewMockTransport()
	transport.EnqueueUploadChunk(string(upload.StatusActive), nil) // not final, but we ask for final below

	_, err := upload.UploadChunk(context.Background(), transport.HTTPClient(), "http://mock/upload/session-3", []byte("x"), 0, true, noopParseErr)
	if err == nil {
		t.Fatal("expected error for status/phase mismatch")
	}
}
