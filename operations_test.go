package genai_test

import (
	"context"
	"testing"
	"time"

	genai "github.com/google-gemini/genai-go"
	"github.com/google-gemini/genai-go/genaitest"
)

func TestGetOperationUnwrapsVideoResponseOnGeminiAPI(t *testing.T) {
	transport := genaitest.NewMockTransport()
	transport.EnqueueJSON(200, []byte(`{"name":"operations/abc","done":true,"response":{"generateVideoResponse":{"videos":[{"uri":"gs://x"}]}}}`))
	client := newMockClient(t, transport)

	op, err := client.GetOperation(context.Background(), "operations/abc")
	if err != nil {
		t.Fatalf("GetOperation: %v", err)
	}
	if !op.Done {
		t.Fatal("expected Done = true")
	}
	if _, ok := op.Response["videos"]; !ok {
		t.Errorf("expected unwrapped response to expose videos directly, got %+v", op.Response)
	}
}

func TestGetOperationQualifiesBareName(t *testing.T) {
	transport := genaitest.NewMockTransport()
	transport.EnqueueJSON(200, []byte(`{"name":"operations/abc","done":false}`))
	client := newMockClient(t, transport)

	op, err := client.GetOperation(context.Background(), "abc")
	if err != nil {
		t.Fatalf("GetOperation: %v", err)
	}
	if op.Done {
		t.Fatal("expected Done = false")
	}
	wantURL := "http://mock/v1beta/operations/abc"
	if transport.Requests()[0].URL != wantURL {
		t.Errorf("request URL = %q, want %q", transport.Requests()[0].URL, wantURL)
	}
}

func TestCancelAndDeleteOperation(t *testing.T) {
	transport := genaitest.NewMockTransport()
	transport.EnqueueJSON(200, nil)
	transport.EnqueueJSON(200, nil)
	client := newMockClient(t, transport)

	if err := client.CancelOperation(context.Background(), "operations/abc"); err != nil {
		t.Fatalf("CancelOperation: %v", err)
	}
	if err := client.DeleteOperation(context.Background(), "operations/abc"); err != nil {
		t.Fatalf("DeleteOperation: %v", err)
	}
	reqs := transport.Requests()
	if reqs[0].Method != "POST" || reqs[1].Method != "DELETE" {
		t.Errorf("unexpected methods: %q, %q", reqs[0].Method, reqs[1].Method)
	}
	if got := reqs[0].URL; got != "http://mock/v1beta/operations/abc:cancel" {
		t.Errorf("cancel URL = %q", got)
	}
}

func TestWaitOperationReturnsOnceDone(t *testing.T) {
	transport := genaitest.NewMockTransport()
	transport.EnqueueJSON(200, []byte(`{"name":"operations/abc","done":false}`))
	transport.EnqueueJSON(200, []byte(`{"name":"operations/abc","done":true,"response":{"ok":true}}`))
	client := newMockClient(t, transport)

	op, err := client.WaitOperation(context.Background(), "operations/abc", genai.WaitOperationConfig{PollInterval: 5 * time.Millisecond})
	if err != nil {
		t.Fatalf("WaitOperation: %v", err)
	}
	if !op.Done {
		t.Fatal("expected Done = true")
	}
}

func TestWaitOperationFailsOnDoneWithError(t *testing.T) {
	transport := genaitest.NewMockTransport()
	transport.EnqueueJSON(200, []byte(`{"name":"operations/abc","done":true,"error":{"code":13,"message":"boom"}}`))
	client := newMockClient(t, transport)

	_, err := client.WaitOperation(context.Background(), "operations/abc", genai.WaitOperationConfig{PollInterval: 5 * time.Millisecond})
	var gerr *genai.Error
	if !asGenaiError(err, &gerr) || gerr.Kind != genai.KindAPIError {
		t.Fatalf("expected APIError, got %v", err)
	}
}

func TestWaitOperationTimesOut(t *testing.T) {
	transport := genaitest.NewMockTransport()
	for i := 0; i < 50; i++ {
		transport.EnqueueJSON(200, []byte(`{"name":"operations/abc","done":false}`))
	}
	client := newMockClient(t, transport)

	timeout := 20 * time.Millisecond
	_, err := client.WaitOperation(context.Background(), "operations/abc", genai.WaitOperationConfig{
		PollInterval: 5 * time.Millisecond,
		Timeout:      &timeout,
	})
	var gerr *genai.Error
	if !asGenaiError(err, &gerr) || gerr.Kind != genai.KindTimeout {
		t.Fatalf("expected Timeout, got %v", err)
	}
}
