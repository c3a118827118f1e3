// Package genaitest provides an in-process mock HTTP transport for
// exercising the Client without a real network: canned responses queue
// up behind an http.RoundTripper and every outbound request is recorded
// for inspection.
package genaitest

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"sync"
)

// Response is one canned HTTP response (or transport-level error) to
// hand back from the mock transport's queue.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Err        error // when set, RoundTrip returns this error instead of a response
}

// RecordedRequest is a captured outbound request, body read out so tests
// can assert on it after the fact without racing the real io.Reader.
type RecordedRequest struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// MockTransport is an http.RoundTripper that serves a FIFO queue of
// canned Responses and records every request it sees, the transport-level
// analogue of llmsdktest.MockLanguageModel's enqueue/track pattern.
type MockTransport struct {
	mu       sync.Mutex
	queue    []Response
	recorded []RecordedRequest
}

// NewMockTransport constructs an empty MockTransport.
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// Enqueue appends a canned Response to the reply queue.
func (m *MockTransport) Enqueue(resp Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, resp)
}

// EnqueueJSON is a convenience for the common case: a response with the
// given status code whose body is the given raw JSON bytes.
func (m *MockTransport) EnqueueJSON(statusCode int, body []byte) {
	m.Enqueue(Response{StatusCode: statusCode, Body: body})
}

// EnqueueSSE enqueues a text/event-stream response whose body is the
// given literal SSE record text.
func (m *MockTransport) EnqueueSSE(body string) {
	h := http.Header{}
	h.Set("Content-Type", "text/event-stream")
	m.Enqueue(Response{StatusCode: 200, Header: h, Body: []byte(body)})
}

// EnqueueUploadStart enqueues a response carrying the x-goog-upload-url
// header the resumable-upload Start call requires.
func (m *MockTransport) EnqueueUploadStart(uploadURL string) {
	h := http.Header{}
	h.Set("x-goog-upload-url", uploadURL)
	m.Enqueue(Response{StatusCode: 200, Header: h})
}

// EnqueueUploadChunk enqueues a response carrying the
// x-goog-upload-status header a chunk POST requires.
func (m *MockTransport) EnqueueUploadChunk(status string, body []byte) {
	h := http.Header{}
	h.Set("x-goog-upload-status", status)
	m.Enqueue(Response{StatusCode: 200, Header: h, Body: body})
}

// RoundTrip pops the next queued Response and serves it, recording the
// request first (reading and restoring its body so the caller's request
// object remains usable for higher-level error messages).
func (m *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var bodyBytes []byte
	if req.Body != nil {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	}

	m.mu.Lock()
	m.recorded = append(m.recorded, RecordedRequest{
		Method: req.Method,
		URL:    req.URL.String(),
		Header: req.Header.Clone(),
		Body:   bodyBytes,
	})
	if len(m.queue) == 0 {
		m.mu.Unlock()
		return nil, errors.New("genaitest: no mocked response queued")
	}
	resp := m.queue[0]
	m.queue = m.queue[1:]
	m.mu.Unlock()

	if resp.Err != nil {
		return nil, resp.Err
	}

	header := resp.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	statusCode := resp.StatusCode
	if statusCode == 0 {
		statusCode = 200
	}
	return &http.Response{
		StatusCode: statusCode,
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader(resp.Body)),
		Request:    req,
	}, nil
}

// Requests returns every request recorded so far, in arrival order.
func (m *MockTransport) Requests() []RecordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RecordedRequest, len(m.recorded))
	copy(out, m.recorded)
	return out
}

// Pending reports how many canned responses remain unconsumed.
func (m *MockTransport) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// HTTPClient returns an *http.Client wired to this transport.
func (m *MockTransport) HTTPClient() *http.Client {
	return &http.Client{Transport: m}
}
