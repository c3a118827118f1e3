package genai

import (
	"context"
	"sync"

	"github.com/google-gemini/genai-go/internal/stream"
)

// Chat is a stateful wrapper around Generate and the tool-calling loop
// adding ordered conversation history with single-writer semantics. The
// mutex guards only append/clear, never I/O.
type Chat struct {
	client        *Client
	model         string
	baseConfig    *GenerationConfig
	tools         []Tool
	callableTools []CallableTool

	mu      sync.Mutex
	history []Content
}

// NewChat constructs a Chat Session bound to model with an optional base
// generation config and an optional set of callable tools.
func (c *Client) NewChat(model string, baseConfig *GenerationConfig, callableTools ...CallableTool) *Chat {
	return &Chat{client: c, model: model, baseConfig: baseConfig, callableTools: callableTools}
}

// History returns a snapshot of the chat's conversation history.
func (ch *Chat) History() []Content {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	out := make([]Content, len(ch.history))
	copy(out, ch.history)
	return out
}

// ClearHistory discards all accumulated history.
func (ch *Chat) ClearHistory() {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.history = nil
}

// appendUser appends msg to history and returns a snapshot of the
// history as it stood before the append, in one critical section, so a
// concurrent Send cannot interleave between the snapshot and the append.
func (ch *Chat) appendUser(msg Content) []Content {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	before := make([]Content, len(ch.history))
	copy(before, ch.history)
	ch.history = append(ch.history, msg)
	return before
}

func (ch *Chat) appendIfContent(candidate *Candidate) {
	if candidate == nil || len(candidate.Content.Parts) == 0 {
		return
	}
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.history = append(ch.history, candidate.Content)
}

func (ch *Chat) buildRequest(contents []Content, extraTools []Tool) *GenerateRequest {
	return &GenerateRequest{
		Model:            ch.model,
		Contents:         contents,
		GenerationConfig: ch.baseConfig,
		Tools:            append(append([]Tool{}, ch.tools...), extraTools...),
	}
}

// Send runs a unary chat turn: the user content is appended eagerly, and
// the model Content is appended only if the returned Candidate carries
// one. A failed turn therefore leaves the user message in history; call
// ClearHistory to reset.
func (ch *Chat) Send(ctx context.Context, message Content) (*GenerateResponse, error) {
	return ch.send(ctx, message, nil)
}

// SendWithCallableTools is Send plus additional per-call callable tools.
func (ch *Chat) SendWithCallableTools(ctx context.Context, message Content, extra ...CallableTool) (*GenerateResponse, error) {
	return ch.send(ctx, message, extra)
}

func (ch *Chat) send(ctx context.Context, message Content, extraTools []CallableTool) (*GenerateResponse, error) {
	contents := append(ch.appendUser(message), message)

	req := ch.buildRequest(contents, nil)
	tools := append(append([]CallableTool{}, ch.callableTools...), extraTools...)

	var resp *GenerateResponse
	var err error
	if len(tools) > 0 {
		resp, err = ch.client.GenerateWithTools(ctx, req, tools, nil)
	} else {
		resp, err = ch.client.Generate(ctx, req, nil)
	}
	if err != nil {
		return nil, err
	}

	// A tool-calling turn's intermediate call/response contents land in
	// history too, so the record reads user, model call, function
	// response, ..., final model answer.
	if len(resp.AFCHistory) > len(contents) {
		ch.appendContents(resp.AFCHistory[len(contents):])
	}
	if len(resp.Candidates) > 0 {
		ch.appendIfContent(&resp.Candidates[0])
	}
	return resp, nil
}

func (ch *Chat) appendContents(contents []Content) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.history = append(ch.history, contents...)
}

// SendStream runs a streaming chat turn: the user content is appended
// eagerly; on stream completion the last observed model Content (if any)
// is appended.
func (ch *Chat) SendStream(ctx context.Context, message Content) (*stream.Stream[*GenerateResponse], error) {
	return ch.sendStream(ctx, message, nil)
}

func (ch *Chat) SendStreamWithCallableTools(ctx context.Context, message Content, extra ...CallableTool) (*stream.Stream[*GenerateResponse], error) {
	return ch.sendStream(ctx, message, extra)
}

func (ch *Chat) sendStream(ctx context.Context, message Content, extraTools []CallableTool) (*stream.Stream[*GenerateResponse], error) {
	contents := append(ch.appendUser(message), message)

	req := ch.buildRequest(contents, nil)
	tools := append(append([]CallableTool{}, ch.callableTools...), extraTools...)

	var upstream *stream.Stream[*GenerateResponse]
	var err error
	if len(tools) > 0 {
		upstream, err = ch.client.GenerateStreamWithTools(ctx, req, tools, nil)
	} else {
		upstream, err = ch.client.GenerateStream(ctx, req, nil)
	}
	if err != nil {
		return nil, err
	}

	outC := make(chan *GenerateResponse, 4)
	errC := make(chan error, 1)

	go func() {
		defer close(outC)
		defer close(errC)

		var lastCandidate *Candidate
		for upstream.Next() {
			resp := upstream.Current()
			if len(resp.Candidates) > 0 {
				c := resp.Candidates[len(resp.Candidates)-1]
				lastCandidate = &c
			}
			select {
			case outC <- resp:
			case <-ctx.Done():
				return
			}
		}
		if upstream.Err() != nil {
			errC <- upstream.Err()
			return
		}
		ch.appendIfContent(lastCandidate)
	}()

	return stream.New[*GenerateResponse](outC, errC), nil
}
