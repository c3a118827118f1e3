package genai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google-gemini/genai-go/internal/sse"
	"github.com/google-gemini/genai-go/internal/stream"
	"github.com/google-gemini/genai-go/internal/tracing"
	"github.com/google-gemini/genai-go/internal/wire"
)

// Generate is the unary generate entry point: pre-flight validation,
// dialect-aware body build, transport send, response parse.
func (c *Client) Generate(ctx context.Context, req *GenerateRequest, opts *HTTPOptions) (*GenerateResponse, error) {
	ctx, span := tracing.StartGenerate(ctx, string(c.dialect), req.Model)
	defer span.End()

	resp, err := c.generate(ctx, req, opts)
	span.OnError(err)
	if err == nil && resp.UsageMetadata != nil {
		span.OnUsage(resp.UsageMetadata.PromptTokenCount, resp.UsageMetadata.CandidatesTokenCount)
	}
	return resp, err
}

func (c *Client) generate(ctx context.Context, req *GenerateRequest, opts *HTTPOptions) (*GenerateResponse, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	wireReq, err := BuildGenerateContentRequest(c.dialect, req)
	if err != nil {
		return nil, err
	}

	url, err := c.buildURL(req.Model, "generateContent", "", opts)
	if err != nil {
		return nil, NewInvalidConfigError(err.Error())
	}

	wireResp, err := doJSON[wire.GenerateContentResponse](ctx, c, "POST", url, wireReq, opts)
	if err != nil {
		return nil, err
	}
	if len(wireResp.Candidates) == 0 {
		return nil, NewParseError("generateContent response carried zero candidates")
	}

	return ParseGenerateContentResponse(wireResp)
}

// GenerateStream is the streaming generate entry point. Same pre-flight
// as Generate; the URL is streamGenerateContent?alt=sse and the response
// is a stream of GenerateResponses decoded from SSE frames. The stream
// is finite and ends on the first decode error or on [DONE].
func (c *Client) GenerateStream(ctx context.Context, req *GenerateRequest, opts *HTTPOptions) (*stream.Stream[*GenerateResponse], error) {
	ctx, span := tracing.StartGenerate(ctx, string(c.dialect), req.Model)

	if err := ValidateRequest(req); err != nil {
		span.OnError(err)
		span.End()
		return nil, err
	}

	wireReq, err := BuildGenerateContentRequest(c.dialect, req)
	if err != nil {
		span.OnError(err)
		span.End()
		return nil, err
	}

	url, err := c.buildURL(req.Model, "streamGenerateContent", "alt=sse", opts)
	if err != nil {
		span.OnError(err)
		span.End()
		return nil, NewInvalidConfigError(err.Error())
	}

	resp, err := c.send(ctx, "POST", url, wireReq, opts)
	if err != nil {
		span.OnError(err)
		span.End()
		return nil, err
	}

	outC := make(chan *GenerateResponse, 4)
	errC := make(chan error, 1)

	go func() {
		defer resp.Body.Close()
		defer close(outC)
		defer close(errC)
		defer span.End()

		reader := sse.NewReader(resp.Body)
		first := true
		for {
			ev, ok, err := reader.Next()
			if err != nil {
				span.OnError(err)
				errC <- NewNetworkError(err)
				return
			}
			if !ok {
				return
			}
			if ev.Done() {
				return
			}

			var wireResp wire.GenerateContentResponse
			if err := json.Unmarshal([]byte(ev.Data), &wireResp); err != nil {
				errC <- NewParseError(fmt.Sprintf("decoding SSE frame: %s", err))
				return
			}
			canonical, err := ParseGenerateContentResponse(&wireResp)
			if err != nil {
				errC <- err
				return
			}
			if first {
				span.OnFirstChunk()
				first = false
			}
			select {
			case outC <- canonical:
			case <-ctx.Done():
				return
			}
		}
	}()

	return stream.New[*GenerateResponse](outC, errC), nil
}
