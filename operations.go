package genai

import (
	"context"
	"fmt"
	"time"

	"github.com/google-gemini/genai-go/internal/dialect"
)

// operationWire is the shared on-wire Operation envelope every
// long-running-operation endpoint (media generation, imports, uploads)
// returns. Video-generation responses are nested under a
// generateVideoResponse envelope on the Gemini-API dialect.
type operationWire struct {
	Name     string         `json:"name"`
	Done     bool           `json:"done,omitempty"`
	Response map[string]any `json:"response,omitempty"`
	Error    map[string]any `json:"error,omitempty"`
}

// unwrapVideoResponse unwraps a generateVideoResponse envelope from an
// operation's response map when present.
func unwrapVideoResponse(d dialect.Dialect, response map[string]any) map[string]any {
	if d != dialect.GeminiAPI || response == nil {
		return response
	}
	if nested, ok := response["generateVideoResponse"].(map[string]any); ok {
		return nested
	}
	return response
}

func (w operationWire) toOperation(d dialect.Dialect) *Operation {
	return &Operation{
		Name:     w.Name,
		Done:     w.Done,
		Response: unwrapVideoResponse(d, w.Response),
		Error:    w.Error,
	}
}

// operationNamePrefix is the fully-qualified resource prefix Operations
// normalises bare ids into.
const operationNamePrefix = "operations/"

// GetOperation polls a long-running operation by name (the Operations
// service), unwrapping a video-generation envelope when present.
func (c *Client) GetOperation(ctx context.Context, name string) (*Operation, error) {
	qualified, err := dialect.NormalizeResourceName(name, operationNamePrefix)
	if err != nil {
		return nil, NewInvalidConfigError(err.Error())
	}
	getURL, err := c.buildResourceURL(qualified, nil)
	if err != nil {
		return nil, NewInvalidConfigError(err.Error())
	}
	wireResp, err := doJSON[operationWire](ctx, c, "GET", getURL, nil, nil)
	if err != nil {
		return nil, err
	}
	return wireResp.toOperation(c.dialect), nil
}

// CancelOperation cancels a long-running operation; the endpoint
// returns an empty body, so success is reported by the absence of an
// error.
func (c *Client) CancelOperation(ctx context.Context, name string) error {
	qualified, err := dialect.NormalizeResourceName(name, operationNamePrefix)
	if err != nil {
		return NewInvalidConfigError(err.Error())
	}
	cancelURL, err := c.buildResourceURL(qualified+":cancel", nil)
	if err != nil {
		return NewInvalidConfigError(err.Error())
	}
	resp, err := c.send(ctx, "POST", cancelURL, nil, nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// DeleteOperation deletes a long-running operation's bookkeeping record.
func (c *Client) DeleteOperation(ctx context.Context, name string) error {
	qualified, err := dialect.NormalizeResourceName(name, operationNamePrefix)
	if err != nil {
		return NewInvalidConfigError(err.Error())
	}
	deleteURL, err := c.buildResourceURL(qualified, nil)
	if err != nil {
		return NewInvalidConfigError(err.Error())
	}
	resp, err := c.send(ctx, "DELETE", deleteURL, nil, nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// WaitOperationConfig configures WaitOperation's poll loop.
type WaitOperationConfig struct {
	PollInterval time.Duration
	Timeout      *time.Duration
}

// WaitOperation polls GetOperation until Done is true or the configured
// timeout elapses, the same poll-until-terminal shape WaitForActive uses
// for Files.
func (c *Client) WaitOperation(ctx context.Context, name string, cfg WaitOperationConfig) (*Operation, error) {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	start := time.Now()
	for {
		op, err := c.GetOperation(ctx, name)
		if err != nil {
			return nil, err
		}
		if op.Done {
			if op.Error != nil {
				return op, NewAPIError(500, fmt.Sprintf("operation %s failed: %v", op.Name, op.Error))
			}
			return op, nil
		}

		if cfg.Timeout != nil && time.Since(start) >= *cfg.Timeout {
			return nil, NewTimeoutError(fmt.Sprintf("timed out waiting for operation %s", name))
		}

		select {
		case <-ctx.Done():
			return nil, NewTimeoutError(ctx.Err().Error())
		case <-time.After(cfg.PollInterval):
		}
	}
}
