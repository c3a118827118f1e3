package genai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
)

func decodeTokenBytes(encoded string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(encoded)
}

// Estimator computes a token count for an ordered Content sequence
// entirely client-side. genai/tokenizer's Heuristic and Subword types
// satisfy this interface without genai importing that package, avoiding
// an import cycle (tokenizer depends on genai's Content/Part types, so
// the dependency can only run one way).
type Estimator interface {
	EstimateTokens(contents []Content) int
}

// CountTokensConfig carries the same system-instruction/tools/generation
// config a generate call would, so a count reflects what a real request
// would actually send over the wire.
type CountTokensConfig struct {
	SystemInstruction *Content
	Tools             []Tool
	GenerationConfig  *GenerationConfig
}

// CountTokensResponse is the count-tokens result.
type CountTokensResponse struct {
	TotalTokens int
}

type countTokensWire struct {
	TotalTokens int `json:"totalTokens"`
}

// CountTokens counts the tokens a model-scoped request would consume. If
// estimator is non-nil, the count is produced locally and the network is
// never touched; otherwise a real countTokens call is issued.
func (c *Client) CountTokens(ctx context.Context, model string, contents []Content, cfg CountTokensConfig, estimator Estimator) (*CountTokensResponse, error) {
	if estimator != nil {
		return &CountTokensResponse{TotalTokens: estimator.EstimateTokens(contents)}, nil
	}

	req := &GenerateRequest{
		Model:             model,
		Contents:          contents,
		SystemInstruction: cfg.SystemInstruction,
		Tools:             cfg.Tools,
		GenerationConfig:  cfg.GenerationConfig,
	}
	wireReq, err := BuildGenerateContentRequest(c.dialect, req)
	if err != nil {
		return nil, err
	}

	url, err := c.buildURL(model, "countTokens", "", nil)
	if err != nil {
		return nil, NewInvalidConfigError(err.Error())
	}
	wireResp, err := doJSON[countTokensWire](ctx, c, "POST", url, wireReq, nil)
	if err != nil {
		return nil, err
	}
	return &CountTokensResponse{TotalTokens: wireResp.TotalTokens}, nil
}

// TokensInfo is one Part's worth of token/byte alignment, mirroring the
// computeTokens response shape.
type TokensInfo struct {
	Role     string
	TokenIDs []int64
	Tokens   [][]byte
}

// ComputeTokensResponse carries one TokensInfo entry per text-bearing
// Part the server tokenized.
type ComputeTokensResponse struct {
	TokensInfo []TokensInfo
}

type tokensInfoWire struct {
	Role     string   `json:"role,omitempty"`
	TokenIDs []int64  `json:"tokenIds,omitempty"`
	Tokens   []string `json:"tokens,omitempty"` // base64
}

// ComputeTokens issues the Vertex-only remote token/byte breakdown
// request. Unlike CountTokens, there
// is no local-estimator short-circuit here: only genai/tokenizer.Subword
// can produce this breakdown offline, and it does so through its own
// ComputeTokens method rather than through the Client.
func (c *Client) ComputeTokens(ctx context.Context, model string, contents []Content) (*ComputeTokensResponse, error) {
	if err := c.checkResourceAvailable("computeTokens"); err != nil {
		return nil, err
	}

	wireReq, err := BuildGenerateContentRequest(c.dialect, &GenerateRequest{Model: model, Contents: contents})
	if err != nil {
		return nil, err
	}

	url, err := c.buildURL(model, "computeTokens", "", nil)
	if err != nil {
		return nil, NewInvalidConfigError(err.Error())
	}
	resp, err := c.send(ctx, "POST", url, wireReq, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewNetworkError(err)
	}

	var value struct {
		TokensInfo []tokensInfoWire `json:"tokensInfo"`
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, NewParseError(fmt.Sprintf("decoding compute tokens response: %s", err))
	}

	out := &ComputeTokensResponse{}
	for _, w := range value.TokensInfo {
		info := TokensInfo{Role: w.Role, TokenIDs: w.TokenIDs}
		for _, tok := range w.Tokens {
			decoded, err := decodeTokenBytes(tok)
			if err != nil {
				return nil, NewParseError(fmt.Sprintf("decoding compute tokens response: %s", err))
			}
			info.Tokens = append(info.Tokens, decoded)
		}
		out.TokensInfo = append(out.TokensInfo, info)
	}
	return out, nil
}
