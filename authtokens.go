package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// AuthToken is the ephemeral-token resource, available on the Gemini-API
// dialect only. It is the `authorization: Token <ephemeral>` credential
// a Live session uses for BidiGenerateContentConstrained connections.
type AuthToken struct {
	Name                 string
	ExpireTime           string
	NewSessionExpireTime string
}

type authTokenWire struct {
	Name                 string `json:"name,omitempty"`
	ExpireTime           string `json:"expireTime,omitempty"`
	NewSessionExpireTime string `json:"newSessionExpireTime,omitempty"`
}

func (t *AuthToken) fromWire(w authTokenWire) {
	t.Name = w.Name
	t.ExpireTime = w.ExpireTime
	t.NewSessionExpireTime = w.NewSessionExpireTime
}

// LiveConnectConstraints mirrors the subset of a Live setup an ephemeral
// token can lock a session to; it is serialized into the
// bidiGenerateContentSetup body field and its populated leaves drive the
// CreateAuthToken field mask.
type LiveConnectConstraints struct {
	Model             string
	GenerationConfig  map[string]any
	SystemInstruction map[string]any
	Tools             []map[string]any
}

func (c LiveConnectConstraints) toSetupMap() map[string]any {
	setup := map[string]any{}
	if c.Model != "" {
		setup["model"] = c.Model
	}
	if c.GenerationConfig != nil {
		setup["generationConfig"] = c.GenerationConfig
	}
	if c.SystemInstruction != nil {
		setup["systemInstruction"] = c.SystemInstruction
	}
	if c.Tools != nil {
		setup["tools"] = c.Tools
	}
	return setup
}

// fieldMaskPaths expands a nested map into "parent.child" dotted paths,
// one per populated leaf, walked in a stable alphabetical pre-order at
// each nesting level so the mask is deterministic across runs.
func fieldMaskPaths(prefix string, value any) []string {
	m, ok := value.(map[string]any)
	if !ok {
		if prefix == "" {
			return nil
		}
		return []string{prefix}
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var paths []string
	for _, k := range keys {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		paths = append(paths, fieldMaskPaths(path, m[k])...)
	}
	return paths
}

// CreateAuthTokenConfig carries the creation body for an ephemeral token.
type CreateAuthTokenConfig struct {
	ExpireTime           string
	NewSessionExpireTime string
	Uses                 *int
	Constraints          *LiveConnectConstraints
}

// CreateAuthToken issues an ephemeral token scoped to cfg.Constraints.
// Ephemeral tokens must be issued under API version v1alpha, so that
// version is forced regardless of the client default. The request field
// mask is built by expanding the bidiGenerateContentSetup map into
// "parent.child" tokens.
func (c *Client) CreateAuthToken(ctx context.Context, cfg CreateAuthTokenConfig) (*AuthToken, error) {
	if err := c.checkResourceAvailable("authTokens"); err != nil {
		return nil, err
	}

	body := map[string]any{}
	if cfg.ExpireTime != "" {
		body["expireTime"] = cfg.ExpireTime
	}
	if cfg.NewSessionExpireTime != "" {
		body["newSessionExpireTime"] = cfg.NewSessionExpireTime
	}
	if cfg.Uses != nil {
		body["uses"] = *cfg.Uses
	}

	var mask []string
	if cfg.Constraints != nil {
		setup := cfg.Constraints.toSetupMap()
		body["bidiGenerateContentSetup"] = setup
		for _, path := range fieldMaskPaths("", setup) {
			mask = append(mask, "bidiGenerateContentSetup."+path)
		}
	}
	if len(mask) > 0 {
		body["fieldMask"] = joinCommaPaths(mask)
	}

	createURL, err := c.buildResourceURL("authTokens", &HTTPOptions{APIVersion: "v1alpha"})
	if err != nil {
		return nil, NewInvalidConfigError(err.Error())
	}

	resp, err := c.send(ctx, "POST", createURL, body, &HTTPOptions{APIVersion: "v1alpha"})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewNetworkError(err)
	}
	var w authTokenWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, NewParseError(fmt.Sprintf("decoding auth token: %s", err))
	}
	var token AuthToken
	token.fromWire(w)
	return &token, nil
}

func joinCommaPaths(paths []string) string {
	out := ""
	for i, p := range paths {
		if i > 0 {
			out += ","
		}
		out += p
	}
	return out
}
