package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google-gemini/genai-go/internal/dialect"
)

// CachedContent is the Caches resource: server-side cached prefix
// context a model request can reference by name.
type CachedContent struct {
	Name          string
	DisplayName   string
	Model         string
	CreateTime    string
	UpdateTime    string
	ExpireTime    string
	UsageMetadata map[string]any
}

type cachedContentWire struct {
	Name          string         `json:"name,omitempty"`
	DisplayName   string         `json:"displayName,omitempty"`
	Model         string         `json:"model,omitempty"`
	CreateTime    string         `json:"createTime,omitempty"`
	UpdateTime    string         `json:"updateTime,omitempty"`
	ExpireTime    string         `json:"expireTime,omitempty"`
	UsageMetadata map[string]any `json:"usageMetadata,omitempty"`
}

func (cc *CachedContent) fromWire(w cachedContentWire) {
	cc.Name = w.Name
	cc.DisplayName = w.DisplayName
	cc.Model = w.Model
	cc.CreateTime = w.CreateTime
	cc.UpdateTime = w.UpdateTime
	cc.ExpireTime = w.ExpireTime
	cc.UsageMetadata = w.UsageMetadata
}

// CreateCachedContentConfig carries the creation body, including the
// shared contents/system instruction/tools fields Generate uses and the
// Vertex-only kms_key_name relocation rule.
type CreateCachedContentConfig struct {
	Contents          []Content
	SystemInstruction *Content
	Tools             []Tool
	TTL               string
	ExpireTime        string
	DisplayName       string
	KMSKeyName        string
}

// handleKMSKey relocates kms_key_name into encryptionSpec.kmsKeyName on
// Vertex and rejects it on Gemini-API.
func handleKMSKey(d dialect.Dialect, body map[string]any, kmsKeyName string) error {
	if kmsKeyName == "" {
		return nil
	}
	if d != dialect.Vertex {
		return fmt.Errorf("kms_key_name is not supported in Gemini API")
	}
	body["encryptionSpec"] = map[string]any{"kmsKeyName": kmsKeyName}
	return nil
}

// CreateCachedContent creates a CachedContent bound to model.
func (c *Client) CreateCachedContent(ctx context.Context, model string, cfg CreateCachedContentConfig) (*CachedContent, error) {
	qualifiedModel, err := dialect.NormalizeCacheModel(c.dialect, c.project, c.location, model)
	if err != nil {
		return nil, NewInvalidConfigError(err.Error())
	}

	body := map[string]any{"model": qualifiedModel}
	if len(cfg.Contents) > 0 {
		body["contents"] = cfg.Contents
	}
	if cfg.SystemInstruction != nil {
		body["systemInstruction"] = cfg.SystemInstruction
	}
	if len(cfg.Tools) > 0 {
		body["tools"] = cfg.Tools
	}
	if cfg.TTL != "" {
		body["ttl"] = cfg.TTL
	}
	if cfg.ExpireTime != "" {
		body["expireTime"] = cfg.ExpireTime
	}
	if cfg.DisplayName != "" {
		body["displayName"] = cfg.DisplayName
	}
	if err := handleKMSKey(c.dialect, body, cfg.KMSKeyName); err != nil {
		return nil, NewInvalidConfigError(err.Error())
	}

	createURL, err := c.buildResourceURL("cachedContents", nil)
	if err != nil {
		return nil, NewInvalidConfigError(err.Error())
	}
	wireResp, err := doJSON[cachedContentWire](ctx, c, "POST", createURL, body, nil)
	if err != nil {
		return nil, err
	}
	var cached CachedContent
	cached.fromWire(*wireResp)
	return &cached, nil
}

func (c *Client) cachedContentURL(name string) (string, error) {
	qualified, err := dialect.NormalizeCachedContentName(c.dialect, c.project, c.location, name)
	if err != nil {
		return "", err
	}
	return c.buildResourceURL(qualified, nil)
}

// GetCachedContent fetches a CachedContent's metadata by name.
func (c *Client) GetCachedContent(ctx context.Context, name string) (*CachedContent, error) {
	getURL, err := c.cachedContentURL(name)
	if err != nil {
		return nil, NewInvalidConfigError(err.Error())
	}
	wireResp, err := doJSON[cachedContentWire](ctx, c, "GET", getURL, nil, nil)
	if err != nil {
		return nil, err
	}
	var cached CachedContent
	cached.fromWire(*wireResp)
	return &cached, nil
}

// UpdateCachedContentConfig carries the PATCH body; updates are limited
// to refreshing the cache's expiry.
type UpdateCachedContentConfig struct {
	TTL        string
	ExpireTime string
}

// UpdateCachedContent refreshes a CachedContent's TTL or absolute expiry.
func (c *Client) UpdateCachedContent(ctx context.Context, name string, cfg UpdateCachedContentConfig) (*CachedContent, error) {
	patchURL, err := c.cachedContentURL(name)
	if err != nil {
		return nil, NewInvalidConfigError(err.Error())
	}
	body := map[string]any{}
	if cfg.TTL != "" {
		body["ttl"] = cfg.TTL
	}
	if cfg.ExpireTime != "" {
		body["expireTime"] = cfg.ExpireTime
	}
	wireResp, err := doJSON[cachedContentWire](ctx, c, "PATCH", patchURL, body, nil)
	if err != nil {
		return nil, err
	}
	var cached CachedContent
	cached.fromWire(*wireResp)
	return &cached, nil
}

// DeleteCachedContent deletes a CachedContent by name.
func (c *Client) DeleteCachedContent(ctx context.Context, name string) error {
	deleteURL, err := c.cachedContentURL(name)
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

// ListCachedContentsConfig carries pagination parameters.
type ListCachedContentsConfig struct {
	PageSize  *int
	PageToken string
}

// ListCachedContentsResponse is one page of CachedContents.
type ListCachedContentsResponse struct {
	CachedContents []CachedContent
	NextPageToken  string
}

type listCachedContentsWire struct {
	CachedContents []cachedContentWire `json:"cachedContents,omitempty"`
	NextPageToken  string              `json:"nextPageToken,omitempty"`
}

// ListCachedContents returns one page of CachedContents.
func (c *Client) ListCachedContents(ctx context.Context, cfg ListCachedContentsConfig) (*ListCachedContentsResponse, error) {
	listURL, err := c.buildResourceURL("cachedContents", nil)
	if err != nil {
		return nil, NewInvalidConfigError(err.Error())
	}
	listURL = appendListQuery(listURL, cfg.PageSize, cfg.PageToken)

	resp, err := c.send(ctx, "GET", listURL, nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewNetworkError(err)
	}
	var w listCachedContentsWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, NewParseError(fmt.Sprintf("decoding cachedContents list: %s", err))
	}
	out := &ListCachedContentsResponse{NextPageToken: w.NextPageToken}
	for _, cw := range w.CachedContents {
		var cc CachedContent
		cc.fromWire(cw)
		out.CachedContents = append(out.CachedContents, cc)
	}
	return out, nil
}

// AllCachedContents pages through every CachedContent.
func (c *Client) AllCachedContents(ctx context.Context, cfg ListCachedContentsConfig) ([]CachedContent, error) {
	var out []CachedContent
	for {
		page, err := c.ListCachedContents(ctx, cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, page.CachedContents...)
		if page.NextPageToken == "" {
			return out, nil
		}
		cfg.PageToken = page.NextPageToken
	}
}
