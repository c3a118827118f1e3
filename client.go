package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/google-gemini/genai-go/auth"
	"github.com/google-gemini/genai-go/internal/dialect"
	"github.com/google-gemini/genai-go/upload"
)

// HTTPOptions is a per-call overlay: replace base URL, replace API
// version, add headers, set timeout, merge an extra body object into the
// JSON body.
type HTTPOptions struct {
	BaseURL    string
	APIVersion string
	Headers    http.Header
	Timeout    time.Duration
	ExtraBody  map[string]any
}

// Client is an HTTP client with auth header injection, per-call option
// overlay, and dialect-aware URL construction. It is safe for concurrent
// use; all resource services share it.
type Client struct {
	httpClient *http.Client
	dialect    dialect.Dialect
	credential auth.Source
	baseURL    string
	apiVersion string
	project    string
	location   string
}

// ClientConfig configures NewClient.
type ClientConfig struct {
	Dialect    Dialect
	Credential auth.Source
	BaseURL    string
	APIVersion string
	Project    string // Vertex only
	Location   string // Vertex only
	HTTPClient *http.Client
}

// NewClient builds a Client. The Vertex dialect rejects API-key
// credentials; the Gemini-API dialect requires a credential at build
// time.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Credential == nil {
		if cfg.Dialect == GeminiAPI || cfg.Dialect == "" {
			return nil, NewInvalidConfigError("Gemini-API dialect requires a credential at build time")
		}
	} else if cfg.Dialect == Vertex && cfg.Credential.IsAPIKey() {
		return nil, NewInvalidConfigError("Vertex dialect rejects API-key credentials")
	}

	d := cfg.Dialect
	if d == "" {
		d = GeminiAPI
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = dialect.DefaultBaseURL(d, cfg.Location)
	}
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = dialect.DefaultAPIVersion(d)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		httpClient: httpClient,
		dialect:    d,
		credential: cfg.Credential,
		baseURL:    baseURL,
		apiVersion: apiVersion,
		project:    cfg.Project,
		location:   cfg.Location,
	}, nil
}

// NewClientFromEnv builds a Client from environment variables:
// credential from GEMINI_API_KEY or GOOGLE_API_KEY (first match wins),
// base URL from GENAI_BASE_URL or GEMINI_BASE_URL, API version from
// GENAI_API_VERSION. A .env file in the working directory is loaded
// first if present.
func NewClientFromEnv() (*Client, error) {
	_ = godotenv.Load()

	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		key = os.Getenv("GOOGLE_API_KEY")
	}
	var cred auth.Source
	if key != "" {
		cred = &auth.APIKey{Key: key}
	}

	baseURL := os.Getenv("GENAI_BASE_URL")
	if baseURL == "" {
		baseURL = os.Getenv("GEMINI_BASE_URL")
	}

	return NewClient(ClientConfig{
		Dialect:    GeminiAPI,
		Credential: cred,
		BaseURL:    baseURL,
		APIVersion: os.Getenv("GENAI_API_VERSION"),
	})
}

func (c *Client) Dialect() Dialect { return c.dialect }

// resolvedOptions merges an HTTPOptions overlay onto the client's base
// configuration; absent fields fall back to the client defaults.
type resolvedOptions struct {
	baseURL    string
	apiVersion string
	headers    http.Header
	timeout    time.Duration
	extraBody  map[string]any
}

func (c *Client) resolve(opts *HTTPOptions) resolvedOptions {
	r := resolvedOptions{baseURL: c.baseURL, apiVersion: c.apiVersion}
	if opts == nil {
		return r
	}
	if opts.BaseURL != "" {
		r.baseURL = opts.BaseURL
	}
	if opts.APIVersion != "" {
		r.apiVersion = opts.APIVersion
	}
	r.headers = opts.Headers
	r.timeout = opts.Timeout
	r.extraBody = opts.ExtraBody
	return r
}

// mergeExtraBody object-merges extra into body. Both sides are already
// objects by construction here; send rejects non-object bodies before
// calling this.
func mergeExtraBody(body map[string]any, extra map[string]any) (map[string]any, error) {
	if len(extra) == 0 {
		return body, nil
	}
	if body == nil {
		body = map[string]any{}
	}
	out := make(map[string]any, len(body)+len(extra))
	for k, v := range body {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out, nil
}

// buildURL constructs the model-scoped URL for method, honoring any
// HTTPOptions base URL / API version overlay.
func (c *Client) buildURL(modelID, method, query string, opts *HTTPOptions) (string, error) {
	r := c.resolve(opts)
	return dialect.BuildURL(c.dialect, r.baseURL, r.apiVersion, c.project, c.location, modelID, method, query)
}

func (c *Client) buildResourceURL(resourcePath string, opts *HTTPOptions) (string, error) {
	r := c.resolve(opts)
	return dialect.BuildResourceURL(c.dialect, r.baseURL, r.apiVersion, c.project, c.location, resourcePath)
}

func (c *Client) buildUploadURL(resourcePath string, opts *HTTPOptions) (string, error) {
	r := c.resolve(opts)
	return dialect.BuildUploadURL(c.dialect, r.baseURL, r.apiVersion, c.project, c.location, resourcePath)
}

// checkResourceAvailable enforces the Gemini-API-only/Vertex-only
// resource table pre-flight, wrapping the dialect package's plain error
// as an InvalidConfig.
func (c *Client) checkResourceAvailable(resource string) error {
	if err := dialect.CheckResourceAvailable(c.dialect, resource); err != nil {
		return NewInvalidConfigError(err.Error())
	}
	return nil
}

// clientDoer adapts Client's credential/telemetry header injection to
// the upload package's transport-agnostic Doer interface, keeping the
// upload state machine decoupled from genai's auth machinery.
type clientDoer struct {
	c   *Client
	ctx context.Context
}

func (d clientDoer) Do(req *http.Request) (*http.Response, error) {
	if d.c.credential != nil {
		headers, err := d.c.credential.Headers(d.ctx)
		if err != nil {
			return nil, NewAuthError(err.Error())
		}
		for k, vs := range headers {
			for _, v := range vs {
				req.Header.Set(k, v)
			}
		}
	}
	req.Header.Set("x-goog-api-client", "genai-go/0.1.0")
	return d.c.httpClient.Do(req)
}

func (c *Client) uploadDoer(ctx context.Context) upload.Doer {
	return clientDoer{c: c, ctx: ctx}
}

// uploadParseErr translates the upload package's (status, body) pair into
// the core's Error taxonomy: a zero status means a protocol violation
// (missing/unexpected header) rather than a non-2xx response.
func uploadParseErr(status int, body string) error {
	if status == 0 {
		return NewParseError(body)
	}
	return NewAPIError(status, strings.TrimSpace(body))
}

// send is the single internal send primitive: it asks the credential
// source for headers (a non-API-key source's headers are merged without
// overriding headers already set; an API key header is set outright), injects a telemetry
// header, applies the HTTPOptions overlay, and issues the request.
// Non-2xx responses are read into a string body and surfaced as an
// APIError; there is no retry.
func (c *Client) send(ctx context.Context, method, url string, body any, opts *HTTPOptions) (*http.Response, error) {
	r := c.resolve(opts)

	var bodyBytes []byte
	if body != nil {
		asMap, ok := body.(map[string]any)
		if !ok {
			raw, err := json.Marshal(body)
			if err != nil {
				return nil, NewSerializationError(err)
			}
			if err := json.Unmarshal(raw, &asMap); err != nil {
				return nil, NewSerializationError(err)
			}
		}
		merged, err := mergeExtraBody(asMap, r.extraBody)
		if err != nil {
			return nil, err
		}
		bodyBytes, err = json.Marshal(merged)
		if err != nil {
			return nil, NewSerializationError(err)
		}
	}

	ctxForReq := ctx
	var cancel context.CancelFunc
	if r.timeout > 0 {
		ctxForReq, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctxForReq, method, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, NewNetworkError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-client", "genai-go/0.1.0")

	if c.credential != nil && !c.credential.IsAPIKey() {
		credHeaders, err := c.credential.Headers(ctx)
		if err != nil {
			return nil, NewAuthError(err.Error())
		}
		for k, vs := range credHeaders {
			for _, v := range vs {
				if req.Header.Get(k) == "" {
					req.Header.Set(k, v)
				}
			}
		}
	} else if c.credential != nil {
		credHeaders, _ := c.credential.Headers(ctx)
		for k, vs := range credHeaders {
			for _, v := range vs {
				req.Header.Set(k, v)
			}
		}
	}

	// The per-call overlay is the caller's own choice, so it wins over
	// the credential/telemetry defaults set above.
	for k, vs := range r.headers {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxForReq.Err() != nil {
			return nil, NewTimeoutError(err.Error())
		}
		return nil, NewNetworkError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(resp.Body)
		return nil, NewAPIError(resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return resp, nil
}

// doJSON sends a JSON request and decodes the JSON response into T.
func doJSON[T any](ctx context.Context, c *Client, method, url string, body any, opts *HTTPOptions) (*T, error) {
	resp, err := c.send(ctx, method, url, body, opts)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewNetworkError(err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, NewParseError(fmt.Sprintf("decoding response: %s", err))
	}
	return &out, nil
}
