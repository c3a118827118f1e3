package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"sync"

	"golang.org/x/oauth2"
)

// OAuth is the refresh-token-cache Credential Source variant: a token
// source backed by golang.org/x/oauth2, refreshed when the cached access
// token is expired or absent, serialised by a mutex so concurrent header
// requests single-flight the refresh.
type OAuth struct {
	Config    *oauth2.Config
	CachePath string // token cache file, path supplied by the caller

	mu     sync.Mutex
	source oauth2.TokenSource
}

// NewOAuth constructs an OAuth credential source from a config and an
// on-disk token cache path containing a previously obtained refresh token.
func NewOAuth(config *oauth2.Config, cachePath string) *OAuth {
	return &OAuth{Config: config, CachePath: cachePath}
}

func (o *OAuth) loadCachedToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(o.CachePath)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

func (o *OAuth) saveToken(tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	return os.WriteFile(o.CachePath, data, 0o600)
}

func (o *OAuth) Headers(ctx context.Context) (http.Header, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.source == nil {
		tok, err := o.loadCachedToken()
		if err != nil {
			return nil, NewAuthError(ctx, err)
		}
		o.source = o.Config.TokenSource(ctx, tok)
	}

	tok, err := o.source.Token()
	if err != nil {
		return nil, NewAuthError(ctx, err)
	}
	if err := o.saveToken(tok); err != nil {
		return nil, NewAuthError(ctx, err)
	}

	h := http.Header{}
	tok.SetAuthHeader(&http.Request{Header: h})
	return h, nil
}

func (o *OAuth) IsAPIKey() bool { return false }

// NewAuthError is a small local helper so this package does not import
// the root genai package (which would create an import cycle); the root
// Client wraps any error it sees from a Source.Headers call into
// genai.NewAuthError.
func NewAuthError(_ context.Context, err error) error {
	return &authError{err: err}
}

type authError struct{ err error }

func (e *authError) Error() string { return "oauth: " + e.err.Error() }
func (e *authError) Unwrap() error { return e.err }
