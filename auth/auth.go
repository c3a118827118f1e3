// Package auth implements the credential sources that return
// authenticated request headers: a static API key, an OAuth
// refresh-token cache, and an injected ADC-style provider.
package auth

import (
	"context"
	"net/http"
	"sync"
)

// Source returns headers to merge into an outbound request. Implementations
// must be safe for concurrent use; the Transport calls Headers once per
// request.
type Source interface {
	// Headers returns the headers to merge into the outbound request.
	// The Client consults the source on every send, static API keys
	// included.
	Headers(ctx context.Context) (http.Header, error)

	// IsAPIKey reports whether this source is a static API key, used by
	// the client builder to enforce "never combine an API key with an
	// OAuth-/ADC-style credential" and "Vertex rejects API-key credentials".
	IsAPIKey() bool
}

// APIKey is the static API key Credential Source variant. Headers builds
// the x-goog-api-key header each time it is called, and the Client calls
// it on every request; nothing is precomputed at build time.
type APIKey struct {
	Key string
}

func (a *APIKey) Headers(_ context.Context) (http.Header, error) {
	h := http.Header{}
	h.Set("x-goog-api-key", a.Key)
	return h, nil
}

func (a *APIKey) IsAPIKey() bool { return true }

// ADC is the injected-provider Credential Source variant: a
// caller-supplied function that is initialized once and cached, mirroring
// "an injected provider that supplies headers on demand, initialised once
// and cached."
type ADC struct {
	Fetch func(ctx context.Context) (http.Header, error)

	mu     sync.Mutex
	cached http.Header
	err    error
	once   bool
}

func (a *ADC) Headers(ctx context.Context) (http.Header, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.once {
		a.cached, a.err = a.Fetch(ctx)
		a.once = true
	}
	return a.cached.Clone(), a.err
}

func (a *ADC) IsAPIKey() bool { return false }
