package fmdapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
)

// FetchOptions configures an adapter that opens Data API sessions with a
// FileMaker account.
type FetchOptions struct {
	BaseOptions
	Username string
	Password string
	// TokenStore keeps session tokens. Defaults to an in-process store.
	TokenStore TokenStore
	// TokenKey names the stored token. Defaults to "<server>/<database>".
	TokenKey string
}

// FetchAdapter is an Adapter authenticated with a session token obtained
// from POST /sessions. An expired token is refreshed once per request.
type FetchAdapter struct {
	*httpAdapter
	username string
	password string
	store    TokenStore
	key      string
}

// NewFetchAdapter returns a session-based adapter.
func NewFetchAdapter(opts FetchOptions) (*FetchAdapter, error) {
	if opts.Username == "" {
		return nil, errors.New("fmdapi: username is required")
	}
	if opts.Password == "" {
		return nil, errors.New("fmdapi: password is required")
	}
	h, err := newHTTPAdapter(opts.BaseOptions)
	if err != nil {
		return nil, err
	}
	h.retry = true
	a := &FetchAdapter{
		httpAdapter: h,
		username:    opts.Username,
		password:    opts.Password,
		store:       opts.TokenStore,
		key:         opts.TokenKey,
	}
	if a.store == nil {
		a.store = &memoryTokens{tokens: map[string]string{}}
	}
	if a.key == "" {
		a.key = opts.Server + "/" + opts.Database
	}
	h.token = a.sessionToken
	return a, nil
}

// MustFetchAdapter is like NewFetchAdapter but panics on error.
func MustFetchAdapter(opts FetchOptions) *FetchAdapter {
	a, err := NewFetchAdapter(opts)
	if err != nil {
		panic(err)
	}
	return a
}

func (a *FetchAdapter) sessionToken(ctx context.Context, refresh bool) (string, error) {
	if !refresh {
		token, err := a.store.Token(ctx, a.key)
		if err != nil {
			return "", fmt.Errorf("fmdapi: read stored token: %w", err)
		}
		if token != "" {
			return token, nil
		}
	}
	token, err := a.login(ctx)
	if err != nil {
		return "", err
	}
	if err := a.store.SetToken(ctx, a.key, token); err != nil {
		return "", fmt.Errorf("fmdapi: store token: %w", err)
	}
	return token, nil
}

func (a *FetchAdapter) login(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint("/sessions", nil), http.NoBody)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(a.username, a.password)
	req.Header.Set("Content-Type", "application/json")
	res, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fmdapi: open session: %w", err)
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("fmdapi: read session response: %w", err)
	}
	if ferr := responseError(res.StatusCode, body); ferr != nil {
		return "", ferr
	}
	token := res.Header.Get("X-FM-Data-Access-Token")
	if token == "" {
		return "", errors.New("fmdapi: session response carried no token")
	}
	return token, nil
}

// Disconnect closes the stored session, if any, and clears it from the store.
func (a *FetchAdapter) Disconnect(ctx context.Context) error {
	token, err := a.store.Token(ctx, a.key)
	if err != nil || token == "" {
		return err
	}
	if err := a.do(ctx, http.MethodDelete, "/sessions/"+url.PathEscape(token), nil, nil, nil, token, true); err != nil {
		return err
	}
	return a.store.ClearToken(ctx, a.key)
}

// memoryTokens is the default TokenStore. The tokenstore package offers
// the same behaviour plus persistent stores.
type memoryTokens struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (m *memoryTokens) Token(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[key], nil
}

func (m *memoryTokens) SetToken(_ context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[key] = token
	return nil
}

func (m *memoryTokens) ClearToken(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, key)
	return nil
}
