package fmdapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds a single Data API request when BaseOptions.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// BaseOptions configures the HTTP transport shared by the Otto and Fetch adapters.
type BaseOptions struct {
	// Server is the FileMaker Server host. "https://" is assumed when no scheme is given.
	Server string
	// Database is the hosted file name, without extension.
	Database string
	// HTTPClient overrides http.DefaultClient.
	HTTPClient *http.Client
	// Timeout bounds each request. Defaults to DefaultTimeout.
	Timeout time.Duration
	// RequestsPerSecond throttles outgoing requests. Zero disables throttling.
	RequestsPerSecond float64
	// Burst is the limiter burst size; defaults to 1 when throttling.
	Burst int
}

// tokenFunc returns the bearer token for a request. refresh asks for a
// fresh token rather than a stored one.
type tokenFunc func(ctx context.Context, refresh bool) (string, error)

// httpAdapter implements Adapter over the Data API REST endpoints.
type httpAdapter struct {
	base    *url.URL
	client  *http.Client
	timeout time.Duration
	limiter *rate.Limiter
	token   tokenFunc
	// retry allows one retry with a fresh token on CodeInvalidToken.
	retry bool
}

func newHTTPAdapter(opts BaseOptions) (*httpAdapter, error) {
	if opts.Database == "" {
		return nil, fmt.Errorf("fmdapi: database name is required")
	}
	if opts.Server == "" {
		return nil, fmt.Errorf("fmdapi: server is required")
	}
	server := opts.Server
	if !strings.Contains(server, "://") {
		server = "https://" + server
	}
	base, err := url.Parse(strings.TrimRight(server, "/") + "/fmi/data/vLatest/databases/" + url.PathEscape(opts.Database))
	if err != nil {
		return nil, fmt.Errorf("fmdapi: parse server url: %w", err)
	}
	a := &httpAdapter{
		base:    base,
		client:  opts.HTTPClient,
		timeout: opts.Timeout,
	}
	if a.client == nil {
		a.client = http.DefaultClient
	}
	if a.timeout <= 0 {
		a.timeout = DefaultTimeout
	}
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		a.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return a, nil
}

// endpoint returns the absolute URL of a path below the database root.
func (a *httpAdapter) endpoint(path string, query map[string]string) string {
	u := *a.base
	u.Path = a.base.Path + path
	u.RawPath = ""
	if len(query) > 0 {
		values := url.Values{}
		for k, v := range query {
			values.Set(k, v)
		}
		u.RawQuery = values.Encode()
	}
	return u.String()
}

// request sends one Data API call and decodes its "response" member into out.
func (a *httpAdapter) request(ctx context.Context, method, path string, query map[string]string, body, out any) error {
	return a.do(ctx, method, path, query, body, out, "", false)
}

// do performs the call. A non-empty token bypasses the adapter's token source.
func (a *httpAdapter) do(ctx context.Context, method, path string, query map[string]string, body, out any, token string, retried bool) error {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	if token == "" {
		var err error
		if token, err = a.token(ctx, retried); err != nil {
			return err
		}
	}
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("fmdapi: encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}
	rctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(rctx, method, a.endpoint(path, query), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	res, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("fmdapi: %s %s: %w", method, path, err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("fmdapi: read response: %w", err)
	}
	if ferr := responseError(res.StatusCode, data); ferr != nil {
		if ferr.Code == CodeInvalidToken && a.retry && !retried {
			return a.do(ctx, method, path, query, body, out, "", true)
		}
		return ferr
	}
	if out == nil {
		return nil
	}
	raw := gjson.GetBytes(data, "response")
	if !raw.Exists() {
		return nil
	}
	if err := json.Unmarshal([]byte(raw.Raw), out); err != nil {
		return fmt.Errorf("fmdapi: decode response: %w", err)
	}
	return nil
}

// responseError extracts the first Data API message of a failed response.
// A body without messages falls back to the HTTP status as the code.
func responseError(status int, body []byte) *Error {
	code := gjson.GetBytes(body, "messages.0.code").String()
	if status < 300 && (code == "" || code == CodeOK) {
		return nil
	}
	if code == "" {
		code = strconv.Itoa(status)
	}
	msg := gjson.GetBytes(body, "messages.0.message").String()
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &Error{Code: code, Message: msg, Status: status}
}

func layoutPath(layout string) string {
	return "/layouts/" + url.PathEscape(layout)
}

func recordPath(layout string, id int) string {
	return layoutPath(layout) + "/records/" + strconv.Itoa(id)
}

func (a *httpAdapter) List(ctx context.Context, layout string, p ListParams) (*GetResponse, error) {
	q := p.query()
	p.PortalRanges.portalQuery(q)
	out := &GetResponse{}
	if err := a.request(ctx, http.MethodGet, layoutPath(layout)+"/records", q, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *httpAdapter) Get(ctx context.Context, layout string, recordID int, p GetParams) (*GetResponse, error) {
	q := p.ScriptParams.values()
	if p.LayoutResponse != "" {
		q["layout.response"] = p.LayoutResponse
	}
	p.PortalRanges.portalQuery(q)
	out := &GetResponse{}
	if err := a.request(ctx, http.MethodGet, recordPath(layout, recordID), q, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *httpAdapter) Find(ctx context.Context, layout string, p FindParams) (*GetResponse, error) {
	q := map[string]string{}
	p.PortalRanges.portalQuery(q)
	out := &GetResponse{}
	if err := a.request(ctx, http.MethodPost, layoutPath(layout)+"/_find", q, p.body(), out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *httpAdapter) Create(ctx context.Context, layout string, fieldData map[string]any, p CreateParams) (*CreateResponse, error) {
	out := &CreateResponse{}
	if err := a.request(ctx, http.MethodPost, layoutPath(layout)+"/records", nil, writeBody(fieldData, p, 0), out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *httpAdapter) Update(ctx context.Context, layout string, recordID int, fieldData map[string]any, p UpdateParams) (*UpdateResponse, error) {
	out := &UpdateResponse{}
	if err := a.request(ctx, http.MethodPatch, recordPath(layout, recordID), nil, writeBody(fieldData, p.CreateParams, p.ModID), out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *httpAdapter) Delete(ctx context.Context, layout string, recordID int, p ScriptParams) (*DeleteResponse, error) {
	out := &DeleteResponse{}
	if err := a.request(ctx, http.MethodDelete, recordPath(layout, recordID), p.values(), nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *httpAdapter) LayoutMetadata(ctx context.Context, layout string) (*LayoutMetadata, error) {
	out := &LayoutMetadata{}
	if err := a.request(ctx, http.MethodGet, layoutPath(layout), nil, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func writeBody(fieldData map[string]any, p CreateParams, modID int) map[string]any {
	body := map[string]any{"fieldData": fieldData}
	if len(p.PortalData) > 0 {
		body["portalData"] = p.PortalData
	}
	if modID > 0 {
		body["modId"] = strconv.Itoa(modID)
	}
	for k, v := range p.ScriptParams.values() {
		body[k] = v
	}
	return body
}
