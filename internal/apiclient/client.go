package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"proptech/portal/internal/logger"
)

// TokenSource supplies bearer tokens and renews them after a 401.
type TokenSource interface {
	// AccessToken returns the current token or "" when anonymous.
	AccessToken() string
	// Refresh exchanges the refresh token for a new access token. On failure
	// the source is expected to drop the session.
	Refresh(ctx context.Context) (string, error)
}

// FilePart is one file field of a multipart request.
type FilePart struct {
	Field    string
	Filename string
	Data     []byte
}

// Multipart is a multipart/form-data body.
type Multipart struct {
	Fields map[string]string
	Files  []FilePart
}

// Request describes one backend call.
type Request struct {
	Method string
	// Path is appended to the client base URL.
	Path  string
	Query url.Values
	// Body is JSON-encoded when set. Ignored if Multipart is set.
	Body      interface{}
	Multipart *Multipart
	// NoAuth suppresses the Authorization header and the refresh cycle.
	NoAuth bool
}

// Response is a 2xx backend response.
type Response struct {
	StatusCode int
	Body       []byte
}

// Client wraps http.Client with bearer auth, the refresh-once policy and an
// outgoing rate limit.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	limiter    *rate.Limiter
	log        *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRateLimit throttles outgoing requests to r per second with burst b.
func WithRateLimit(r float64, b int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(r), b) }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a client rooted at baseURL (e.g. http://localhost:8080/api).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "apiclient")
	return c
}

// WithTokens returns a client sharing transport and limiter with c that
// authenticates with ts.
func (c *Client) WithTokens(ts TokenSource) *Client {
	clone := *c
	clone.tokens = ts
	return &clone
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do executes req. A 401 on an authenticated request triggers exactly one
// token refresh followed by exactly one retry; a second 401 is returned as
// ErrUnauthorized. A failed refresh yields ErrSessionExpired.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	token := ""
	useAuth := !req.NoAuth && c.tokens != nil
	if useAuth {
		token = c.tokens.AccessToken()
	}

	resp, err := c.send(ctx, req, body, contentType, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || !useAuth {
		return finish(req, resp)
	}

	c.log.Debug("access token rejected, refreshing", "method", req.Method, "path", req.Path)
	token, err = c.tokens.Refresh(ctx)
	if err != nil {
		c.log.Warn("token refresh failed", "path", req.Path, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}

	resp, err = c.send(ctx, req, body, contentType, token)
	if err != nil {
		return nil, err
	}
	return finish(req, resp)
}

// JSON performs req and decodes the envelope data into out when out is non-nil.
func (c *Client) JSON(ctx context.Context, req Request, out interface{}) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	env, err := Unwrap(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode %s %s: %w", req.Method, req.Path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, req Request, body []byte, contentType, token string) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Warn("backend request failed", "method", req.Method, "path", req.Path, "error", err)
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	c.log.Debug("backend request", "method", req.Method, "path", req.Path,
		"status", httpResp.StatusCode, "duration", time.Since(start))

	return &Response{StatusCode: httpResp.StatusCode, Body: data}, nil
}

func finish(req Request, resp *Response) (*Response, error) {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	apiErr := &Error{
		Method:     req.Method,
		Path:       req.Path,
		StatusCode: resp.StatusCode,
		Body:       string(resp.Body),
	}
	if env, err := Unwrap(resp.Body); err == nil {
		apiErr.Message = env.Message
	}
	return nil, apiErr
}

func encodeBody(req Request) ([]byte, string, error) {
	if req.Multipart != nil {
		return encodeMultipart(req.Multipart)
	}
	if req.Body == nil {
		return nil, "", nil
	}
	data, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode request body: %w", err)
	}
	return data, "application/json", nil
}

func encodeMultipart(m *Multipart) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, value := range m.Fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", name, err)
		}
	}
	for _, f := range m.Files {
		part, err := w.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create file part %s: %w", f.Filename, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write file part %s: %w", f.Filename, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", errors.Join(errors.New("failed to close multipart body"), err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
