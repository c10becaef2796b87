package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultTimeout bounds every outbound request, including the refresh call.
	DefaultTimeout = 30 * time.Second

	// DefaultRefreshPath is the token refresh endpoint relative to the base URL.
	DefaultRefreshPath = "/auth/refresh"
)

// TokenPair is a credential pair as issued by the login and refresh endpoints.
// Expiry fields are zero when the server did not report them.
type TokenPair struct {
	AccessToken   string
	RefreshToken  string
	AccessExpiry  time.Time
	RefreshExpiry time.Time
}

// TokenStore is the persistent credential storage the client reads before every call.
// Implementations should return an empty string rather than block when storage is unavailable.
type TokenStore interface {
	AccessToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) (string, error)
	SetTokens(ctx context.Context, tokens TokenPair) error
	Clear(ctx context.Context) error
}

// Client issues JSON requests against the HR API with a bearer token and
// recovers from expired access tokens with one coordinated refresh.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	store         TokenStore
	timeout       time.Duration
	refreshPath   string
	refreshMethod string
	limiter       *RateLimiter

	mu         sync.Mutex
	state      refreshState
	generation uint64
	waiters    []chan error
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request deadline. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRefreshEndpoint overrides the refresh endpoint method (GET or POST) and path.
func WithRefreshEndpoint(method, path string) Option {
	return func(c *Client) {
		if method != "" {
			c.refreshMethod = strings.ToUpper(method)
		}
		if path != "" {
			c.refreshPath = path
		}
	}
}

// WithRateLimit caps outbound requests per second. Zero disables limiting.
func WithRateLimit(requestsPerSecond float64) Option {
	return func(c *Client) {
		c.limiter = NewRateLimiter(requestsPerSecond)
	}
}

// New creates a Client for baseURL. store may be nil for a client that only
// issues unauthenticated requests.
func New(baseURL string, store TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient:    &http.Client{},
		store:         store,
		timeout:       DefaultTimeout,
		refreshPath:   DefaultRefreshPath,
		refreshMethod: http.MethodPost,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// Store returns the token store the client reads from.
func (c *Client) Store() TokenStore { return c.store }

// Query holds query parameters. Entries whose value is nil (or a nil pointer) are skipped.
type Query map[string]any

// Request describes one API call.
type Request struct {
	Method string
	Path   string
	Query  Query
	Body   any
	NoAuth bool
}

// RequestOption adjusts a Request built by Get, Post, Put or Delete.
type RequestOption func(*Request)

// WithoutAuth sends the request without a bearer token. A 401 response is then
// returned as an APIError and never triggers a refresh.
func WithoutAuth() RequestOption {
	return func(r *Request) { r.NoAuth = true }
}

// attempt is the outcome of a single round trip.
type attempt struct {
	env        *Envelope
	status     int
	generation uint64
}

// Do sends req and returns the parsed envelope. A 401 on an authenticated
// request runs the refresh protocol and replays the request once.
func (c *Client) Do(ctx context.Context, req Request) (*Envelope, error) {
	body, err := encodeBody(req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body for %s %s: %w", req.Method, req.Path, err)
	}

	res, err := c.send(ctx, req, body)
	if req.NoAuth || res.status != http.StatusUnauthorized {
		return res.env, err
	}

	log.Debug().Str("method", req.Method).Str("path", req.Path).Msg("Access token rejected, refreshing")
	if err := c.awaitRefresh(ctx, res.generation); err != nil {
		return nil, err
	}

	res, err = c.send(ctx, req, body)
	return res.env, err
}

// send performs one round trip under the client timeout. The token is read from
// the store immediately before the call.
func (c *Client) send(ctx context.Context, req Request, body []byte) (attempt, error) {
	res := attempt{generation: c.currentGeneration()}

	if err := c.limiter.Wait(ctx); err != nil {
		return res, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}

	urlStr, err := c.buildURL(req.Path, req.Query)
	if err != nil {
		return res, fmt.Errorf("failed to build URL for %s: %w", req.Path, err)
	}

	var token string
	if !req.NoAuth {
		token = c.readToken(ctx, "access")
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(reqCtx, req.Method, urlStr, reader)
	if err != nil {
		log.Error().Err(err).Str("method", req.Method).Str("url", urlStr).Msg("Failed to create HTTP request object")
		return res, err
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	log.Debug().Str("method", req.Method).Str("url", urlStr).Str("request_id", requestID).Msg("Sending HTTP request")
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return res, c.transportError(ctx, reqCtx, req, err)
	}
	defer resp.Body.Close()

	res.status = resp.StatusCode
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return res, c.transportError(ctx, reqCtx, req, err)
	}

	if resp.StatusCode >= 400 {
		log.Debug().Str("method", req.Method).Str("url", urlStr).Int("status", resp.StatusCode).Str("request_id", requestID).Msg("HTTP request returned error status")
		return res, newAPIError(resp.StatusCode, errorMessage(respBody))
	}

	env, err := parseEnvelope(respBody)
	if err != nil {
		log.Error().Err(err).Str("body_preview", string(respBody[:min(len(respBody), 200)])).Msg("Failed to parse response envelope")
		return res, fmt.Errorf("failed to parse response from %s %s: %w", req.Method, req.Path, err)
	}
	if !env.Success {
		return res, newAPIError(resp.StatusCode, env.Message)
	}

	log.Debug().Str("method", req.Method).Str("url", urlStr).Int("status", resp.StatusCode).Str("request_id", requestID).Msg("HTTP request successful")
	res.env = env
	return res, nil
}

// transportError classifies a failure where no usable response was received.
func (c *Client) transportError(ctx, reqCtx context.Context, req Request, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.Path, ctxErr)
	}
	var netErr net.Error
	if errors.Is(reqCtx.Err(), context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		log.Warn().Str("method", req.Method).Str("path", req.Path).Dur("timeout", c.timeout).Msg("HTTP request timed out")
		return &TimeoutError{Method: req.Method, Path: req.Path, Timeout: c.timeout}
	}
	log.Warn().Err(err).Str("method", req.Method).Str("path", req.Path).Msg("HTTP request failed")
	return &NetworkError{Method: req.Method, Path: req.Path, Err: err}
}

// readToken returns "" when the store is missing, failing or empty.
func (c *Client) readToken(ctx context.Context, kind string) string {
	if c.store == nil {
		return ""
	}
	var (
		token string
		err   error
	)
	if kind == "refresh" {
		token, err = c.store.RefreshToken(ctx)
	} else {
		token, err = c.store.AccessToken(ctx)
	}
	if err != nil {
		log.Warn().Err(err).Str("kind", kind).Msg("Failed to read token from store")
		return ""
	}
	return token
}

func (c *Client) buildURL(path string, query Query) (string, error) {
	u, err := url.Parse(c.baseURL + "/" + strings.TrimLeft(path, "/"))
	if err != nil {
		return "", err
	}
	if values := query.values(); len(values) > 0 {
		q := u.Query()
		for k, vs := range values {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (q Query) values() url.Values {
	values := url.Values{}
	for k, v := range q {
		if v == nil {
			continue
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				continue
			}
			v = rv.Elem().Interface()
		}
		switch val := v.(type) {
		case []string:
			for _, s := range val {
				values.Add(k, s)
			}
		case time.Time:
			values.Add(k, val.Format(time.RFC3339))
		default:
			values.Add(k, fmt.Sprint(val))
		}
	}
	return values
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	if raw, ok := body.(json.RawMessage); ok {
		return raw, nil
	}
	return json.Marshal(body)
}
