package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/exoscope/internal/client/models"
	"github.com/dmitrijs2005/exoscope/internal/common"
	"github.com/dmitrijs2005/exoscope/internal/logging"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

const (
	maxBodySize      = 32 << 20
	defaultRetryBase = 200 * time.Millisecond

	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

type HTTPClient struct {
	baseURL      string
	http         *http.Client
	timeout      time.Duration
	tokens       TokenSource
	unauthorized UnauthorizedHandler
	logger       logging.Logger
	retryBase    time.Duration
}

type Option func(*HTTPClient)

func WithHTTPClient(h *http.Client) Option { return func(c *HTTPClient) { c.http = h } }

func WithTokenSource(ts TokenSource) Option { return func(c *HTTPClient) { c.tokens = ts } }

func WithUnauthorizedHandler(h UnauthorizedHandler) Option {
	return func(c *HTTPClient) { c.unauthorized = h }
}

func WithLogger(l logging.Logger) Option { return func(c *HTTPClient) { c.logger = l } }

// WithRetryBase sets the delay before the single GET retry.
func WithRetryBase(d time.Duration) Option { return func(c *HTTPClient) { c.retryBase = d } }

// NewHTTPClient returns a client for the API rooted at baseURL, for example
// "http://127.0.0.1:8000/api/v1". timeout bounds each attempt.
func NewHTTPClient(baseURL string, timeout time.Duration, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("api url %q must be an absolute http(s) url", baseURL)
	}
	if timeout <= 0 {
		return nil, errors.New("request timeout must be positive")
	}

	c := &HTTPClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      http.DefaultClient,
		timeout:   timeout,
		logger:    logging.Nop(),
		retryBase: defaultRetryBase,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	// anonymous requests carry no token and their 401 means bad credentials.
	anonymous bool
	// explicit requests carry token instead of the TokenSource's.
	explicit bool
	token    string
}

func (c *HTTPClient) do(ctx context.Context, r request, out any) ([]byte, error) {
	token := r.token
	switch {
	case r.anonymous:
		token = ""
	case !r.explicit && c.tokens != nil:
		token = c.tokens.Token()
	}

	var body []byte
	attempt := func(ctx context.Context) error {
		b, err := c.send(ctx, r, token)
		if err != nil {
			if r.method == http.MethodGet && !r.explicit && shouldRetry(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		body = b
		return nil
	}

	var err error
	if r.method == http.MethodGet && !r.explicit {
		err = retry.Do(ctx, retry.WithMaxRetries(1, retry.NewExponential(c.retryBase)), attempt)
	} else {
		err = attempt(ctx)
	}
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && errors.Is(apiErr, ErrUnauthorized) && !r.explicit && c.unauthorized != nil {
			c.unauthorized.InvalidateToken(ctx, token)
		}
		return nil, err
	}

	if out != nil && len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", r.method, r.path, err)
		}
	}
	return body, nil
}

func shouldRetry(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return retryable(apiErr.Status)
	}
	return errors.Is(err, ErrUnavailable)
}

func (c *HTTPClient) send(ctx context.Context, r request, token string) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var rd io.Reader
	if r.body != nil {
		rd = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(reqCtx, r.method, c.endpoint(r.path, r.query), rd)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Warn(ctx, "api request failed", "method", r.method, "path", r.path, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	c.logger.Debug(ctx, "api request",
		"method", r.method, "path", r.path, "status", resp.StatusCode,
		"request_id", requestID, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, errorMessage(body), r.anonymous)
	}
	return body, nil
}

func (c *HTTPClient) endpoint(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// errorMessage extracts a human message from an error body. The API uses
// "message"; validation layers in front of it use "detail", which may be a
// list of field errors.
func errorMessage(body []byte) string {
	var payload struct {
		Message string          `json:"message"`
		Detail  json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return truncate(strings.TrimSpace(string(body)), 200)
	}
	if payload.Message != "" {
		return payload.Message
	}
	if len(payload.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func jsonBody(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return b, nil
}

func filterQuery(f models.ListFilter) url.Values {
	q := url.Values{}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Disposition != "" {
		q.Set("disposition", f.Disposition)
	}
	if f.MinPeriod > 0 {
		q.Set("min_period", strconv.FormatFloat(f.MinPeriod, 'f', -1, 64))
	}
	return q
}
