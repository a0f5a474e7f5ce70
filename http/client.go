package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wesleyorama2/apibase/metrics"
	"github.com/wesleyorama2/apibase/pkg/uritemplate"
)

// Client is the base for typed API clients: it expands path templates,
// sends JSON requests, follows redirects under a budget, classifies failures
// and records metrics.
// Client is safe for concurrent use by multiple goroutines.
type Client struct {
	config    Config
	base      *url.URL
	header    http.Header
	transport Transport
	templates *uritemplate.Cache
	metrics   metrics.Sink
	logger    Logger

	onResponse ResponseHook
	onError    ErrorHook
}

// NewClient creates a client rooted at baseURL. The scheme must be http or
// https, otherwise an UnsupportedProtocolError is returned before any
// network activity.
//
// Example:
//
//	client, err := http.NewClient("https://api.example.com",
//	    http.WithTimeout(5*time.Second),
//	    http.WithHeader("Authorization", "Bearer token"),
//	)
func NewClient(baseURL string, options ...ClientOption) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("http: invalid base URL %q: %w", baseURL, err)
	}
	switch strings.ToLower(base.Scheme) {
	case "http", "https":
	default:
		return nil, newUnsupportedProtocolError(base.Scheme)
	}

	c := &Client{
		config: Config{
			BaseURL:        baseURL,
			Headers:        make(map[string]string),
			RequestTimeout: DefaultTimeout,
			MaxRedirects:   DefaultMaxRedirects,
		},
		base:       base,
		transport:  &http.Client{CheckRedirect: noFollow},
		templates:  uritemplate.DefaultCache(),
		metrics:    metrics.Nop{},
		logger:     nopLogger{},
		onResponse: PassThrough,
		onError:    Rethrow,
	}

	for _, option := range options {
		option(c)
	}

	if c.config.RequestTimeout <= 0 {
		return nil, fmt.Errorf("http: request timeout must be positive, got %s", c.config.RequestTimeout)
	}
	if c.config.MaxRedirects < 0 {
		return nil, fmt.Errorf("http: max redirects must not be negative, got %d", c.config.MaxRedirects)
	}

	c.header = make(http.Header)
	c.header.Set("Content-Type", "application/json")
	c.header.Set("Accept", "application/json")
	for key, value := range c.config.Headers {
		c.header.Set(key, value)
	}

	return c, nil
}

// Config returns a copy of the client's configuration.
func (c *Client) Config() Config {
	cfg := c.config
	cfg.Headers = maps.Clone(c.config.Headers)
	return cfg
}

// Request performs one logical call: it expands pathTemplate with params,
// sends body as JSON, follows redirects within the client's budget and
// passes the outcome through the response or error hook.
//
// Metrics are recorded exactly once per call, before the hooks run, no
// matter how many redirect hops the call took.
func (c *Client) Request(ctx context.Context, method Method, pathTemplate string, params Params, body any, opts *RequestOptions) (*Result, error) {
	if !method.valid() {
		return nil, fmt.Errorf("http: unsupported method %q", method)
	}
	if opts == nil {
		opts = &RequestOptions{}
	}

	start := time.Now()
	ex := &exchange{
		method:  method,
		header:  mergeHeaders(c.header, opts.Headers),
		timeout: c.config.RequestTimeout,
		url:     pathTemplate,
	}
	if opts.Timeout > 0 {
		ex.timeout = opts.Timeout
	}

	result, err := c.execute(ctx, ex, pathTemplate, params, body)
	total := time.Since(start)
	c.record(ex, pathTemplate, total)

	if err != nil {
		c.logger.Warn("request failed",
			"method", string(method),
			"url", ex.url,
			"kind", string(KindOf(err)),
			"duration", total,
			"error", err,
		)
		onError := c.onError
		if opts.OnError != nil {
			onError = opts.OnError
		}
		return onError(ctx, err, string(method), ex.url)
	}

	result.Timings.Total = total
	c.logger.Debug("request completed",
		"method", string(method),
		"url", result.URL,
		"status", result.StatusCode,
		"redirects", len(result.RedirectURLs),
		"duration", total,
	)

	onResponse := c.onResponse
	if opts.OnResponse != nil {
		onResponse = opts.OnResponse
	}
	return onResponse(ctx, result)
}

// Get is a convenience method for making GET requests.
func (c *Client) Get(ctx context.Context, pathTemplate string, params Params) (*Result, error) {
	return c.Request(ctx, MethodGet, pathTemplate, params, nil, nil)
}

// Post is a convenience method for making POST requests with a body.
func (c *Client) Post(ctx context.Context, pathTemplate string, params Params, body any) (*Result, error) {
	return c.Request(ctx, MethodPost, pathTemplate, params, body, nil)
}

// Put is a convenience method for making PUT requests with a body.
func (c *Client) Put(ctx context.Context, pathTemplate string, params Params, body any) (*Result, error) {
	return c.Request(ctx, MethodPut, pathTemplate, params, body, nil)
}

// Patch is a convenience method for making PATCH requests with a body.
func (c *Client) Patch(ctx context.Context, pathTemplate string, params Params, body any) (*Result, error) {
	return c.Request(ctx, MethodPatch, pathTemplate, params, body, nil)
}

// Delete is a convenience method for making DELETE requests.
func (c *Client) Delete(ctx context.Context, pathTemplate string, params Params) (*Result, error) {
	return c.Request(ctx, MethodDelete, pathTemplate, params, nil, nil)
}

// Head is a convenience method for making HEAD requests.
func (c *Client) Head(ctx context.Context, pathTemplate string, params Params) (*Result, error) {
	return c.Request(ctx, MethodHead, pathTemplate, params, nil, nil)
}

// Options is a convenience method for making OPTIONS requests.
func (c *Client) Options(ctx context.Context, pathTemplate string, params Params) (*Result, error) {
	return c.Request(ctx, MethodOptions, pathTemplate, params, nil, nil)
}

// execute expands the template and starts the redirect chain. Template
// errors are returned as they are.
func (c *Client) execute(ctx context.Context, ex *exchange, pathTemplate string, params Params, body any) (*Result, error) {
	method := string(ex.method)

	path, err := c.templates.Expand(pathTemplate, params)
	if err != nil {
		return nil, err
	}
	ex.url = path

	target, err := resolveURL(c.base, path)
	if err != nil {
		return nil, newRequestError(method, path, err)
	}
	ex.url = target.String()

	if ex.body, err = encodeBody(body); err != nil {
		return nil, newRequestError(method, ex.url, fmt.Errorf("encoding request body: %w", err))
	}

	return c.follow(ctx, ex, target, c.config.MaxRedirects)
}

// follow sends one hop and either finishes the call or recurses on a
// redirect with a strictly smaller budget.
func (c *Client) follow(ctx context.Context, ex *exchange, target *url.URL, budget int) (*Result, error) {
	method := string(ex.method)
	ex.url = target.String()

	resp, raw, err := c.send(ctx, ex, target)
	if err != nil {
		return nil, err
	}

	status := resp.StatusCode
	msg := statusMessage(resp)

	switch {
	case status >= 300 && status < 400:
		location := resp.Header.Get("Location")
		if location == "" {
			return nil, newHTTPError(method, ex.url, status, msg, resp.Header, parseErrorBody(resp.Header, raw))
		}
		next, err := target.Parse(location)
		if err != nil {
			return nil, newHTTPError(method, ex.url, status, msg, resp.Header, parseErrorBody(resp.Header, raw))
		}
		if budget == 0 {
			return nil, newMaxRedirectsError(method, ex.url, ex.redirects)
		}
		ex.redirects = append(ex.redirects, next.String())
		c.logger.Debug("following redirect",
			"method", method,
			"from", ex.url,
			"to", next.String(),
			"status", status,
			"remaining", budget-1,
		)
		return c.follow(ctx, ex, next, budget-1)

	case status < 200 || status >= 300:
		return nil, newHTTPError(method, ex.url, status, msg, resp.Header, parseErrorBody(resp.Header, raw))
	}

	parsed, err := parseBody(ex.method, status, resp.Header, raw)
	if err != nil {
		return nil, newParseError(method, ex.url, status, msg, resp.Header, err)
	}

	return &Result{
		StatusCode:    status,
		StatusMessage: msg,
		Headers:       resp.Header,
		Body:          parsed,
		RawBody:       raw,
		URL:           ex.url,
		RedirectURLs:  ex.redirects,
		Timings:       Timings{Phases: ex.stages},
	}, nil
}

// send performs a single transport call under its own deadline and reads the
// whole body before the deadline is released.
func (c *Client) send(ctx context.Context, ex *exchange, target *url.URL) (*http.Response, []byte, error) {
	method := string(ex.method)

	hopCtx, cancel := context.WithTimeout(ctx, ex.timeout)
	defer cancel()

	timer := newStageTimer()
	ex.status = 0

	var body io.Reader
	if ex.body != nil {
		body = bytes.NewReader(ex.body)
	}
	req, err := http.NewRequestWithContext(timer.trace(hopCtx), method, target.String(), body)
	if err != nil {
		return nil, nil, newRequestError(method, ex.url, err)
	}
	req.Header = ex.header.Clone()

	c.logger.Debug("sending request", "method", method, "url", ex.url)

	resp, err := c.transport.Do(req)
	if err != nil {
		ex.stages = timer.snapshot()
		return nil, nil, classify(ctx, hopCtx, method, ex.url, err)
	}
	ex.status = resp.StatusCode

	// A custom transport may hand back a response without a body.
	var raw []byte
	if resp.Body != nil {
		defer resp.Body.Close()

		readStart := time.Now()
		raw, err = io.ReadAll(resp.Body)
		timer.download(time.Since(readStart))
	}
	ex.stages = timer.snapshot()

	if err != nil {
		if hopCtx.Err() != nil {
			return nil, nil, classify(ctx, hopCtx, method, ex.url, err)
		}
		return nil, nil, newReadError(method, ex.url, resp.StatusCode, err)
	}

	return resp, raw, nil
}

// classify maps a transport failure onto the error taxonomy. Errors that are
// already classified pass through unchanged. A caller deadline that fires
// first is reported like the request timeout; only cancellation is an abort.
func classify(parent, hop context.Context, method, rawURL string, err error) error {
	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	if parentErr := parent.Err(); parentErr != nil {
		if errors.Is(parentErr, context.DeadlineExceeded) {
			return newTimeoutError(method, rawURL, "request", err)
		}
		return newTimeoutError(method, rawURL, "abort", err)
	}
	if hop.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return newTimeoutError(method, rawURL, "request", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newTimeoutError(method, rawURL, "request", err)
	}

	return newRequestError(method, rawURL, err)
}

// record reports the finished call to the metrics sink. The code is the
// status of the last response seen, or metrics.NoResponse.
func (c *Client) record(ex *exchange, pathTemplate string, total time.Duration) {
	code := metrics.NoResponse
	if ex.status > 0 {
		code = ex.status
	}

	c.metrics.ObserveRequest(metrics.RequestObservation{
		Base:     c.config.BaseURL,
		Method:   string(ex.method),
		Path:     pathTemplate,
		Code:     code,
		Duration: total,
	})
	for stage, d := range ex.stages {
		c.metrics.ObserveStage(c.config.BaseURL, string(stage), d)
	}
}
