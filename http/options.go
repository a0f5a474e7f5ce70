package http

import (
	"net/http"
	"time"

	"github.com/wesleyorama2/apibase/metrics"
	"github.com/wesleyorama2/apibase/pkg/uritemplate"
)

const (
	// DefaultTimeout bounds each transport call unless overridden
	DefaultTimeout = 10 * time.Second

	// DefaultMaxRedirects is the redirect budget of one logical call
	DefaultMaxRedirects = 5
)

// Config is the immutable configuration of a Client.
type Config struct {
	BaseURL        string
	Headers        map[string]string
	RequestTimeout time.Duration
	MaxRedirects   int
}

// Transport performs one HTTP exchange. *http.Client satisfies it; it must
// not follow redirects itself if the client's redirect budget should apply.
type Transport interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientOption is a function that configures a Client.
type ClientOption func(*Client)

// WithHeader adds a default header to all requests made by this client.
// Headers set on individual requests will override these defaults.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.config.Headers[key] = value
	}
}

// WithHeaders adds several default headers.
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		for key, value := range headers {
			c.config.Headers[key] = value
		}
	}
}

// WithTimeout sets the deadline armed for every transport call.
// The default timeout is 10 seconds; it must be positive.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.config.RequestTimeout = timeout
	}
}

// WithMaxRedirects sets how many redirects one call may follow (default 5).
// Zero disables redirect following: the first 3xx fails with MaxRedirectsError.
func WithMaxRedirects(n int) ClientOption {
	return func(c *Client) {
		c.config.MaxRedirects = n
	}
}

// WithHTTPClient sets a custom *http.Client as the transport. The client is
// copied and its redirect following disabled. A nil client is ignored.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient == nil {
			return
		}
		hc := *httpClient
		hc.CheckRedirect = noFollow
		c.transport = &hc
	}
}

// WithTransport sets an arbitrary transport, typically a test double.
func WithTransport(t Transport) ClientOption {
	return func(c *Client) {
		c.transport = t
	}
}

// WithMetrics sends request measurements to the given sinks.
func WithMetrics(sinks ...metrics.Sink) ClientOption {
	return func(c *Client) {
		c.metrics = metrics.Tee(sinks...)
	}
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(logger Logger) ClientOption {
	return func(c *Client) {
		if logger == nil {
			logger = nopLogger{}
		}
		c.logger = logger
	}
}

// WithResponseHook sets the hook applied to every successful result.
func WithResponseHook(hook ResponseHook) ClientOption {
	return func(c *Client) {
		if hook != nil {
			c.onResponse = hook
		}
	}
}

// WithErrorHook sets the hook applied to every classified failure.
func WithErrorHook(hook ErrorHook) ClientOption {
	return func(c *Client) {
		if hook != nil {
			c.onError = hook
		}
	}
}

// WithTemplateCache shares a parsed template cache between clients.
func WithTemplateCache(cache *uritemplate.Cache) ClientOption {
	return func(c *Client) {
		if cache != nil {
			c.templates = cache
		}
	}
}

func noFollow(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}
