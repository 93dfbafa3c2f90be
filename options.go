package skrape

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides [DefaultBaseURL] for every request made by the client.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets the per-request timeout. Zero disables it and leaves
// deadlines to the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRetries sets the maximum number of retries for failed requests.
//
// Only transport failures and 408, 429, 502, 503 and 504 responses are
// retried. The wait honors Retry-After when the server sends it and
// otherwise backs off exponentially. The default is 0: every failure is
// returned to the caller immediately.
func WithRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTransport sets the round tripper used to send requests. It takes
// precedence over the transport of a client passed to [WithHTTPClient].
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.transport = rt
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger used for request and retry diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimiter makes every request attempt wait for a token from l.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithMetrics registers request counters and latency histograms on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Client) {
		c.registerer = reg
	}
}

// WithTracerProvider records an OpenTelemetry client span for every request.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		c.tracer = tp
	}
}

// WithResultValidation makes [Client.Extract] check each result against the
// schema that was sent with the request.
func WithResultValidation() Option {
	return func(c *Client) {
		c.validate = true
	}
}
