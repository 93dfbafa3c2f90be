package skrape

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-openapi/runtime"
	httptransport "github.com/go-openapi/runtime/client"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the production Skrape API endpoint.
const DefaultBaseURL = "https://skrape.ai/api"

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 0
)

var defaultUserAgent = "skrape-go/" + Version

// Client is the Skrape API client.
//
// A Client is immutable once built by [NewClient] and safe for
// concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	transport  http.RoundTripper
	runtime    *httptransport.Runtime
	timeout    time.Duration
	maxRetries int
	userAgent  string
	logger     zerolog.Logger
	limiter    *rate.Limiter
	registerer prometheus.Registerer
	metrics    *metrics
	tracer     trace.TracerProvider
	validate   bool
}

// NewClient creates a new Skrape client authenticated with apiKey.
//
// Surrounding whitespace and quotes are stripped from the key, so values
// copied verbatim from a .env file such as "sk-123" work as expected.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	c := &Client{
		apiKey:     normalizeAPIKey(apiKey),
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
		timeout:    defaultTimeout,
		maxRetries: defaultMaxRetries,
		userAgent:  defaultUserAgent,
		logger:     zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.apiKey == "" {
		return nil, newError(CodeInvalidConfig, "API key is required", 0, nil)
	}

	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(c.baseURL), "/"))
	if err != nil {
		return nil, newError(CodeInvalidConfig, "invalid base URL", 0, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, newError(CodeInvalidConfig, "base URL must be an absolute http(s) URL", 0, nil)
	}
	c.baseURL = u.String()

	c.httpClient = c.buildHTTPClient()

	rt := httptransport.NewWithClient(u.Host, u.Path, []string{u.Scheme}, c.httpClient)
	// Bodies are decoded by the gateway itself; accept any content type.
	rt.Consumers["*/*"] = runtime.ByteStreamConsumer()
	c.runtime = rt

	if c.registerer != nil {
		m, err := newMetrics(c.registerer)
		if err != nil {
			return nil, newError(CodeInvalidConfig, "failed to register metrics", 0, err)
		}
		c.metrics = m
	}

	return c, nil
}

// BaseURL returns the API endpoint every request is sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// MaxRetries returns the number of extra attempts made for retryable failures.
func (c *Client) MaxRetries() int {
	return c.maxRetries
}

// buildHTTPClient returns a private copy of the configured HTTP client with
// the custom transport and tracing applied.
func (c *Client) buildHTTPClient() *http.Client {
	hc := *c.httpClient
	if c.transport != nil {
		hc.Transport = c.transport
	}
	if c.tracer != nil {
		base := hc.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		hc.Transport = otelhttp.NewTransport(base,
			otelhttp.WithTracerProvider(c.tracer),
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return "skrape " + r.Method + " " + r.URL.Path
			}),
		)
	}
	return &hc
}

func normalizeAPIKey(key string) string {
	return strings.Trim(strings.TrimSpace(key), `"'`)
}
