package resend

import (
	"net/http"

	otelMetric "go.opentelemetry.io/otel/metric"
	otelTrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/resend-community/go-client/pkg/client"
)

type apiConfig struct {
	client         *client.Client
	baseURL        string
	userAgent      string
	headers        map[string]string
	transport      http.RoundTripper
	tracerProvider otelTrace.TracerProvider
	meterProvider  otelMetric.MeterProvider
	logger         *zap.Logger
}

type APIOption func(c *apiConfig)

func newAPIConfig(opts []APIOption) apiConfig {
	cfg := apiConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithClient sets the client used by all services.
// The client is already authenticated, the API key passed to the NewAPI is ignored.
func WithClient(cl *client.Client) APIOption {
	return func(c *apiConfig) {
		c.client = cl
	}
}

// WithBaseURL overrides the API endpoint, only the scheme and the host are used.
func WithBaseURL(v string) APIOption {
	return func(c *apiConfig) {
		c.baseURL = v
	}
}

func WithUserAgent(v string) APIOption {
	return func(c *apiConfig) {
		c.userAgent = v
	}
}

// WithHeaders sets headers sent with each request.
// Accept, User-Agent and Authorization headers cannot be overwritten.
func WithHeaders(v map[string]string) APIOption {
	return func(c *apiConfig) {
		c.headers = v
	}
}

// WithTransport replaces client.DefaultTransport, for example by the client.HTTP2Transport.
func WithTransport(v http.RoundTripper) APIOption {
	return func(c *apiConfig) {
		c.transport = v
	}
}

func WithTracerProvider(v otelTrace.TracerProvider) APIOption {
	return func(c *apiConfig) {
		c.tracerProvider = v
	}
}

func WithMeterProvider(v otelMetric.MeterProvider) APIOption {
	return func(c *apiConfig) {
		c.meterProvider = v
	}
}

// WithLogger enables structured logging of each request, see trace.ZapTracer.
func WithLogger(v *zap.Logger) APIOption {
	return func(c *apiConfig) {
		c.logger = v
	}
}
