package otel

import (
	"strings"

	"go.opentelemetry.io/otel/propagation"
)

type config struct {
	propagators        propagation.TextMapPropagator
	redactedPathParams map[string]struct{}
	redactedHeaders    map[string]struct{}
}

type Option func(*config)

// WithPropagators injects the trace context to the outgoing request headers.
func WithPropagators(v propagation.TextMapPropagator) Option {
	return func(c *config) {
		c.propagators = v
	}
}

// WithRedactedPathParam masks values of the path parameters in span attributes.
func WithRedactedPathParam(params ...string) Option {
	return func(c *config) {
		for _, p := range params {
			c.redactedPathParams[strings.ToLower(p)] = struct{}{}
		}
	}
}

// WithRedactedHeaders masks values of the headers in span attributes, Authorization is always masked.
func WithRedactedHeaders(headers ...string) Option {
	return func(c *config) {
		for _, h := range headers {
			c.redactedHeaders[strings.ToLower(h)] = struct{}{}
		}
	}
}

func newConfig(opts []Option) config {
	cfg := config{
		redactedPathParams: make(map[string]struct{}),
		redactedHeaders: map[string]struct{}{
			"authorization":       {},
			"proxy-authorization": {},
			"cookie":              {},
			"set-cookie":          {},
		},
	}
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}
