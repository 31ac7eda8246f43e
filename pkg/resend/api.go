// Package resend contains request definitions for the Resend API.
// The definitions cover emails and domains, they can be extended as needed.
//
// Each service holds its own copy of the client.Client, so a service can be reconfigured,
// for example redirected to a mocked server in tests, without affecting the other services.
// Requests are sent by the APIRequest.Send method, see the request.OutcomeOf function for the possible results.
package resend

import (
	"github.com/resend-community/go-client/pkg/client"
	"github.com/resend-community/go-client/pkg/client/trace"
	"github.com/resend-community/go-client/pkg/request"
)

// API is the entry point to all supported Resend services.
type API struct {
	client  client.Client
	Emails  *EmailService
	Domains *DomainService
}

// NewAPI creates the API authenticated by the API key.
func NewAPI(apiKey string, opts ...APIOption) *API {
	cfg := newAPIConfig(opts)

	var c client.Client
	if cfg.client != nil {
		// The client carries its own API key
		c = *cfg.client
	} else {
		c = client.New(apiKey)
	}

	if cfg.baseURL != "" {
		c = c.WithBaseURL(cfg.baseURL)
	}
	if cfg.userAgent != "" {
		c = c.WithUserAgent(cfg.userAgent)
	}
	if len(cfg.headers) > 0 {
		c = c.WithHeaders(cfg.headers)
	}
	if cfg.transport != nil {
		c = c.WithTransport(cfg.transport)
	}
	if cfg.tracerProvider != nil || cfg.meterProvider != nil {
		c = c.WithTelemetry(cfg.tracerProvider, cfg.meterProvider)
	}
	if cfg.logger != nil {
		c = c.AndTrace(trace.ZapTracer(cfg.logger))
	}

	return &API{
		client:  c,
		Emails:  &EmailService{Client: c},
		Domains: &DomainService{Client: c},
	}
}

// Client returns the raw client, it can be used to send custom requests.
func (a *API) Client() client.Client {
	return a.client
}

// newRequest creates request with the default error type.
func newRequest(sender request.Sender) request.HTTPRequest {
	return request.NewHTTPRequest(sender).WithError(&APIError{})
}
