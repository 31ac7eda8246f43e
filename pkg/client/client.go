// Package client provides the default implementation of the request.Sender interface for the Resend API.
//
// Client holds the configuration shared by all requests: API key, base URL, user agent,
// custom headers, HTTP transport and trace hooks. Client is a value, each With* method returns a modified clone.
//
// Client.NewRawRequest builds an authenticated *http.Request from a request.HTTPRequest definition.
// Client.Send sends the request once and maps the response to one of the request outcomes, see request.OutcomeOf.
//
// Retries are not performed.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"
	"time"

	otelMetric "go.opentelemetry.io/otel/metric"
	otelTrace "go.opentelemetry.io/otel/trace"
	"golang.org/x/net/http/httpguts"

	"github.com/resend-community/go-client/pkg/client/counter"
	"github.com/resend-community/go-client/pkg/client/decode"
	"github.com/resend-community/go-client/pkg/client/trace"
	"github.com/resend-community/go-client/pkg/client/trace/otel"
	"github.com/resend-community/go-client/pkg/request"
)

const (
	// Version of the library, it is part of the default user agent.
	Version = "0.1.0"
	// DefaultBaseURL is the production Resend API endpoint.
	DefaultBaseURL = "https://api.resend.com"
	// DefaultUserAgent identifies the library in the "<product>/<version>" form.
	DefaultUserAgent = "resend-go/" + Version
	// ContentTypeJSON is used for the Accept and Content-Type headers.
	ContentTypeJSON = "application/json"
)

// Client is a default and configurable implementation of the request.Sender interface by Go native http.Client.
type Client struct {
	apiKey       string
	baseURL      *url.URL
	userAgent    string
	header       http.Header
	transport    http.RoundTripper
	traceFactory trace.Factory
	tracer       otelTrace.Tracer
}

// New creates a Client authenticated by the API key, configured for the production API.
func New(apiKey string) Client {
	return Client{
		apiKey:    apiKey,
		userAgent: DefaultUserAgent,
		header:    make(http.Header),
		transport: DefaultTransport(),
	}.WithBaseURL(DefaultBaseURL)
}

// WithBaseURL returns a clone of the Client with base url set.
// Only the scheme and the host are used, the path is replaced by the request path.
// It is mainly useful in tests, to redirect traffic to a mocked server.
func (c Client) WithBaseURL(baseURLStr string) Client {
	baseURL, err := url.Parse(baseURLStr)
	if err != nil {
		panic(fmt.Errorf(`base url "%s" is not valid: %w`, baseURLStr, err))
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		panic(fmt.Errorf(`base url "%s" is not valid: scheme and host are required`, baseURLStr))
	}
	c.baseURL = &url.URL{Scheme: baseURL.Scheme, Host: baseURL.Host}
	return c
}

// WithUserAgent returns a clone of the Client with user agent set.
func (c Client) WithUserAgent(v string) Client {
	c.userAgent = v
	return c
}

// WithHeader returns a clone of the Client with common header set.
// Accept, User-Agent and Authorization headers are always overwritten by the Client.
func (c Client) WithHeader(key, value string) Client {
	c.header = c.header.Clone()
	c.header.Set(key, value)
	return c
}

// WithHeaders returns a clone of the Client with common headers set.
func (c Client) WithHeaders(headers map[string]string) Client {
	c.header = c.header.Clone()
	for k, v := range headers {
		c.header.Set(k, v)
	}
	return c
}

// WithTransport returns a clone of the Client with a HTTP transport set.
func (c Client) WithTransport(transport http.RoundTripper) Client {
	if transport == nil {
		panic(fmt.Errorf("transport cannot be nil"))
	}
	c.transport = transport
	return c
}

// WithTrace returns a clone of the Client with the trace factory set, previous factories are replaced.
func (c Client) WithTrace(fn trace.Factory) Client {
	c.traceFactory = fn
	return c
}

// AndTrace returns a clone of the Client with the trace factory added to the previous ones.
// Hooks of the previously registered factories are called first.
func (c Client) AndTrace(fn trace.Factory) Client {
	prev := c.traceFactory
	if prev == nil {
		c.traceFactory = fn
		return c
	}
	c.traceFactory = func(ctx context.Context, reqDef request.HTTPRequest) (context.Context, *trace.ClientTrace) {
		ctx, prevTrace := prev(ctx, reqDef)
		ctx, newTrace := fn(ctx, reqDef)
		if newTrace == nil {
			return ctx, prevTrace
		}
		newTrace.Compose(prevTrace)
		return ctx, newTrace
	}
	return c
}

// WithTelemetry returns a clone of the Client with OpenTelemetry tracing and metrics.
// A span is created for each request.APIRequest and each sent request.HTTPRequest.
func (c Client) WithTelemetry(tracerProvider otelTrace.TracerProvider, meterProvider otelMetric.MeterProvider, opts ...otel.Option) Client {
	if tracerProvider != nil {
		c.tracer = tracerProvider.Tracer(otel.TraceAppName)
	}
	return c.AndTrace(otel.NewTrace(tracerProvider, meterProvider, opts...))
}

// BaseURL returns the base URL of the API.
func (c Client) BaseURL() string {
	if c.baseURL == nil {
		return ""
	}
	return c.baseURL.String()
}

// Tracer returns the tracer used by the request.APIRequest, it is nil if the telemetry is disabled.
func (c Client) Tracer() otelTrace.Tracer {
	return c.tracer
}

// NewRawRequest builds an authenticated HTTP request from the definition.
// A *request.DefinitionError is returned if the request cannot be built.
func (c Client) NewRawRequest(ctx context.Context, reqDef request.HTTPRequest) (*http.Request, error) {
	// Method cannot be called on an empty value
	if c.baseURL == nil {
		panic(fmt.Errorf("client value is not initialized"))
	}

	reqURL, err := c.requestURL(reqDef)
	if err != nil {
		return nil, &request.DefinitionError{Err: err}
	}

	// JSON body, only if a payload is present
	var body io.Reader
	if payload := reqDef.RequestBody(); payload != nil {
		bodyBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, &request.DefinitionError{Err: fmt.Errorf(`cannot encode JSON body: %w`, err)}
		}
		// GetBody is set by the http.NewRequestWithContext for the *bytes.Reader, so the body can be sent again on redirect.
		body = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, reqDef.Method(), reqURL.String(), body)
	if err != nil {
		return nil, &request.DefinitionError{Err: err}
	}

	// Custom headers, request headers override the client headers
	copyHeader(req.Header, c.header)
	copyHeader(req.Header, reqDef.RequestHeader())

	// Fixed headers always win
	req.Header.Set("Accept", ContentTypeJSON)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", ContentTypeJSON)
	}

	if err := validateHeader(req.Header); err != nil {
		return nil, &request.DefinitionError{Err: err}
	}

	return req, nil
}

// Send method sends the HTTP request and returns HTTP response, it implements the request.Sender interface.
//
// The returned error is one of:
//   - *request.DefinitionError, if the request cannot be built, nothing is sent.
//   - *request.TransportError, if no response has been received, the body cannot be read,
//     or the error status body doesn't match the ErrorDef of the request.
//   - *request.ParseError, if the success status body doesn't match the ResultDef of the request.
//   - the ErrorDef of the request, if the error status body matches it.
func (c Client) Send(ctx context.Context, reqDef request.HTTPRequest) (res *http.Response, result any, err error) {
	// Method cannot be called on an empty value
	if c.transport == nil {
		panic(fmt.Errorf("client value is not initialized"))
	}

	// Init trace
	var tc *trace.ClientTrace
	if c.traceFactory != nil {
		ctx, tc = c.traceFactory(ctx, reqDef)
		if tc != nil {
			ctx = httptrace.WithClientTrace(ctx, &tc.ClientTrace)
		}
	}

	// Trace request processed
	if tc != nil && tc.RequestProcessed != nil {
		defer func() {
			tc.RequestProcessed(result, err)
		}()
	}

	// Build request
	req, err := c.NewRawRequest(ctx, reqDef)
	if err != nil {
		return nil, nil, err
	}

	// Setup native client, redirects are followed, there is no retry and no timeout except the context
	nativeClient := http.Client{Transport: roundTripper{trace: tc, wrapped: c.transport}}

	// Send request, nothing is sent if the context is already done
	startedAt := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, nil, &request.TransportError{Err: handleSendError(startedAt, req, urlError(req, err))}
	}
	res, err = nativeClient.Do(req)
	if err != nil {
		return nil, nil, &request.TransportError{Err: handleSendError(startedAt, req, err)}
	}

	// Request of the last redirect, if any
	if res.Request != nil {
		req = res.Request
	}

	result, err = handleResponse(req, res, reqDef, tc)
	return res, result, err
}

func (c Client) requestURL(reqDef request.HTTPRequest) (*url.URL, error) {
	path := reqDef.Path()
	for k, v := range reqDef.PathParams() {
		path = strings.ReplaceAll(path, "{"+k+"}", url.PathEscape(v))
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	unescaped, err := url.PathUnescape(path)
	if err != nil {
		return nil, fmt.Errorf(`url path "%s" is not valid: %w`, path, err)
	}

	return &url.URL{Scheme: c.baseURL.Scheme, Host: c.baseURL.Host, Path: unescaped, RawPath: path}, nil
}

func handleResponse(req *http.Request, res *http.Response, reqDef request.HTTPRequest, tc *trace.ClientTrace) (result any, err error) {
	body := counter.NewReadCloser(res.Body, nil)
	defer body.Close()

	// Trace body parsing
	if tc != nil && tc.BodyParseStart != nil {
		tc.BodyParseStart(res)
	}
	if tc != nil && tc.BodyParseDone != nil {
		defer func() {
			tc.BodyParseDone(res, body.Bytes(), result, err)
		}()
	}

	// Read the whole body, it is processed only once
	bodyBytes, err := readBody(body, res.Header.Get("Content-Encoding"))
	if err != nil {
		return nil, &request.TransportError{
			StatusCode: res.StatusCode,
			Err:        fmt.Errorf(`cannot process request %s "%s": %w`, req.Method, req.URL.String(), err),
		}
	}

	// Success status
	if res.StatusCode < http.StatusBadRequest {
		resultDef := reqDef.ResultDef()
		if resultDef == nil {
			return nil, nil
		}
		if err := json.Unmarshal(bodyBytes, resultDef); err != nil {
			return nil, &request.ParseError{
				StatusCode: res.StatusCode,
				Body:       string(bodyBytes),
				Err:        fmt.Errorf(`cannot process request %s "%s": cannot decode JSON result: %w`, req.Method, req.URL.String(), err),
			}
		}
		return resultDef, nil
	}

	// Error status, try to map the body to the defined error
	if errDef := reqDef.ErrorDef(); errDef != nil {
		if err := json.Unmarshal(bodyBytes, errDef); err == nil {
			if v, ok := errDef.(errorWithRequest); ok {
				v.SetRequest(req)
			}
			if v, ok := errDef.(errorWithResponse); ok {
				v.SetResponse(res)
			}
			return nil, errDef
		}
	}

	// Generic HTTP error, the JSON decoding error is discarded
	return nil, &request.TransportError{
		StatusCode: res.StatusCode,
		Err:        fmt.Errorf(`request %s "%s" failed: %d %s`, req.Method, req.URL.String(), res.StatusCode, http.StatusText(res.StatusCode)),
	}
}

func readBody(body io.ReadCloser, contentEncoding string) ([]byte, error) {
	decoded, err := decode.Decode(body, contentEncoding)
	if err != nil {
		return nil, err
	}
	bodyBytes, err := io.ReadAll(decoded)
	if err != nil {
		return nil, fmt.Errorf(`cannot read response body: %w`, err)
	}
	return bodyBytes, nil
}

func handleSendError(startedAt time.Time, req *http.Request, err error) error {
	var netErr net.Error
	if deadline, ok := req.Context().Deadline(); ok && errors.Is(err, context.DeadlineExceeded) {
		err = urlError(req, fmt.Errorf("timeout after %s: %w", deadline.Sub(startedAt), context.DeadlineExceeded))
	} else if errors.Is(err, context.Canceled) {
		err = urlError(req, fmt.Errorf("canceled after %s: %w", time.Since(startedAt), context.Canceled))
	} else if errors.As(err, &netErr) && netErr.Timeout() {
		err = urlError(req, fmt.Errorf("timeout after %s: %w", time.Since(startedAt), netErr))
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = fmt.Errorf(`request %s "%s" failed: %w`, strings.ToUpper(urlErr.Op), urlErr.URL, urlErr.Err)
	}

	return err
}

func urlError(req *http.Request, err error) *url.Error {
	return &url.Error{Op: req.Method, URL: req.URL.String(), Err: err}
}

func copyHeader(dst, src http.Header) {
	for k, values := range src {
		dst.Del(k)
		for _, v := range values {
			dst.Add(k, v)
		}
	}
}

// validateHeader checks that all header fields can be sent.
// Values are not part of the error message, they may contain a secret.
func validateHeader(header http.Header) error {
	for k, values := range header {
		if !httpguts.ValidHeaderFieldName(k) {
			return fmt.Errorf(`header name "%s" is not valid`, k)
		}
		for _, v := range values {
			if !httpguts.ValidHeaderFieldValue(v) {
				return fmt.Errorf(`value of the header "%s" is not valid`, k)
			}
		}
	}
	return nil
}

// roundTripper wraps a http.RoundTripper and adds trace hooks, it is called also for each redirect.
type roundTripper struct {
	trace   *trace.ClientTrace
	wrapped http.RoundTripper
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if rt.trace != nil && rt.trace.HTTPRequestStart != nil {
		rt.trace.HTTPRequestStart(req)
	}

	res, err := rt.wrapped.RoundTrip(req)
	if res != nil && res.Request == nil {
		res.Request = req
	}

	if rt.trace != nil && rt.trace.HTTPRequestDone != nil {
		rt.trace.HTTPRequestDone(res, err)
	}

	return res, err
}

type errorWithRequest interface {
	error
	SetRequest(request *http.Request)
}

type errorWithResponse interface {
	error
	SetResponse(response *http.Response)
}
