package request

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"reflect"
	"slices"

	"go.opentelemetry.io/otel/trace"
)

// Result - any value.
type Result = any

// NoResult type.
type NoResult struct{}

// HTTPRequest is an immutable HTTP request.
type HTTPRequest interface {
	httpRequestReadOnly
	// WithGet is shortcut for WithMethod(http.MethodGet).WithURL(url)
	WithGet(url string) HTTPRequest
	// WithPost is shortcut for WithMethod(http.MethodPost).WithURL(url)
	WithPost(url string) HTTPRequest
	// WithPut is shortcut for WithMethod(http.MethodPut).WithURL(url)
	WithPut(url string) HTTPRequest
	// WithDelete is shortcut for WithMethod(http.MethodDelete).WithURL(url)
	WithDelete(url string) HTTPRequest
	// WithMethod method sets the HTTP method.
	WithMethod(method string) HTTPRequest
	// WithURL method sets the URL path, it is resolved against the base URL of the Sender.
	WithURL(url string) HTTPRequest
	// AndHeader method sets a single header field and its value.
	AndHeader(header string, value string) HTTPRequest
	// AndPathParam method sets single URL path key-value pair.
	AndPathParam(param, value string) HTTPRequest
	// WithPathParams method sets multiple URL path key-value pairs.
	WithPathParams(params map[string]string) HTTPRequest
	// WithJSONBody method sets request body to the JSON value.
	// The "Content-Type: application/json" header is set only if the body is not nil.
	WithJSONBody(body any) HTTPRequest
	// WithError method registers the request `Error` value for automatic mapping.
	WithError(err error) HTTPRequest
	// WithResult method registers the request `Result` value for automatic mapping.
	WithResult(result any) HTTPRequest
	// WithOnComplete method registers callback to be executed when the request is completed.
	WithOnComplete(func(ctx context.Context, response HTTPResponse, err error) error) HTTPRequest
	// WithOnSuccess method registers callback to be executed when the request is completed and `code < 400`.
	WithOnSuccess(func(ctx context.Context, response HTTPResponse) error) HTTPRequest
	// WithOnError method registers callback to be executed when the request is completed with an error.
	WithOnError(func(ctx context.Context, response HTTPResponse, err error) error) HTTPRequest
	// Send method sends defined request and returns response, mapped result and error.
	Send(ctx context.Context) (response HTTPResponse, result any, err error)
	SendOrErr(ctx context.Context) error
}

type httpRequestReadOnly interface {
	// Method returns HTTP method.
	Method() string
	// Path returns URL path template, it may contain {placeholder} path parameters.
	Path() string
	// RequestHeader method returns HTTP request headers.
	RequestHeader() http.Header
	// PathParams method returns HTTP path parameters mapped to a {placeholder} in the URL.
	PathParams() map[string]string
	// RequestBody method returns a value encoded to the JSON request body, or nil if there is no body.
	RequestBody() any
	// ErrorDef method returns a target value for error result mapping.
	ErrorDef() error
	// ResultDef method returns a target value for result mapping.
	ResultDef() any
}

// NewHTTPRequest creates immutable HTTP request.
func NewHTTPRequest(sender Sender) HTTPRequest {
	return httpRequest{sender: sender, header: make(http.Header)}
}

// httpRequest implements HTTPRequest interface.
type httpRequest struct {
	sender     Sender
	method     string
	path       string
	header     http.Header
	pathParams map[string]string
	body       any
	resultDef  any
	errorDef   error
	listeners  []func(ctx context.Context, response HTTPResponse, err error) error
}

type withTracer interface {
	Tracer() trace.Tracer
}

func (r httpRequest) Tracer() trace.Tracer {
	if tp, ok := r.sender.(withTracer); ok {
		return tp.Tracer()
	}
	return nil
}

func (r httpRequest) Method() string {
	if r.method == "" {
		panic(fmt.Errorf("request method is not set"))
	}
	return r.method
}

func (r httpRequest) Path() string {
	return r.path
}

func (r httpRequest) RequestHeader() http.Header {
	return r.header
}

func (r httpRequest) PathParams() map[string]string {
	return r.pathParams
}

func (r httpRequest) RequestBody() any {
	return r.body
}

func (r httpRequest) ErrorDef() error {
	return r.errorDef
}

func (r httpRequest) ResultDef() any {
	return r.resultDef
}

func (r httpRequest) WithGet(url string) HTTPRequest {
	return r.WithMethod(http.MethodGet).WithURL(url)
}

func (r httpRequest) WithPost(url string) HTTPRequest {
	return r.WithMethod(http.MethodPost).WithURL(url)
}

func (r httpRequest) WithPut(url string) HTTPRequest {
	return r.WithMethod(http.MethodPut).WithURL(url)
}

func (r httpRequest) WithDelete(url string) HTTPRequest {
	return r.WithMethod(http.MethodDelete).WithURL(url)
}

func (r httpRequest) WithMethod(method string) HTTPRequest {
	r.method = method
	return r
}

func (r httpRequest) WithURL(path string) HTTPRequest {
	r.path = path
	return r
}

func (r httpRequest) AndHeader(header string, value string) HTTPRequest {
	r.header = r.header.Clone()
	r.header.Set(header, value)
	return r
}

func (r httpRequest) AndPathParam(key, value string) HTTPRequest {
	params := make(map[string]string, len(r.pathParams)+1)
	maps.Copy(params, r.pathParams)
	params[key] = value
	r.pathParams = params
	return r
}

func (r httpRequest) WithPathParams(params map[string]string) HTTPRequest {
	r.pathParams = make(map[string]string, len(params))
	maps.Copy(r.pathParams, params)
	return r
}

func (r httpRequest) WithJSONBody(body any) HTTPRequest {
	if isNil(body) {
		body = nil
	}
	r.body = body
	return r
}

func (r httpRequest) WithError(err error) HTTPRequest {
	if reflect.ValueOf(err).Kind() != reflect.Ptr {
		panic(fmt.Errorf(`error must be defined by a pointer`))
	}
	r.errorDef = err
	return r
}

func (r httpRequest) WithResult(result any) HTTPRequest {
	if reflect.ValueOf(result).Kind() != reflect.Ptr {
		panic(fmt.Errorf(`result must be defined by a pointer`))
	}
	r.resultDef = result
	return r
}

func (r httpRequest) WithOnComplete(fn func(ctx context.Context, response HTTPResponse, err error) error) HTTPRequest {
	r.listeners = append(slices.Clip(r.listeners), fn)
	return r
}

func (r httpRequest) WithOnSuccess(fn func(ctx context.Context, response HTTPResponse) error) HTTPRequest {
	r.listeners = append(slices.Clip(r.listeners), func(ctx context.Context, response HTTPResponse, err error) error {
		if err == nil {
			return fn(ctx, response)
		}
		return err
	})
	return r
}

func (r httpRequest) WithOnError(fn func(ctx context.Context, response HTTPResponse, err error) error) HTTPRequest {
	r.listeners = append(slices.Clip(r.listeners), func(ctx context.Context, response HTTPResponse, err error) error {
		if err != nil {
			return fn(ctx, response, err)
		}
		return err
	})
	return r
}

func (r httpRequest) Send(ctx context.Context) (HTTPResponse, any, error) {
	// Stop if context has been cancelled
	if err := ctx.Err(); err != nil {
		return nil, nil, &TransportError{Err: err}
	}

	// Send request
	rawResponse, result, err := r.sender.Send(ctx, r)
	out := &httpResponse{httpRequest: r, rawResponse: rawResponse, result: result, err: err}

	// Invoke listeners
	for _, fn := range r.listeners {
		// Stop if context has been cancelled
		if err := ctx.Err(); err != nil {
			return nil, nil, &TransportError{Err: err}
		}
		out.err = fn(ctx, out, out.err)
	}

	return out, out.result, out.err
}

func (r httpRequest) SendOrErr(ctx context.Context) error {
	_, _, err := r.Send(ctx)
	return err
}

// isNil returns true for nil and for a typed nil pointer, map or slice.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
