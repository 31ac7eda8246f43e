package request

import (
	"context"
	"fmt"
	"reflect"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	APIRequestSpanName     = "resend.go.api.client.request"
	apiRequestTracerCtxKey = ctxKey("api-request-tracer")
	// extra attributes for DataDog.
	attrSpanKind            = "span.kind"
	attrSpanKindValueClient = "client"
	attrSpanType            = "span.type"
	attrSpanTypeValueHTTP   = "http"
)

// APIRequest is a ready to send call of the Resend API, the response is mapped to the generic type R.
//
// Send returns the result and a nil error on success.
// Otherwise, the error is one of the outcomes classified by the OutcomeOf function:
// the API error decoded from the response body, a *ParseError, a *TransportError or a *DefinitionError.
// Listeners may replace the error, such an error is classified as OutcomeOther.
type APIRequest[R Result] interface {
	// WithBefore registers a listener invoked before the request is sent.
	// If the listener returns an error, nothing is sent and the error is returned as it is.
	WithBefore(func(ctx context.Context) error) APIRequest[R]
	// WithOnComplete registers a listener invoked with the outcome of the request, its return value replaces the error.
	WithOnComplete(func(ctx context.Context, result R, err error) error) APIRequest[R]
	// WithOnSuccess registers a listener invoked only on OutcomeSuccess.
	WithOnSuccess(func(ctx context.Context, result R) error) APIRequest[R]
	// WithOnError registers a listener invoked with any error, including a DefinitionError.
	WithOnError(func(ctx context.Context, err error) error) APIRequest[R]
	// Send performs exactly one round trip per HTTP request, there is no retry.
	Send(ctx context.Context) (result R, err error)
	SendOrErr(ctx context.Context) error
}

// ParallelAPIRequests are sent at once, see Parallel.
type ParallelAPIRequests []Sendable

type ctxKey string

// Parallel sends independent requests concurrently, for example emails to multiple recipients.
// All requests are sent, all errors are returned.
func Parallel(requests ...Sendable) ParallelAPIRequests {
	return requests
}

func (v ParallelAPIRequests) SendOrErr(ctx context.Context) error {
	wg := NewWaitGroup(ctx)
	for _, r := range v {
		wg.Send(r)
	}
	return wg.Wait()
}

// APIRequestTracerFromContext returns the tracer of the APIRequest span, if the context belongs to an APIRequest.
func APIRequestTracerFromContext(ctx context.Context) (trace.Tracer, bool) {
	tracer, found := ctx.Value(apiRequestTracerCtxKey).(trace.Tracer)
	return tracer, found
}

// NewAPIRequest creates an API request with the result mapped to the R type.
// Usually it wraps one HTTPRequest, multiple requests are sent concurrently.
func NewAPIRequest[R Result](result R, requests ...Sendable) APIRequest[R] {
	if len(requests) == 0 {
		panic(fmt.Errorf("at least one request must be provided"))
	}
	return &apiRequest[R]{requests: requests, result: result}
}

// NewNoOperationAPIRequest returns an APIRequest which sends nothing and succeeds with the result.
func NewNoOperationAPIRequest[R Result](result R) APIRequest[R] {
	return &apiRequest[R]{result: result}
}

type apiRequest[R Result] struct {
	requests []Sendable
	before   []func(ctx context.Context) error
	after    []func(ctx context.Context, result R, err error) error
	result   R
}

func (r apiRequest[R]) WithBefore(fn func(ctx context.Context) error) APIRequest[R] {
	r.before = append(slices.Clip(r.before), fn)
	return r
}

func (r apiRequest[R]) WithOnComplete(fn func(ctx context.Context, result R, err error) error) APIRequest[R] {
	r.after = append(slices.Clip(r.after), fn)
	return r
}

func (r apiRequest[R]) WithOnSuccess(fn func(ctx context.Context, result R) error) APIRequest[R] {
	return r.WithOnComplete(func(ctx context.Context, result R, err error) error {
		if err != nil {
			return err
		}
		return fn(ctx, result)
	})
}

func (r apiRequest[R]) WithOnError(fn func(ctx context.Context, err error) error) APIRequest[R] {
	return r.WithOnComplete(func(ctx context.Context, _ R, err error) error {
		if err == nil {
			return nil
		}
		return fn(ctx, err)
	})
}

func (r apiRequest[R]) Send(ctx context.Context) (result R, err error) {
	ctx, endSpan := r.startSpan(ctx)
	defer func() { endSpan(err) }()

	// A done context is a transport failure, nothing is sent
	if err := ctx.Err(); err != nil {
		return r.result, &TransportError{Err: err}
	}

	for _, fn := range r.before {
		if err := fn(ctx); err != nil {
			return r.result, err
		}
	}
	if err := ctx.Err(); err != nil {
		return r.result, &TransportError{Err: err}
	}

	wg := NewWaitGroup(ctx)
	for _, request := range r.requests {
		wg.Send(request)
	}
	err = wg.Wait()

	// Listeners see the outcome and may replace the error
	for _, fn := range r.after {
		if err := ctx.Err(); err != nil {
			return r.result, &TransportError{Err: err}
		}
		err = fn(ctx, r.result, err)
	}

	return r.result, err
}

func (r apiRequest[R]) SendOrErr(ctx context.Context) error {
	_, err := r.Send(ctx)
	return err
}

// startSpan starts the APIRequest span, if the sender of the first request has a tracer.
// The span is ended with the "api.outcome" attribute.
func (r apiRequest[R]) startSpan(ctx context.Context) (context.Context, func(err error)) {
	if len(r.requests) == 0 {
		return ctx, func(error) {}
	}
	tp, ok := r.requests[0].(withTracer)
	if !ok {
		return ctx, func(error) {}
	}
	tracer := tp.Tracer()
	if tracer == nil {
		return ctx, func(error) {}
	}

	var resultType string
	if v := reflect.TypeOf(r.result); v != nil {
		resultType = v.String()
	}

	ctx, span := tracer.Start(
		ctx,
		APIRequestSpanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(attrSpanKind, attrSpanKindValueClient),
			attribute.String(attrSpanType, attrSpanTypeValueHTTP),
			attribute.Int("api.requests_count", len(r.requests)),
			attribute.String("api.result_type", resultType),
		),
	)
	ctx = context.WithValue(ctx, apiRequestTracerCtxKey, tracer)

	return ctx, func(err error) {
		span.SetAttributes(attribute.String("api.outcome", OutcomeOf(err).String()))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
