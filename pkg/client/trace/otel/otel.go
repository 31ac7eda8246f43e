// Package otel provides OpenTelemetry tracing and metrics for the requests sent by the client.Client.
//
// Spans:
//   - "resend.go.client.request" wraps each sent request.HTTPRequest, including redirects and body parsing.
//   - "http.request" is created for every HTTP request, including redirects.
//   - "resend.go.client.request.body.parse" tracks reading and mapping of the response body.
//
// Metrics names start with "resend.go.client." and "resend.go.http.", see the meters struct.
// The client request duration is recorded with the "api.outcome" attribute, see request.OutcomeOf.
//
// The Authorization header is always masked.
package otel

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptrace"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelMetric "go.opentelemetry.io/otel/metric"
	metricNoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	otelTrace "go.opentelemetry.io/otel/trace"
	traceNoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/resend-community/go-client/pkg/client/trace"
	"github.com/resend-community/go-client/pkg/request"
)

const (
	// TraceAppName is the instrumentation scope of the tracer and the meter.
	TraceAppName = "github.com/resend-community/go-client"

	clientPrefix            = "resend.go.client."
	httpPrefix              = "resend.go.http."
	clientRequestSpanName   = clientPrefix + "request"
	clientBodyParseSpanName = clientPrefix + "request.body.parse"
	httpRequestSpanName     = "http.request"

	attrResourceName        = attribute.Key("resource.name")
	attrConnReused          = attribute.Key("http.conn.reused")
	attrConnWasIdle         = attribute.Key("http.conn.wasidle")
	attrReadBytes           = attribute.Key("http.read_bytes")
	attrSpanKind            = attribute.Key("span.kind")
	attrSpanKindValueClient = "client"
	attrSpanType            = attribute.Key("span.type")
	attrSpanTypeValueHTTP   = "http"
)

// NewTrace creates a trace.Factory, nil providers are replaced by no-op implementations.
// If the HTTP request is a part of an APIRequest, its spans are recorded by the tracer of the APIRequest span.
func NewTrace(tracerProvider otelTrace.TracerProvider, meterProvider otelMetric.MeterProvider, opts ...Option) trace.Factory {
	cfg := newConfig(opts)
	if tracerProvider == nil {
		tracerProvider = traceNoop.NewTracerProvider()
	}
	if meterProvider == nil {
		meterProvider = metricNoop.NewMeterProvider()
	}
	tracer := tracerProvider.Tracer(TraceAppName)
	meters := newMeters(meterProvider.Meter(TraceAppName))

	return func(rootCtx context.Context, reqDef request.HTTPRequest) (context.Context, *trace.ClientTrace) {
		tc := &trace.ClientTrace{}

		// Spans of an API request are recorded by the tracer of the API request span
		spanTracer := tracer
		if parent, ok := request.APIRequestTracerFromContext(rootCtx); ok {
			spanTracer = parent
		}
		attrs := newAttributes(cfg, reqDef)

		// Root span, it may contain multiple HTTP requests (redirects)
		startTime := time.Now()
		meters.clientInFlight.Add(rootCtx, 1, otelMetric.WithAttributes(attrs.definition...))
		rootCtx, rootSpan := spanTracer.Start(
			rootCtx,
			clientRequestSpanName,
			otelTrace.WithSpanKind(otelTrace.SpanKindClient),
			otelTrace.WithAttributes(
				attrResourceName.String(reqDef.Path()),
				attrSpanKind.String(attrSpanKindValueClient),
				attrSpanType.String(attrSpanTypeValueHTTP),
			),
			otelTrace.WithAttributes(attrs.definition...),
			otelTrace.WithAttributes(attrs.definitionExtra...),
		)

		var httpCtx context.Context
		var httpSpan otelTrace.Span
		var parseSpan otelTrace.Span

		tc.RequestProcessed = func(_ any, err error) {
			elapsed := float64(time.Since(startTime)) / float64(time.Millisecond)

			// Metrics
			meters.clientInFlight.Add(rootCtx, -1, otelMetric.WithAttributes(attrs.definition...))
			meters.clientDuration.Record(
				rootCtx,
				elapsed,
				otelMetric.WithAttributes(attrs.definition...),
				otelMetric.WithAttributes(attrs.httpResponse...),
				otelMetric.WithAttributes(outcomeAttr(err)),
			)

			// The HTTP span is not ended if the request failed before the body parsing
			if httpSpan != nil {
				httpSpan.End()
				httpSpan = nil
			}

			// Tracing, with attributes from the last response
			rootSpan.SetAttributes(attrs.httpResponse...)
			rootSpan.SetAttributes(attrs.httpResponseExtra...)
			rootSpan.SetAttributes(outcomeAttr(err))
			if err != nil {
				rootSpan.RecordError(err)
				rootSpan.SetStatus(codes.Error, err.Error())
			}
			rootSpan.End()
		}

		// HTTP requests
		var httpStartTime time.Time
		tc.HTTPRequestStart = func(req *http.Request) {
			// Previous redirect
			if httpSpan != nil {
				httpSpan.End()
			}

			httpStartTime = time.Now()
			attrs.SetFromRequest(req)
			httpCtx, httpSpan = spanTracer.Start(
				rootCtx,
				httpRequestSpanName,
				otelTrace.WithSpanKind(otelTrace.SpanKindClient),
				otelTrace.WithAttributes(
					attrResourceName.String(req.URL.Path),
					attrSpanKind.String(attrSpanKindValueClient),
					attrSpanType.String(attrSpanTypeValueHTTP),
				),
				otelTrace.WithAttributes(attrs.httpRequest...),
				otelTrace.WithAttributes(attrs.httpRequestExtra...),
			)

			// Inject trace headers
			if cfg.propagators != nil {
				cfg.propagators.Inject(httpCtx, propagation.HeaderCarrier(req.Header))
			}

			meters.httpInFlight.Add(rootCtx, 1, otelMetric.WithAttributes(attrs.httpRequest...))
		}
		tc.GotConn = func(info httptrace.GotConnInfo) {
			if httpSpan != nil {
				httpSpan.SetAttributes(attrConnReused.Bool(info.Reused), attrConnWasIdle.Bool(info.WasIdle))
			}
		}
		tc.HTTPRequestDone = func(res *http.Response, err error) {
			elapsed := float64(time.Since(httpStartTime)) / float64(time.Millisecond)
			attrs.SetFromResponse(res, err)

			// Metrics, in flight with the same attributes as above
			meters.httpInFlight.Add(rootCtx, -1, otelMetric.WithAttributes(attrs.httpRequest...))
			meters.httpDuration.Record(
				rootCtx,
				elapsed,
				otelMetric.WithAttributes(attrs.httpRequest...),
				otelMetric.WithAttributes(attrs.httpResponse...),
			)

			// Tracing, the span is ended on the next redirect or when the body is parsed
			httpSpan.SetAttributes(attrs.httpResponse...)
			httpSpan.SetAttributes(attrs.httpResponseExtra...)
			switch {
			case err != nil:
				httpSpan.RecordError(err)
				httpSpan.SetStatus(codes.Error, err.Error())
			case res != nil && res.StatusCode >= http.StatusBadRequest:
				httpErr := fmt.Errorf(`HTTP status code: %d %s`, res.StatusCode, http.StatusText(res.StatusCode))
				httpSpan.RecordError(httpErr)
				httpSpan.SetStatus(codes.Error, httpErr.Error())
			}
		}

		// Body parsing
		var parseStartTime time.Time
		var parseMeterAttrs []attribute.KeyValue
		tc.BodyParseStart = func(_ *http.Response) {
			parseStartTime = time.Now()
			parseMeterAttrs = append(append(parseMeterAttrs, attrs.definition...), attrs.httpResponse...)
			meters.parseInFlight.Add(rootCtx, 1, otelMetric.WithAttributes(parseMeterAttrs...))
			parentCtx := httpCtx
			if parentCtx == nil {
				parentCtx = rootCtx
			}
			_, parseSpan = spanTracer.Start(
				parentCtx,
				clientBodyParseSpanName,
				otelTrace.WithSpanKind(otelTrace.SpanKindClient),
				otelTrace.WithAttributes(attrs.httpResponse...),
			)
		}
		tc.BodyParseDone = func(_ *http.Response, readBytes int64, _ any, err error) {
			elapsed := float64(time.Since(parseStartTime)) / float64(time.Millisecond)

			// Metrics
			meters.parseInFlight.Add(rootCtx, -1, otelMetric.WithAttributes(parseMeterAttrs...))
			meters.parseDuration.Record(rootCtx, elapsed, otelMetric.WithAttributes(parseMeterAttrs...), otelMetric.WithAttributes(outcomeAttr(err)))
			meters.parseBytes.Add(rootCtx, readBytes, otelMetric.WithAttributes(parseMeterAttrs...))

			// Tracing
			if parseSpan != nil {
				parseSpan.SetAttributes(attrReadBytes.Int64(readBytes), outcomeAttr(err))
				if err != nil {
					parseSpan.RecordError(err)
					parseSpan.SetStatus(codes.Error, err.Error())
				}
				parseSpan.End()
				parseSpan = nil
			}
			if httpSpan != nil {
				httpSpan.SetAttributes(attrReadBytes.Int64(readBytes))
				httpSpan.End()
				httpSpan = nil
			}
		}

		return rootCtx, tc
	}
}
