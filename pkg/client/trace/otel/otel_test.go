package otel_test

import (
	"context"
	"net/http"
	"sort"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	export "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/resend-community/go-client/pkg/client"
	"github.com/resend-community/go-client/pkg/client/trace/otel"
	"github.com/resend-community/go-client/pkg/request"
)

type testResult struct {
	ID string `json:"id"`
}

type telemetry struct {
	spans          *tracetest.InMemoryExporter
	metrics        *export.Exporter
	tracerProvider *trace.TracerProvider
	meterProvider  *metric.MeterProvider
}

func newTelemetry(t *testing.T) *telemetry {
	t.Helper()

	res, err := resource.New(context.Background())
	require.NoError(t, err)

	spans := tracetest.NewInMemoryExporter()
	metrics, err := export.New()
	require.NoError(t, err)

	return &telemetry{
		spans:          spans,
		metrics:        metrics,
		tracerProvider: trace.NewTracerProvider(trace.WithSyncer(spans), trace.WithResource(res)),
		meterProvider:  metric.NewMeterProvider(metric.WithReader(metrics), metric.WithResource(res)),
	}
}

func (tel *telemetry) spanNames() []string {
	var out []string
	for _, span := range tel.spans.GetSpans() {
		out = append(out, span.Name)
	}
	sort.Strings(out)
	return out
}

func (tel *telemetry) span(t *testing.T, name string) tracetest.SpanStub {
	t.Helper()
	for _, span := range tel.spans.GetSpans() {
		if span.Name == name {
			return span
		}
	}
	t.Fatalf(`span "%s" not found`, name)
	return tracetest.SpanStub{}
}

func (tel *telemetry) metricNames(t *testing.T) []string {
	t.Helper()
	all := &metricdata.ResourceMetrics{}
	require.NoError(t, tel.metrics.Collect(context.Background(), all))
	require.Len(t, all.ScopeMetrics, 1)
	var out []string
	for _, m := range all.ScopeMetrics[0].Metrics {
		out = append(out, m.Name)
	}
	sort.Strings(out)
	return out
}

func attrValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, attr := range attrs {
		if string(attr.Key) == key {
			return attr.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTelemetry_Success(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tel := newTelemetry(t)

	var gotHeader http.Header
	c, transport := client.NewMockedClient()
	transport.RegisterResponder(http.MethodGet, "https://api.resend.com/emails/my-secret-id", func(req *http.Request) (*http.Response, error) {
		gotHeader = req.Header
		return httpmock.NewStringResponse(200, `{"id":"my-secret-id"}`), nil
	})
	c = c.WithTelemetry(
		tel.tracerProvider,
		tel.meterProvider,
		otel.WithRedactedPathParam("emailId"),
		otel.WithRedactedHeaders("X-Secret"),
		otel.WithPropagators(propagation.TraceContext{}),
	)
	require.NotNil(t, c.Tracer())

	result := &testResult{}
	httpRequest := request.NewHTTPRequest(c).
		WithGet("/emails/{emailId}").
		AndPathParam("emailId", "my-secret-id").
		AndHeader("X-Secret", "my-secret").
		WithResult(result)
	_, err := request.NewAPIRequest(result, httpRequest).Send(ctx)
	require.NoError(t, err)

	// Spans
	assert.Equal(t, []string{
		"http.request",
		"resend.go.api.client.request",
		"resend.go.client.request",
		"resend.go.client.request.body.parse",
	}, tel.spanNames())
	for _, span := range tel.spans.GetSpans() {
		assert.NotZero(t, span.EndTime, span.Name)
	}

	// Trace context has been propagated
	assert.NotEmpty(t, gotHeader.Get("Traceparent"))

	// Redacted values
	rootSpan := tel.span(t, "resend.go.client.request")
	value, found := attrValue(rootSpan.Attributes, "definition.params.path.emailId")
	require.True(t, found)
	assert.Equal(t, "****", value.AsString())
	value, found = attrValue(rootSpan.Attributes, "definition.header.x-secret")
	require.True(t, found)
	assert.Equal(t, "****", value.AsString())
	value, found = attrValue(rootSpan.Attributes, "api.outcome")
	require.True(t, found)
	assert.Equal(t, "success", value.AsString())

	httpSpan := tel.span(t, "http.request")
	value, found = attrValue(httpSpan.Attributes, "url.full")
	require.True(t, found)
	assert.Equal(t, "https://api.resend.com/emails/****", value.AsString())
	value, found = attrValue(httpSpan.Attributes, "http.request.header.authorization")
	require.True(t, found)
	assert.Equal(t, "****", value.AsString())
	value, found = attrValue(httpSpan.Attributes, "http.response.status_code")
	require.True(t, found)
	assert.Equal(t, int64(200), value.AsInt64())

	// Metrics
	assert.Equal(t, []string{
		"resend.go.client.request.duration",
		"resend.go.client.request.in_flight",
		"resend.go.client.request.parse.duration",
		"resend.go.client.request.parse.in_flight",
		"resend.go.client.request.parse.read_bytes",
		"resend.go.http.request.duration",
		"resend.go.http.request.in_flight",
	}, tel.metricNames(t))
}

func TestTelemetry_APIError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tel := newTelemetry(t)

	c, transport := client.NewMockedClient()
	transport.RegisterResponder(http.MethodPost, "https://api.resend.com/domains", httpmock.NewStringResponder(500, `Internal Server Error`))
	c = c.WithTelemetry(tel.tracerProvider, tel.meterProvider)

	_, _, err := request.NewHTTPRequest(c).WithPost("/domains").WithJSONBody(map[string]string{"name": "example.com"}).Send(ctx)
	require.Error(t, err)

	rootSpan := tel.span(t, "resend.go.client.request")
	assert.Equal(t, codes.Error, rootSpan.Status.Code)
	value, found := attrValue(rootSpan.Attributes, "api.outcome")
	require.True(t, found)
	assert.Equal(t, "transport_failure", value.AsString())

	httpSpan := tel.span(t, "http.request")
	assert.Equal(t, codes.Error, httpSpan.Status.Code)
	assert.Equal(t, "HTTP status code: 500 Internal Server Error", httpSpan.Status.Description)
}

func TestTelemetry_DefinitionError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tel := newTelemetry(t)

	c, transport := client.NewMockedClient()
	c = c.WithTelemetry(tel.tracerProvider, tel.meterProvider)

	_, _, err := request.NewHTTPRequest(c).WithGet("/domains").AndHeader("X-Foo", "a\nb").Send(ctx)
	require.Error(t, err)
	assert.Equal(t, 0, transport.GetTotalCallCount())

	// No HTTP request has been sent, only the root span exists
	assert.Equal(t, []string{"resend.go.client.request"}, tel.spanNames())
	value, found := attrValue(tel.span(t, "resend.go.client.request").Attributes, "api.outcome")
	require.True(t, found)
	assert.Equal(t, "definition_error", value.AsString())
}

func TestNewTrace_NilProviders(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	c, transport := client.NewMockedClient()
	transport.RegisterResponder(http.MethodGet, "https://api.resend.com/domains", httpmock.NewStringResponder(200, `{}`))
	c = c.WithTelemetry(nil, nil)
	assert.Nil(t, c.Tracer())

	_, _, err := request.NewHTTPRequest(c).WithGet("/domains").Send(ctx)
	assert.NoError(t, err)
}

func TestTelemetry_APIRequestTracer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	emailsTel := newTelemetry(t)
	domainsTel := newTelemetry(t)

	emailsClient, emailsTransport := client.NewMockedClient()
	emailsTransport.RegisterResponder(http.MethodGet, "https://api.resend.com/emails/123", httpmock.NewStringResponder(200, `{"id":"123"}`))
	emailsClient = emailsClient.WithTelemetry(emailsTel.tracerProvider, emailsTel.meterProvider)

	domainsClient, domainsTransport := client.NewMockedClient()
	domainsTransport.RegisterResponder(http.MethodGet, "https://api.resend.com/domains/456", httpmock.NewStringResponder(200, `{"id":"456"}`))
	domainsClient = domainsClient.WithTelemetry(domainsTel.tracerProvider, domainsTel.meterProvider)

	// The API request span is started by the tracer of the first request
	email, domain := &testResult{}, &testResult{}
	_, err := request.NewAPIRequest(
		email,
		request.NewHTTPRequest(emailsClient).WithGet("/emails/123").WithResult(email),
		request.NewHTTPRequest(domainsClient).WithGet("/domains/456").WithResult(domain),
	).Send(ctx)
	require.NoError(t, err)
	assert.Equal(t, "456", domain.ID)

	// All spans are recorded by the same tracer, in one trace
	assert.Empty(t, domainsTel.spans.GetSpans())
	assert.Equal(t, []string{
		"http.request",
		"http.request",
		"resend.go.api.client.request",
		"resend.go.client.request",
		"resend.go.client.request",
		"resend.go.client.request.body.parse",
		"resend.go.client.request.body.parse",
	}, emailsTel.spanNames())
	traceID := emailsTel.span(t, "resend.go.api.client.request").SpanContext.TraceID()
	for _, span := range emailsTel.spans.GetSpans() {
		assert.Equal(t, traceID, span.SpanContext.TraceID(), span.Name)
	}

	// Metrics are recorded by the meter of each client
	assert.Contains(t, domainsTel.metricNames(t), "resend.go.client.request.duration")
}
