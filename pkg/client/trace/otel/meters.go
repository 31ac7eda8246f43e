package otel

import otelMetric "go.opentelemetry.io/otel/metric"

type meters struct {
	clientInFlight otelMetric.Int64UpDownCounter
	clientDuration otelMetric.Float64Histogram
	httpInFlight   otelMetric.Int64UpDownCounter
	httpDuration   otelMetric.Float64Histogram
	parseInFlight  otelMetric.Int64UpDownCounter
	parseDuration  otelMetric.Float64Histogram
	parseBytes     otelMetric.Int64Counter
}

func newMeters(meter otelMetric.Meter) *meters {
	return &meters{
		clientInFlight: upDownCounter(meter, clientPrefix+"request.in_flight", "API client: in flight requests."),
		clientDuration: histogram(meter, clientPrefix+"request.duration", "API client: request duration, including redirects and body parsing.", "ms"),
		httpInFlight:   upDownCounter(meter, httpPrefix+"request.in_flight", "HTTP request: in flight requests."),
		httpDuration:   histogram(meter, httpPrefix+"request.duration", "HTTP request: duration until the response headers are received.", "ms"),
		parseInFlight:  upDownCounter(meter, clientPrefix+"request.parse.in_flight", "API client: in flight response parsing."),
		parseDuration:  histogram(meter, clientPrefix+"request.parse.duration", "API client: response parsing duration.", "ms"),
		parseBytes:     counter(meter, clientPrefix+"request.parse.read_bytes", "API client: size of the received response bodies.", "By"),
	}
}

func upDownCounter(meter otelMetric.Meter, name, desc string) otelMetric.Int64UpDownCounter {
	return mustInstrument(meter.Int64UpDownCounter(name, otelMetric.WithDescription(desc)))
}

func counter(meter otelMetric.Meter, name, desc, unit string) otelMetric.Int64Counter {
	return mustInstrument(meter.Int64Counter(name, otelMetric.WithDescription(desc), otelMetric.WithUnit(unit)))
}

func histogram(meter otelMetric.Meter, name, desc, unit string) otelMetric.Float64Histogram {
	return mustInstrument(meter.Float64Histogram(name, otelMetric.WithDescription(desc), otelMetric.WithUnit(unit)))
}

func mustInstrument[T any](instrument T, err error) T {
	if err != nil {
		panic(err)
	}
	return instrument
}
