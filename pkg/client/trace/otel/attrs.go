package otel

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strings"

	"github.com/spf13/cast"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/resend-community/go-client/pkg/request"
)

const maskedAttrValue = "****"

type attributes struct {
	config config
	// redactedValues are path parameter values masked in URLs
	redactedValues []string
	// definition attributes for span and metrics
	definition []attribute.KeyValue
	// definitionExtra attributes for span only
	definitionExtra []attribute.KeyValue
	// httpRequest attributes for span and metrics
	httpRequest []attribute.KeyValue
	// httpRequestExtra attributes for span only
	httpRequestExtra []attribute.KeyValue
	// httpResponse attributes for span and metrics
	httpResponse []attribute.KeyValue
	// httpResponseExtra attributes for span only
	httpResponseExtra []attribute.KeyValue
}

func newAttributes(cfg config, reqDef request.HTTPRequest) *attributes {
	out := &attributes{config: cfg}

	var resultType string
	if v := reflect.TypeOf(reqDef.ResultDef()); v != nil {
		resultType = v.String()
	}

	// Path is a template, so it has low cardinality and can be used in metrics
	out.definition = []attribute.KeyValue{
		attribute.String("definition.method", reqDef.Method()),
		attribute.String("definition.url.path", reqDef.Path()),
		attribute.String("definition.result.type", resultType),
	}

	out.definitionExtra = append(out.definitionExtra, headerAttrs("definition.header.", reqDef.RequestHeader(), cfg.redactedHeaders)...)
	for k, v := range reqDef.PathParams() {
		value := cast.ToString(v)
		if _, found := cfg.redactedPathParams[strings.ToLower(k)]; found {
			out.redactedValues = append(out.redactedValues, url.PathEscape(value))
			value = maskedAttrValue
		}
		out.definitionExtra = append(out.definitionExtra, attribute.String("definition.params.path."+k, value))
	}
	sortAttrs(out.definitionExtra)

	return out
}

func (v *attributes) SetFromRequest(req *http.Request) {
	v.httpRequest = []attribute.KeyValue{
		semconv.HTTPRequestMethodKey.String(req.Method),
		semconv.ServerAddress(req.URL.Hostname()),
	}

	urlStr := req.URL.String()
	for _, value := range v.redactedValues {
		if value != "" {
			urlStr = strings.ReplaceAll(urlStr, value, maskedAttrValue)
		}
	}
	v.httpRequestExtra = append([]attribute.KeyValue{semconv.URLFull(urlStr)}, headerAttrs("http.request.header.", req.Header, v.config.redactedHeaders)...)
}

func (v *attributes) SetFromResponse(res *http.Response, err error) {
	if res == nil {
		v.httpResponse = []attribute.KeyValue{semconv.HTTPResponseStatusCode(0)}
		v.httpResponseExtra = nil
	} else {
		v.httpResponse = []attribute.KeyValue{semconv.HTTPResponseStatusCode(res.StatusCode)}
		v.httpResponseExtra = headerAttrs("http.response.header.", res.Header, v.config.redactedHeaders)
	}

	var netErr net.Error
	errors.As(err, &netErr)
	v.httpResponseExtra = append(v.httpResponseExtra,
		attribute.Bool("http.response.error.has", err != nil),
		attribute.Bool("http.response.error.net", netErr != nil),
		attribute.Bool("http.response.error.timeout", netErr != nil && netErr.Timeout()),
		attribute.Bool("http.response.error.cancelled", errors.Is(err, context.Canceled)),
		attribute.Bool("http.response.error.deadline_exceeded", errors.Is(err, context.DeadlineExceeded)),
	)
}

func headerAttrs(prefix string, header http.Header, redacted map[string]struct{}) []attribute.KeyValue {
	var out []attribute.KeyValue
	for key, values := range header {
		key = strings.ToLower(key)
		value := strings.Join(values, ";")
		if _, found := redacted[key]; found {
			value = maskedAttrValue
		}
		out = append(out, attribute.String(prefix+key, value))
	}
	sortAttrs(out)
	return out
}

func sortAttrs(attrs []attribute.KeyValue) {
	sort.SliceStable(attrs, func(i, j int) bool {
		return attrs[i].Key < attrs[j].Key
	})
}

func outcomeAttr(err error) attribute.KeyValue {
	return attribute.String("api.outcome", request.OutcomeOf(err).String())
}
