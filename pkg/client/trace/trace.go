// Package trace extends the httptrace.ClientTrace and adds hooks for the request lifecycle of the client.Client.
// A custom ClientTrace definition can be registered in the client.Client by the AndTrace method.
package trace

import (
	"context"
	"net/http"
	"net/http/httptrace"
	"reflect"

	"github.com/resend-community/go-client/pkg/request"
)

// Factory creates ClientTrace hooks for a request.
// The returned context is used for the rest of the request, it may carry a span.
type Factory func(ctx context.Context, request request.HTTPRequest) (context.Context, *ClientTrace)

// ClientTrace is a set of hooks to run at various stages of an outgoing HTTPRequest.
type ClientTrace struct {
	httptrace.ClientTrace // native, low level trace
	// HTTPRequestStart is called when the HTTP request begins, it includes redirects.
	HTTPRequestStart func(request *http.Request)
	// HTTPRequestDone is called when the HTTP response headers are received or the request failed.
	HTTPRequestDone func(response *http.Response, err error)
	// BodyParseStart is called before the response body is read.
	BodyParseStart func(response *http.Response)
	// BodyParseDone is called when the response body has been read and mapped.
	// The readBytes is the size of the raw body, before Content-Encoding decoding.
	BodyParseDone func(response *http.Response, readBytes int64, result any, err error)
	// RequestProcessed is called when the client.Client Send method is done.
	RequestProcessed func(result any, err error)
}

// Compose modifies t such that it respects the previously-registered hooks in old.
// Hooks from old are called first. It works the same way as the unexported httptrace.compose.
func (t *ClientTrace) Compose(old *ClientTrace) {
	if old == nil {
		return
	}
	composeHooks(reflect.ValueOf(t).Elem(), reflect.ValueOf(old).Elem())
}

func composeHooks(tv, ov reflect.Value) {
	for i := 0; i < tv.NumField(); i++ {
		tf := tv.Field(i)
		of := ov.Field(i)

		// Embedded httptrace.ClientTrace
		if tf.Kind() == reflect.Struct {
			composeHooks(tf, of)
			continue
		}

		if tf.Kind() != reflect.Func || of.IsNil() {
			continue
		}
		if tf.IsNil() {
			tf.Set(of)
			continue
		}

		// Make a copy of tf for tf to call, otherwise it creates a recursive call cycle.
		tfCopy := reflect.ValueOf(tf.Interface())
		tf.Set(reflect.MakeFunc(tf.Type(), func(args []reflect.Value) []reflect.Value {
			of.Call(args)
			return tfCopy.Call(args)
		}))
	}
}
