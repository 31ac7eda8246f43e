package trace

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"os"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"

	"github.com/resend-community/go-client/pkg/client/decode"
	"github.com/resend-community/go-client/pkg/request"
)

const (
	dumpTraceMaxLength = 2000
	maskedHeaderValue  = "****"
)

type dumpTrace struct {
	ClientTrace
	wr io.Writer
}

// DumpTracer dumps HTTP request, HTTP response and the mapped result to a writer.
// The Authorization header is masked, but bodies are dumped as they are, do not use it in production!
func DumpTracer(wr io.Writer) Factory {
	return func(ctx context.Context, reqDef request.HTTPRequest) (context.Context, *ClientTrace) {
		var requestURI string
		var responseStatusCode int
		var startTime, headersTime time.Time

		t := &dumpTrace{wr: wr}
		t.HTTPRequestStart = func(r *http.Request) {
			startTime = time.Now()
			requestURI = r.URL.RequestURI()
			requestDump, err := httputil.DumpRequestOut(r, true)
			t.log()
			t.log(">>>>>> HTTP DUMP")
			if err == nil {
				t.dump(maskHeaders(string(requestDump)))
			} else {
				t.log("cannot dump request: ", err)
			}
		}
		t.HTTPRequestDone = func(r *http.Response, err error) {
			headersTime = time.Now()
			t.log("------")
			if err != nil {
				t.log("ERROR: ", err)
				t.log("<<<<<< HTTP DUMP END")
				return
			}

			responseStatusCode = r.StatusCode

			// Dump response headers
			if v, err := httputil.DumpResponse(r, false); err == nil {
				t.log(strings.TrimSpace(string(v)))
			} else {
				t.log("cannot dump response headers: ", err)
			}

			// Dump response body, the raw body is set back to the response
			if r.Body != nil && r.Body != http.NoBody {
				var rawBody bytes.Buffer
				var decodedBody strings.Builder
				src := &readErrRecorder{r: r.Body}
				failed := true
				if bodyReader, err := decode.Decode(io.NopCloser(io.TeeReader(src, &rawBody)), r.Header.Get("Content-Encoding")); err != nil {
					t.log("cannot decode response body: ", err)
				} else if _, err := io.Copy(&decodedBody, bodyReader); err != nil {
					t.log("cannot read response body: ", err)
				} else {
					failed = false
				}
				r.Body = restoredBody(r.Body, rawBody.Bytes(), src.err, failed)
				t.log("------")
				t.dump(decodedBody.String())
			}
			t.log("<<<<<< HTTP DUMP END")
		}
		t.RequestProcessed = func(result any, err error) {
			t.log()
			t.log(">>>>>> HTTP REQUEST PROCESSED", "|", reqDef.Method(), requestURI, responseStatusCode, "| OUTCOME:", request.OutcomeOf(err), "| ERROR:", err, "| HEADERS AT:", headersTime.Sub(startTime), "| DONE AT:", time.Since(startTime))
			if result != nil {
				t.dump(spewConfig().Sdump(result))
			}
		}
		return ctx, &t.ClientTrace
	}
}

// readErrRecorder remembers the first read error of the raw body, io.EOF excluded.
type readErrRecorder struct {
	r   io.Reader
	err error
}

func (v *readErrRecorder) Read(p []byte) (int, error) {
	n, err := v.r.Read(p)
	if err != nil && err != io.EOF && v.err == nil {
		v.err = err
	}
	return n, err
}

type errReader struct {
	err error
}

func (v errReader) Read([]byte) (int, error) {
	return 0, v.err
}

type readCloser struct {
	io.Reader
	io.Closer
}

// restoredBody returns the raw body for the further processing.
// A read error of the raw body is returned again after the buffered bytes.
// If only decoding failed, the rest of the raw body follows the buffered bytes,
// so the decoding error occurs again when the body is processed.
func restoredBody(original io.ReadCloser, buffered []byte, readErr error, failed bool) io.ReadCloser {
	switch {
	case readErr != nil:
		return readCloser{Reader: io.MultiReader(bytes.NewReader(buffered), errReader{err: readErr}), Closer: original}
	case failed:
		return readCloser{Reader: io.MultiReader(bytes.NewReader(buffered), original), Closer: original}
	default:
		_ = original.Close()
		return io.NopCloser(bytes.NewReader(buffered))
	}
}

func spewConfig() *spew.ConfigState {
	cfg := spew.NewDefaultConfig()
	cfg.DisablePointerAddresses = true
	cfg.DisableCapacities = true
	cfg.SortKeys = true
	return cfg
}

// maskHeaders replaces values of the sensitive headers in a request dump, the body is kept as it is.
func maskHeaders(dump string) string {
	lines := strings.Split(dump, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			break
		}
		name, _, found := strings.Cut(line, ":")
		if found && strings.EqualFold(strings.TrimSpace(name), "Authorization") {
			lines[i] = name + ": " + maskedHeaderValue
			if strings.HasSuffix(line, "\r") {
				lines[i] += "\r"
			}
		}
	}
	return strings.Join(lines, "\n")
}

func (t *dumpTrace) dump(body string) {
	body = strings.TrimSpace(strings.ReplaceAll(body, "\r\n", "\n"))
	if len(body) > dumpTraceMaxLength && os.Getenv("HTTP_DUMP_TRACE_FULL") != "true" { //nolint:forbidigo
		t.log(body[:dumpTraceMaxLength])
		t.log("... (set env HTTP_DUMP_TRACE_FULL=true to see full output)")
	} else {
		t.log(body)
	}
}

func (t *dumpTrace) log(a ...any) {
	_, _ = fmt.Fprintln(t.wr, a...)
}
