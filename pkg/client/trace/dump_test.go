package trace_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/jarcoal/httpmock"
	"github.com/keboola/go-utils/pkg/wildcards"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resend-community/go-client/pkg/client"
	"github.com/resend-community/go-client/pkg/client/trace"
	"github.com/resend-community/go-client/pkg/request"
)

func TestDumpTracer(t *testing.T) {
	t.Parallel()

	// Mocked response
	c, transport := client.NewMockedClient()
	transport.RegisterResponder(http.MethodPost, "https://api.resend.com/emails", httpmock.NewStringResponder(200, `{"id":"mock-id"}`))

	// Logs for trace testing
	var logs strings.Builder
	c = c.AndTrace(trace.DumpTracer(&logs))

	// Test
	ctx := context.Background()
	_, result, err := request.NewHTTPRequest(c).WithPost("/emails").WithJSONBody(map[string]string{"subject": "Hello"}).WithResult(&testResult{}).Send(ctx)
	require.NoError(t, err)
	assert.Equal(t, &testResult{ID: "mock-id"}, result)

	// Expected trace
	expected := `
>>>>>> HTTP DUMP
POST /emails HTTP/1.1
%AAuthorization: ****
%A{"subject":"Hello"}
------
HTTP/%A
------
{"id":"mock-id"}
<<<<<< HTTP DUMP END

>>>>>> HTTP REQUEST PROCESSED | POST /emails 200 | OUTCOME: success | ERROR: <nil> | HEADERS AT: %s | DONE AT: %s
(*trace_test.testResult)({
 ID: (string) (len=7) "mock-id"
})
`
	wildcards.Assert(t, expected, logs.String())
	assert.NotContains(t, logs.String(), client.TestAPIKey)
}

func TestDumpTracer_BodyReadError(t *testing.T) {
	t.Parallel()

	// The body is cut after a few bytes
	c, transport := client.NewMockedClient()
	transport.RegisterResponder(http.MethodGet, "https://api.resend.com/domains", func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     make(http.Header),
			Body:       io.NopCloser(io.MultiReader(strings.NewReader(`{"id":`), iotest.ErrReader(errors.New("connection reset by peer")))),
			Request:    req,
		}, nil
	})

	var logs strings.Builder
	c = c.AndTrace(trace.DumpTracer(&logs))

	// The read error is not hidden by the dump
	_, _, err := request.NewHTTPRequest(c).WithGet("/domains").WithResult(&testResult{}).Send(context.Background())
	require.Error(t, err)
	assert.Equal(t, request.OutcomeTransportFailure, request.OutcomeOf(err))
	assert.Equal(t, `cannot process request GET "https://api.resend.com/domains": cannot read response body: connection reset by peer`, err.Error())
	assert.Contains(t, logs.String(), "cannot read response body")
}

func TestDumpTracer_BodyDecodeError(t *testing.T) {
	t.Parallel()

	c, transport := client.NewMockedClient()
	transport.RegisterResponder(http.MethodGet, "https://api.resend.com/domains", func(req *http.Request) (*http.Response, error) {
		res := httpmock.NewStringResponse(http.StatusOK, `not gzip`)
		res.Header.Set("Content-Encoding", "gzip")
		return res, nil
	})

	var logs strings.Builder
	c = c.AndTrace(trace.DumpTracer(&logs))

	_, _, err := request.NewHTTPRequest(c).WithGet("/domains").WithResult(&testResult{}).Send(context.Background())
	require.Error(t, err)
	assert.Equal(t, request.OutcomeTransportFailure, request.OutcomeOf(err))
	assert.Contains(t, err.Error(), "cannot decode gzip")
	assert.Contains(t, logs.String(), "cannot decode response body")
}
