package client

import (
	"context"
	"os"

	"github.com/jarcoal/httpmock"

	"github.com/resend-community/go-client/pkg/client/trace"
	"github.com/resend-community/go-client/pkg/request"
)

// TestAPIKey is used by the NewTestClient.
const TestAPIKey = "re_test_123456789"

// NewTestClient creates the Client for tests.
//
// If the TEST_HTTP_CLIENT_VERBOSE environment variable is set to "true",
// then all HTTP requests and responses are dumped to stdout.
func NewTestClient() Client {
	return New(TestAPIKey).
		WithTrace(func(ctx context.Context, reqDef request.HTTPRequest) (context.Context, *trace.ClientTrace) {
			if os.Getenv("TEST_HTTP_CLIENT_VERBOSE") == "true" { //nolint:forbidigo
				return trace.DumpTracer(os.Stdout)(ctx, reqDef)
			}
			return ctx, nil
		})
}

// NewMockedClient creates the Client with mocked HTTP transport.
// Responders are registered for the DefaultBaseURL, for example "https://api.resend.com/emails".
func NewMockedClient() (Client, *httpmock.MockTransport) {
	mockTransport := httpmock.NewMockTransport()
	return NewTestClient().WithTransport(mockTransport), mockTransport
}
