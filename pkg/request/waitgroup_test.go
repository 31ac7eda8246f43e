package request_test

import (
	"context"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"

	"github.com/resend-community/go-client/pkg/client"
	"github.com/resend-community/go-client/pkg/request"
)

func TestWaitGroup(t *testing.T) {
	t.Parallel()
	c, transport := client.NewMockedClient()
	transport.RegisterResponder("GET", `=~^https://api.resend.com/domains/`, httpmock.NewStringResponder(200, `{"id":"ok"}`))

	// Create wait group
	g := request.NewWaitGroup(context.Background())
	getDomain := func(id string) request.HTTPRequest {
		return request.NewHTTPRequest(c).WithGet("/domains/{domainId}").AndPathParam("domainId", id).WithResult(&testResult{})
	}

	// Send requests
	g.Send(getDomain("1"))
	g.Send(getDomain("2"))
	g.Send(getDomain("3").
		WithOnSuccess(func(ctx context.Context, response request.HTTPResponse) error {
			g.Send(getDomain("5"))
			return nil
		}).
		WithOnError(func(ctx context.Context, response request.HTTPResponse, err error) error {
			g.Send(getDomain("err"))
			return err
		}),
	)
	g.Send(getDomain("4").
		WithOnSuccess(func(ctx context.Context, response request.HTTPResponse) error {
			g.Send(getDomain("6"))
			return nil
		}),
	)

	// Requests are sent immediately
	assert.Eventually(t, func() bool {
		return transport.GetTotalCallCount() > 0
	}, time.Second, 10*time.Millisecond)

	// Wait for all requests
	assert.NoError(t, g.Wait())

	// No new request
	assert.Equal(t, map[string]int{
		"GET =~^https://api.resend.com/domains/": 6,
		"GET https://api.resend.com/domains/1":   1,
		"GET https://api.resend.com/domains/2":   1,
		"GET https://api.resend.com/domains/3":   1,
		"GET https://api.resend.com/domains/4":   1,
		"GET https://api.resend.com/domains/5":   1,
		"GET https://api.resend.com/domains/6":   1,
	}, transport.GetCallCountInfo())
}

func TestWaitGroup_HandleError(t *testing.T) {
	t.Parallel()
	c, transport := client.NewMockedClient()
	transport.RegisterResponder("GET", `=~^https://api.resend.com/`, httpmock.NewStringResponder(401, "Unauthorized"))

	// Create wait group
	g := request.NewWaitGroup(context.Background())

	// Send requests
	requestsCount := 100
	assert.Greater(t, requestsCount, request.WaitGroupConcurrencyLimit)
	for i := 1; i <= requestsCount; i++ {
		g.Send(request.NewHTTPRequest(c).WithGet("/domains"))
	}

	// All errors are returned
	err := g.Wait()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `100 errors occurred:`)

	// All requests have been sent
	assert.Equal(t, 100, transport.GetTotalCallCount())
}

func TestWaitGroup_SingleError(t *testing.T) {
	t.Parallel()
	c, transport := client.NewMockedClient()
	transport.RegisterResponder("GET", "https://api.resend.com/domains", httpmock.NewStringResponder(401, "Unauthorized"))

	g := request.NewWaitGroupWithLimit(context.Background(), 1)
	g.Send(request.NewHTTPRequest(c).WithGet("/domains"))

	// Single error is not wrapped
	err := g.Wait()
	assert.Equal(t, request.OutcomeTransportFailure, request.OutcomeOf(err))
	assert.Equal(t, `request GET "https://api.resend.com/domains" failed: 401 Unauthorized`, err.Error())
}

func TestWaitGroup_CanceledContext(t *testing.T) {
	t.Parallel()
	c, transport := client.NewMockedClient()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := request.NewWaitGroup(ctx)
	g.Send(request.NewHTTPRequest(c).WithGet("/domains"))
	err := g.Wait()
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, transport.GetTotalCallCount())
}
