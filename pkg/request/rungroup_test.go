package request_test

import (
	"context"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"

	"github.com/resend-community/go-client/pkg/client"
	"github.com/resend-community/go-client/pkg/request"
)

func TestRunGroup(t *testing.T) {
	t.Parallel()
	c, transport := client.NewMockedClient()
	transport.RegisterResponder("GET", `=~^https://api.resend.com/emails/`, httpmock.NewStringResponder(200, `{"id":"ok"}`))

	// Create run group
	g := request.NewRunGroup(context.Background())
	getEmail := func(id string) request.HTTPRequest {
		return request.NewHTTPRequest(c).WithGet("/emails/{emailId}").AndPathParam("emailId", id).WithResult(&testResult{})
	}

	// Add requests
	g.Add(getEmail("1"))
	g.Add(getEmail("2"))
	g.Add(getEmail("3").
		WithOnSuccess(func(ctx context.Context, response request.HTTPResponse) error {
			g.Add(getEmail("5"))
			return nil
		}).
		WithOnError(func(ctx context.Context, response request.HTTPResponse, err error) error {
			g.Add(getEmail("err"))
			return err
		}),
	)
	g.Add(getEmail("4").
		WithOnSuccess(func(ctx context.Context, response request.HTTPResponse) error {
			g.Add(getEmail("6"))
			return nil
		}),
	)

	// No requests have been sent yet
	assert.Equal(t, 0, transport.GetTotalCallCount())

	// Run and wait
	assert.NoError(t, g.RunAndWait())

	// All requests have been sent
	assert.Equal(t, map[string]int{
		"GET =~^https://api.resend.com/emails/": 6,
		"GET https://api.resend.com/emails/1":   1,
		"GET https://api.resend.com/emails/2":   1,
		"GET https://api.resend.com/emails/3":   1,
		"GET https://api.resend.com/emails/4":   1,
		"GET https://api.resend.com/emails/5":   1,
		"GET https://api.resend.com/emails/6":   1,
	}, transport.GetCallCountInfo())
}

func TestRunGroup_HandleError(t *testing.T) {
	t.Parallel()
	c, transport := client.NewMockedClient()
	transport.RegisterResponder("GET", `=~^https://api.resend.com/`, httpmock.NewStringResponder(401, "Unauthorized"))

	// Create run group
	g := request.NewRunGroup(context.Background())

	// Add requests
	requestsCount := 100
	assert.Greater(t, requestsCount, request.RunGroupConcurrencyLimit)
	for i := 1; i <= requestsCount; i++ {
		g.Add(request.NewHTTPRequest(c).WithGet("/domains"))
	}

	// No requests have been sent yet
	assert.Equal(t, 0, transport.GetTotalCallCount())

	// Run and wait, first error is returned
	err := g.RunAndWait()
	assert.Error(t, err)
	assert.Equal(t, `request GET "https://api.resend.com/domains" failed: 401 Unauthorized`, err.Error())
	assert.Equal(t, request.OutcomeTransportFailure, request.OutcomeOf(err))

	// NOT all requests have been sent
	// Sending stops when the first error occurs
	assert.Less(t, transport.GetTotalCallCount(), 100)
}
