package resend_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/resend-community/go-client/pkg/resend"
)

func TestAPIError_Unmarshal(t *testing.T) {
	t.Parallel()

	e := &APIError{}
	require.NoError(t, json.Unmarshal([]byte(`{"name":"not_found","status_code":404,"message":"Domain not found"}`), e))
	assert.Equal(t, "not_found", e.ErrorName())
	assert.Equal(t, 404, e.StatusCode())
	assert.Equal(t, "Domain not found", e.ErrorUserMessage())
}

func TestAPIError_Unmarshal_MissingFields(t *testing.T) {
	t.Parallel()

	cases := []struct {
		body     string
		expected string
	}{
		{body: `{}`, expected: `missing field "name"`},
		{body: `{"name":"not_found","message":"Domain not found"}`, expected: `missing field "status_code"`},
		{body: `{"name":"not_found","status_code":404}`, expected: `missing field "message"`},
		{body: `{"name":"not_found","status_code":null,"message":"Domain not found"}`, expected: `missing field "status_code"`},
	}

	for _, tc := range cases {
		err := json.Unmarshal([]byte(tc.body), &APIError{})
		if assert.Error(t, err, tc.body) {
			assert.Contains(t, err.Error(), tc.expected)
		}
	}

	// Not an object at all
	assert.Error(t, json.Unmarshal([]byte(`"error"`), &APIError{}))
}

func TestAPIError_Msg(t *testing.T) {
	t.Parallel()
	reqURL, _ := url.Parse("https://api.resend.com/domains/123")
	e := &APIError{Name: "not_found", Code: 404, Message: "Domain not found"}
	assert.Equal(t, `Domain not found, name: "not_found", httpCode: "404"`, e.Error())

	e.SetRequest(&http.Request{URL: reqURL, Method: http.MethodGet})
	e.SetResponse(&http.Response{StatusCode: 404})
	assert.Equal(t, `Domain not found, name: "not_found", httpCode: "404", method: "GET", url: "https://api.resend.com/domains/123"`, e.Error())
}

func TestAPIError_StatusCodeFromResponse(t *testing.T) {
	t.Parallel()
	e := &APIError{}
	assert.Equal(t, 0, e.StatusCode())
	e.SetResponse(&http.Response{StatusCode: 429})
	assert.Equal(t, 429, e.StatusCode())
}
