package resend

import (
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// APIError represents the structure of Resend API error.
type APIError struct {
	Name     string `json:"name"`
	Code     int    `json:"status_code"`
	Message  string `json:"message"`
	request  *http.Request
	response *http.Response
}

// UnmarshalJSON accepts only a body with all the "name", "status_code" and "message" fields.
// Any other body is not a Resend API error, for example an HTML page of a proxy.
func (e *APIError) UnmarshalJSON(data []byte) error {
	type raw APIError
	return decodeStrict(data, (*raw)(e), "name", "status_code", "message")
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf(`%s, name: "%s", httpCode: "%d"`, e.Message, e.Name, e.StatusCode())
	if e.request != nil {
		msg += fmt.Sprintf(`, method: "%s", url: "%s"`, e.request.Method, e.request.URL)
	}
	return msg
}

// ErrorName returns a machine-readable name of the error, for example "validation_error".
func (e *APIError) ErrorName() string {
	return e.Name
}

// ErrorUserMessage returns error message for end user.
func (e *APIError) ErrorUserMessage() string {
	return e.Message
}

// StatusCode returns the status code reported by the API, or the HTTP status code if it is missing.
func (e *APIError) StatusCode() int {
	if e.Code == 0 && e.response != nil {
		return e.response.StatusCode
	}
	return e.Code
}

// SetRequest method allows injection of HTTP request to the error, it implements client.errorWithRequest.
func (e *APIError) SetRequest(request *http.Request) {
	e.request = request
}

// SetResponse method allows injection of HTTP response to the error, it implements client.errorWithResponse.
func (e *APIError) SetResponse(response *http.Response) {
	e.response = response
}
