package request

import (
	"errors"
	"fmt"
)

// Outcome classifies the result of a sent request.
type Outcome int

const (
	// OutcomeSuccess - the response status was not an error and the body has been mapped to the ResultDef.
	OutcomeSuccess Outcome = iota
	// OutcomeAPIError - the response status was an error and the body has been mapped to the ErrorDef.
	OutcomeAPIError
	// OutcomeParseError - the response status was not an error, but the body doesn't match the ResultDef, see ParseError.
	OutcomeParseError
	// OutcomeTransportFailure - no response has been received,
	// or the response status was an error and the body doesn't match the ErrorDef, see TransportError.
	OutcomeTransportFailure
	// OutcomeDefinitionError - the request could not be built, nothing has been sent, see DefinitionError.
	OutcomeDefinitionError
	// OutcomeOther - the error has been returned by a callback registered to the request.
	OutcomeOther
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeAPIError:
		return "api_error"
	case OutcomeParseError:
		return "parse_error"
	case OutcomeTransportFailure:
		return "transport_failure"
	case OutcomeDefinitionError:
		return "definition_error"
	default:
		return "other"
	}
}

// APIError is implemented by error values registered by the HTTPRequest.WithError method.
type APIError interface {
	error
	// StatusCode returns HTTP status code.
	StatusCode() int
}

// OutcomeOf returns the Outcome of a request from the error returned by the request Send method.
func OutcomeOf(err error) Outcome {
	var definitionErr *DefinitionError
	var parseErr *ParseError
	var transportErr *TransportError
	var apiErr APIError
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.As(err, &definitionErr):
		return OutcomeDefinitionError
	case errors.As(err, &parseErr):
		return OutcomeParseError
	case errors.As(err, &transportErr):
		return OutcomeTransportFailure
	case errors.As(err, &apiErr):
		return OutcomeAPIError
	default:
		return OutcomeOther
	}
}

// DefinitionError is returned if the request cannot be built,
// for example a header value contains invalid bytes or the JSON body cannot be encoded.
// No network activity occurs in that case.
type DefinitionError struct {
	Err error
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("invalid request definition: %s", e.Err)
}

func (e *DefinitionError) Unwrap() error {
	return e.Err
}

// TransportError is returned if no HTTP response has been received (StatusCode is 0),
// or if the response status is an error and the body cannot be mapped to the ErrorDef.
// In the second case, the error describes the HTTP status, the body decoding error is discarded.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError is returned if the response status is not an error, but the body cannot be mapped to the ResultDef.
// It usually means the response schema has changed.
type ParseError struct {
	StatusCode int
	// Body is the raw response body, for diagnostics.
	Body string
	Err  error
}

func (e *ParseError) Error() string {
	return e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
