package courier

import (
	"errors"
	"fmt"
)

// ErrRequestTooLarge indicates that a request body exceeded the client's
// maximum request size, or that a response body exceeded its maximum
// response size.
var ErrRequestTooLarge = errors.New("message body exceeds the maximum size")

// ErrMalformed indicates that a response body could not be read in its
// entirety.
var ErrMalformed = errors.New("malformed response body")

// ErrInvalidCertificateStore indicates that a client could not be built
// because its certificate store is unrecognized or could not be loaded.
var ErrInvalidCertificateStore = errors.New("invalid certificate store")

// ErrTooManyRedirects indicates that a request was abandoned because the
// server redirected the client too many times in succession.
var ErrTooManyRedirects = errors.New("too many redirects")

// URLError indicates that a URL is unusable as a request target, either
// because it could not be parsed or because it violates the client's
// requirements.
//
// It is returned by New() when the target URL is invalid, and by the send
// methods when a server supplies an unparsable Location header during
// redirection.
type URLError struct {
	// Reason is a human-readable description of the problem with the URL.
	Reason string
}

func (e *URLError) Error() string {
	return fmt.Sprintf("invalid URL: %s", e.Reason)
}

// HTTPError indicates a failure within the underlying HTTP machinery, such
// as a connection failure, rather than a well-formed response that reports
// an error.
type HTTPError struct {
	// Cause is the error produced by the HTTP machinery.
	Cause error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http error: %s", e.Cause)
}

// Unwrap returns the cause of e.
func (e *HTTPError) Unwrap() error {
	return e.Cause
}

// RequestFailureError indicates that a server produced a well-formed
// response with a status code that reports a failure, that is, any status
// outside the 2xx range other than a redirection that the client follows.
type RequestFailureError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int
}

func (e *RequestFailureError) Error() string {
	return fmt.Sprintf("request failed with status code %d", e.StatusCode)
}
