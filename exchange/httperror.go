package exchange

import (
	"fmt"
	"net/http"
)

//
// HTTPError represents an error due to a non-2xx response from an API endpoint. When dealing with
// cryptocurrency exchange APIs, such a response almost always means that something critically wrong
// has occurred.
//
type HTTPError struct {
	statusCode int
	body       string
}

//
// NewHTTPError instantiates an HTTP error. Only the first 256 bytes of the body are kept.
//
func NewHTTPError(statusCode int, body []byte) *HTTPError {
	if len(body) > 256 {
		body = body[:256]
	}

	return &HTTPError{
		statusCode: statusCode,
		body:       string(body),
	}
}

func (o *HTTPError) StatusCode() int {
	return o.statusCode
}

func (o *HTTPError) Body() string {
	return o.body
}

func (o *HTTPError) Error() string {
	return fmt.Sprintf("server responded with a %d (%s) status code", o.statusCode, http.StatusText(o.statusCode))
}
