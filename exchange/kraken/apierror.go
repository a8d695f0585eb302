package kraken

import (
	"fmt"
	"strings"
)

//
// APIError implements the exchange.APIError interface for errors returned from Kraken API calls.
// Kraken reports errors as strings such as "EGeneral:Invalid arguments".
//
type APIError struct {
	code    string
	message string
	others  []string
}

func newAPIError(errs []string) *APIError {
	if len(errs) == 0 {
		return nil
	}

	o := &APIError{code: errs[0], others: errs[1:]}

	if i := strings.Index(errs[0], ":"); i >= 0 {
		o.code = errs[0][:i]
		o.message = errs[0][i+1:]
	}

	return o
}

func (o *APIError) Code() string {
	return o.code
}

func (o *APIError) Message() string {
	return o.message
}

func (o *APIError) Error() string {
	msg := fmt.Sprintf("the Kraken endpoint returned an API error (code: %s, message: %s)", o.code, o.message)

	if len(o.others) > 0 {
		msg += fmt.Sprintf(" (and %d more: %s)", len(o.others), strings.Join(o.others, "; "))
	}

	return msg
}
