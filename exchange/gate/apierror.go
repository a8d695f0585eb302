package gate

import "fmt"

//
// APIError implements the exchange.APIError interface for errors returned from Gate.io API calls.
// Gate.io reports a label such as "INVALID_CURRENCY_PAIR" and a message.
//
type APIError struct {
	label   string
	message string
}

func (o *APIError) Code() string {
	return o.label
}

func (o *APIError) Message() string {
	return o.message
}

func (o *APIError) Error() string {
	return fmt.Sprintf("the Gate.io endpoint returned an API error (label: %s, message: %s)", o.label, o.message)
}
