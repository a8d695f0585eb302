package coinbasepro

import (
	"errors"
	"fmt"

	api "github.com/preichenberger/go-coinbasepro/v2"
)

//
// APIError implements the exchange.APIError interface for errors returned from Coinbase Pro API
// calls. Coinbase Pro only reports a message.
//
type APIError struct {
	message string
}

func (o *APIError) Code() string {
	return ""
}

func (o *APIError) Message() string {
	return o.message
}

func (o *APIError) Error() string {
	return fmt.Sprintf("the Coinbase Pro endpoint returned an API error (message: %s)", o.message)
}

func wrap(err error) error {
	var apiErr api.Error
	if errors.As(err, &apiErr) {
		return &APIError{message: apiErr.Message}
	}

	return err
}
