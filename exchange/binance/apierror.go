package binance

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/adshao/go-binance/v2/common"
)

//
// APIError implements the exchange.APIError interface for errors returned from Binance API calls.
//
type APIError struct {
	err *common.APIError
}

func (o *APIError) Code() string {
	return strconv.FormatInt(o.err.Code, 10)
}

func (o *APIError) Message() string {
	return o.err.Message
}

func (o *APIError) Error() string {
	return fmt.Sprintf("the Binance endpoint returned an API error (code: %d, message: %s)", o.err.Code, o.err.Message)
}

func (o *APIError) Unwrap() error {
	return o.err
}

//
// wrap converts library API errors into *APIError and passes everything else through.
//
func wrap(err error) error {
	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		return &APIError{err: apiErr}
	}

	return err
}
