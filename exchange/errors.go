package exchange

import "errors"

var (
	// ErrNotSupported is returned by catalogue endpoints that a binding does not implement.
	ErrNotSupported = errors.New("endpoint not supported by this exchange")

	// ErrAuthRequired is returned by private endpoints when no credentials were provided.
	ErrAuthRequired = errors.New("endpoint requires an API key and secret")

	// ErrUnknownExchange is returned when an identifier is not in the directory.
	ErrUnknownExchange = errors.New("unknown exchange")

	// ErrBadArgument is returned when an argument cannot be converted to what the endpoint needs.
	ErrBadArgument = errors.New("bad argument")

	// ErrUnknownSymbol is returned when a unified symbol cannot be mapped to a market.
	ErrUnknownSymbol = errors.New("unknown symbol")
)
