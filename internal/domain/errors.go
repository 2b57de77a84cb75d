package domain

import "errors"

var (
	// ErrInvalidAmount is returned when an amount string is unparsable,
	// non-positive or non-finite.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInsufficientBalance is returned when a withdraw or swap asks for
	// more than the source asset holds.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInvalidAssetPair is returned when a swap names the same asset twice
	// or an unknown asset.
	ErrInvalidAssetPair = errors.New("invalid asset pair")
	// ErrMissingAddress is returned when a withdrawal address is empty.
	ErrMissingAddress = errors.New("missing destination address")
	// ErrUnknownAsset is returned when an asset id does not resolve.
	ErrUnknownAsset = errors.New("unknown asset")
	// ErrUnknownMethod is returned when a deposit names a payment method
	// that is not configured.
	ErrUnknownMethod = errors.New("unknown payment method")
	// ErrFeedUnavailable is returned by a price source that failed to
	// produce quotes. It never propagates past the feed adapter.
	ErrFeedUnavailable = errors.New("price feed unavailable")
	// ErrBusy is returned when an operation surface already has a request
	// in the processing phase.
	ErrBusy = errors.New("operation already in progress")
)
