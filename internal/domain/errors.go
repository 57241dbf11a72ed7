package domain

import "errors"

var (
	// ErrInvalidQuery is returned when the search query is missing or empty
	ErrInvalidQuery = errors.New("search query must not be empty")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrRetailerUnavailable is returned when a retailer request fails
	ErrRetailerUnavailable = errors.New("retailer request failed")

	// ErrMalformedPayload is returned when a retailer response cannot be parsed
	ErrMalformedPayload = errors.New("malformed retailer payload")

	// ErrBlocked is returned when a retailer served a block/captcha page instead of results
	ErrBlocked = errors.New("retailer blocked the request")

	// ErrTokenUnavailable is returned when no usable marketplace token exists
	ErrTokenUnavailable = errors.New("marketplace token unavailable")

	// ErrUnknownSource is returned when a source adapter lookup fails
	ErrUnknownSource = errors.New("unknown source adapter")
)
