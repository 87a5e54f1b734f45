package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTokenExpired indicates the auth token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the auth token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrAllProvidersFailed indicates every candidate provider was tried
	// without success. This is the gateway's only terminal error.
	ErrAllProvidersFailed = errors.New("all providers failed or are rate limited")

	// ErrNoProviders indicates the registry holds no provider with the
	// requested capability.
	ErrNoProviders = errors.New("no providers configured")

	// ErrCapabilityUnsupported indicates a provider was asked for a
	// capability it does not implement.
	ErrCapabilityUnsupported = errors.New("capability not supported")

	// ErrUnsupportedFormat indicates a document format no normaliser handles
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrEmptyDocument indicates extraction produced no usable text
	ErrEmptyDocument = errors.New("document contains no extractable text")

	// ErrEmptyIndex indicates a query against an unpopulated vector index
	ErrEmptyIndex = errors.New("vector index is empty")

	// ErrDimensionMismatch indicates a vector with the wrong dimensionality
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrSnapshotCorrupt indicates a persisted index snapshot failed to decode
	ErrSnapshotCorrupt = errors.New("snapshot corrupt")

	// ErrServiceUnavailable indicates a backing service could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")
)
