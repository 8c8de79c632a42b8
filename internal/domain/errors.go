package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrAgentUnavailable is returned when the browsing agent capability is not configured
	ErrAgentUnavailable = errors.New("browsing agent unavailable")

	// ErrUnparseable is returned when an agent response carries no usable payload
	ErrUnparseable = errors.New("agent response unparseable")

	// ErrBatchTimeout is returned when a whole batch exceeds its wall-clock deadline
	ErrBatchTimeout = errors.New("batch timed out")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
