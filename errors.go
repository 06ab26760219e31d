package swresample

import "errors"

// Common errors returned by the host and its backends.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid resampler configuration")

	// ErrUnsupportedFormat indicates the backend has no mapping for a sample format.
	ErrUnsupportedFormat = errors.New("unsupported sample format")

	// ErrNotSupported indicates the requested operation is not supported by the backend.
	ErrNotSupported = errors.New("operation not supported")

	// ErrUnknownBackend indicates no backend is registered under the given name.
	ErrUnknownBackend = errors.New("unknown resampler backend")

	// ErrClosed indicates the resampler or context has been closed.
	ErrClosed = errors.New("resampler closed")

	// ErrProcess indicates the backend failed while converting samples.
	ErrProcess = errors.New("resampler processing failed")
)
