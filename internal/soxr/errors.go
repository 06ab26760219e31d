package soxr

import "errors"

// Sentinel errors returned by the backend.
var (
	ErrInvalidRate         = errors.New("soxr: invalid sample rate")
	ErrInvalidChannels     = errors.New("soxr: invalid channel count")
	ErrChannelsLocked      = errors.New("soxr: channel count cannot change mid-stream")
	ErrUnsupportedDatatype = errors.New("soxr: unsupported datatype")
	ErrInvalidQuality      = errors.New("soxr: invalid quality spec")
	ErrFlushing            = errors.New("soxr: input after flush")
	ErrShortBuffer         = errors.New("soxr: buffer too short")
	ErrDeleted             = errors.New("soxr: use of deleted handle")
	ErrNotSupported        = errors.New("soxr: not supported")
)
