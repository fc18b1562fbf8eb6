package audit

import "errors"

var (
	ErrInvalidEvent = errors.New("invalid security event")
	ErrWriterClosed = errors.New("security event writer is closed")
)
