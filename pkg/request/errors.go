package request

import "errors"

var (
	// ErrInternalServer is returned to the client when a handler fails unexpectedly.
	ErrInternalServer = errors.New("internal server error")
)
