package chat

import "errors"

// Error taxonomy for the chat core. Transport layers map these onto HTTP
// statuses and websocket error frames; anything else is a storage failure.
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
)
