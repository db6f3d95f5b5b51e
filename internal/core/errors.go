package core

import "errors"

var (
	// ErrUnauthorized is returned by providers when the backend rejects the credentials.
	ErrUnauthorized = errors.New("backend unauthorized")

	ErrMalformedBlob = errors.New("malformed history blob")
	ErrNotFound      = errors.New("not found")
)
