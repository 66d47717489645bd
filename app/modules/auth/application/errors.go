package authservice

import "errors"

var (
	// ErrMissingToken is returned when no token is provided.
	ErrMissingToken = errors.New("missing authentication token")

	// ErrMissingSubject is returned when a token is requested without a user id.
	ErrMissingSubject = errors.New("missing token subject")

	// ErrGenerateToken is returned when token generation fails.
	ErrGenerateToken = errors.New("failed to generate token")
)
