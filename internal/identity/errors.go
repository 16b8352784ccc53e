package identity

import "errors"

var (
	// ErrNotFound signals the referenced user does not exist.
	ErrNotFound = errors.New("identity: user not found")
	// ErrEmailTaken signals a registration against an existing email.
	ErrEmailTaken = errors.New("identity: email already registered")
	// ErrInvalidInput signals missing or malformed request fields.
	ErrInvalidInput = errors.New("identity: invalid input")
	// ErrInvalidCredentials signals a failed password comparison.
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
	// ErrInvalidToken signals a missing, malformed, expired or mis-purposed
	// bearer credential.
	ErrInvalidToken = errors.New("identity: invalid token")
)
