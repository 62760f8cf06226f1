package user

import "errors"

var (
	// ErrInvalid reports a registration or verification call with a missing name or secret.
	ErrInvalid = errors.New("user: name and secret are required")

	// ErrNameTaken reports a registration for a name that already exists.
	ErrNameTaken = errors.New("user: name already registered")

	// ErrNotFound reports a lookup for a name with no stored record.
	ErrNotFound = errors.New("user: not found")

	// ErrUnauthorized reports a failed credential verification. Unknown
	// names and wrong secrets are indistinguishable through this error.
	ErrUnauthorized = errors.New("user: invalid credentials")
)
