/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific business or system errors both internally
within the server and in communication with clients.
*/
package errs

// 1xxx: Request Validation Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrMissingFields indicates that a required request field was absent or empty.
	ErrMissingFields = 1005

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1006
)

// 2xxx: Authentication Errors
const (
	// ErrMissingToken indicates that no bearer token was supplied on a gated endpoint.
	ErrMissingToken = 2001

	// ErrInvalidToken indicates a malformed, tampered, or expired bearer token.
	ErrInvalidToken = 2002

	// ErrInvalidCredentials indicates a failed name/password verification.
	ErrInvalidCredentials = 2003
)

// 3xxx: User and Conversation Errors
const (
	// ErrNameTaken indicates that the requested user name is already registered.
	ErrNameTaken = 3001

	// ErrUserNotFound indicates that the named user does not exist.
	ErrUserNotFound = 3002

	// ErrRecipientInvalid indicates a send with a missing recipient or a recipient equal to the sender.
	ErrRecipientInvalid = 3003

	// ErrMessageContentTooLong indicates that the message content exceeded the maximum length limit.
	ErrMessageContentTooLong = 3004
)

// 4xxx: Realtime Session Errors
const (
	// ErrNotIdentified indicates a send attempted before the connection joined a room.
	ErrNotIdentified = 4001
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrStorageUnavailable indicates that the backing store rejected or failed an operation.
	ErrStorageUnavailable = 5001
)
