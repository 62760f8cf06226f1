/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to
standardize HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value carries the user message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: Request Validation Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Request body is not valid JSON.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrMissingFields:        {Code: ErrMissingFields, Message: "Name and password are required.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Authentication Errors
	ErrMissingToken:       {Code: ErrMissingToken, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrInvalidToken:       {Code: ErrInvalidToken, Message: "Session is invalid or expired. Please sign in again.", Status: http.StatusForbidden},
	ErrInvalidCredentials: {Code: ErrInvalidCredentials, Message: "Incorrect name or password.", Status: http.StatusUnauthorized},

	// 3xxx: User and Conversation Errors
	ErrNameTaken:             {Code: ErrNameTaken, Message: "This name is already taken.", Status: http.StatusConflict},
	ErrUserNotFound:          {Code: ErrUserNotFound, Message: "Account not found.", Status: http.StatusNotFound},
	ErrRecipientInvalid:      {Code: ErrRecipientInvalid, Message: "Invalid message recipient.", Status: http.StatusBadRequest},
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long.", Status: http.StatusBadRequest},

	// 4xxx: Realtime Session Errors
	ErrNotIdentified: {Code: ErrNotIdentified, Message: "Join a room before sending messages.", Status: http.StatusForbidden},

	// 5xxx: Internal System Errors
	ErrUnknown:            {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrStorageUnavailable: {Code: ErrStorageUnavailable, Message: "Service unavailable. Please try again later.", Status: http.StatusInternalServerError},
}
