/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses, WebSocket error events and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format."},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format."},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data."},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},
	ErrUnsupportedEvent:     {Code: ErrUnsupportedEvent, Message: "Unsupported event."},

	// 2xxx: Content Business Logic Errors
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long."},
	ErrPhotoInvalid:          {Code: ErrPhotoInvalid, Message: "Photo must be a PNG, JPEG, WEBP or GIF image under %d KB."},
	ErrLinkInvalid:           {Code: ErrLinkInvalid, Message: "Invalid link."},
	ErrColorInvalid:          {Code: ErrColorInvalid, Message: "Invalid color."},

	// 3xxx: User, Session, and Security Errors
	ErrSessionKicked:      {Code: ErrSessionKicked, Message: "You were signed in on another device."},
	ErrUnauthorized:       {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrDuplicateUser:      {Code: ErrDuplicateUser, Message: "Username is already taken."},
	ErrInvalidCredentials: {Code: ErrInvalidCredentials, Message: "Incorrect username or password."},
	ErrUserNotFound:       {Code: ErrUserNotFound, Message: "Account not found."},
	ErrNameTaken:          {Code: ErrNameTaken, Message: "That name is already in use."},
	ErrNameAlreadyEdited:  {Code: ErrNameAlreadyEdited, Message: "You can only change your name once."},
	ErrNotLoggedIn:        {Code: ErrNotLoggedIn, Message: "Please sign in first."},

	// 5xxx: Internal System Errors
	ErrUnknown:             {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrStorageWriteFailure: {Code: ErrStorageWriteFailure, Message: "Could not save your changes. Please try again.", Status: http.StatusInternalServerError},
}
