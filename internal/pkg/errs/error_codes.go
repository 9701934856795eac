/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request or event parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007

	// ErrUnsupportedEvent indicates that the client sent a WebSocket event the server does not handle.
	ErrUnsupportedEvent = 1008
)

// 2xxx: Content Business Logic Errors
const (
	// ErrMessageContentTooLong indicates that the direct message exceeded the maximum length limit.
	ErrMessageContentTooLong = 2201

	// ErrPhotoInvalid indicates that the profile photo is not an accepted image data URL.
	ErrPhotoInvalid = 2202

	// ErrLinkInvalid indicates that a shared link is not an absolute http(s) URL.
	ErrLinkInvalid = 2203

	// ErrColorInvalid indicates that the accent color is not a #rrggbb value.
	ErrColorInvalid = 2204
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrSessionKicked indicates that the current client connection has been replaced by a newer login.
	ErrSessionKicked = 3004

	// ErrUnauthorized indicates the request carried no valid identity, or acted on behalf of another user.
	ErrUnauthorized = 3005

	// ErrDuplicateUser indicates that the username chosen at registration already exists.
	ErrDuplicateUser = 3101

	// ErrInvalidCredentials indicates the username is unknown or the password does not match.
	ErrInvalidCredentials = 3102

	// ErrUserNotFound indicates that the referenced user does not exist in the directory.
	ErrUserNotFound = 3103

	// ErrNameTaken indicates that the rename target is already used by another user.
	ErrNameTaken = 3104

	// ErrNameAlreadyEdited indicates that the user already used their single rename.
	ErrNameAlreadyEdited = 3105

	// ErrNotLoggedIn indicates that the event requires an authenticated session.
	ErrNotLoggedIn = 3106
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrStorageWriteFailure indicates that persisting the directory or message log failed.
	ErrStorageWriteFailure = 5001
)
