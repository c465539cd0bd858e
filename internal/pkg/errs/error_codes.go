/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in HTTP responses to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrInvalidJSONFormat indicates that a request body or WebSocket frame is not valid JSON.
	ErrInvalidJSONFormat = 1003

	// ErrFormParseFailed indicates failure to parse multipart or URL-encoded form data.
	ErrFormParseFailed = 1005

	// ErrRequestEntityTooLarge indicates that the request body size exceeded the server limit.
	ErrRequestEntityTooLarge = 1006
)

// 21xx: Connection Delivery Errors
const (
	// ErrConnectionNotFound indicates that the target connection is not (or no longer) attached.
	ErrConnectionNotFound = 2101

	// ErrSendQueueFull indicates that the target connection's outbound buffer is full.
	ErrSendQueueFull = 2102

	// ErrConnectionClosed indicates that the target connection is shutting down.
	ErrConnectionClosed = 2103
)

// 22xx: Avatar Errors
const (
	// ErrAvatarTypeInvalid indicates that the uploaded or requested avatar has an unsupported type.
	ErrAvatarTypeInvalid = 2201

	// ErrAvatarTooLarge indicates that the uploaded avatar exceeds the size limit.
	ErrAvatarTooLarge = 2202
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrFileStorageFailed indicates that the object storage rejected an operation.
	ErrFileStorageFailed = 5001

	// ErrStorageUnavailable indicates that object storage is not configured.
	ErrStorageUnavailable = 5002
)
