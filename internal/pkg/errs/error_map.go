/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Malformed message."},
	ErrFormParseFailed:       {Code: ErrFormParseFailed, Message: "Failed to process uploaded data.", Status: http.StatusBadRequest},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large.", Status: http.StatusRequestEntityTooLarge},

	// 21xx: Connection Delivery Errors
	ErrConnectionNotFound: {Code: ErrConnectionNotFound, Message: "Connection %s is not attached."},
	ErrSendQueueFull:      {Code: ErrSendQueueFull, Message: "Send queue for connection %s is full."},
	ErrConnectionClosed:   {Code: ErrConnectionClosed, Message: "Connection %s is closed."},

	// 22xx: Avatar Errors
	ErrAvatarTypeInvalid: {Code: ErrAvatarTypeInvalid, Message: "Unsupported avatar image type.", Status: http.StatusBadRequest},
	ErrAvatarTooLarge:    {Code: ErrAvatarTooLarge, Message: "Avatar must be at most %d MB.", Status: http.StatusRequestEntityTooLarge},

	// 5xxx: Internal System Errors
	ErrUnknown:            {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrFileStorageFailed:  {Code: ErrFileStorageFailed, Message: "File storage failed. Please try again.", Status: http.StatusBadGateway},
	ErrStorageUnavailable: {Code: ErrStorageUnavailable, Message: "Avatar storage is not configured.", Status: http.StatusServiceUnavailable},
}
