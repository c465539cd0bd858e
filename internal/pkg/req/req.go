/*
Package req provides helper functions for HTTP request parsing.

It wraps multipart form parsing with body size limits and maps failures to
application error codes.
*/
package req

import (
	"errors"
	"net/http"
	"strings"

	"lobbychat/internal/pkg/errs"
)

// MaxFormMemory is the amount of a multipart body kept in memory; the rest spills to temp files.
const MaxFormMemory int64 = 4 << 20 // 4 MB

// SetupMultipart limits the request body to maxBytes and parses it as multipart form data.
func SetupMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) *errs.CustomError {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(MaxFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}

		return errs.NewError(errs.ErrFormParseFailed)
	}

	return nil
}
