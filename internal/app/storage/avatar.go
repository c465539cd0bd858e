package storage

import (
	"path/filepath"
	"strings"
	"time"

	"lobbychat/internal/pkg/errs"
	"lobbychat/internal/pkg/randx"
)

const (
	// MaxAvatarSizeMB is the maximum allowed avatar size in megabytes.
	MaxAvatarSizeMB = 2

	// MaxAvatarSize is the maximum allowed avatar size in bytes.
	MaxAvatarSize = MaxAvatarSizeMB * 1024 * 1024

	// AvatarURLDuration is how long a presigned avatar download URL stays valid.
	AvatarURLDuration = 10 * time.Minute

	// avatarPrefix is the key prefix under which avatars are stored.
	avatarPrefix = "avatars/"

	genericMIME = "application/octet-stream"
)

// ExtToMIME maps permitted avatar file extensions to their MIME types.
var ExtToMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// ValidateAvatarSize checks that size is positive and within MaxAvatarSize.
func ValidateAvatarSize(size int64) *errs.CustomError {
	if size <= 0 {
		return errs.NewError(errs.ErrInvalidParams)
	}

	if size > MaxAvatarSize {
		return errs.NewError(errs.ErrAvatarTooLarge, MaxAvatarSizeMB)
	}

	return nil
}

// ValidateAvatarType checks that fileName has a permitted extension and that mimeType,
// when given and more specific than application/octet-stream, agrees with it.
// It returns the canonical MIME type.
func ValidateAvatarType(fileName string, mimeType string) (string, *errs.CustomError) {
	ext := strings.ToLower(filepath.Ext(fileName))

	expected, ok := ExtToMIME[ext]
	if !ok {
		return "", errs.NewError(errs.ErrAvatarTypeInvalid)
	}

	if mimeType == "" || strings.EqualFold(mimeType, genericMIME) {
		return expected, nil
	}

	if !strings.EqualFold(mimeType, expected) {
		return "", errs.NewError(errs.ErrAvatarTypeInvalid)
	}

	return expected, nil
}

// NewAvatarRef returns a fresh random avatar reference for a file with fileName's extension.
func NewAvatarRef(fileName string) (string, error) {
	return randx.AvatarName(filepath.Ext(fileName))
}

// AvatarKey maps an avatar reference to its object key. References are a Base62
// name plus a permitted extension; anything else is rejected.
func AvatarKey(ref string) (string, *errs.CustomError) {
	ext := strings.ToLower(filepath.Ext(ref))
	if _, ok := ExtToMIME[ext]; !ok {
		return "", errs.NewError(errs.ErrAvatarTypeInvalid)
	}

	if !randx.IsBase62(strings.TrimSuffix(ref, filepath.Ext(ref))) {
		return "", errs.NewError(errs.ErrInvalidParams)
	}

	return avatarPrefix + ref, nil
}
