/*
Package randx provides generators for identifiers used across the server.

Connection IDs are UUID v4 strings; avatar object names are random Base62 strings
drawn from crypto/rand.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the total number of characters in the Base62 character set (62).
	Base62Len = int64(len(Base62Chars))

	// AvatarNameLength is the length of the random part of an avatar object name.
	AvatarNameLength = 16
)

// ConnectionID returns a fresh UUID v4 string identifying one transport session.
func ConnectionID() string {
	return uuid.New().String()
}

// Base62 returns a cryptographically random Base62 string of the given length.
func Base62(length int) (string, error) {
	result := make([]byte, length)

	for i := range length {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// AvatarName returns a random avatar file name carrying the given extension (".png").
func AvatarName(ext string) (string, error) {
	name, err := Base62(AvatarNameLength)
	if err != nil {
		return "", err
	}
	return name + strings.ToLower(ext), nil
}

// IsBase62 reports whether s is non-empty and consists only of Base62 characters.
func IsBase62(s string) bool {
	if s == "" {
		return false
	}

	for _, char := range s {
		if !strings.ContainsRune(Base62Chars, char) {
			return false
		}
	}

	return true
}
