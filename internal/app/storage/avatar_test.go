package storage

import (
	"strings"
	"testing"

	"lobbychat/internal/pkg/errs"
)

// TestValidateAvatarSize verifies the size bounds.
func TestValidateAvatarSize(t *testing.T) {
	if err := ValidateAvatarSize(1024); err != nil {
		t.Errorf("Expected 1KB to pass, got %v", err)
	}
	if err := ValidateAvatarSize(0); err == nil || err.Code != errs.ErrInvalidParams {
		t.Errorf("Expected ErrInvalidParams for empty file, got %v", err)
	}
	err := ValidateAvatarSize(MaxAvatarSize + 1)
	if err == nil || err.Code != errs.ErrAvatarTooLarge {
		t.Fatalf("Expected ErrAvatarTooLarge, got %v", err)
	}
	if !strings.Contains(err.Message, "2 MB") {
		t.Errorf("Expected size limit in message, got %q", err.Message)
	}
}

// TestValidateAvatarType verifies extension and MIME agreement.
func TestValidateAvatarType(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		mimeType string
		want     string
		wantErr  bool
	}{
		{"png", "me.PNG", "image/png", "image/png", false},
		{"jpeg without mime", "me.jpeg", "", "image/jpeg", false},
		{"generic mime", "me.webp", "application/octet-stream", "image/webp", false},
		{"mismatch", "me.png", "image/gif", "", true},
		{"unsupported", "me.svg", "image/svg+xml", "", true},
		{"no extension", "me", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateAvatarType(tt.fileName, tt.mimeType)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error, got MIME %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestAvatarKeyRoundTrip verifies that generated refs map to keys and unsafe refs do not.
func TestAvatarKeyRoundTrip(t *testing.T) {
	ref, err := NewAvatarRef("selfie.webp")
	if err != nil {
		t.Fatalf("NewAvatarRef returned error: %v", err)
	}

	key, keyErr := AvatarKey(ref)
	if keyErr != nil {
		t.Fatalf("AvatarKey(%q) returned error: %v", ref, keyErr)
	}
	if key != "avatars/"+ref {
		t.Errorf("Unexpected key %q", key)
	}

	for _, bad := range []string{"../secret.png", "a b.png", "x.exe", ".png"} {
		if _, err := AvatarKey(bad); err == nil {
			t.Errorf("Expected AvatarKey(%q) to fail", bad)
		}
	}
}
