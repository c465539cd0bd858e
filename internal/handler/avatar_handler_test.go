package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"lobbychat/internal/app/chat"
	"lobbychat/internal/configs"
	"lobbychat/internal/pkg/errs"
)

// memoryStore keeps uploaded objects in memory.
type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	failAll bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (s *memoryStore) Upload(_ context.Context, key string, contentType string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failAll {
		return errors.New("bucket unavailable")
	}
	s.objects[key] = data
	s.types[key] = contentType
	return nil
}

func (s *memoryStore) PresignDownload(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://objects.example.test/" + key + "?signature=abc", nil
}

func newAvatarServer(t *testing.T, store *memoryStore) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(Router(&AppDeps{
		Manager: chat.NewManager(chat.DefaultSendBuffer, nil),
		Config:  &configs.AppConfig{Environment: "development", StaticDir: t.TempDir()},
		Storage: store,
	}))
	t.Cleanup(server.Close)

	return server
}

func uploadAvatar(t *testing.T, server *httptest.Server, fileName string, content []byte) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("avatar", fileName)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("Failed to write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}

	res, err := http.Post(server.URL+"/api/avatars", writer.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("Upload request failed: %v", err)
	}
	defer res.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode upload response: %v", err)
	}
	return res, body
}

// TestAvatarUploadAndRedirect verifies that an uploaded avatar can be fetched through its reference.
func TestAvatarUploadAndRedirect(t *testing.T) {
	store := newMemoryStore()
	server := newAvatarServer(t, store)

	res, body := uploadAvatar(t, server, "me.png", []byte("\x89PNG fake image"))
	if res.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %v", res.StatusCode, body)
	}

	data, _ := body["data"].(map[string]any)
	ref, _ := data["pic"].(string)
	if !strings.HasSuffix(ref, ".png") {
		t.Fatalf("Expected a .png reference, got %q", ref)
	}

	key := "avatars/" + ref
	store.mu.Lock()
	contentType := store.types[key]
	store.mu.Unlock()
	if contentType != "image/png" {
		t.Errorf("Expected stored content type image/png, got %q", contentType)
	}

	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
	redirect, err := client.Get(server.URL + "/avatars/" + ref)
	if err != nil {
		t.Fatalf("Avatar request failed: %v", err)
	}
	redirect.Body.Close()

	if redirect.StatusCode != http.StatusFound {
		t.Fatalf("Expected status 302, got %d", redirect.StatusCode)
	}
	if loc := redirect.Header.Get("Location"); !strings.Contains(loc, key) {
		t.Errorf("Expected redirect to %s, got %q", key, loc)
	}
}

// TestAvatarUploadRejections verifies the error codes for bad uploads.
func TestAvatarUploadRejections(t *testing.T) {
	store := newMemoryStore()
	server := newAvatarServer(t, store)

	res, body := uploadAvatar(t, server, "me.svg", []byte("<svg/>"))
	if res.StatusCode != http.StatusBadRequest || body["code"] != float64(errs.ErrAvatarTypeInvalid) {
		t.Errorf("Expected invalid type error, got %d %v", res.StatusCode, body)
	}

	store.mu.Lock()
	store.failAll = true
	store.mu.Unlock()
	res, body = uploadAvatar(t, server, "me.gif", []byte("GIF89a"))
	if res.StatusCode != http.StatusBadGateway || body["code"] != float64(errs.ErrFileStorageFailed) {
		t.Errorf("Expected storage failure, got %d %v", res.StatusCode, body)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.objects) != 0 {
		t.Errorf("Expected nothing stored, got %d objects", len(store.objects))
	}
}

// TestAvatarRedirectRejectsUnsafeRefs verifies that references cannot escape the avatar prefix.
func TestAvatarRedirectRejectsUnsafeRefs(t *testing.T) {
	server := newAvatarServer(t, newMemoryStore())

	for _, ref := range []string{"..%2Fsecret.png", "name.exe", "bad-name.png"} {
		res, err := http.Get(server.URL + "/avatars/" + ref)
		if err != nil {
			t.Fatalf("Request for %q failed: %v", ref, err)
		}
		res.Body.Close()

		if res.StatusCode != http.StatusBadRequest {
			t.Errorf("Ref %q: expected status 400, got %d", ref, res.StatusCode)
		}
	}
}
