package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- Mock BlobStore ---

type MockBlobStore struct {
	Err error

	lastName        string
	lastContentType string
	lastData        []byte
}

func (m *MockBlobStore) Put(_ context.Context, name, contentType string, data []byte) (string, error) {
	m.lastName = name
	m.lastContentType = contentType
	m.lastData = data
	if m.Err != nil {
		return "", m.Err
	}
	return "/uploads/" + name, nil
}

// --- Helpers ---

func newTestHandler(store *MockBlobStore) *UploadHandler {
	return NewUploadHandler(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func multipartBody(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	assert.NoError(t, err)
	_, err = part.Write(data)
	assert.NoError(t, err)
	assert.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func postUpload(h *UploadHandler, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.HandlePost(rec, req)
	return rec
}

var storedNamePattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.png$`)

// --- Tests ---

func TestHandlePost(t *testing.T) {
	t.Run("valid upload", func(t *testing.T) {
		store := &MockBlobStore{}
		h := newTestHandler(store)

		data := []byte("fake png bytes")
		body, ct := multipartBody(t, "file", "Menu Photo.PNG", "image/png", data)
		rec := postUpload(h, body, ct)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Success  bool   `json:"success"`
			ImageURL string `json:"imageUrl"`
		}
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "/uploads/"+store.lastName, resp.ImageURL)

		// The original filename never reaches storage; only a sanitized
		// lowercase extension survives.
		assert.Regexp(t, storedNamePattern, store.lastName)
		assert.Equal(t, "image/png", store.lastContentType)
		assert.Equal(t, data, store.lastData)
	})

	t.Run("missing file field", func(t *testing.T) {
		h := newTestHandler(&MockBlobStore{})

		body, ct := multipartBody(t, "attachment", "a.png", "image/png", []byte("x"))
		rec := postUpload(h, body, ct)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "No file provided")
	})

	t.Run("disallowed content type", func(t *testing.T) {
		store := &MockBlobStore{}
		h := newTestHandler(store)

		body, ct := multipartBody(t, "file", "notes.txt", "text/plain", []byte("hello"))
		rec := postUpload(h, body, ct)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid file type")
		assert.Empty(t, store.lastName, "nothing may be stored on rejection")
	})

	t.Run("file above the size cap", func(t *testing.T) {
		store := &MockBlobStore{}
		h := newTestHandler(store)

		body, ct := multipartBody(t, "file", "big.jpg", "image/jpeg", make([]byte, 6<<20))
		rec := postUpload(h, body, ct)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "File too large")
		assert.Empty(t, store.lastName)
	})

	t.Run("storage failure is a 500", func(t *testing.T) {
		h := newTestHandler(&MockBlobStore{Err: errors.New("bucket unreachable")})

		body, ct := multipartBody(t, "file", "a.jpg", "image/jpeg", []byte("x"))
		rec := postUpload(h, body, ct)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "Failed to upload image")
	})
}

func TestStorageName(t *testing.T) {
	testCases := []struct {
		name     string
		original string
		wantExt  string
	}{
		{"plain extension", "photo.jpg", "jpg"},
		{"uppercase extension", "PHOTO.JPG", "jpg"},
		{"traversal attempt", "../../etc/passwd.png", "png"},
		{"no extension", "photo", "bin"},
		{"trailing dot", "photo.", "bin"},
		{"hostile extension characters", "a.P N-G!", "png"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := storageName(tc.original)
			assert.Regexp(t, `^[0-9a-f-]{36}\.`+tc.wantExt+`$`, got)
		})
	}
}
