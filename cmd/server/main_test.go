package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karwan-dev/cafe-menu/app/menu"
	"github.com/karwan-dev/cafe-menu/app/upload"
	"github.com/karwan-dev/cafe-menu/cfg"
	"github.com/karwan-dev/cafe-menu/models"
	"github.com/karwan-dev/cafe-menu/storage"
)

// memStore is an in-memory MenuStore mirroring the repository's create-time
// defaults, so the full HTTP surface can be exercised without Postgres.
type memStore struct {
	mu     sync.Mutex
	nextID uint
	items  []models.MenuItem
}

func (s *memStore) ListItems() ([]models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.MenuItem, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *memStore) CreateItem(item *models.MenuItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	item.ID = s.nextID
	item.CreatedAt = time.Now()
	if item.TitleKurdish == "" {
		item.TitleKurdish = item.Title
	}
	if item.Category == "" {
		item.Category = models.DefaultCategory
	}
	s.items = append(s.items, *item)
	return nil
}

func (s *memStore) UpdateItem(id int64, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if int64(s.items[i].ID) != id {
			continue
		}
		if v, ok := fields["title"]; ok {
			s.items[i].Title = v.(string)
		}
		if v, ok := fields["price"]; ok {
			s.items[i].Price = v.(int)
		}
		if v, ok := fields["image_url"]; ok {
			s.items[i].ImageURL = v.(string)
		}
	}
	return nil
}

func (s *memStore) DeleteItem(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.items[:0]
	for _, item := range s.items {
		if int64(item.ID) != id {
			kept = append(kept, item)
		}
	}
	s.items = kept
	return nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	local, err := storage.NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)

	menuHandler := menu.NewMenuHandler(&memStore{}, log)
	uploadHandler := upload.NewUploadHandler(local, log)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /menu", menuHandler.HandleList)
	mux.HandleFunc("POST /menu", menuHandler.HandleCreate)
	mux.HandleFunc("PUT /menu", menuHandler.HandleUpdate)
	mux.HandleFunc("DELETE /menu", menuHandler.HandleDelete)
	mux.HandleFunc("POST /upload", uploadHandler.HandlePost)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestUploadThenCreateThenList(t *testing.T) {
	srv := newTestServer(t)

	// Upload a PNG.
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, "latte.png"))
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte{0x89, 0x50, 0x4e, 0x47}, 1024))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/upload", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var uploadResp struct {
		Success  bool   `json:"success"`
		ImageURL string `json:"imageUrl"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&uploadResp))
	assert.True(t, uploadResp.Success)
	assert.True(t, strings.HasPrefix(uploadResp.ImageURL, "/uploads/"))

	// Create a menu item referencing the uploaded image.
	payload := fmt.Sprintf(`{"title":"Latte","price":5000,"imageUrl":%q}`, uploadResp.ImageURL)
	resp, err = http.Post(srv.URL+"/menu", "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The item is retrievable with the same image URL.
	resp, err = http.Get(srv.URL + "/menu")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var items []models.MenuItem
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	require.Len(t, items, 1)
	assert.Equal(t, "Latte", items[0].Title)
	assert.Equal(t, 5000, items[0].Price)
	assert.Equal(t, uploadResp.ImageURL, items[0].ImageURL)
	assert.NotZero(t, items[0].ID)
	assert.Equal(t, "Latte", items[0].TitleKurdish, "kurdish title falls back to the english one")
	assert.Equal(t, models.DefaultCategory, items[0].Category)
}

func TestDeleteNonExistentIDSucceeds(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/menu?id=999", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body["success"])
}

func TestNewBlobStoreSelection(t *testing.T) {
	t.Run("local backend", func(t *testing.T) {
		store, serveLocal, err := newBlobStore(cfg.Storage{
			Backend:    "local",
			UploadsDir: t.TempDir(),
			PublicPath: "/uploads",
		})
		require.NoError(t, err)
		assert.True(t, serveLocal)
		assert.IsType(t, &storage.Local{}, store)
	})

	t.Run("s3 backend without endpoint fails", func(t *testing.T) {
		_, _, err := newBlobStore(cfg.Storage{
			Backend: "s3",
			S3:      cfg.S3{AccessKey: "key", SecretKey: "secret"},
		})
		assert.Error(t, err)
	})
}
