package upload

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/karwan-dev/cafe-menu/imgproc"
	"github.com/karwan-dev/cafe-menu/storage"
)

type UploadHandler struct {
	store storage.BlobStore
	log   *slog.Logger
}

func NewUploadHandler(store storage.BlobStore, log *slog.Logger) *UploadHandler {
	return &UploadHandler{
		store: store,
		log:   log,
	}
}

// HandlePost accepts a multipart form with a single "file" field, re-applies
// the client-side validations (the client is not trusted), and hands the
// bytes to the blob store under a freshly minted name. The original filename
// never reaches storage.
func (h *UploadHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !imgproc.AllowedType(contentType) {
		writeError(w, http.StatusBadRequest, imgproc.ErrInvalidType.Error())
		return
	}
	if header.Size > imgproc.MaxUploadBytes {
		writeError(w, http.StatusBadRequest, imgproc.ErrTooLarge.Error())
		return
	}

	// The declared size is re-checked while reading; multipart headers can
	// lie about Size just as easily as about anything else.
	data, err := io.ReadAll(io.LimitReader(file, imgproc.MaxUploadBytes+1))
	if err != nil {
		h.log.Error("reading upload", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to upload image")
		return
	}
	if int64(len(data)) > imgproc.MaxUploadBytes {
		writeError(w, http.StatusBadRequest, imgproc.ErrTooLarge.Error())
		return
	}

	name := storageName(header.Filename)
	imageURL, err := h.store.Put(r.Context(), name, contentType, data)
	if err != nil {
		h.log.Error("storing upload", "name", name, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to upload image")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"imageUrl": imageURL,
	})
}

// storageName mints a random filename, keeping only a sanitized lowercase
// version of the original extension. This is what makes client filenames
// harmless: no path separators, no collisions.
func storageName(original string) string {
	ext := ""
	if i := strings.LastIndex(original, "."); i >= 0 {
		ext = original[i+1:]
	}
	ext = sanitizeExt(ext)
	if ext == "" {
		ext = "bin"
	}
	return uuid.NewString() + "." + ext
}

func sanitizeExt(ext string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(ext) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
