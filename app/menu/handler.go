package menu

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/karwan-dev/cafe-menu/models"
)

// MenuStore is the persistence boundary the handlers depend on.
type MenuStore interface {
	ListItems() ([]models.MenuItem, error)
	CreateItem(item *models.MenuItem) error
	UpdateItem(id int64, fields map[string]any) error
	DeleteItem(id int64) error
}

type MenuHandler struct {
	store MenuStore
	log   *slog.Logger
}

func NewMenuHandler(store MenuStore, log *slog.Logger) *MenuHandler {
	return &MenuHandler{
		store: store,
		log:   log,
	}
}

// itemPayload tolerates sloppy clients: every field may arrive as a JSON
// string, number, or be absent entirely. Coercion rules live in asString
// and asNumber.
type itemPayload struct {
	ID                 any `json:"id"`
	Title              any `json:"title"`
	TitleKurdish       any `json:"titleKurdish"`
	Price              any `json:"price"`
	Description        any `json:"description"`
	DescriptionKurdish any `json:"descriptionKurdish"`
	Category           any `json:"category"`
	ImageURL           any `json:"imageUrl"`
}

func (h *MenuHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListItems()
	if err != nil {
		h.log.Error("fetching menu items", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch items")
		return
	}
	if items == nil {
		items = []models.MenuItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *MenuHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var p itemPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	title := strings.TrimSpace(asString(p.Title))
	if title == "" {
		writeError(w, http.StatusBadRequest, "Item name (English) is required")
		return
	}
	price, ok := asNumber(p.Price)
	if !ok || price <= 0 {
		writeError(w, http.StatusBadRequest, "Valid price is required")
		return
	}
	imageURL := strings.TrimSpace(asString(p.ImageURL))
	if imageURL == "" {
		writeError(w, http.StatusBadRequest, "Image URL is required")
		return
	}

	item := &models.MenuItem{
		Title:              title,
		TitleKurdish:       strings.TrimSpace(asString(p.TitleKurdish)),
		Description:        asString(p.Description),
		DescriptionKurdish: asString(p.DescriptionKurdish),
		Category:           strings.TrimSpace(asString(p.Category)),
		Price:              int(price),
		ImageURL:           imageURL,
	}
	if err := h.store.CreateItem(item); err != nil {
		h.log.Error("adding menu item", "title", title, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to add item")
		return
	}
	writeSuccess(w)
}

// HandleUpdate applies a partial update. An omitted field leaves the stored
// value unchanged. A blank title, Kurdish title, or image URL is treated as
// "no change" rather than "clear the field", and a non-positive or
// non-numeric price is silently ignored; this asymmetry is the contract, not
// an accident. Descriptions and category overwrite whenever present, blank
// included.
func (h *MenuHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var p itemPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	id, ok := asNumber(p.ID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Missing id")
		return
	}

	fields := map[string]any{}
	if title := strings.TrimSpace(asString(p.Title)); p.Title != nil && title != "" {
		fields["title"] = title
	}
	if tk := strings.TrimSpace(asString(p.TitleKurdish)); p.TitleKurdish != nil && tk != "" {
		fields["title_kurdish"] = tk
	}
	if p.Price != nil {
		if price, ok := asNumber(p.Price); ok && price > 0 {
			fields["price"] = int(price)
		}
	}
	if p.Description != nil {
		fields["description"] = asString(p.Description)
	}
	if p.DescriptionKurdish != nil {
		fields["description_kurdish"] = asString(p.DescriptionKurdish)
	}
	if p.Category != nil {
		fields["category"] = asString(p.Category)
	}
	if u := strings.TrimSpace(asString(p.ImageURL)); p.ImageURL != nil && u != "" {
		fields["image_url"] = u
	}

	if err := h.store.UpdateItem(int64(id), fields); err != nil {
		h.log.Error("updating menu item", "id", int64(id), "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update item")
		return
	}
	writeSuccess(w)
}

// HandleDelete removes a row by id, taken from the query string first and a
// JSON body second. Deleting an id that does not exist still succeeds.
func (h *MenuHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	var id int64
	found := false

	if q := r.URL.Query().Get("id"); q != "" {
		if n, ok := asNumber(q); ok {
			id = int64(n)
			found = true
		}
	}
	if !found {
		var body struct {
			ID any `json:"id"`
		}
		// Body parse errors fall through to the missing-id response.
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			if n, ok := asNumber(body.ID); ok {
				id = int64(n)
				found = true
			}
		}
	}
	if !found {
		writeError(w, http.StatusBadRequest, "Missing id")
		return
	}

	if err := h.store.DeleteItem(id); err != nil {
		h.log.Error("deleting menu item", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete item")
		return
	}
	writeSuccess(w)
}

// asString coerces any decoded JSON value to a string. Nulls become the
// empty string.
func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		b, err := json.Marshal(s)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// asNumber coerces a decoded JSON value to a finite float64.
func asNumber(v any) (float64, bool) {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
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

func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
