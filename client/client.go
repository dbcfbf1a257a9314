// Package client is a typed HTTP client for the menu API and the upload
// endpoint, shared by the admin dashboard controller and the public
// storefront view.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/karwan-dev/cafe-menu/imgproc"
	"github.com/karwan-dev/cafe-menu/models"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx response decoded from the {error} envelope.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

// ItemCreate is the POST /menu payload.
type ItemCreate struct {
	Title              string `json:"title"`
	TitleKurdish       string `json:"titleKurdish,omitempty"`
	Price              int    `json:"price"`
	Description        string `json:"description,omitempty"`
	DescriptionKurdish string `json:"descriptionKurdish,omitempty"`
	Category           string `json:"category,omitempty"`
	ImageURL           string `json:"imageUrl"`
}

// ItemUpdate is the PUT /menu payload. Nil pointers are omitted from the
// request body, which the server treats as "leave unchanged".
type ItemUpdate struct {
	ID                 int64   `json:"id"`
	Title              *string `json:"title,omitempty"`
	TitleKurdish       *string `json:"titleKurdish,omitempty"`
	Price              *int    `json:"price,omitempty"`
	Description        *string `json:"description,omitempty"`
	DescriptionKurdish *string `json:"descriptionKurdish,omitempty"`
	Category           *string `json:"category,omitempty"`
	ImageURL           *string `json:"imageUrl,omitempty"`
}

func (c *Client) ListItems(ctx context.Context) ([]models.MenuItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/menu", nil)
	if err != nil {
		return nil, err
	}
	var items []models.MenuItem
	if err := c.do(req, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) CreateItem(ctx context.Context, item ItemCreate) error {
	return c.sendJSON(ctx, http.MethodPost, "/menu", item)
}

func (c *Client) UpdateItem(ctx context.Context, item ItemUpdate) error {
	return c.sendJSON(ctx, http.MethodPut, "/menu", item)
}

func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	u := c.baseURL + "/menu?id=" + url.QueryEscape(strconv.FormatInt(id, 10))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// UploadImage transmits an already-compressed file as multipart form data
// and returns the URL the server stored it under.
func (c *Client) UploadImage(ctx context.Context, f imgproc.File) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, f.Name))
	header.Set("Content-Type", f.Type)
	part, err := mw.CreatePart(header)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(f.Data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	return resp.ImageURL, nil
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil || envelope.Error == "" {
			envelope.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: envelope.Error}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
