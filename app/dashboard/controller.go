// Package dashboard holds the admin-side orchestration state: add, edit,
// and delete flows that sequence image ingestion before API calls and keep
// the locally held item list consistent with the server by re-fetching it
// after every mutation.
package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/karwan-dev/cafe-menu/client"
	"github.com/karwan-dev/cafe-menu/imgproc"
	"github.com/karwan-dev/cafe-menu/models"
)

// noticeTTL is how long a success notice stays visible before it
// auto-dismisses.
const noticeTTL = 2500 * time.Millisecond

// ErrImageRequired blocks the add flow until an image has been ingested.
var ErrImageRequired = errors.New("an image must be uploaded before saving the item")

// ItemForm carries the text and price fields of the add/edit forms. The
// image travels separately through IngestImage.
type ItemForm struct {
	Title              string
	TitleKurdish       string
	Description        string
	DescriptionKurdish string
	Category           string
	Price              int
}

// Controller is the admin dashboard state machine. All state is behind the
// mutex; screens read it through the accessor methods rather than reaching
// into shared globals.
type Controller struct {
	api *client.Client

	mu              sync.Mutex
	items           []models.MenuItem
	pendingImageURL string
	notice          string
	noticeTimer     *time.Timer
	noticeTTL       time.Duration
	lastError       string
	confirmingID    int64
}

func NewController(api *client.Client) *Controller {
	return &Controller{
		api:       api,
		noticeTTL: noticeTTL,
	}
}

// Refresh replaces the local list with the server's. Mutation flows call it
// instead of patching local state; consistency over responsiveness.
func (c *Controller) Refresh(ctx context.Context) error {
	items, err := c.api.ListItems(ctx)
	if err != nil {
		c.setError(err)
		return err
	}
	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
	return nil
}

// IngestImage runs the full pipeline on a picked file: validate, compress,
// upload. On success the returned URL is held for the next AddItem or
// EditItem call.
func (c *Controller) IngestImage(ctx context.Context, f imgproc.File) error {
	if err := imgproc.Validate(f); err != nil {
		c.setError(err)
		return err
	}
	out, err := imgproc.Compress(f, imgproc.Options{})
	if err != nil {
		c.setError(err)
		return err
	}
	imageURL, err := c.api.UploadImage(ctx, out)
	if err != nil {
		c.setError(err)
		return err
	}
	c.mu.Lock()
	c.pendingImageURL = imageURL
	c.lastError = ""
	c.mu.Unlock()
	return nil
}

// AddItem submits the add form. It fails before any network call when no
// image has been ingested yet.
func (c *Controller) AddItem(ctx context.Context, form ItemForm) error {
	c.mu.Lock()
	imageURL := c.pendingImageURL
	c.mu.Unlock()
	if imageURL == "" {
		c.setError(ErrImageRequired)
		return ErrImageRequired
	}

	err := c.api.CreateItem(ctx, client.ItemCreate{
		Title:              form.Title,
		TitleKurdish:       form.TitleKurdish,
		Price:              form.Price,
		Description:        form.Description,
		DescriptionKurdish: form.DescriptionKurdish,
		Category:           form.Category,
		ImageURL:           imageURL,
	})
	if err != nil {
		// Form stays open; the held image URL survives for a retry.
		c.setError(err)
		return err
	}

	c.mu.Lock()
	c.pendingImageURL = ""
	c.mu.Unlock()
	_ = c.Refresh(ctx)
	c.showNotice("Item added")
	return nil
}

// EditItem submits the edit form for an existing row. The previous image is
// preserved unless a new one was ingested since the form opened: without a
// pending URL the imageUrl field is simply omitted from the request.
func (c *Controller) EditItem(ctx context.Context, id int64, form ItemForm) error {
	c.mu.Lock()
	imageURL := c.pendingImageURL
	c.mu.Unlock()

	update := client.ItemUpdate{
		ID:                 id,
		Title:              &form.Title,
		TitleKurdish:       &form.TitleKurdish,
		Price:              &form.Price,
		Description:        &form.Description,
		DescriptionKurdish: &form.DescriptionKurdish,
		Category:           &form.Category,
	}
	if imageURL != "" {
		update.ImageURL = &imageURL
	}

	if err := c.api.UpdateItem(ctx, update); err != nil {
		c.setError(err)
		return err
	}

	c.mu.Lock()
	c.pendingImageURL = ""
	c.mu.Unlock()
	_ = c.Refresh(ctx)
	c.showNotice("Item updated")
	return nil
}

// RequestDelete opens the confirmation step for one row. Nothing is sent to
// the server until ConfirmDelete.
func (c *Controller) RequestDelete(id int64) {
	c.mu.Lock()
	c.confirmingID = id
	c.mu.Unlock()
}

// CancelDelete closes the confirmation without deleting.
func (c *Controller) CancelDelete() {
	c.mu.Lock()
	c.confirmingID = 0
	c.mu.Unlock()
}

// ConfirmDelete deletes the row chosen by RequestDelete. The confirmation
// closes whether or not the call succeeds.
func (c *Controller) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	id := c.confirmingID
	c.confirmingID = 0
	c.mu.Unlock()
	if id == 0 {
		return nil
	}

	if err := c.api.DeleteItem(ctx, id); err != nil {
		c.setError(err)
		return err
	}
	_ = c.Refresh(ctx)
	c.showNotice("Item deleted")
	return nil
}

// PendingDelete returns the id awaiting confirmation, zero when none.
func (c *Controller) PendingDelete() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.confirmingID
}

// Items returns a copy of the locally held list.
func (c *Controller) Items() []models.MenuItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.MenuItem, len(c.items))
	copy(out, c.items)
	return out
}

// PendingImageURL returns the ingested-but-unsaved image URL, if any.
func (c *Controller) PendingImageURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingImageURL
}

// Notice returns the current transient success message, empty once it has
// auto-dismissed.
func (c *Controller) Notice() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notice
}

// LastError returns the most recent flow error, shown inline by the UI.
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

func (c *Controller) showNotice(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notice = msg
	c.lastError = ""
	if c.noticeTimer != nil {
		c.noticeTimer.Stop()
	}
	c.noticeTimer = time.AfterFunc(c.noticeTTL, func() {
		c.mu.Lock()
		if c.notice == msg {
			c.notice = ""
		}
		c.mu.Unlock()
	})
}

func (c *Controller) setError(err error) {
	c.mu.Lock()
	c.lastError = err.Error()
	c.mu.Unlock()
}
