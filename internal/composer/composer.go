package composer

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/impressalabs/console/internal/domain"
	"github.com/impressalabs/console/internal/taxonomy"
)

// Composer states as exposed in snapshots.
const (
	StateIdle       = "idle"
	StateDrafting   = "drafting"
	StateUploading  = "uploading"
	StateStaged     = "staged"
	StateEditing    = "editing"
	StateSubmitting = "submitting"
)

// Uploader converts locally staged images into durable remote URLs,
// strictly sequentially, failing as a unit.
type Uploader interface {
	UploadAll(ctx context.Context, files []domain.StagedImage) ([]string, error)
}

// Creator sends one combined creation request to the catalog endpoint.
type Creator interface {
	CreateProducts(ctx context.Context, payloads []domain.ProductPayload) error
}

// Notifier carries the parent catalog view hooks. Submitted fires once per
// successful submission, Closed when the composer is dismissed.
type Notifier interface {
	Submitted(count int)
	Closed()
}

// Composer owns the session-scoped batch composition state: the single
// draft, the ledger of staged entries, the editing link and the busy gate.
// State lives only in memory for the open session.
type Composer struct {
	mu       sync.Mutex
	vocab    *taxonomy.Vocabulary
	draft    Draft
	ledger   Ledger
	editing  int // ledger index being edited, -1 when none
	busy     bool
	phase    string
	uploader Uploader
	creator  Creator
	notifier Notifier
}

func New(vocab *taxonomy.Vocabulary, uploader Uploader, creator Creator, notifier Notifier) *Composer {
	return &Composer{
		vocab:    vocab,
		editing:  -1,
		uploader: uploader,
		creator:  creator,
		notifier: notifier,
	}
}

// Vocabulary access is serialized through the composer mutex; the taxonomy
// itself is a plain session-scoped value.

func (c *Composer) ItemTypes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vocab.ItemTypes()
}

func (c *Composer) Categories() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vocab.Categories()
}

// ResolvePreset returns the size preset for the draft's current category.
func (c *Composer) ResolvePreset(category string) (taxonomy.Preset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vocab.ResolvePreset(category)
}

// AddCustomItemType appends a custom item type to the vocabulary and selects
// it as the draft's active value. Empty input is a no-op.
func (c *Composer) AddCustomItemType(raw string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	val, ok := c.vocab.AddItemType(raw)
	if ok {
		c.draft.ItemType = val
	}
	return val, ok
}

// AddCustomCategory behaves like AddCustomItemType for categories.
func (c *Composer) AddCustomCategory(raw string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	val, ok := c.vocab.AddCategory(raw)
	if ok {
		c.draft.Category = val
	}
	return val, ok
}

// DraftUpdate is a partial field update; nil fields are left untouched.
// Colors and tags arrive as comma-separated text, exactly as typed.
type DraftUpdate struct {
	Title        *string `json:"title"`
	ItemType     *string `json:"itemType"`
	Category     *string `json:"category"`
	Price        *string `json:"price"`
	Colors       *string `json:"colors"`
	Tags         *string `json:"tags"`
	Customizable *bool   `json:"customizable"`
	IsFeatured   *bool   `json:"isFeatured"`
	Description  *string `json:"description"`
}

// UpdateDraft applies a partial operator edit to the draft.
func (c *Composer) UpdateDraft(upd DraftUpdate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if upd.Title != nil {
		c.draft.Title = *upd.Title
	}
	if upd.ItemType != nil {
		c.draft.ItemType = *upd.ItemType
	}
	if upd.Category != nil {
		c.draft.Category = *upd.Category
	}
	if upd.Price != nil {
		c.draft.Price = *upd.Price
	}
	if upd.Colors != nil {
		c.draft.SetColors(*upd.Colors)
	}
	if upd.Tags != nil {
		c.draft.SetTags(*upd.Tags)
	}
	if upd.Customizable != nil {
		c.draft.Customizable = *upd.Customizable
	}
	if upd.IsFeatured != nil {
		c.draft.IsFeatured = *upd.IsFeatured
	}
	if upd.Description != nil {
		c.draft.Description = *upd.Description
	}
}

// AddSizes unions comma-separated size labels into the draft.
func (c *Composer) AddSizes(raw string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.AddSizes(raw)
}

// ToggleSize flips one preset size checkbox.
func (c *Composer) ToggleSize(label string, checked bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.ToggleSize(label, checked)
}

// RemoveSize drops one size label from the draft.
func (c *Composer) RemoveSize(label string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.RemoveSize(label)
}

// SelectImages replaces the current local selection outright. No network
// activity happens here; upload is deferred to the commit path.
func (c *Composer) SelectImages(files []domain.StagedImage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrBusy
	}
	c.draft.Images = append([]domain.StagedImage(nil), files...)
	return nil
}

// PreviewImage returns a staged image by preview ID for local display.
func (c *Composer) PreviewImage(previewID string) (domain.StagedImage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, img := range c.draft.Images {
		if img.PreviewID == previewID {
			return img, true
		}
	}
	return domain.StagedImage{}, false
}

// ResetDraft discards the in-progress entry. An active edit is abandoned.
func (c *Composer) ResetDraft() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrBusy
	}
	c.draft.Reset()
	c.editing = -1
	return nil
}

// AddToBatch commits the draft into the ledger: validate, upload staged
// images sequentially, then append or replace per the editing link. On any
// failure the draft and ledger stay exactly as before the attempt.
func (c *Composer) AddToBatch(ctx context.Context) error {
	draft, editing, err := c.beginCommit()
	if err != nil {
		return err
	}

	urls, err := c.uploadStaged(ctx, draft)
	if err != nil {
		c.endBusy()
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	entry := draft.entry(urls)
	if editing >= 0 {
		c.ledger.ReplaceAt(editing, entry)
	} else {
		c.ledger.Append(entry)
	}
	c.draft.Reset()
	c.editing = -1
	c.busy = false
	c.phase = ""
	zap.L().Debug("batch entry staged",
		zap.String("title", entry.Title),
		zap.Int("ledger_len", c.ledger.Len()),
	)
	return nil
}

// EditEntry hydrates the draft from a ledger row and sets the editing link.
func (c *Composer) EditEntry(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrBusy
	}
	entry, err := c.ledger.At(index)
	if err != nil {
		return err
	}
	c.draft.LoadFrom(entry)
	c.editing = index
	return nil
}

// RemoveEntry drops a ledger row. Removing the row under edit abandons the
// edit; removing an earlier row shifts the editing link so it keeps pointing
// at the same logical entry.
func (c *Composer) RemoveEntry(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrBusy
	}
	if err := c.ledger.RemoveAt(index); err != nil {
		return err
	}
	switch {
	case c.editing == index:
		c.editing = -1
		c.draft.Reset()
	case c.editing > index:
		c.editing--
	}
	return nil
}

// ClearBatch empties the ledger. An edit in progress loses its target row
// and is abandoned like RemoveEntry of the edited row.
func (c *Composer) ClearBatch() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrBusy
	}
	c.ledger.Clear()
	if c.editing >= 0 {
		c.editing = -1
		c.draft.Reset()
	}
	return nil
}

// SubmitBatch sends the full ledger as one creation request. On success the
// ledger is cleared, the draft reset and the parent view notified once. On
// failure everything is retained for retry.
func (c *Composer) SubmitBatch(ctx context.Context) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.ledger.Len() == 0 {
		c.mu.Unlock()
		return ErrNothingQueued
	}
	payloads := c.ledger.Payloads()
	c.busy = true
	c.phase = StateSubmitting
	c.mu.Unlock()

	if err := c.creator.CreateProducts(ctx, payloads); err != nil {
		c.endBusy()
		return err
	}

	c.mu.Lock()
	c.ledger.Clear()
	c.draft.Reset()
	c.editing = -1
	c.busy = false
	c.phase = ""
	c.mu.Unlock()

	zap.L().Info("batch submitted", zap.Int("count", len(payloads)))
	c.notifier.Submitted(len(payloads))
	return nil
}

// SubmitOne validates, uploads and sends the draft as a one-element creation
// request, bypassing the ledger entirely. Shares the validation and upload
// contracts with AddToBatch so quick add and batch add cannot diverge.
func (c *Composer) SubmitOne(ctx context.Context) error {
	draft, _, err := c.beginCommit()
	if err != nil {
		return err
	}

	urls, err := c.uploadStaged(ctx, draft)
	if err != nil {
		c.endBusy()
		return err
	}

	payload := draft.entry(urls).Payload()
	c.mu.Lock()
	c.phase = StateSubmitting
	c.mu.Unlock()

	if err := c.creator.CreateProducts(ctx, []domain.ProductPayload{payload}); err != nil {
		c.endBusy()
		return err
	}

	c.mu.Lock()
	c.draft.Reset()
	c.editing = -1
	c.busy = false
	c.phase = ""
	c.mu.Unlock()

	zap.L().Info("product submitted", zap.String("title", payload.Title))
	c.notifier.Submitted(1)
	return nil
}

// Close discards all in-memory composer state and fires the dismissal hook.
// An in-flight operation must resolve first; there is no cancellation.
func (c *Composer) Close() error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.draft.Reset()
	c.ledger.Clear()
	c.editing = -1
	c.mu.Unlock()

	c.notifier.Closed()
	return nil
}

// beginCommit runs the shared pre-flight of AddToBatch and SubmitOne:
// busy gate, required-field validation and the image presence check. On
// success the composer is marked busy and a draft snapshot returned, so
// field edits arriving while the upload is in flight cannot leak into the
// committed entry.
func (c *Composer) beginCommit() (Draft, int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return Draft{}, -1, ErrBusy
	}
	if missing := c.draft.ValidateRequired(); len(missing) > 0 {
		return Draft{}, -1, &ValidationError{Fields: missing}
	}
	if len(c.draft.Images) == 0 && len(c.draft.RetainedURLs) == 0 {
		return Draft{}, -1, ErrNoImages
	}
	c.busy = true
	c.phase = StateUploading
	return c.draft.clone(), c.editing, nil
}

// uploadStaged runs the upload pipeline for freshly staged files, or falls
// back to the retained URLs of the entry under edit when nothing new was
// selected. No fresh upload is demanded in that case.
func (c *Composer) uploadStaged(ctx context.Context, draft Draft) ([]string, error) {
	if len(draft.Images) == 0 {
		return append([]string(nil), draft.RetainedURLs...), nil
	}
	return c.uploader.UploadAll(ctx, draft.Images)
}

func (c *Composer) endBusy() {
	c.mu.Lock()
	c.busy = false
	c.phase = ""
	c.mu.Unlock()
}
