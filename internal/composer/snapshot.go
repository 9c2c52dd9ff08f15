package composer

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ImageRef is a staged image reference exposed to the operator UI; the
// preview ID resolves to the raw bytes via the preview endpoint.
type ImageRef struct {
	PreviewID string `json:"previewId"`
	Filename  string `json:"filename"`
}

// DraftView is the operator-facing projection of the draft.
type DraftView struct {
	Title        string     `json:"title"`
	ItemType     string     `json:"itemType"`
	Category     string     `json:"category"`
	Price        string     `json:"price"`
	Sizes        []string   `json:"sizes"`
	Colors       []string   `json:"colors"`
	Tags         []string   `json:"tags"`
	Customizable bool       `json:"customizable"`
	IsFeatured   bool       `json:"isFeatured"`
	Description  string     `json:"description"`
	Images       []ImageRef `json:"images"`
	ImageURLs    []string   `json:"imageUrls"`
}

// Snapshot is a point-in-time view of the whole composer.
type Snapshot struct {
	State   string       `json:"state"`
	Busy    bool         `json:"busy"`
	Editing *int         `json:"editing,omitempty"`
	Draft   DraftView    `json:"draft"`
	Ledger  []BatchEntry `json:"ledger"`
}

// Snapshot returns the current composer view for rendering.
func (c *Composer) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	images := make([]ImageRef, 0, len(c.draft.Images))
	for _, img := range c.draft.Images {
		images = append(images, ImageRef{PreviewID: img.PreviewID, Filename: img.Filename})
	}

	snap := Snapshot{
		State: c.stateLocked(),
		Busy:  c.busy,
		Draft: DraftView{
			Title:        c.draft.Title,
			ItemType:     c.draft.ItemType,
			Category:     c.draft.Category,
			Price:        c.draft.Price,
			Sizes:        emptyIfNil(c.draft.Sizes),
			Colors:       emptyIfNil(c.draft.Colors),
			Tags:         emptyIfNil(c.draft.Tags),
			Customizable: c.draft.Customizable,
			IsFeatured:   c.draft.IsFeatured,
			Description:  c.draft.Description,
			Images:       images,
			ImageURLs:    emptyIfNil(c.draft.RetainedURLs),
		},
		Ledger: c.ledger.Entries(),
	}
	if c.editing >= 0 {
		idx := c.editing
		snap.Editing = &idx
	}
	return snap
}

// State reports the composer state name.
func (c *Composer) State() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Composer) stateLocked() string {
	switch {
	case c.busy && c.phase == StateSubmitting:
		return StateSubmitting
	case c.busy:
		return StateUploading
	case c.editing >= 0:
		return StateEditing
	case !c.draft.Empty():
		return StateDrafting
	case c.ledger.Len() > 0:
		return StateStaged
	default:
		return StateIdle
	}
}

// DumpState renders the snapshot as JSON for diagnostics.
func (c *Composer) DumpState() string {
	data, err := json.MarshalIndent(c.Snapshot(), "", "  ")
	if err != nil {
		return err.Error()
	}
	return string(data)
}
