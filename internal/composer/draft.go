package composer

import (
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/impressalabs/console/internal/domain"
	"github.com/impressalabs/console/internal/taxonomy"
)

// Draft holds the single in-progress product definition. Exactly one Draft
// is live per composer; it is mutated by operator input and either promoted
// into the ledger or discarded.
type Draft struct {
	Title        string
	ItemType     string
	Category     string
	Price        string // raw operator input, coerced at validation time
	Sizes        []string
	Colors       []string
	Tags         []string
	Customizable bool
	IsFeatured   bool
	Description  string

	// Images are the local selections awaiting upload. RetainedURLs carry
	// the previously uploaded URLs of a ledger entry being edited; a new
	// local selection supersedes them at commit time.
	Images       []domain.StagedImage
	RetainedURLs []string
}

// Reset clears every field back to its empty default and drops local image
// selections.
func (d *Draft) Reset() {
	*d = Draft{}
}

// Empty reports whether the operator has entered anything at all.
func (d *Draft) Empty() bool {
	return d.Title == "" && d.ItemType == "" && d.Category == "" &&
		d.Price == "" && len(d.Sizes) == 0 && len(d.Colors) == 0 &&
		len(d.Tags) == 0 && !d.Customizable && !d.IsFeatured &&
		d.Description == "" && len(d.Images) == 0 && len(d.RetainedURLs) == 0
}

// LoadFrom hydrates the draft from a ledger snapshot for editing. The
// snapshot's image URLs are retained for preview and reused at commit unless
// the operator stages a fresh selection.
func (d *Draft) LoadFrom(e BatchEntry) {
	d.Reset()
	d.Title = e.Title
	d.ItemType = e.ItemType
	d.Category = e.Category
	d.Price = strconv.FormatFloat(e.Price, 'f', -1, 64)
	d.Sizes = append([]string(nil), e.Sizes...)
	d.Colors = append([]string(nil), e.Colors...)
	d.Tags = append([]string(nil), e.Tags...)
	d.Customizable = e.Customizable
	d.IsFeatured = e.IsFeatured
	d.Description = e.Description
	d.RetainedURLs = append([]string(nil), e.ImageURLs...)
}

// ValidateRequired returns the subset of required fields that are currently
// empty or invalid. An empty result means the draft may be committed.
func (d *Draft) ValidateRequired() []string {
	var missing []string
	if strings.TrimSpace(d.Title) == "" {
		missing = append(missing, "title")
	}
	if d.ItemType == "" {
		missing = append(missing, "itemType")
	}
	if d.Category == "" {
		missing = append(missing, "category")
	}
	if _, ok := d.priceValue(); !ok {
		missing = append(missing, "price")
	}
	return missing
}

// priceValue coerces the raw price input. Empty, non-numeric or non-positive
// input is invalid.
func (d *Draft) priceValue() (float64, bool) {
	raw := strings.TrimSpace(d.Price)
	if raw == "" {
		return 0, false
	}
	price, err := cast.ToFloat64E(raw)
	if err != nil || price <= 0 {
		return 0, false
	}
	return price, true
}

// AddSizes unions comma-separated size labels into the size set, keeping
// first-seen order for new values and leaving existing order untouched.
func (d *Draft) AddSizes(raw string) {
	for _, label := range taxonomy.SplitList(raw) {
		if !containsSize(d.Sizes, label) {
			d.Sizes = append(d.Sizes, label)
		}
	}
}

// ToggleSize adds or removes a preset size label.
func (d *Draft) ToggleSize(label string, checked bool) {
	if checked {
		if !containsSize(d.Sizes, label) {
			d.Sizes = append(d.Sizes, label)
		}
		return
	}
	d.RemoveSize(label)
}

// RemoveSize drops one size label from the set.
func (d *Draft) RemoveSize(label string) {
	out := d.Sizes[:0]
	for _, s := range d.Sizes {
		if s != label {
			out = append(out, s)
		}
	}
	d.Sizes = out
}

// SetColors replaces the color list from comma-separated operator input,
// trimmed and lower-cased.
func (d *Draft) SetColors(raw string) {
	d.Colors = normalizeList(raw)
}

// SetTags replaces the tag list from comma-separated operator input.
func (d *Draft) SetTags(raw string) {
	d.Tags = normalizeList(raw)
}

// entry snapshots the draft into an immutable batch entry with the given
// image URLs. Callers must have passed ValidateRequired first.
func (d *Draft) entry(urls []string) BatchEntry {
	price, _ := d.priceValue()
	return BatchEntry{
		Title:        strings.TrimSpace(d.Title),
		ItemType:     d.ItemType,
		Category:     d.Category,
		Price:        price,
		Sizes:        append([]string(nil), d.Sizes...),
		Colors:       append([]string(nil), d.Colors...),
		Tags:         append([]string(nil), d.Tags...),
		Customizable: d.Customizable,
		IsFeatured:   d.IsFeatured,
		Description:  d.Description,
		ImageURLs:    append([]string(nil), urls...),
	}
}

// clone deep-copies the draft so a commit snapshot is isolated from
// operator edits that arrive while the upload is in flight.
func (d *Draft) clone() Draft {
	out := *d
	out.Sizes = append([]string(nil), d.Sizes...)
	out.Colors = append([]string(nil), d.Colors...)
	out.Tags = append([]string(nil), d.Tags...)
	out.Images = append([]domain.StagedImage(nil), d.Images...)
	out.RetainedURLs = append([]string(nil), d.RetainedURLs...)
	return out
}

func normalizeList(raw string) []string {
	parts := taxonomy.SplitList(raw)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.ToLower(p))
	}
	return out
}

func containsSize(sizes []string, label string) bool {
	for _, s := range sizes {
		if s == label {
			return true
		}
	}
	return false
}
