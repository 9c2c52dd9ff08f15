package composer

import (
	"fmt"

	"github.com/impressalabs/console/internal/domain"
)

// BatchEntry is an immutable, upload-complete product snapshot queued for
// submission. Identity is positional; removal shifts indices.
type BatchEntry struct {
	Title        string   `json:"title"`
	ItemType     string   `json:"itemType"`
	Category     string   `json:"category"`
	Price        float64  `json:"price"`
	Sizes        []string `json:"sizes"`
	Colors       []string `json:"colors"`
	Tags         []string `json:"tags"`
	Customizable bool     `json:"customizable"`
	IsFeatured   bool     `json:"isFeatured"`
	Description  string   `json:"description,omitempty"`
	ImageURLs    []string `json:"imageUrls"`
}

// Payload shapes the entry for the catalog creation endpoint.
func (e BatchEntry) Payload() domain.ProductPayload {
	var desc *string
	if e.Description != "" {
		d := e.Description
		desc = &d
	}
	return domain.ProductPayload{
		Title:        e.Title,
		ItemType:     e.ItemType,
		Category:     e.Category,
		ImageURLs:    emptyIfNil(e.ImageURLs),
		Price:        e.Price,
		Sizes:        emptyIfNil(e.Sizes),
		Colors:       emptyIfNil(e.Colors),
		Tags:         emptyIfNil(e.Tags),
		Customizable: e.Customizable,
		IsFeatured:   e.IsFeatured,
		Description:  desc,
	}
}

// Ledger is the ordered collection of validated entries pending submission.
// Entries are replaced by value, never mutated in place.
type Ledger struct {
	entries []BatchEntry
}

func (l *Ledger) Len() int {
	return len(l.entries)
}

// Entries returns a copy of the queued snapshots in insertion order.
func (l *Ledger) Entries() []BatchEntry {
	return append([]BatchEntry(nil), l.entries...)
}

// At returns the entry at an operator-supplied index.
func (l *Ledger) At(index int) (BatchEntry, error) {
	if index < 0 || index >= len(l.entries) {
		return BatchEntry{}, ErrNoSuchEntry
	}
	return l.entries[index], nil
}

func (l *Ledger) Append(e BatchEntry) {
	l.entries = append(l.entries, e)
}

// ReplaceAt swaps the entry at index. The editing-link invariant guarantees
// the index is valid; an out-of-range index is a programming error and
// panics rather than silently no-op.
func (l *Ledger) ReplaceAt(index int, e BatchEntry) {
	if index < 0 || index >= len(l.entries) {
		panic(fmt.Sprintf("ledger: replace at index %d with %d entries", index, len(l.entries)))
	}
	l.entries[index] = e
}

// RemoveAt drops the entry at an operator-supplied index.
func (l *Ledger) RemoveAt(index int) error {
	if index < 0 || index >= len(l.entries) {
		return ErrNoSuchEntry
	}
	l.entries = append(l.entries[:index], l.entries[index+1:]...)
	return nil
}

func (l *Ledger) Clear() {
	l.entries = nil
}

// Payloads shapes the whole ledger for one combined creation request.
func (l *Ledger) Payloads() []domain.ProductPayload {
	out := make([]domain.ProductPayload, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e.Payload())
	}
	return out
}

func emptyIfNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
