package taxonomy

import "strings"

// DefaultSizeOptions is the generic apparel size run offered when a category
// has no preset of its own.
var DefaultSizeOptions = []string{"XS", "S", "M", "L", "XL", "XXL", "3XL"}

// Preset is the size suggestion attached to a category. Numeric marks
// shoe-like categories where sizes are free numeric input with no checkbox
// list.
type Preset struct {
	Sizes   []string `json:"sizes,omitempty"`
	Numeric bool     `json:"numeric"`
}

var defaultItemTypes = []string{
	"t-shirt",
	"hoodie",
	"sweatshirt",
	"cap",
	"mug",
	"phone case",
	"poster",
	"sticker",
	"jacket",
	"long sleeve",
}

var defaultCategories = []string{
	"all",
	"clothing",
	"luxury dress",
	"bags",
	"shoes",
	"accessories",
	"shorts",
	"home & living",
	"print items",
	"stickers",
	"others",
}

var defaultPresets = map[string]Preset{
	"clothing":     {Sizes: DefaultSizeOptions},
	"luxury dress": {Sizes: DefaultSizeOptions},
	"shorts":       {Sizes: []string{"28", "30", "32", "34", "36", "38", "40"}},
	"bags":         {Sizes: []string{"Small", "Medium", "Large"}},
	"shoes":        {Numeric: true},
	"accessories":  {Sizes: []string{"One Size"}},
}

// Vocabulary holds the session-scoped item type and category vocabularies.
// Operators may append custom values at runtime; additions live only as long
// as the owning composer session.
type Vocabulary struct {
	itemTypes  []string
	categories []string
	presets    map[string]Preset
}

// NewVocabulary returns a vocabulary seeded with the storefront defaults.
func NewVocabulary() *Vocabulary {
	v := &Vocabulary{
		itemTypes:  append([]string(nil), defaultItemTypes...),
		categories: append([]string(nil), defaultCategories...),
		presets:    make(map[string]Preset, len(defaultPresets)),
	}
	for k, p := range defaultPresets {
		v.presets[k] = p
	}
	return v
}

func (v *Vocabulary) ItemTypes() []string {
	return append([]string(nil), v.itemTypes...)
}

func (v *Vocabulary) Categories() []string {
	return append([]string(nil), v.categories...)
}

// ResolvePreset looks up the size preset for a category. The second return
// is false when the category carries no preset and only free-form sizes
// apply.
func (v *Vocabulary) ResolvePreset(category string) (Preset, bool) {
	p, ok := v.presets[category]
	return p, ok
}

// AddItemType normalizes and appends a custom item type. Empty input is a
// no-op and re-adding a known value is idempotent. Returns the normalized
// value and whether it is now usable as a selection.
func (v *Vocabulary) AddItemType(raw string) (string, bool) {
	val := Normalize(raw)
	if val == "" {
		return "", false
	}
	if !contains(v.itemTypes, val) {
		v.itemTypes = append(v.itemTypes, val)
	}
	return val, true
}

// AddCategory behaves like AddItemType for the category vocabulary.
func (v *Vocabulary) AddCategory(raw string) (string, bool) {
	val := Normalize(raw)
	if val == "" {
		return "", false
	}
	if !contains(v.categories, val) {
		v.categories = append(v.categories, val)
	}
	return val, true
}

// Normalize trims and lower-cases an operator-entered vocabulary value.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// SplitList parses comma-separated operator input into trimmed, non-empty
// tokens. Token case is preserved; size labels like "XL" stay as typed.
func SplitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func contains(list []string, val string) bool {
	for _, s := range list {
		if s == val {
			return true
		}
	}
	return false
}
