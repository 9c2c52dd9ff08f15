package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePreset(t *testing.T) {
	v := NewVocabulary()

	p, ok := v.ResolvePreset("clothing")
	require.True(t, ok)
	assert.Equal(t, DefaultSizeOptions, p.Sizes)
	assert.False(t, p.Numeric)

	p, ok = v.ResolvePreset("shoes")
	require.True(t, ok)
	assert.True(t, p.Numeric)
	assert.Empty(t, p.Sizes)

	_, ok = v.ResolvePreset("print items")
	assert.False(t, ok, "categories without presets offer free-form sizes only")
}

func TestAddItemTypeNormalizesAndDeduplicates(t *testing.T) {
	v := NewVocabulary()
	before := len(v.ItemTypes())

	val, ok := v.AddItemType("  Tote Bag ")
	require.True(t, ok)
	assert.Equal(t, "tote bag", val)
	assert.Len(t, v.ItemTypes(), before+1)

	// duplicate submission is idempotent
	val, ok = v.AddItemType("tote bag")
	require.True(t, ok)
	assert.Equal(t, "tote bag", val)
	assert.Len(t, v.ItemTypes(), before+1)

	// existing default values do not duplicate either
	_, ok = v.AddItemType("Hoodie")
	require.True(t, ok)
	assert.Len(t, v.ItemTypes(), before+1)
}

func TestAddCategoryEmptyIsNoOp(t *testing.T) {
	v := NewVocabulary()
	before := len(v.Categories())

	_, ok := v.AddCategory("   ")
	assert.False(t, ok)
	assert.Len(t, v.Categories(), before)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"38", "39", "40"}, SplitList(" 38, 39 ,40,"))
	assert.Empty(t, SplitList(" , ,"))
	assert.Equal(t, []string{"XL"}, SplitList("XL"))
}
