package news

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItem_IdentityPreference(t *testing.T) {
	tests := []struct {
		name  string
		guid  string
		title string
		link  string
		want  string
	}{
		{"guid wins", "guid-1", "Title", "https://x/1", "guid-1"},
		{"link when no guid", "", "Title", "https://x/1", "https://x/1"},
		{"title as last resort", "  ", "Title", "", "Title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it, err := NewItem(tt.guid, tt.title, "", tt.link, "", "src", time.Time{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, it.Identity)
		})
	}
}

func TestNewItem_RejectsEmpty(t *testing.T) {
	_, err := NewItem("guid", "   ", "summary", "", "", "src", time.Time{})
	assert.Error(t, err)
}

func TestNewItem_NormalizesTitle(t *testing.T) {
	it, err := NewItem("", "  Real   Madrid\n win ", "", "https://x/1", " https://img ", "src", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "Real Madrid win", it.Title)
	assert.Equal(t, "https://img", it.Image)
	assert.True(t, it.HasImage())
	assert.False(t, it.HasPublished())
}

func TestSortOldestFirst(t *testing.T) {
	t1 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	t3 := t2.Add(time.Hour)

	items := []Item{
		{Identity: "c", Published: t3},
		{Identity: "a", Published: t1},
		{Identity: "none"},
		{Identity: "b", Published: t2},
	}

	SortOldestFirst(items)

	var got []string
	for _, it := range items {
		got = append(got, it.Identity)
	}
	assert.Equal(t, []string{"none", "a", "b", "c"}, got)
}

func TestCategorize_Priority(t *testing.T) {
	tests := []struct {
		title string
		want  Category
	}{
		{"Vinicius goal seals the match", CategoryGoal},
		{"Injury update before the match", CategoryInjury},
		{"Transfer news: midfielder signing", CategoryTransfer},
		{"Match preview: Clasico", CategoryMatch},
		{"Club statement", CategoryDefault},
		{"Golf day for the squad", CategoryDefault},
		{"Ajoyib gol!", CategoryGoal},
		{"Real Madrid golini urdi", CategoryGoal},
		{"Vinisiusning 2 ta goli", CategoryGoal},
		{"Gollar: Real 3-0", CategoryGoal},
		{"Mbappe golni bag'ishladi", CategoryGoal},
		{"Golf clubs and transfer rumours", CategoryTransfer},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.title))
		})
	}
}

func TestCategorize_UsesAnyText(t *testing.T) {
	assert.Equal(t, CategoryTransfer, Categorize("Yangi futbolchi", "New transfer confirmed"))
}

func TestCategory_Marker(t *testing.T) {
	assert.Equal(t, "⚽️", CategoryGoal.Marker())
	assert.Equal(t, "🚑", CategoryInjury.Marker())
	assert.Equal(t, "💰", CategoryTransfer.Marker())
	assert.Equal(t, "🏟", CategoryMatch.Marker())
	assert.Equal(t, "📰", CategoryDefault.Marker())
}

func TestErrors_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("wrapped: %w", &StoreError{Identity: "x", Op: "read", Err: cause})

	var storeErr *StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "read", storeErr.Op)
	assert.ErrorIs(t, err, cause)
}
