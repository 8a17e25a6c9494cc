package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	for _, c := range Categories {
		t.Run(string(c), func(t *testing.T) {
			got, err := ParseCategory(string(c))
			require.NoError(t, err)
			assert.Equal(t, c, got)
		})
	}

	for _, bad := range []string{"", "Sports", "history", " History", "Human activities"} {
		t.Run("invalid "+bad, func(t *testing.T) {
			_, err := ParseCategory(bad)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, "category", ve.Field)
		})
	}
}

func TestCategories_Complete(t *testing.T) {
	assert.Len(t, Categories, 12)
	seen := map[Category]bool{}
	for _, c := range Categories {
		assert.False(t, seen[c], "duplicate category %s", c)
		seen[c] = true
	}
}

func TestNewArticle(t *testing.T) {
	a, err := NewArticle("History", "  X  ")
	require.NoError(t, err)
	assert.Equal(t, CategoryHistory, a.Category)
	assert.Equal(t, "X", a.Title)

	_, err = NewArticle("Sports", "X")
	assert.True(t, IsValidationError(err))
}

func TestArticle_SetCategory_KeepsPreviousOnFailure(t *testing.T) {
	a := &Article{Category: CategoryNaturalSciences}
	err := a.SetCategory("Sports")
	require.Error(t, err)
	assert.Equal(t, CategoryNaturalSciences, a.Category)

	require.NoError(t, a.SetCategory("Technology"))
	assert.Equal(t, CategoryTechnology, a.Category)
}

func TestArticle_Validate(t *testing.T) {
	tests := []struct {
		name      string
		article   Article
		wantField string
	}{
		{
			name:    "valid with urls",
			article: Article{Category: CategoryCulture, ImageURL: "https://img.example.com/a.png", ArticleURL: "https://en.wikipedia.org/wiki/Culture"},
		},
		{
			name:    "valid without urls",
			article: Article{Category: CategoryPeople},
		},
		{
			name:      "invalid category",
			article:   Article{Category: "Sports"},
			wantField: "category",
		},
		{
			name:      "invalid image url",
			article:   Article{Category: CategoryHealth, ImageURL: "ftp://x"},
			wantField: "image_url",
		},
		{
			name:      "invalid article url",
			article:   Article{Category: CategoryHealth, ArticleURL: "nope"},
			wantField: "article_url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.article.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestArticle_NotesBy(t *testing.T) {
	a := &Article{ID: 1, Notes: []*Note{
		{ID: 1, UserID: 7},
		{ID: 2, UserID: 8},
		{ID: 3, UserID: 7},
	}}

	mine := a.NotesBy(7)
	require.Len(t, mine, 2)
	assert.Equal(t, int64(1), mine[0].ID)
	assert.Equal(t, int64(3), mine[1].ID)

	none := a.NotesBy(99)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	unloaded := (&Article{}).NotesBy(7)
	assert.NotNil(t, unloaded)
	assert.Empty(t, unloaded)
}
