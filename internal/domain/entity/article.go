// Package entity defines the core domain records of the application: users,
// articles, notes and favorites, together with their field validation and
// domain errors.
package entity

import (
	"fmt"
	"strings"
	"time"
)

// Category is one of the fixed topic areas an article can belong to.
type Category string

const (
	CategoryCulture         Category = "Culture"
	CategoryGeography       Category = "Geography"
	CategoryHealth          Category = "Health"
	CategoryHistory         Category = "History"
	CategoryHumanActivities Category = "Human Activities"
	CategoryMathematics     Category = "Mathematics"
	CategoryNaturalSciences Category = "Natural Sciences"
	CategoryPeople          Category = "People"
	CategoryPhilosophy      Category = "Philosophy"
	CategoryReligion        Category = "Religion"
	CategorySocialSciences  Category = "Social Sciences"
	CategoryTechnology      Category = "Technology"
)

// Categories lists every allowed category in display order.
var Categories = []Category{
	CategoryCulture,
	CategoryGeography,
	CategoryHealth,
	CategoryHistory,
	CategoryHumanActivities,
	CategoryMathematics,
	CategoryNaturalSciences,
	CategoryPeople,
	CategoryPhilosophy,
	CategoryReligion,
	CategorySocialSciences,
	CategoryTechnology,
}

// IsValid reports whether c is one of Categories. Matching is exact.
func (c Category) IsValid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// ParseCategory returns the Category for value or a ValidationError.
func ParseCategory(value string) (Category, error) {
	c := Category(value)
	if !c.IsValid() {
		return "", &ValidationError{
			Field:   "category",
			Message: fmt.Sprintf("invalid category %q", value),
		}
	}
	return c, nil
}

// Article is a reference article that users can favorite and annotate.
type Article struct {
	ID          int64
	Category    Category
	Title       string
	ImageURL    string
	KeyFacts    string
	Description string
	ArticleURL  string
	CreatedAt   time.Time

	// Notes and Favorites are nil when the relation was not loaded.
	Notes     []*Note
	Favorites []*Favorite
}

// NewArticle returns an article with a validated category.
func NewArticle(category, title string) (*Article, error) {
	a := &Article{Title: strings.TrimSpace(title)}
	if err := a.SetCategory(category); err != nil {
		return nil, err
	}
	return a, nil
}

// SetCategory validates and assigns the category.
func (a *Article) SetCategory(value string) error {
	c, err := ParseCategory(value)
	if err != nil {
		return err
	}
	a.Category = c
	return nil
}

// Validate checks every field of the article.
func (a *Article) Validate() error {
	if !a.Category.IsValid() {
		return &ValidationError{
			Field:   "category",
			Message: fmt.Sprintf("invalid category %q", string(a.Category)),
		}
	}
	if err := validateOptionalURL("image_url", a.ImageURL); err != nil {
		return err
	}
	if err := validateOptionalURL("article_url", a.ArticleURL); err != nil {
		return err
	}
	return nil
}

// NotesBy returns the loaded notes written by userID.
// The result is never nil.
func (a *Article) NotesBy(userID int64) []*Note {
	out := make([]*Note, 0)
	for _, n := range a.Notes {
		if n != nil && n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}
