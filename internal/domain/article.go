package domain

import (
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
)

// Article is a single readable item served by the article resource.
type Article struct {
	ID           string   `json:"id" db:"id" validate:"required"`
	Title        string   `json:"title" db:"title"`
	Summary      string   `json:"summary" db:"summary"`
	ReadingTime  int      `json:"readingTime" db:"reading_time" validate:"gt=0"`
	CoinsOffered int      `json:"coinsOffered,omitempty" db:"coins_offered" validate:"gte=0"`
	Tags         []string `json:"tags,omitempty" db:"-"`
}

// Tag is a topic label. Tags are unique within the collection served by /tags.
type Tag = string

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the invariants every fetched or seeded article must hold.
func (a Article) Validate() error {
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("invalid article %q: %w", a.ID, err)
	}
	return nil
}

// HasAllTags reports whether every tag in want is present on the article.
func (a Article) HasAllTags(want []string) bool {
	for _, t := range want {
		if !slices.Contains(a.Tags, t) {
			return false
		}
	}
	return true
}

// Catalog is the full content of the article resource.
type Catalog struct {
	Tags     []Tag
	Articles []Article
}
