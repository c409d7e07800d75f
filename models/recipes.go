package models

import (
	"errors"
	"strings"
)

// ErrTitleRequired is returned by Validate when a payload has no title.
var ErrTitleRequired = errors.New("recipe title is required")

// Recipe is a stored recipe. Optional fields are nil when not provided,
// which keeps them out of the serialized form entirely.
type Recipe struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Time         *string `json:"time,omitempty"`
	Difficulty   *string `json:"difficulty,omitempty"`
	Ingredients  *string `json:"ingredients,omitempty"`
	Instructions *string `json:"instructions,omitempty"`
}

// RecipePayload carries the user-entered fields of a new recipe.
type RecipePayload struct {
	Title        string  `json:"title"`
	Time         *string `json:"time,omitempty"`
	Difficulty   *string `json:"difficulty,omitempty"`
	Ingredients  *string `json:"ingredients,omitempty"`
	Instructions *string `json:"instructions,omitempty"`
}

// Normalize trims every field and drops optional fields that are blank.
func (p RecipePayload) Normalize() RecipePayload {
	return RecipePayload{
		Title:        strings.TrimSpace(p.Title),
		Time:         trimOptional(p.Time),
		Difficulty:   trimOptional(p.Difficulty),
		Ingredients:  trimOptional(p.Ingredients),
		Instructions: trimOptional(p.Instructions),
	}
}

// Validate reports whether the payload may be stored.
func (p RecipePayload) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrTitleRequired
	}
	return nil
}

// WithID builds the stored form of the payload.
func (p RecipePayload) WithID(id string) Recipe {
	return Recipe{
		ID:           id,
		Title:        p.Title,
		Time:         p.Time,
		Difficulty:   p.Difficulty,
		Ingredients:  p.Ingredients,
		Instructions: p.Instructions,
	}
}

// String returns a pointer to s, for filling optional fields.
func String(s string) *string {
	return &s
}

// Value dereferences an optional field, returning "" when it is absent.
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
