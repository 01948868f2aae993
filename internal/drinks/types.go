// internal/drinks/types.go
package drinks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when no drink has the requested id
	ErrNotFound = errors.New("drink not found")

	// ErrDuplicateTitle is returned when another drink already has the title
	ErrDuplicateTitle = errors.New("drink title already exists")

	// ErrInvalid is returned when a drink fails validation
	ErrInvalid = errors.New("invalid drink")
)

// Ingredient is one component of a recipe
type Ingredient struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Parts int    `json:"parts"`
}

// Recipe is an ordered ingredient list.
// It decodes from either a JSON array or a single ingredient object.
type Recipe []Ingredient

// UnmarshalJSON accepts a list of ingredients or one ingredient object
func (r *Recipe) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var single Ingredient
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*r = Recipe{single}
		return nil
	}

	var list []Ingredient
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*r = list
	return nil
}

// Drink is a menu entry
type Drink struct {
	ID     int64
	Title  string
	Recipe Recipe
}

// Validate checks the fields a stored drink must have
func (d Drink) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if len(d.Recipe) == 0 {
		return fmt.Errorf("%w: recipe needs at least one ingredient", ErrInvalid)
	}
	for i, ing := range d.Recipe {
		if strings.TrimSpace(ing.Name) == "" {
			return fmt.Errorf("%w: ingredient %d has no name", ErrInvalid, i)
		}
		if ing.Parts < 0 {
			return fmt.Errorf("%w: ingredient %d has negative parts", ErrInvalid, i)
		}
	}
	return nil
}

// ShortIngredient is the public view of an ingredient, without quantities
type ShortIngredient struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ShortDrink is the public projection of a drink
type ShortDrink struct {
	ID     int64             `json:"id"`
	Title  string            `json:"title"`
	Recipe []ShortIngredient `json:"recipe"`
}

// LongDrink is the detailed projection of a drink
type LongDrink struct {
	ID     int64        `json:"id"`
	Title  string       `json:"title"`
	Recipe []Ingredient `json:"recipe"`
}

// Short returns the projection served to anonymous callers
func (d Drink) Short() ShortDrink {
	recipe := make([]ShortIngredient, 0, len(d.Recipe))
	for _, ing := range d.Recipe {
		recipe = append(recipe, ShortIngredient{Name: ing.Name, Color: ing.Color})
	}
	return ShortDrink{ID: d.ID, Title: d.Title, Recipe: recipe}
}

// Long returns the projection with full ingredient detail
func (d Drink) Long() LongDrink {
	recipe := make([]Ingredient, len(d.Recipe))
	copy(recipe, d.Recipe)
	return LongDrink{ID: d.ID, Title: d.Title, Recipe: recipe}
}

// Update holds the fields of a partial update. Nil and empty fields are left unchanged.
type Update struct {
	Title  *string `json:"title"`
	Recipe *Recipe `json:"recipe"`
}
