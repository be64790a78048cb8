// Package yield predicts the best crop per cell from its weather and the
// selected nutrient.
package yield

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidCoordinate = errors.New("yield: invalid coordinate")
	ErrBadResponse       = errors.New("yield: bad prediction response")
	ErrUnknownNutrient   = errors.New("yield: unknown nutrient")
)

// Nutrient is the quantity a prediction optimises for.
type Nutrient string

const (
	Calories      Nutrient = "Calories"
	Protein       Nutrient = "Protein"
	Oil           Nutrient = "Oil"
	Carbohydrates Nutrient = "Carbohydrates"
	EFA           Nutrient = "EFA"
)

// DefaultNutrient is used until the user chooses another.
const DefaultNutrient = Calories

var nutrients = []Nutrient{Calories, Protein, Oil, Carbohydrates, EFA}

// Nutrients lists the selectable nutrients in panel order.
func Nutrients() []Nutrient {
	out := make([]Nutrient, len(nutrients))
	copy(out, nutrients)
	return out
}

// ParseNutrient matches s case-insensitively.
func ParseNutrient(s string) (Nutrient, error) {
	for _, n := range nutrients {
		if strings.EqualFold(string(n), strings.TrimSpace(s)) {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownNutrient, s)
}
