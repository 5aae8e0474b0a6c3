package models

import "fmt"

// HabitCategory classifies content modules into one of a fixed set of
// habit areas. The set is closed: progress aggregation and badge criteria
// key on these values, so new categories require a migration.
type HabitCategory string

const (
	CategoryHygiene   HabitCategory = "hygiene"
	CategoryNutrition HabitCategory = "nutrition"
	CategorySleep     HabitCategory = "sleep"
	CategoryMovement  HabitCategory = "movement"
	CategoryFocus     HabitCategory = "focus"
	CategoryKindness  HabitCategory = "kindness"
)

// AllCategories lists every habit category in display order.
var AllCategories = []HabitCategory{
	CategoryHygiene,
	CategoryNutrition,
	CategorySleep,
	CategoryMovement,
	CategoryFocus,
	CategoryKindness,
}

// ParseCategory validates a raw category string
func ParseCategory(s string) (HabitCategory, error) {
	for _, c := range AllCategories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown habit category: %q", s)
}

// String returns the category as a plain string
func (c HabitCategory) String() string {
	return string(c)
}
