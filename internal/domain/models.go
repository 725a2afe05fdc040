package domain

import (
	"strings"
	"time"
)

// Section is one of the four fixed meal slots of a day
type Section string

const (
	Breakfast Section = "Breakfast"
	Lunch     Section = "Lunch"
	Dinner    Section = "Dinner"
	Snacks    Section = "Snacks"
)

// Sections lists every section in display order
var Sections = []Section{Breakfast, Lunch, Dinner, Snacks}

// ParseSection matches a section name case-insensitively
func ParseSection(name string) (Section, bool) {
	name = strings.TrimSpace(name)
	for _, s := range Sections {
		if strings.EqualFold(string(s), name) {
			return s, true
		}
	}
	return "", false
}

// Valid reports whether s is exactly one of the four sections
func (s Section) Valid() bool {
	for _, known := range Sections {
		if s == known {
			return true
		}
	}
	return false
}

// Nutrients holds macronutrients in grams per serving
type Nutrients struct {
	Protein       float64 `json:"protein"`
	Fat           float64 `json:"fat"`
	Carbohydrates float64 `json:"carbohydrates"`
}

// MealEntry is one logged food in a section of a day
type MealEntry struct {
	ID        string    // assigned by the store, empty until persisted
	Section   Section
	Label     string
	Calories  float64 // per serving
	Nutrients Nutrients
	Quantity  float64 // servings, steps of 0.5; 0 means deleted
	Date      time.Time
}

// Active reports whether the entry counts toward the day
func (e MealEntry) Active() bool {
	return e.Quantity > 0
}

// FoodCandidate is a food database hit, not yet logged
type FoodCandidate struct {
	FoodID             string
	Label              string
	Brand              string
	Category           string
	CaloriesPerServing float64
	Nutrients          Nutrients
	ServingLabel       string
	ServingWeight      float64 // grams per serving, display only
}

// Budget is the daily calorie target
type Budget struct {
	CalorieGoal float64
}

// DefaultBudget is the process-wide calorie goal
var DefaultBudget = Budget{CalorieGoal: 2000}

// Account identifies the ledger owner and the earliest navigable day
type Account struct {
	UserID    string
	CreatedAt time.Time
}
