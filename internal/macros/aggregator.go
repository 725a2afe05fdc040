// Package macros sums calories and macronutrients over meal entries.
//
// Every entry contributes floor(perServing) * quantity for each field. The
// per-serving value is floored before scaling, which keeps totals on the
// conservative side; do not replace with rounding.
package macros

import (
	"math"

	"github.com/vladimiradmaev/meal-ledger/internal/domain"
)

// Totals holds summed calories and macronutrient grams
type Totals struct {
	Calories      float64 `json:"calories"`
	Protein       float64 `json:"protein"`
	Fat           float64 `json:"fat"`
	Carbohydrates float64 `json:"carbohydrates"`
}

// Add returns the field-wise sum of t and o
func (t Totals) Add(o Totals) Totals {
	return Totals{
		Calories:      t.Calories + o.Calories,
		Protein:       t.Protein + o.Protein,
		Fat:           t.Fat + o.Fat,
		Carbohydrates: t.Carbohydrates + o.Carbohydrates,
	}
}

// Progress is consumption relative to the calorie goal
type Progress struct {
	Percent float64 `json:"percent"`
	Over    bool    `json:"over"`
}

// Contribution returns what a single entry adds to the day.
// Inactive entries contribute nothing.
func Contribution(e domain.MealEntry) Totals {
	if !e.Active() {
		return Totals{}
	}
	return Totals{
		Calories:      math.Floor(e.Calories) * e.Quantity,
		Protein:       math.Floor(e.Nutrients.Protein) * e.Quantity,
		Fat:           math.Floor(e.Nutrients.Fat) * e.Quantity,
		Carbohydrates: math.Floor(e.Nutrients.Carbohydrates) * e.Quantity,
	}
}

// Sum totals every active entry regardless of section
func Sum(entries []domain.MealEntry) Totals {
	var t Totals
	for _, e := range entries {
		t = t.Add(Contribution(e))
	}
	return t
}

// BySection totals active entries per section. All four sections are
// present in the result, empty ones with zero totals.
func BySection(entries []domain.MealEntry) map[domain.Section]Totals {
	out := make(map[domain.Section]Totals, len(domain.Sections))
	for _, s := range domain.Sections {
		out[s] = Totals{}
	}
	for _, e := range entries {
		if !e.Section.Valid() {
			continue
		}
		out[e.Section] = out[e.Section].Add(Contribution(e))
	}
	return out
}

// ProgressOf reports calories consumed as a percentage of goal.
// Values above 100 are kept as-is and flagged Over.
func ProgressOf(t Totals, calorieGoal float64) Progress {
	if calorieGoal <= 0 {
		return Progress{Percent: 0, Over: t.Calories > 0}
	}
	pct := t.Calories / calorieGoal * 100
	return Progress{Percent: pct, Over: pct > 100}
}

// Remaining returns the calories left before reaching goal; negative once over
func Remaining(t Totals, calorieGoal float64) float64 {
	return calorieGoal - t.Calories
}
