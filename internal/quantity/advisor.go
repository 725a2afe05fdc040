// Package quantity bounds how many servings can be added or edited
// against the day's remaining calorie budget.
package quantity

import "math"

const (
	// HardCap is the absolute limit on servings in one action
	HardCap = 30.0
	// OvershootFactor lets a single add run modestly past the remaining budget
	OvershootFactor = 1.8
	// MinServings is the floor callers allow once the budget is exhausted
	MinServings = 1.0
	// Step is the serving granularity
	Step = 0.5
)

// MaxQuantity returns ceil(remaining / calories * 1.8) capped to [0, hardCap].
// Zero or negative calories count as 1 so zero-calorie foods reach the cap.
func MaxQuantity(caloriesPerServing, consumedToday, calorieGoal, hardCap float64) float64 {
	remaining := calorieGoal - consumedToday
	effective := caloriesPerServing
	if effective <= 0 {
		effective = 1
	}

	raw := math.Ceil(remaining / effective * OvershootFactor)
	if math.IsNaN(raw) {
		return 0
	}
	return math.Max(0, math.Min(raw, hardCap))
}

// AddLimit is the cap enforced on a new entry: MaxQuantity, but never less
// than one serving so an exhausted budget does not block logging.
func AddLimit(caloriesPerServing, consumedToday, calorieGoal float64) float64 {
	return math.Max(MaxQuantity(caloriesPerServing, consumedToday, calorieGoal, HardCap), MinServings)
}

// EditLimit is the cap enforced when changing an existing entry. Once the
// budget leaves no room, the entry may keep its current quantity.
func EditLimit(caloriesPerServing, consumedToday, calorieGoal, current float64) float64 {
	limit := MaxQuantity(caloriesPerServing, consumedToday, calorieGoal, HardCap)
	if limit > 0 {
		return limit
	}
	return math.Max(current, MinServings)
}

// OnStep reports whether q is a whole multiple of Step
func OnStep(q float64) bool {
	scaled := q / Step
	return !math.IsInf(scaled, 0) && scaled == math.Trunc(scaled)
}
