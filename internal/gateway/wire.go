package gateway

import (
	"fmt"

	"github.com/vladimiradmaev/meal-ledger/internal/domain"
	"github.com/vladimiradmaev/meal-ledger/internal/utils"
)

// MealDTO is a meal entry as it travels over the REST API
type MealDTO struct {
	ID        string           `json:"_id,omitempty"`
	Section   string           `json:"section"`
	Label     string           `json:"label"`
	Calories  float64          `json:"calories"`
	Quantity  float64          `json:"quantity"`
	Nutrients domain.Nutrients `json:"nutrients"`
	Date      string           `json:"date,omitempty"`
}

// Envelope wraps every API response
type Envelope[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

// FromEntry converts a domain entry to its wire form
func FromEntry(e domain.MealEntry) MealDTO {
	dto := MealDTO{
		ID:        e.ID,
		Section:   string(e.Section),
		Label:     e.Label,
		Calories:  e.Calories,
		Quantity:  e.Quantity,
		Nutrients: e.Nutrients,
	}
	if !e.Date.IsZero() {
		dto.Date = utils.FormatDate(e.Date)
	}
	return dto
}

// ToEntry converts a wire entry to the domain type. Dates may carry a time
// part (ISO 8601); only the calendar day is kept.
func (d MealDTO) ToEntry() (domain.MealEntry, error) {
	e := domain.MealEntry{
		ID:        d.ID,
		Section:   domain.Section(d.Section),
		Label:     d.Label,
		Calories:  d.Calories,
		Quantity:  d.Quantity,
		Nutrients: d.Nutrients,
	}
	if d.Date == "" {
		return e, nil
	}
	day := d.Date
	if len(day) > len(utils.DateLayout) {
		day = day[:len(utils.DateLayout)]
	}
	date, err := utils.ParseDate(day)
	if err != nil {
		return domain.MealEntry{}, fmt.Errorf("invalid meal date %q: %w", d.Date, err)
	}
	e.Date = date
	return e, nil
}

// ToEntries converts a list, failing on the first malformed entry
func ToEntries(dtos []MealDTO) ([]domain.MealEntry, error) {
	out := make([]domain.MealEntry, 0, len(dtos))
	for _, d := range dtos {
		e, err := d.ToEntry()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
