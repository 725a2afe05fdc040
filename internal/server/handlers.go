package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vladimiradmaev/meal-ledger/internal/domain"
	apperrors "github.com/vladimiradmaev/meal-ledger/internal/errors"
	"github.com/vladimiradmaev/meal-ledger/internal/gateway"
	"github.com/vladimiradmaev/meal-ledger/internal/utils"
)

// Store is the persistence the API serves. repository.MealRepository
// satisfies it.
type Store interface {
	domain.SyncGateway
	Owner(ctx context.Context, entryID string) (string, error)
}

// Handler serves the meal endpoints
type Handler struct {
	store Store
}

// NewHandler creates the meal API handlers
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// GetMeals serves GET /get-meals/:userId?date=YYYY-MM-DD
func (h *Handler) GetMeals(c *gin.Context) {
	date, ok := dateQuery(c)
	if !ok {
		return
	}
	entries, err := h.store.FetchMeals(c.Request.Context(), c.Param("userId"), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gateway.Envelope[[]gateway.MealDTO]{Data: toDTOs(entries), Message: "Meals retrieved"})
}

// LogMeal serves POST /log-meal/:userId?date=YYYY-MM-DD
func (h *Handler) LogMeal(c *gin.Context) {
	date, ok := dateQuery(c)
	if !ok {
		return
	}
	entry, ok := bindEntry(c)
	if !ok {
		return
	}
	created, err := h.store.CreateMeal(c.Request.Context(), c.Param("userId"), date, entry)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gateway.Envelope[gateway.MealDTO]{Data: gateway.FromEntry(*created), Message: "Meal logged"})
}

// UpdateMeal serves PUT /update-meal/:id. Only the owner may update.
func (h *Handler) UpdateMeal(c *gin.Context) {
	entryID := c.Param("id")
	owner, err := h.store.Owner(c.Request.Context(), entryID)
	if err != nil {
		respondError(c, err)
		return
	}
	if owner != c.GetString(ctxUserID) {
		c.JSON(http.StatusForbidden, gateway.Envelope[any]{Message: "Token does not grant access to this meal"})
		return
	}

	entry, ok := bindEntry(c)
	if !ok {
		return
	}
	saved, err := h.store.UpdateMeal(c.Request.Context(), entryID, entry)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gateway.Envelope[gateway.MealDTO]{Data: gateway.FromEntry(*saved), Message: "Meal updated"})
}

// GetAllMeals serves GET /get-all-meals/:userId
func (h *Handler) GetAllMeals(c *gin.Context) {
	entries, err := h.store.FetchAllMeals(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gateway.Envelope[[]gateway.MealDTO]{Data: toDTOs(entries), Message: "Meals retrieved"})
}

func dateQuery(c *gin.Context) (date time.Time, ok bool) {
	raw := c.Query("date")
	date, err := utils.ParseDate(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gateway.Envelope[any]{Message: "date must be YYYY-MM-DD"})
		return date, false
	}
	return date, true
}

func bindEntry(c *gin.Context) (domain.MealEntry, bool) {
	var dto gateway.MealDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gateway.Envelope[any]{Message: err.Error()})
		return domain.MealEntry{}, false
	}
	entry, err := dto.ToEntry()
	if err != nil {
		c.JSON(http.StatusBadRequest, gateway.Envelope[any]{Message: err.Error()})
		return domain.MealEntry{}, false
	}
	if entry.Quantity < 0 {
		respondError(c, apperrors.NewInvalidQuantityError(entry.Quantity, "must not be negative"))
		return domain.MealEntry{}, false
	}
	if !entry.Section.Valid() {
		respondError(c, apperrors.NewInvalidSectionError(string(entry.Section)))
		return domain.MealEntry{}, false
	}
	return entry, true
}

func toDTOs(entries []domain.MealEntry) []gateway.MealDTO {
	out := make([]gateway.MealDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, gateway.FromEntry(e))
	}
	return out
}
