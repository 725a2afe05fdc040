// Package server exposes the meal store over HTTP.
package server

import (
	"github.com/gin-gonic/gin"
)

// NewRouter builds the API engine
func NewRouter(h *Handler, verifier TokenVerifier) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), AccessLog())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	RegisterRoutes(router.Group("/api"), h, verifier)
	return router
}

// RegisterRoutes mounts the meal endpoints on rg behind bearer auth
func RegisterRoutes(rg *gin.RouterGroup, h *Handler, verifier TokenVerifier) {
	meal := rg.Group("/meal")
	meal.Use(Authenticate(verifier))
	{
		meal.GET("/get-meals/:userId", RequirePathUser(), h.GetMeals)
		meal.POST("/log-meal/:userId", RequirePathUser(), h.LogMeal)
		meal.PUT("/update-meal/:id", h.UpdateMeal)
		meal.GET("/get-all-meals/:userId", RequirePathUser(), h.GetAllMeals)
	}
}
