package routes

import (
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"cookbook/auth"
	"cookbook/middleware"
	"cookbook/ratelim"
	"cookbook/recipes"
)

// AddRecipeRoutes registers every cookbook endpoint. Mutating routes go
// through the rate limiter and the password gate.
func AddRecipeRoutes(router *httprouter.Router, h *recipes.Handler, gate *auth.Gate, rl *ratelim.RateLimiter, log *zap.Logger) {
	router.GET("/health", recipes.Health)

	router.GET("/", h.GetHome)
	router.GET("/recipes", h.GetAll)
	router.GET("/recipe", h.GetOne)

	router.POST("/addrecipe", rl.Limit(middleware.RequirePassword(gate, log, h.Create)))
	router.PUT("/removerecipe", rl.Limit(middleware.RequirePassword(gate, log, h.Remove)))
	router.DELETE("/deleterecipe", rl.Limit(middleware.RequirePassword(gate, log, h.Remove)))
	router.PUT("/editrecipe", rl.Limit(middleware.RequirePassword(gate, log, h.Edit)))
}
