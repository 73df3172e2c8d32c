package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sarveshwaran777333/Water-buddy/config"
	"github.com/sarveshwaran777333/Water-buddy/handlers"
	"github.com/sarveshwaran777333/Water-buddy/middleware"
)

// Register wires every endpoint. Public routes need no token; everything
// under /api behind AuthMiddleware operates on the authenticated user.
func Register(r *gin.Engine, h *handlers.Handlers, cfg *config.Config) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now(),
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/api/register", h.Register)
	r.POST("/api/login", h.Login)
	r.GET("/api/tips", h.Tip)
	r.GET("/api/convert", h.Convert)

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		api.POST("/logout", h.Logout)

		api.GET("/profile", h.GetProfile)
		api.PUT("/profile", h.UpdateProfile)
		api.PUT("/settings", h.UpdateSettings)

		api.GET("/dashboard", h.Dashboard)
		api.POST("/intake", h.LogIntake)
		api.POST("/intake/reset", h.ResetToday)
		api.GET("/intake/history", middleware.CacheMiddleware(30*time.Second), h.History)
		api.GET("/tasks", h.Tasks)

		api.GET("/weather", h.Weather)

		api.GET("/session", h.GetSession)
		api.POST("/session/navigate", h.Navigate)
	}
}
