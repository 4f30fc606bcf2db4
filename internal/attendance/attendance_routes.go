package attendance

import (
	"go-fieldtrack/internal/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	att := r.Group("/attendance")
	att.Use(middleware.AuthMiddleware())
	{
		att.POST("/check-in", middleware.RateLimitByEmployee(rate.Limit(1), 3), h.CheckIn)
		att.GET("", h.GetAll)
	}
}
