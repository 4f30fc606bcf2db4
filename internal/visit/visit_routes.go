package visit

import (
	"go-fieldtrack/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rdb *redis.Client) {
	visits := r.Group("/visits")
	visits.Use(middleware.AuthMiddleware())
	{
		visits.POST("",
			middleware.RateLimitByEmployee(rate.Limit(1), 3),
			middleware.Idempotency(rdb),
			h.Submit,
		)
		visits.GET("", h.GetAll)
	}
}
