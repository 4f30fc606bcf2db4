package employee

import (
	"go-fieldtrack/internal/identity"
	"go-fieldtrack/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	employees := r.Group("/employees")
	employees.Use(middleware.AuthMiddleware())
	{
		employees.GET("", middleware.RoleMiddleware(identity.RoleAdmin), h.GetAll)
		employees.GET("/options", middleware.RoleMiddleware(identity.RoleAdmin), h.GetOptions)
		employees.POST("", middleware.RoleMiddleware(identity.RoleAdmin), h.Create)
		employees.GET("/me", h.Me)
		employees.PATCH("/me/name", h.UpdateName)
	}
}
