package exclusion

import (
	"go-timesheet/internal/middleware"
	"go-timesheet/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService rbac.Service) {
	exclusions := r.Group("/exclusions")
	exclusions.Use(middleware.AuthMiddleware())
	{
		exclusions.POST("", middleware.RBACAuthorize(rbacService, "exclusion", "create"), handler.Add)
	}
}
