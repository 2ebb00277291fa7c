package exception

import (
	"go-timesheet/internal/middleware"
	"go-timesheet/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService rbac.Service) {
	exceptions := r.Group("/exceptions")
	exceptions.Use(middleware.AuthMiddleware())
	{
		exceptions.POST("", middleware.RBACAuthorize(rbacService, "exception", "create"), handler.Submit)
		exceptions.POST("/:id/decide", middleware.RBACAuthorize(rbacService, "exception", "decide"), handler.Decide)
	}
}
