package ingest

import (
	"go-timesheet/internal/middleware"
	"go-timesheet/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService rbac.Service) {
	runs := r.Group("/ingest")
	runs.Use(middleware.AuthMiddleware())
	{
		runs.POST("/run", middleware.RBACAuthorize(rbacService, "ingest", "run"), handler.Run)
		runs.GET("/status", middleware.RBACAuthorize(rbacService, "ingest", "read"), handler.Status)
	}
}
