package payroll

import (
	"go-timesheet/internal/middleware"
	"go-timesheet/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb ...*redis.Client,
) {
	var redisClient *redis.Client
	if len(rdb) > 0 {
		redisClient = rdb[0]
	}

	periods := r.Group("/payroll")
	periods.Use(middleware.AuthMiddleware())
	{
		periods.GET("/periods", middleware.RBACAuthorize(rbacService, "payroll", "read"), handler.GetAll)
		periods.GET("/periods/:id/matrix", middleware.RBACAuthorize(rbacService, "payroll", "read"), handler.GetMatrix)
		periods.POST("/periods/review", middleware.RBACAuthorize(rbacService, "payroll", "review"), handler.SendToReview)
		if redisClient != nil {
			periods.POST(
				"/periods/approve",
				middleware.Idempotency(redisClient),
				middleware.RBACAuthorize(rbacService, "payroll", "approve"),
				handler.Decide,
			)
		} else {
			periods.POST("/periods/approve", middleware.RBACAuthorize(rbacService, "payroll", "approve"), handler.Decide)
		}

		if redisClient != nil {
			periods.POST(
				"/generate",
				middleware.Idempotency(redisClient),
				middleware.RBACAuthorize(rbacService, "payroll", "generate"),
				handler.Generate,
			)
		} else {
			periods.POST("/generate", middleware.RBACAuthorize(rbacService, "payroll", "generate"), handler.Generate)
		}
	}
}
