package handler

import (
	"context"

	"reservehub/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Auditor records admin writes. *service.AdminService implements it.
type Auditor interface {
	Record(ctx context.Context, actorID uint, action, resource string, resourceID uint, ip string, meta map[string]any)
}

func record(c *gin.Context, a Auditor, action, resource string, resourceID uint, meta map[string]any) {
	if a == nil {
		return
	}
	a.Record(c.Request.Context(), middleware.GetUserID(c), action, resource, resourceID, c.ClientIP(), meta)
}
