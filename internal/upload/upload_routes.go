package upload

import (
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, auth gin.HandlerFunc, rbacService middleware.RBACService) {
	r.POST("/uploads",
		auth,
		middleware.RBACAuthorize(rbacService, "upload", "create"),
		middleware.RateLimitByUser(1, 10),
		h.Upload,
	)
}
