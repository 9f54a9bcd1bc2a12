package contracttype

import (
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, auth gin.HandlerFunc, rbacService middleware.RBACService) {
	types := r.Group("/tipos-contrato")
	types.Use(auth)
	{
		types.GET("", middleware.RBACAuthorize(rbacService, "tipo_contrato", "read"), h.GetAll)
		types.GET("/:id", middleware.RBACAuthorize(rbacService, "tipo_contrato", "read"), h.GetByID)
		types.POST("", middleware.RBACAuthorize(rbacService, "tipo_contrato", "manage"), h.Create)
		types.PUT("/:id", middleware.RBACAuthorize(rbacService, "tipo_contrato", "manage"), h.Update)
	}
}
