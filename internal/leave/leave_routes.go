package leave

import (
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts /solicitudes. createGuards run before Create only,
// typically rate limiting and idempotency.
func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	auth gin.HandlerFunc,
	rbacService middleware.RBACService,
	createGuards ...gin.HandlerFunc,
) {
	requests := r.Group("/solicitudes")
	requests.Use(auth)
	{
		requests.GET("", middleware.RBACAuthorize(rbacService, "solicitud", "read"), handler.GetAll)
		requests.GET("/:id", middleware.RBACAuthorize(rbacService, "solicitud", "read"), handler.GetByID)
		requests.GET("/:id/memo", middleware.RBACAuthorize(rbacService, "solicitud", "read"), handler.DownloadMemo)

		create := append([]gin.HandlerFunc{middleware.RBACAuthorize(rbacService, "solicitud", "create")}, createGuards...)
		requests.POST("", append(create, handler.Create)...)

		requests.PATCH("/:id", middleware.RBACAuthorize(rbacService, "solicitud", "approve"), handler.SetStatus)
		requests.POST("/:id/memo", middleware.RBACAuthorize(rbacService, "solicitud", "approve"), handler.RegenerateMemo)
		requests.DELETE("/:id", middleware.RBACAuthorize(rbacService, "solicitud", "delete"), handler.Delete)
	}
}
