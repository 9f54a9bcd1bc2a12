package complaint

import (
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	auth gin.HandlerFunc,
	rbacService middleware.RBACService,
	createGuards ...gin.HandlerFunc,
) {
	complaints := r.Group("/reclamos")
	complaints.Use(auth)
	{
		complaints.GET("", middleware.RBACAuthorize(rbacService, "reclamo", "read"), handler.GetAll)
		complaints.GET("/:id", middleware.RBACAuthorize(rbacService, "reclamo", "read"), handler.GetByID)

		create := append([]gin.HandlerFunc{middleware.RBACAuthorize(rbacService, "reclamo", "create")}, createGuards...)
		complaints.POST("", append(create, handler.Create)...)

		complaints.PATCH("/:id", middleware.RBACAuthorize(rbacService, "reclamo", "resolve"), handler.Resolve)
	}

	r.GET("/solicitudes/:id/reclamo-eligibility",
		auth,
		middleware.RBACAuthorize(rbacService, "reclamo", "create"),
		handler.CheckEligibility,
	)
}
