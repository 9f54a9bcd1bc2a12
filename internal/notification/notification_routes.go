package notification

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, auth gin.HandlerFunc) {
	notifications := r.Group("/notificaciones")
	notifications.Use(auth)
	{
		notifications.GET("", handler.GetAll)
		notifications.GET("/unread-count", handler.UnreadCount)
		notifications.PATCH("/read-all", handler.MarkAllRead)
		notifications.PATCH("/:id", handler.SetRead)
	}
}
