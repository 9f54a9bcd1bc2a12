package complaint

import (
	"net/http"

	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/apperror"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/response"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/visibility"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("complaint.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("complaint.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("complaint request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Create(c *gin.Context) {
	actorID := c.GetString("user_id")

	var req CreateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http create complaint validation failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Create(c.Request.Context(), actorID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) CheckEligibility(c *gin.Context) {
	resp, err := h.service.CheckEligibility(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	viewer := visibility.Viewer{UserID: c.GetString("user_id"), Role: c.GetString("role")}
	filter := ListFilter{
		Status:    c.Query("status"),
		RequestID: c.Query("request_id"),
	}

	resp, err := h.service.GetAll(c.Request.Context(), viewer, filter)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, meta := response.Paginate(c, resp)
	response.Success(c, http.StatusOK, page, &meta)
}

func (h *Handler) GetByID(c *gin.Context) {
	viewer := visibility.Viewer{UserID: c.GetString("user_id"), Role: c.GetString("role")}

	resp, err := h.service.GetByID(c.Request.Context(), viewer, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Resolve(c *gin.Context) {
	var req ResolveComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http resolve complaint validation failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Resolve(c.Request.Context(), c.GetString("user_id"), c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
