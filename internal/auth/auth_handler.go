package auth

import (
	"net/http"
	"time"

	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/middleware"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/apperror"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service      Service
	ttl          time.Duration
	secureCookie bool
}

func NewHandler(s Service, ttl time.Duration, secureCookie bool) *Handler {
	return &Handler{service: s, ttl: ttl, secureCookie: secureCookie}
}

func writeError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (ctrl *Handler) setAuthCookie(c *gin.Context, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   ctrl.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (ctrl *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperror.MapValidationError(err))
		return
	}

	token, userResp, err := ctrl.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	ctrl.setAuthCookie(c, token, int(ctrl.ttl.Seconds()))

	response.Success(c, http.StatusOK, gin.H{
		"user":  userResp,
		"token": token,
	}, nil)
}

func (ctrl *Handler) Me(c *gin.Context) {
	userResp, err := ctrl.service.GetMe(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, userResp, nil)
}

func (ctrl *Handler) Logout(c *gin.Context) {
	ctrl.setAuthCookie(c, "", -1)
	response.Success(c, http.StatusOK, "Sesión cerrada", nil)
}

func (ctrl *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperror.MapValidationError(err))
		return
	}

	res, err := ctrl.service.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, res, nil)
}
