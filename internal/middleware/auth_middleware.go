package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	autherrors "github.com/Mermas-CC/Gestion-sigead-sub000/internal/auth/errors"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/apperror"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/contextutil"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/response"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/visibility"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const AuthCookieName = "auth_token"

type AuthUser struct {
	ID       string
	Email    string
	Name     string
	Role     string
	IsActive bool
}

// UserLookup returns (nil, nil) for an unknown id.
type UserLookup interface {
	LookupUser(ctx context.Context, id string) (*AuthUser, error)
}

func abortWith(c *gin.Context, err *apperror.AppError) {
	response.Abort(c, err.HTTPStatus, err.Code, err.Message)
}

// TokenFromRequest prefers the auth cookie and falls back to a Bearer header.
func TokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(AuthCookieName); err == nil && cookie != "" {
		return cookie
	}
	if token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); found {
		return strings.TrimSpace(token)
	}
	return ""
}

// ParseToken validates an HS256 token and returns its claims.
func ParseToken(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, autherrors.ErrTokenExpired
		}
		return nil, autherrors.ErrInvalidToken
	}
	if !token.Valid {
		return nil, autherrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, autherrors.ErrInvalidToken
	}
	return claims, nil
}

func AuthMiddleware(users UserLookup, secret string, logger ...*zap.Logger) gin.HandlerFunc {
	l := zap.L().Named("auth.middleware")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.middleware")
	}

	return func(c *gin.Context) {
		tokenString := TokenFromRequest(c)
		if tokenString == "" {
			abortWith(c, autherrors.ErrTokenMissing)
			return
		}

		claims, err := ParseToken(tokenString, secret)
		if err != nil {
			var appErr *apperror.AppError
			if !errors.As(err, &appErr) {
				appErr = autherrors.ErrInvalidToken
			}
			abortWith(c, appErr)
			return
		}

		userID, _ := claims["id"].(string)
		if userID == "" {
			abortWith(c, autherrors.ErrInvalidToken)
			return
		}

		u, err := users.LookupUser(c.Request.Context(), userID)
		if err != nil {
			l.Error("failed to load authenticated user", zap.String("user_id", userID), zap.Error(err))
			abortWith(c, apperror.ErrInternal)
			return
		}
		if u == nil {
			abortWith(c, autherrors.ErrUserNotFound)
			return
		}
		if !u.IsActive {
			abortWith(c, autherrors.ErrUserInactive)
			return
		}

		// Role comes from storage so demotions apply before the token expires.
		role := strings.ToLower(strings.TrimSpace(u.Role))

		c.Set("user_id", u.ID)
		c.Set("email", u.Email)
		c.Set("role", role)

		ctx := contextutil.WithUserID(c.Request.Context(), u.ID)
		ctx = contextutil.WithRole(ctx, role)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != visibility.RoleAdmin {
			abortWith(c, autherrors.ErrForbidden)
			return
		}
		c.Next()
	}
}
