package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	autherrors "github.com/Mermas-CC/Gestion-sigead-sub000/internal/auth/errors"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/apperror"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/user"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/visibility"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Login(ctx context.Context, email, password string) (token string, resp AuthResponse, err error)
	GetMe(ctx context.Context, userID string) (AuthResponse, error)
	Register(ctx context.Context, req RegisterRequest) (AuthResponse, error)
}

type service struct {
	users  user.Repository
	secret string
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

func NewService(users user.Repository, secret string, ttl time.Duration, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{
		users:  users,
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
		logger: l,
	}
}

func (s *service) Login(ctx context.Context, email, password string) (string, AuthResponse, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("login lookup failed", zap.Error(err))
			return "", AuthResponse{}, apperror.Storage(err)
		}
		return "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		s.logger.Info("login rejected", zap.String("user_id", u.ID.String()))
		return "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	if !u.IsActive {
		return "", AuthResponse{}, autherrors.ErrUserInactive
	}

	token, err := s.generateToken(u)
	if err != nil {
		s.logger.Error("token signing failed", zap.Error(err))
		return "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}

	return token, mapToResponse(u), nil
}

func (s *service) GetMe(ctx context.Context, userID string) (AuthResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return AuthResponse{}, autherrors.ErrUserNotFound
	}

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AuthResponse{}, autherrors.ErrUserNotFound
		}
		return AuthResponse{}, apperror.Storage(err)
	}

	return mapToResponse(u), nil
}

// Register creates a self-service account, always with role user.
func (s *service) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResponse{}, err
	}

	u := &user.User{
		ID:         uuid.New(),
		Name:       strings.TrimSpace(req.Name),
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		Password:   string(hashed),
		Role:       visibility.RoleUser,
		Department: strings.TrimSpace(req.Department),
		Phone:      strings.TrimSpace(req.Phone),
		Position:   strings.TrimSpace(req.Position),
		IsActive:   true,
	}

	if err := s.users.Create(ctx, u); err != nil {
		if user.IsDuplicateEmail(err) {
			return AuthResponse{}, autherrors.ErrEmailAlreadyRegistered
		}
		s.logger.Error("register failed", zap.Error(err))
		return AuthResponse{}, apperror.Storage(err)
	}

	s.logger.Info("user registered", zap.String("user_id", u.ID.String()))
	return mapToResponse(u), nil
}

func (s *service) generateToken(u *user.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"id":    u.ID.String(),
		"email": u.Email,
		"role":  u.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(s.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

func mapToResponse(u *user.User) AuthResponse {
	return AuthResponse{
		ID:         u.ID.String(),
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Department: u.Department,
		Position:   u.Position,
	}
}
