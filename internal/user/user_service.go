package user

import (
	"context"
	"errors"
	"strings"

	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/apperror"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/contextutil"
	usererrors "github.com/Mermas-CC/Gestion-sigead-sub000/internal/user/errors"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/visibility"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const timestampLayout = "2006-01-02 15:04:05"

//go:generate mockgen -source=user_service.go -destination=mock/user_service_mock.go -package=mock
type Service interface {
	GetAll(ctx context.Context, filter ListFilter) ([]UserResponse, error)
	GetByID(ctx context.Context, id string) (UserResponse, error)
	Create(ctx context.Context, req CreateUserRequest) (UserResponse, error)
	Update(ctx context.Context, id string, req UpdateUserRequest) (UserResponse, error)
	ToggleStatus(ctx context.Context, actorID, id string, isActive bool) error
	ResetPassword(ctx context.Context, id, newPassword string) error
	Delete(ctx context.Context, actorID, id string) error
}

// ContractTypeChecker reports whether a contract type id exists.
type ContractTypeChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type service struct {
	repo          Repository
	contractTypes ContractTypeChecker
}

func NewService(repo Repository, contractTypes ...ContractTypeChecker) Service {
	var checker ContractTypeChecker
	if len(contractTypes) > 0 {
		checker = contractTypes[0]
	}
	return &service{
		repo:          repo,
		contractTypes: checker,
	}
}

func (s *service) GetAll(ctx context.Context, filter ListFilter) ([]UserResponse, error) {
	users, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		contextutil.GetLogger(ctx, nil).Error("failed to list users", zap.Error(err))
		return nil, apperror.Storage(err)
	}

	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = mapToResponse(u)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, id string) (UserResponse, error) {
	u, err := s.find(ctx, id)
	if err != nil {
		return UserResponse{}, err
	}
	return mapToResponse(*u), nil
}

func (s *service) Create(ctx context.Context, req CreateUserRequest) (UserResponse, error) {
	l := contextutil.GetLogger(ctx, nil)

	role, err := normalizeRole(req.Role)
	if err != nil {
		return UserResponse{}, err
	}
	contractTypeID, err := s.parseContractType(ctx, req.ContractTypeID)
	if err != nil {
		return UserResponse{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		l.Error("failed to hash password", zap.Error(err))
		return UserResponse{}, err
	}

	u := &User{
		ID:              uuid.New(),
		Name:            strings.TrimSpace(req.Name),
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		Password:        string(hashed),
		Role:            role,
		Department:      strings.TrimSpace(req.Department),
		Phone:           strings.TrimSpace(req.Phone),
		Position:        strings.TrimSpace(req.Position),
		ContractTypeID:  contractTypeID,
		CareerLevelID:   req.CareerLevelID,
		ContractFileURL: req.ContractFileURL,
		IsActive:        true,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if IsDuplicateEmail(err) {
			return UserResponse{}, usererrors.ErrUserAlreadyExists
		}
		l.Error("failed to create user", zap.Error(err))
		return UserResponse{}, apperror.Storage(err)
	}

	l.Info("user created", zap.String("user_id", u.ID.String()), zap.String("role", u.Role))
	return mapToResponse(*u), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateUserRequest) (UserResponse, error) {
	u, err := s.find(ctx, id)
	if err != nil {
		return UserResponse{}, err
	}

	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.Role != nil {
		role, err := normalizeRole(*req.Role)
		if err != nil {
			return UserResponse{}, err
		}
		u.Role = role
	}
	if req.Department != nil {
		u.Department = strings.TrimSpace(*req.Department)
	}
	if req.Phone != nil {
		u.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Position != nil {
		u.Position = strings.TrimSpace(*req.Position)
	}
	if req.ContractTypeID != nil {
		ct, err := s.parseContractType(ctx, req.ContractTypeID)
		if err != nil {
			return UserResponse{}, err
		}
		u.ContractTypeID = ct
	}
	if req.CareerLevelID != nil {
		u.CareerLevelID = req.CareerLevelID
	}
	if req.ContractFileURL != nil {
		u.ContractFileURL = req.ContractFileURL
	}

	if err := s.repo.Update(ctx, u); err != nil {
		contextutil.GetLogger(ctx, nil).Error("failed to update user", zap.String("user_id", id), zap.Error(err))
		return UserResponse{}, apperror.Storage(err)
	}
	return mapToResponse(*u), nil
}

func (s *service) ToggleStatus(ctx context.Context, actorID, id string, isActive bool) error {
	if actorID == id && !isActive {
		return usererrors.ErrSelfModification
	}

	u, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	u.IsActive = isActive
	if err := s.repo.Update(ctx, u); err != nil {
		contextutil.GetLogger(ctx, nil).Error("failed to update user status", zap.Error(err))
		return apperror.Storage(err)
	}
	return nil
}

func (s *service) ResetPassword(ctx context.Context, id, newPassword string) error {
	u, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	u.Password = string(hashed)
	if err := s.repo.Update(ctx, u); err != nil {
		return apperror.Storage(err)
	}
	return nil
}

func (s *service) Delete(ctx context.Context, actorID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return usererrors.ErrInvalidUserID
	}
	if actorID == id {
		return usererrors.ErrSelfModification
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return usererrors.ErrUserNotFound
		}
		return apperror.Storage(err)
	}
	return nil
}

func (s *service) find(ctx context.Context, id string) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, usererrors.ErrInvalidUserID
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usererrors.ErrUserNotFound
		}
		return nil, apperror.Storage(err)
	}
	return u, nil
}

func (s *service) parseContractType(ctx context.Context, raw *string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}

	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, usererrors.ErrInvalidContractType
	}

	if s.contractTypes != nil {
		ok, err := s.contractTypes.Exists(ctx, id.String())
		if err != nil {
			return nil, apperror.Storage(err)
		}
		if !ok {
			return nil, usererrors.ErrInvalidContractType
		}
	}
	return &id, nil
}

func normalizeRole(role string) (string, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return visibility.RoleUser, nil
	}
	if !visibility.ValidRole(role) {
		return "", usererrors.ErrInvalidRole
	}
	return role, nil
}

// IsDuplicateEmail reports a unique violation on usuarios.email.
func IsDuplicateEmail(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "unique constraint failed: usuarios.email")
}

func mapToResponse(u User) UserResponse {
	resp := UserResponse{
		ID:              u.ID.String(),
		Name:            u.Name,
		Email:           u.Email,
		Role:            u.Role,
		Department:      u.Department,
		Phone:           u.Phone,
		Position:        u.Position,
		IsActive:        u.IsActive,
		CareerLevelID:   u.CareerLevelID,
		ContractFileURL: u.ContractFileURL,
		CreatedAt:       u.CreatedAt.Format(timestampLayout),
	}
	if u.ContractTypeID != nil {
		ct := u.ContractTypeID.String()
		resp.ContractTypeID = &ct
	}
	return resp
}
