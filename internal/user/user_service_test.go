package user_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/apperror"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/user"
	usererrors "github.com/Mermas-CC/Gestion-sigead-sub000/internal/user/errors"
	mock_user "github.com/Mermas-CC/Gestion-sigead-sub000/internal/user/mock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*mock_user.MockRepository, user.Service) {
	ctrl := gomock.NewController(t)
	mockRepo := mock_user.NewMockRepository(ctrl)
	return mockRepo, user.NewService(mockRepo)
}

func TestUserService_GetAll(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mockRepo, svc := setup(t)
		filter := user.ListFilter{Role: "user"}

		mockRepo.EXPECT().
			FindAll(gomock.Any(), filter).
			Return([]user.User{{ID: uuid.New(), Name: "Ana", Email: "ana@mail.com", Role: "user", IsActive: true}}, nil)

		res, err := svc.GetAll(ctx, filter)

		assert.NoError(t, err)
		assert.Len(t, res, 1)
		assert.Equal(t, "ana@mail.com", res[0].Email)
	})

	t.Run("repository error", func(t *testing.T) {
		mockRepo, svc := setup(t)

		mockRepo.EXPECT().
			FindAll(gomock.Any(), gomock.Any()).
			Return(nil, errors.New("db error"))

		res, err := svc.GetAll(ctx, user.ListFilter{})

		assert.Nil(t, res)
		assert.Equal(t, apperror.CodeStorageError, apperror.ToHTTP(err).Code)
	})
}

func TestUserService_GetByID(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		mockRepo, svc := setup(t)
		ct := uuid.New()

		mockRepo.EXPECT().
			FindByID(gomock.Any(), userID).
			Return(&user.User{ID: uuid.MustParse(userID), Email: "ana@mail.com", ContractTypeID: &ct}, nil)

		res, err := svc.GetByID(ctx, userID)

		assert.NoError(t, err)
		assert.Equal(t, userID, res.ID)
		require.NotNil(t, res.ContractTypeID)
		assert.Equal(t, ct.String(), *res.ContractTypeID)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo, svc := setup(t)

		mockRepo.EXPECT().
			FindByID(gomock.Any(), userID).
			Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.GetByID(ctx, userID)

		assert.ErrorIs(t, err, usererrors.ErrUserNotFound)
	})

	t.Run("invalid id", func(t *testing.T) {
		_, svc := setup(t)

		_, err := svc.GetByID(ctx, "nope")

		assert.ErrorIs(t, err, usererrors.ErrInvalidUserID)
	})
}

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()
	req := user.CreateUserRequest{
		Name:     " Ana Quispe ",
		Email:    "Ana@Mail.com",
		Password: "password123",
		Role:     "ADMIN",
	}

	t.Run("success hashes password and normalizes fields", func(t *testing.T) {
		mockRepo, svc := setup(t)

		var saved *user.User
		mockRepo.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, u *user.User) error {
				saved = u
				return nil
			})

		res, err := svc.Create(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, "Ana Quispe", res.Name)
		assert.Equal(t, "ana@mail.com", res.Email)
		assert.Equal(t, "admin", res.Role)
		assert.True(t, res.IsActive)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved.Password), []byte("password123")))
	})

	t.Run("defaults to user role", func(t *testing.T) {
		mockRepo, svc := setup(t)
		mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		r := req
		r.Role = ""
		res, err := svc.Create(ctx, r)

		require.NoError(t, err)
		assert.Equal(t, "user", res.Role)
	})

	t.Run("invalid role", func(t *testing.T) {
		_, svc := setup(t)

		r := req
		r.Role = "root"
		_, err := svc.Create(ctx, r)

		assert.ErrorIs(t, err, usererrors.ErrInvalidRole)
	})

	t.Run("duplicate email", func(t *testing.T) {
		mockRepo, svc := setup(t)
		mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(gorm.ErrDuplicatedKey)

		_, err := svc.Create(ctx, req)

		assert.ErrorIs(t, err, usererrors.ErrUserAlreadyExists)
	})

	t.Run("unknown contract type", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockRepo := mock_user.NewMockRepository(ctrl)
		checker := mock_user.NewMockContractTypeChecker(ctrl)
		svc := user.NewService(mockRepo, checker)

		ct := uuid.New().String()
		checker.EXPECT().Exists(gomock.Any(), ct).Return(false, nil)

		r := req
		r.ContractTypeID = &ct
		_, err := svc.Create(ctx, r)

		assert.ErrorIs(t, err, usererrors.ErrInvalidContractType)
	})
}

func TestUserService_Update(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	mockRepo, svc := setup(t)
	level := 3
	position := "Analista"

	mockRepo.EXPECT().
		FindByID(gomock.Any(), id.String()).
		Return(&user.User{ID: id, Name: "Ana", Role: "user", Position: "Asistente"}, nil)
	mockRepo.EXPECT().
		Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *user.User) error {
			assert.Equal(t, "Analista", u.Position)
			assert.Equal(t, "Ana", u.Name)
			return nil
		})

	res, err := svc.Update(ctx, id.String(), user.UpdateUserRequest{Position: &position, CareerLevelID: &level})

	require.NoError(t, err)
	assert.Equal(t, "Analista", res.Position)
	require.NotNil(t, res.CareerLevelID)
	assert.Equal(t, 3, *res.CareerLevelID)
}

func TestUserService_ToggleStatus(t *testing.T) {
	ctx := context.Background()
	id := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		mockRepo, svc := setup(t)

		mockRepo.EXPECT().
			FindByID(gomock.Any(), id).
			Return(&user.User{ID: uuid.MustParse(id), IsActive: true}, nil)
		mockRepo.EXPECT().
			Update(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, u *user.User) error {
				assert.False(t, u.IsActive)
				return nil
			})

		assert.NoError(t, svc.ToggleStatus(ctx, uuid.New().String(), id, false))
	})

	t.Run("cannot deactivate self", func(t *testing.T) {
		_, svc := setup(t)

		err := svc.ToggleStatus(ctx, id, id, false)

		assert.ErrorIs(t, err, usererrors.ErrSelfModification)
	})
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()
	id := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		mockRepo, svc := setup(t)
		mockRepo.EXPECT().Delete(gomock.Any(), id).Return(nil)

		assert.NoError(t, svc.Delete(ctx, uuid.New().String(), id))
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo, svc := setup(t)
		mockRepo.EXPECT().Delete(gomock.Any(), id).Return(gorm.ErrRecordNotFound)

		assert.ErrorIs(t, svc.Delete(ctx, uuid.New().String(), id), usererrors.ErrUserNotFound)
	})

	t.Run("self", func(t *testing.T) {
		_, svc := setup(t)

		assert.ErrorIs(t, svc.Delete(ctx, id, id), usererrors.ErrSelfModification)
	})
}
